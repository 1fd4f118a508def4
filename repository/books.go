package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/uofor/circulation/data"
)

type books interface {
	CreateBook(book *data.Book) error
	GetBook(bookID int64) (*data.Book, error)
	GetAllBooks(search string, visibleOnly bool, filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(book *data.Book) error
	UpdateBookCapacity(bookID int64, totalCopies, availableCopies int) (*data.Book, error)
	DeleteBook(bookID int64) error
}

// CreateBook creates a new book record.
func (r *repository) CreateBook(book *data.Book) error {
	query := `
		INSERT INTO books (title, author, publisher, year, total_copies, available_copies, is_visible, cover_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version`
	args := []interface{}{
		book.Title,
		pq.Array(book.Author),
		book.Publisher,
		book.Year,
		book.TotalCopies,
		book.AvailableCopies,
		book.IsVisible,
		book.CoverPath,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.db.QueryRowContext(ctx, query, args...).Scan(&book.ID, &book.CreatedAt, &book.Version)
}

// GetBook retrieves a book record by its ID.
func (r *repository) GetBook(bookID int64) (*data.Book, error) {
	if bookID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, created_at, title, author, publisher, year, total_copies, available_copies, is_visible, cover_path, version
		FROM books
		WHERE id = $1`
	var book data.Book
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&book.ID,
		&book.CreatedAt,
		&book.Title,
		pq.Array(&book.Author),
		&book.Publisher,
		&book.Year,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.IsVisible,
		&book.CoverPath,
		&book.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetAllBooks retrieves a paginated list of book records.
// Records can be filtered by title search and visibility, and sorted.
func (r *repository) GetAllBooks(search string, visibleOnly bool, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, created_at, title, author, publisher, year, total_copies, available_copies, is_visible, cover_path, version
		FROM books
		WHERE (to_tsvector('simple', title) @@ plainto_tsquery('simple', $1) OR $1 = '')
		AND (is_visible = true OR $2 = false)
		ORDER BY %s %s, id ASC
		LIMIT $3 OFFSET $4`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{search, visibleOnly, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	books := []*data.Book{}
	for rows.Next() {
		var book data.Book
		err := rows.Scan(
			&totalRecords,
			&book.ID,
			&book.CreatedAt,
			&book.Title,
			pq.Array(&book.Author),
			&book.Publisher,
			&book.Year,
			&book.TotalCopies,
			&book.AvailableCopies,
			&book.IsVisible,
			&book.CoverPath,
			&book.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// UpdateBook updates a book's descriptive fields (title, author, visibility,
// cover and so on). Copy counts are deliberately not written here: capacity
// changes go through UpdateBookCapacity so the borrowed-count check and the
// write happen in one atomic statement.
func (r *repository) UpdateBook(book *data.Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, publisher = $3, year = $4, is_visible = $5, cover_path = $6, version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version`
	args := []interface{}{
		book.Title,
		pq.Array(book.Author),
		book.Publisher,
		book.Year,
		book.IsVisible,
		book.CoverPath,
		book.ID,
		book.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&book.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

// UpdateBookCapacity changes a book's copy counts. The book row is locked for
// the duration of the transaction so the borrowed-order count cannot move
// between the check and the write. Fails with ErrCapacityViolation if the new
// total would be less than the number of currently borrowed copies, or if the
// pair itself is inconsistent.
func (r *repository) UpdateBookCapacity(bookID int64, totalCopies, availableCopies int) (*data.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var book data.Book
	query := `
		SELECT id, created_at, title, author, publisher, year, total_copies, available_copies, is_visible, cover_path, version
		FROM books
		WHERE id = $1
		FOR UPDATE`
	err = tx.QueryRowContext(ctx, query, bookID).Scan(
		&book.ID,
		&book.CreatedAt,
		&book.Title,
		pq.Array(&book.Author),
		&book.Publisher,
		&book.Year,
		&book.TotalCopies,
		&book.AvailableCopies,
		&book.IsVisible,
		&book.CoverPath,
		&book.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	var borrowed int
	query = `
		SELECT count(*)
		FROM book_orders
		WHERE book_id = $1 AND status = $2`
	err = tx.QueryRowContext(ctx, query, bookID, string(data.OrderStatusBorrowed)).Scan(&borrowed)
	if err != nil {
		return nil, err
	}
	if availableCopies < 0 || availableCopies > totalCopies || totalCopies < borrowed {
		return nil, ErrCapacityViolation
	}

	query = `
		UPDATE books
		SET total_copies = $1, available_copies = $2, version = version + 1
		WHERE id = $3
		RETURNING version`
	err = tx.QueryRowContext(ctx, query, totalCopies, availableCopies, bookID).Scan(&book.Version)
	if err != nil {
		return nil, err
	}
	book.TotalCopies = totalCopies
	book.AvailableCopies = availableCopies

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook deletes a book record. Fails with ErrResourceInUse while any
// non-terminal order still references the book.
func (r *repository) DeleteBook(bookID int64) error {
	if bookID < 1 {
		return ErrRecordNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statuses := make([]string, len(data.ActiveOrderStatuses))
	for i, status := range data.ActiveOrderStatuses {
		statuses[i] = string(status)
	}
	var active int
	query := `
		SELECT count(*)
		FROM book_orders
		WHERE book_id = $1 AND status = ANY($2)`
	err = tx.QueryRowContext(ctx, query, bookID, pq.Array(statuses)).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrResourceInUse
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, bookID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return tx.Commit()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uofor/circulation/data"
)

type orders interface {
	CreateOrder(order *data.BookOrder) error
	GetOrder(orderID int64) (*data.BookOrder, error)
	GetAllOrders(status string, bookID, studentID int64, filters data.Filters) ([]*data.BookOrder, data.Metadata, error)
	UpdateOrderNotes(order *data.BookOrder) error
	TransitionOrder(order *data.BookOrder, target data.OrderStatus, delta int) error
	DeleteOrder(order *data.BookOrder, delta int) error
}

// CreateOrder creates a new order record in PENDING status. A partial unique
// index on (student_id, book_id) over the active statuses backs the
// one-active-order-per-pair rule, so a concurrent duplicate request loses
// here no matter how the requests interleave.
func (r *repository) CreateOrder(order *data.BookOrder) error {
	query := `
		INSERT INTO book_orders (book_id, student_id, student_email, status, student_notes, admin_notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at, version`
	args := []interface{}{
		order.BookID,
		order.StudentID,
		order.StudentEmail,
		string(order.Status),
		order.StudentNotes,
		order.AdminNotes,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.Version)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), `violates unique constraint "book_orders_one_active_per_student_idx"`):
			return ErrDuplicateActiveOrder
		default:
			return err
		}
	}
	return nil
}

// GetOrder retrieves an order record by its ID.
func (r *repository) GetOrder(orderID int64) (*data.BookOrder, error) {
	if orderID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, book_id, student_id, student_email, status, student_notes, admin_notes, created_at, updated_at, version
		FROM book_orders
		WHERE id = $1`
	var order data.BookOrder
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID,
		&order.BookID,
		&order.StudentID,
		&order.StudentEmail,
		&order.Status,
		&order.StudentNotes,
		&order.AdminNotes,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &order, nil
}

// GetAllOrders retrieves a paginated list of order records. Records can be
// filtered by status, book and student, and sorted.
func (r *repository) GetAllOrders(status string, bookID, studentID int64, filters data.Filters) ([]*data.BookOrder, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, book_id, student_id, student_email, status, student_notes, admin_notes, created_at, updated_at, version
		FROM book_orders
		WHERE (UPPER(status) = UPPER($1) OR $1 = '')
		AND (book_id = $2 OR $2 = 0)
		AND (student_id = $3 OR $3 = 0)
		ORDER BY %s %s, id ASC
		LIMIT $4 OFFSET $5`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{status, bookID, studentID, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	orders := []*data.BookOrder{}
	for rows.Next() {
		var order data.BookOrder
		err := rows.Scan(
			&totalRecords,
			&order.ID,
			&order.BookID,
			&order.StudentID,
			&order.StudentEmail,
			&order.Status,
			&order.StudentNotes,
			&order.AdminNotes,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		orders = append(orders, &order)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return orders, metadata, nil
}

// UpdateOrderNotes updates the free-text notes on an order. Notes never touch
// inventory, so a plain optimistic update is enough here.
func (r *repository) UpdateOrderNotes(order *data.BookOrder) error {
	query := `
		UPDATE book_orders
		SET student_notes = $1, admin_notes = $2, updated_at = now(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING updated_at, version`
	args := []interface{}{order.StudentNotes, order.AdminNotes, order.ID, order.Version}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&order.UpdatedAt, &order.Version)
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

// TransitionOrder commits a status transition together with its inventory
// adjustment as one unit. This is the atomic section: the book row is locked
// with SELECT ... FOR UPDATE for the duration of the transaction, which
// serializes every transition touching the same book. The order row itself is
// guarded by its version column; if another caller moved the order first the
// transaction fails with ErrEditConflict and the service re-reads and
// retries. Preconditions:
//
//   - a negative delta must not take available_copies below zero, otherwise
//     ErrInventoryExhausted and nothing is written;
//   - a positive delta must not take available_copies above total_copies
//     (this would mean the ledger and the catalog disagree, and is returned
//     as ErrCapacityViolation rather than silently clamped).
//
// On success the order struct is updated in place with the new status,
// timestamps and version.
func (r *repository) TransitionOrder(order *data.BookOrder, target data.OrderStatus, delta int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if delta != 0 {
		var available, total int
		query := `
			SELECT available_copies, total_copies
			FROM books
			WHERE id = $1
			FOR UPDATE`
		err = tx.QueryRowContext(ctx, query, order.BookID).Scan(&available, &total)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return ErrRecordNotFound
			default:
				return err
			}
		}
		if available+delta < 0 {
			return ErrInventoryExhausted
		}
		if available+delta > total {
			return ErrCapacityViolation
		}
		query = `
			UPDATE books
			SET available_copies = available_copies + $1, version = version + 1
			WHERE id = $2`
		_, err = tx.ExecContext(ctx, query, delta, order.BookID)
		if err != nil {
			return err
		}
	}

	query := `
		UPDATE book_orders
		SET status = $1, admin_notes = $2, updated_at = now(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING updated_at, version`
	args := []interface{}{string(target), order.AdminNotes, order.ID, order.Version}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&order.UpdatedAt, &order.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	order.Status = target
	return nil
}

// DeleteOrder removes an order record, applying a compensating inventory
// credit in the same transaction when the order is currently BORROWED. The
// version check makes sure the order was not transitioned between the
// caller's read and the delete.
func (r *repository) DeleteOrder(order *data.BookOrder, delta int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if delta != 0 {
		var available, total int
		query := `
			SELECT available_copies, total_copies
			FROM books
			WHERE id = $1
			FOR UPDATE`
		err = tx.QueryRowContext(ctx, query, order.BookID).Scan(&available, &total)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return ErrRecordNotFound
			default:
				return err
			}
		}
		if available+delta < 0 {
			return ErrInventoryExhausted
		}
		if available+delta > total {
			return ErrCapacityViolation
		}
		query = `
			UPDATE books
			SET available_copies = available_copies + $1, version = version + 1
			WHERE id = $2`
		_, err = tx.ExecContext(ctx, query, delta, order.BookID)
		if err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM book_orders WHERE id = $1 AND version = $2`, order.ID, order.Version)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEditConflict
	}
	return tx.Commit()
}

package service

import (
	"errors"
	"net/http"

	"github.com/uofor/circulation/clients"
	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/data/dto"
	"github.com/uofor/circulation/internal/validator"
	"github.com/uofor/circulation/repository"
)

type books interface {
	CreateBook(body dto.CreateBookRequestBody) (*data.Book, error)
	GetBook(bookID int64) (*data.Book, error)
	ListBooks(search string, visibleOnly bool, filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(bookID int64, body dto.UpdateBookRequestBody) (*data.Book, error)
	UpdateBookCover(bookID int64, r *http.Request) (*data.Book, error)
	DeleteBook(bookID int64) error
}

// CreateBook adds a new book to the catalog. A new book must own at least
// one copy; available copies default to the total when omitted.
func (s *service) CreateBook(body dto.CreateBookRequestBody) (*data.Book, error) {
	book := &data.Book{
		Title:       body.Title,
		Author:      body.Author,
		Publisher:   body.Publisher,
		Year:        body.Year,
		TotalCopies: body.TotalCopies,
		IsVisible:   true,
	}
	if body.AvailableCopies != nil {
		book.AvailableCopies = *body.AvailableCopies
	} else {
		book.AvailableCopies = body.TotalCopies
	}
	if body.IsVisible != nil {
		book.IsVisible = *body.IsVisible
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	if book.TotalCopies < 1 || book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		return nil, ErrInvalidCapacity
	}
	err := s.repo.CreateBook(book)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook retrieves a book record.
func (s *service) GetBook(bookID int64) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// ListBooks retrieves a paginated list of books. Records can be filtered by
// title search and visibility, and sorted.
func (s *service) ListBooks(search string, visibleOnly bool, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v.Errors)
	}
	return s.repo.GetAllBooks(search, visibleOnly, filters)
}

// UpdateBook applies a partial update to a book record. Descriptive fields
// are a plain optimistic update; copy counts go through the repository's
// capacity path so the check against currently borrowed copies and the write
// happen atomically.
func (s *service) UpdateBook(bookID int64, body dto.UpdateBookRequestBody) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if body.Title != nil {
		book.Title = *body.Title
	}
	if body.Author != nil {
		book.Author = body.Author
	}
	if body.Publisher != nil {
		book.Publisher = *body.Publisher
	}
	if body.Year != nil {
		book.Year = *body.Year
	}
	if body.IsVisible != nil {
		book.IsVisible = *body.IsVisible
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}

	if body.TotalCopies != nil || body.AvailableCopies != nil {
		totalCopies := book.TotalCopies
		availableCopies := book.AvailableCopies
		if body.TotalCopies != nil {
			totalCopies = *body.TotalCopies
		}
		if body.AvailableCopies != nil {
			availableCopies = *body.AvailableCopies
		} else if body.TotalCopies != nil {
			// Keep the borrowed count steady when only the total moves.
			availableCopies = totalCopies - book.BorrowedCopies()
		}
		if totalCopies < 0 || availableCopies < 0 || availableCopies > totalCopies {
			return nil, ErrInvalidCapacity
		}
		updated, err := s.repo.UpdateBookCapacity(bookID, totalCopies, availableCopies)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrRecordNotFound):
				return nil, ErrRecordNotFound
			case errors.Is(err, repository.ErrCapacityViolation):
				return nil, ErrCapacityViolation
			default:
				return nil, err
			}
		}
		book.TotalCopies = updated.TotalCopies
		book.AvailableCopies = updated.AvailableCopies
		book.Version = updated.Version
	}

	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrConcurrentModification
		default:
			return nil, err
		}
	}
	return book, nil
}

// UpdateBookCover uploads a cover image for a book to S3 and stores the
// resulting URL on the record.
func (s *service) UpdateBookCover(bookID int64, r *http.Request) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	err = r.ParseMultipartForm(5000)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			return nil, ErrContentTooLarge
		default:
			return nil, ErrBadRequest
		}
	}
	file, fileHeader, err := r.FormFile("cover")
	if err != nil {
		return nil, ErrBadRequest
	}
	buffer, mtype, err := s.detectMimeType(file, fileHeader)
	if err != nil {
		return nil, err
	}
	supportedMediaType := []string{
		"image/jpeg",
		"image/png",
	}
	if v := validator.Mime(mtype, supportedMediaType...); !v {
		return nil, ErrUnsupportedMediaType
	}
	s3Client, err := clients.NewS3Client(s.config)
	if err != nil {
		return nil, err
	}
	coverPath, err := s.uploadCoverToS3(s3Client, buffer, mtype, fileHeader)
	if err != nil {
		return nil, err
	}
	book.CoverPath = coverPath
	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrConcurrentModification
		default:
			return nil, err
		}
	}
	return book, nil
}

// DeleteBook removes a book from the catalog. A book with orders still in a
// non-terminal status cannot be deleted.
func (s *service) DeleteBook(bookID int64) error {
	err := s.repo.DeleteBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		case errors.Is(err, repository.ErrResourceInUse):
			return ErrResourceInUse
		default:
			return err
		}
	}
	return nil
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/data/dto"
	"github.com/uofor/circulation/repository"
)

func TestCreateBookDefaultsAvailableToTotal(t *testing.T) {
	repo := &mockRepo{
		createBook: func(book *data.Book) error {
			book.ID = 1
			return nil
		},
	}
	s, _ := newTestService(repo)
	book, err := s.CreateBook(dto.CreateBookRequestBody{
		Title:       "The Go Programming Language",
		Author:      []string{"Alan A. A. Donovan", "Brian W. Kernighan"},
		Year:        2015,
		TotalCopies: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, book.AvailableCopies)
	assert.True(t, book.IsVisible)
}

func TestCreateBookInvalidCapacity(t *testing.T) {
	s, _ := newTestService(&mockRepo{})
	available := 5
	_, err := s.CreateBook(dto.CreateBookRequestBody{
		Title:           "The Go Programming Language",
		Author:          []string{"Alan A. A. Donovan"},
		Year:            2015,
		TotalCopies:     3,
		AvailableCopies: &available,
	})
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestUpdateBookKeepsBorrowedCountSteady(t *testing.T) {
	// 5 total, 3 available means 2 copies are out on loan. Raising the total
	// to 10 without an explicit available count should yield 8 available.
	var gotTotal, gotAvailable int
	repo := &mockRepo{
		getBook: func(bookID int64) (*data.Book, error) {
			return &data.Book{ID: bookID, Title: "Clean Code", Author: []string{"Robert C. Martin"}, Year: 2008, TotalCopies: 5, AvailableCopies: 3, IsVisible: true}, nil
		},
		updateBookCapacity: func(bookID int64, totalCopies, availableCopies int) (*data.Book, error) {
			gotTotal, gotAvailable = totalCopies, availableCopies
			return &data.Book{ID: bookID, TotalCopies: totalCopies, AvailableCopies: availableCopies}, nil
		},
		updateBook: func(book *data.Book) error { return nil },
	}
	s, _ := newTestService(repo)
	total := 10
	book, err := s.UpdateBook(1, dto.UpdateBookRequestBody{TotalCopies: &total})
	require.NoError(t, err)
	assert.Equal(t, 10, gotTotal)
	assert.Equal(t, 8, gotAvailable)
	assert.Equal(t, 10, book.TotalCopies)
	assert.Equal(t, 8, book.AvailableCopies)
}

func TestUpdateBookInvalidCapacityPair(t *testing.T) {
	repo := &mockRepo{
		getBook: func(bookID int64) (*data.Book, error) {
			return &data.Book{ID: bookID, Title: "Clean Code", Author: []string{"Robert C. Martin"}, Year: 2008, TotalCopies: 5, AvailableCopies: 5, IsVisible: true}, nil
		},
	}
	s, _ := newTestService(repo)
	available := 7
	_, err := s.UpdateBook(1, dto.UpdateBookRequestBody{AvailableCopies: &available})
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestUpdateBookCapacityViolation(t *testing.T) {
	repo := &mockRepo{
		getBook: func(bookID int64) (*data.Book, error) {
			return &data.Book{ID: bookID, Title: "Clean Code", Author: []string{"Robert C. Martin"}, Year: 2008, TotalCopies: 5, AvailableCopies: 2, IsVisible: true}, nil
		},
		updateBookCapacity: func(bookID int64, totalCopies, availableCopies int) (*data.Book, error) {
			return nil, repository.ErrCapacityViolation
		},
	}
	s, _ := newTestService(repo)
	total, available := 2, 2
	_, err := s.UpdateBook(1, dto.UpdateBookRequestBody{TotalCopies: &total, AvailableCopies: &available})
	assert.ErrorIs(t, err, ErrCapacityViolation)
}

func TestDeleteBookResourceInUse(t *testing.T) {
	repo := &mockRepo{
		deleteBook: func(bookID int64) error { return repository.ErrResourceInUse },
	}
	s, _ := newTestService(repo)
	err := s.DeleteBook(1)
	assert.ErrorIs(t, err, ErrResourceInUse)
}

func TestDeleteBookNotFound(t *testing.T) {
	repo := &mockRepo{
		deleteBook: func(bookID int64) error { return repository.ErrRecordNotFound },
	}
	s, _ := newTestService(repo)
	err := s.DeleteBook(99)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

package data

import (
	"time"

	"github.com/uofor/circulation/internal/validator"
)

// Book defines a catalog book model. TotalCopies is the number of physical
// copies the library owns and AvailableCopies the number currently on the
// shelf. The difference between the two is always the number of orders in
// BORROWED status for this book.
type Book struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Title           string    `json:"title"`
	Author          []string  `json:"author,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	Year            int32     `json:"year,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	IsVisible       bool      `json:"is_visible"`
	CoverPath       string    `json:"cover_path,omitempty"`
	Version         int32     `json:"-"`
}

// BorrowedCopies returns the number of copies implied to be out on loan.
func (b *Book) BorrowedCopies() int {
	return b.TotalCopies - b.AvailableCopies
}

func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 500, "title", "must not be more than 500 bytes long")
	v.Check(len(book.Author) <= 5, "author", "must not contain more than 5 authors")
	v.Check(validator.Unique(book.Author), "author", "must not contain duplicate values")
	v.Check(book.Year == 0 || book.Year >= 1000, "year", "must be a four-digit year")
	v.Check(book.Year <= int32(time.Now().Year()), "year", "must not be in the future")
}

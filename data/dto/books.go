package dto

import "github.com/uofor/circulation/data"

// CreateBookRequestBody defines the request body for CreateBook service.
// AvailableCopies is a pointer so an omitted value defaults to TotalCopies
// rather than zero.
type CreateBookRequestBody struct {
	Title           string   `json:"title"`
	Author          []string `json:"author"`
	Publisher       string   `json:"publisher"`
	Year            int32    `json:"year"`
	TotalCopies     int      `json:"total_copies"`
	AvailableCopies *int     `json:"available_copies"`
	IsVisible       *bool    `json:"is_visible"`
}

// UpdateBookRequestBody defines the request body for UpdateBook service. The
// fields are set to a pointer type to allow partial updates based on whether
// the value is set to nil.
type UpdateBookRequestBody struct {
	Title           *string  `json:"title"`
	Author          []string `json:"author"`
	Publisher       *string  `json:"publisher"`
	Year            *int32   `json:"year"`
	TotalCopies     *int     `json:"total_copies"`
	AvailableCopies *int     `json:"available_copies"`
	IsVisible       *bool    `json:"is_visible"`
}

// QsListBooks defines the query strings used for listing books.
type QsListBooks struct {
	Search      string
	VisibleOnly bool
	Filters     data.Filters
}

package dto

import "github.com/uofor/circulation/data"

// CreateOrderRequestBody defines the request body for RequestOrder service.
type CreateOrderRequestBody struct {
	BookID       int64  `json:"book_id"`
	StudentNotes string `json:"student_notes"`
}

// TransitionOrderRequestBody defines the request body for the admin
// status-transition endpoint.
type TransitionOrderRequestBody struct {
	Status     data.OrderStatus `json:"status"`
	AdminNotes *string          `json:"admin_notes"`
}

// UpdateOrderNotesRequestBody defines the request body for UpdateOrderNotes
// service. Both fields are optional.
type UpdateOrderNotesRequestBody struct {
	StudentNotes *string `json:"student_notes"`
	AdminNotes   *string `json:"admin_notes"`
}

// QsListOrders defines query strings for ListOrders service.
type QsListOrders struct {
	Status    string
	BookID    int64
	StudentID int64
	Filters   data.Filters
}

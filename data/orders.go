package data

import (
	"time"

	"github.com/uofor/circulation/internal/validator"
)

// OrderStatus represents the state of a book order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusApproved OrderStatus = "APPROVED"
	OrderStatusBorrowed OrderStatus = "BORROWED"
	OrderStatusReturned OrderStatus = "RETURNED"
	OrderStatusRejected OrderStatus = "REJECTED"
)

// ActiveOrderStatuses are the non-terminal statuses. At most one order per
// (student, book) pair may be in one of these at a time.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusBorrowed,
}

// orderTransitions is the full set of legal status transitions. Any edge not
// listed here is invalid, including every edge out of a terminal status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:  {OrderStatusApproved, OrderStatusRejected},
	OrderStatusApproved: {OrderStatusBorrowed, OrderStatusRejected},
	OrderStatusBorrowed: {OrderStatusReturned, OrderStatusRejected},
	OrderStatusReturned: {},
	OrderStatusRejected: {},
}

// IsValid returns true for a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are permitted.
func (s OrderStatus) IsTerminal() bool {
	targets, ok := orderTransitions[s]
	return ok && len(targets) == 0
}

// CanTransitionTo reports whether the edge s -> target is legal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// InventoryDelta maps a status transition to the signed adjustment it makes
// to a book's available copies. It is a pure function: the catalog counter is
// only ever mutated inside the repository's atomic section using the value
// returned here.
//
// BORROWED -> REJECTED credits inventory exactly like a return. An admin may
// reject an order after lending; whether that is a loss write-off or a plain
// return is a product question, the copy comes back on the shelf either way.
func InventoryDelta(from, to OrderStatus) int {
	switch {
	case from == OrderStatusApproved && to == OrderStatusBorrowed:
		return -1
	case from == OrderStatusBorrowed && (to == OrderStatusReturned || to == OrderStatusRejected):
		return 1
	default:
		return 0
	}
}

// BookOrder defines a lending ledger entry. Status transitions are driven by
// admin action, except student cancellation while PENDING. The notes fields
// are editable metadata only and never drive inventory logic.
type BookOrder struct {
	ID           int64       `json:"id"`
	BookID       int64       `json:"book_id"`
	StudentID    int64       `json:"student_id"`
	StudentEmail string      `json:"student_email,omitempty"`
	Status       OrderStatus `json:"status"`
	StudentNotes string      `json:"student_notes,omitempty"`
	AdminNotes   string      `json:"admin_notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Version      int32       `json:"-"`
}

func ValidateOrder(v *validator.Validator, order *BookOrder) {
	v.Check(order.BookID > 0, "book_id", "must be provided")
	v.Check(order.StudentID > 0, "student_id", "must be provided")
	v.Check(order.StudentEmail == "" || validator.Matches(order.StudentEmail, validator.EmailRX), "student_email", "must be a valid email address")
	v.Check(len(order.StudentNotes) <= 1000, "student_notes", "must not be more than 1000 bytes long")
	v.Check(len(order.AdminNotes) <= 1000, "admin_notes", "must not be more than 1000 bytes long")
}

func ValidateOrderStatus(v *validator.Validator, status OrderStatus) {
	v.Check(status != "", "status", "must be provided")
	v.Check(status.IsValid(), "status", "must be one of PENDING, APPROVED, BORROWED, RETURNED, REJECTED")
}

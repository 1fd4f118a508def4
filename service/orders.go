package service

import (
	"context"
	"errors"

	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/data/dto"
	"github.com/uofor/circulation/internal/validator"
	"github.com/uofor/circulation/repository"
)

// maxTransitionAttempts bounds the internal retry of a transition whose
// atomic section lost a version race. After this many attempts the caller
// gets ErrConcurrentModification and may retry itself.
const maxTransitionAttempts = 3

type orders interface {
	RequestOrder(studentID int64, studentEmail string, body dto.CreateOrderRequestBody) (*data.BookOrder, error)
	GetOrder(orderID int64) (*data.BookOrder, error)
	ListOrders(status string, bookID, studentID int64, filters data.Filters) ([]*data.BookOrder, data.Metadata, error)
	ApproveOrder(orderID int64, adminNotes *string) (*data.BookOrder, error)
	MarkOrderBorrowed(orderID int64, adminNotes *string) (*data.BookOrder, error)
	MarkOrderReturned(orderID int64, adminNotes *string) (*data.BookOrder, error)
	RejectOrder(orderID int64, adminNotes *string) (*data.BookOrder, error)
	CancelOrder(orderID int64, studentID int64) (*data.BookOrder, error)
	UpdateOrderNotes(orderID int64, caller *data.Caller, studentNotes, adminNotes *string) (*data.BookOrder, error)
	DeleteOrder(orderID int64) error
}

// RequestOrder creates a new lending request in PENDING status. The book
// must be visible to accept new orders, and a student can hold at most one
// active order per book. Requesting has no inventory effect: copies only
// move when the order is marked borrowed.
func (s *service) RequestOrder(studentID int64, studentEmail string, body dto.CreateOrderRequestBody) (*data.BookOrder, error) {
	order := &data.BookOrder{
		BookID:       body.BookID,
		StudentID:    studentID,
		StudentEmail: studentEmail,
		Status:       data.OrderStatusPending,
		StudentNotes: body.StudentNotes,
	}
	v := validator.New()
	if data.ValidateOrder(v, order); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	book, err := s.repo.GetBook(body.BookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if !book.IsVisible {
		return nil, ErrNotPermitted
	}
	err = s.repo.CreateOrder(order)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateActiveOrder):
			return nil, ErrDuplicateActiveOrder
		default:
			return nil, err
		}
	}
	return order, nil
}

// GetOrder retrieves an order record.
func (s *service) GetOrder(orderID int64) (*data.BookOrder, error) {
	order, err := s.repo.GetOrder(orderID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return order, nil
}

// ListOrders retrieves a paginated list of orders. Records can be filtered
// by status, book and student, and sorted.
func (s *service) ListOrders(status string, bookID, studentID int64, filters data.Filters) ([]*data.BookOrder, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v.Errors)
	}
	if status != "" {
		if data.ValidateOrderStatus(v, data.OrderStatus(status)); !v.Valid() {
			return nil, data.Metadata{}, failedValidation(v.Errors)
		}
	}
	return s.repo.GetAllOrders(status, bookID, studentID, filters)
}

// ApproveOrder moves a PENDING order to APPROVED. No inventory effect.
func (s *service) ApproveOrder(orderID int64, adminNotes *string) (*data.BookOrder, error) {
	return s.transitionOrder(orderID, data.OrderStatusApproved, adminNotes)
}

// MarkOrderBorrowed moves an APPROVED order to BORROWED, taking one copy off
// the shelf. Fails with ErrInventoryExhausted when no copy is available; the
// order stays APPROVED and the book is left untouched.
func (s *service) MarkOrderBorrowed(orderID int64, adminNotes *string) (*data.BookOrder, error) {
	return s.transitionOrder(orderID, data.OrderStatusBorrowed, adminNotes)
}

// MarkOrderReturned moves a BORROWED order to RETURNED, crediting one copy
// back to the shelf.
func (s *service) MarkOrderReturned(orderID int64, adminNotes *string) (*data.BookOrder, error) {
	return s.transitionOrder(orderID, data.OrderStatusReturned, adminNotes)
}

// RejectOrder moves an order to REJECTED. Rejecting a BORROWED order is an
// administrative return and credits the copy back like one.
func (s *service) RejectOrder(orderID int64, adminNotes *string) (*data.BookOrder, error) {
	return s.transitionOrder(orderID, data.OrderStatusRejected, adminNotes)
}

// CancelOrder is the student-initiated equivalent of a rejection, permitted
// only while the order is still PENDING and only by its owner.
func (s *service) CancelOrder(orderID int64, studentID int64) (*data.BookOrder, error) {
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		order, err := s.repo.GetOrder(orderID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrRecordNotFound):
				return nil, ErrRecordNotFound
			default:
				return nil, err
			}
		}
		if order.StudentID != studentID {
			return nil, ErrNotPermitted
		}
		if order.Status != data.OrderStatusPending {
			return nil, ErrInvalidStateTransition
		}
		err = s.repo.TransitionOrder(order, data.OrderStatusRejected, 0)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, repository.ErrEditConflict) {
			return nil, s.translateTransitionError(err)
		}
	}
	return nil, ErrConcurrentModification
}

// UpdateOrderNotes edits the free-text notes on a non-terminal order.
// Students may edit their own student notes; admins the admin notes. Notes
// are metadata only and never drive inventory logic.
func (s *service) UpdateOrderNotes(orderID int64, caller *data.Caller, studentNotes, adminNotes *string) (*data.BookOrder, error) {
	order, err := s.repo.GetOrder(orderID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if order.Status.IsTerminal() {
		return nil, ErrNotPermitted
	}
	if studentNotes != nil {
		if !caller.IsAdmin() && order.StudentID != caller.ID {
			return nil, ErrNotPermitted
		}
		order.StudentNotes = *studentNotes
	}
	if adminNotes != nil {
		if !caller.IsAdmin() {
			return nil, ErrNotPermitted
		}
		order.AdminNotes = *adminNotes
	}
	v := validator.New()
	if data.ValidateOrder(v, order); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err = s.repo.UpdateOrderNotes(order)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrConcurrentModification
		default:
			return nil, err
		}
	}
	return order, nil
}

// DeleteOrder removes an order record. Deleting a BORROWED order applies the
// same inventory credit as a return, in the same transaction as the delete.
func (s *service) DeleteOrder(orderID int64) error {
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		order, err := s.repo.GetOrder(orderID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrRecordNotFound):
				return ErrRecordNotFound
			default:
				return err
			}
		}
		delta := 0
		if order.Status == data.OrderStatusBorrowed {
			delta = data.InventoryDelta(data.OrderStatusBorrowed, data.OrderStatusReturned)
		}
		err = s.repo.DeleteOrder(order, delta)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrEditConflict) {
			return s.translateTransitionError(err)
		}
	}
	return ErrConcurrentModification
}

// transitionOrder drives the order state machine. Each attempt re-reads the
// order, validates the edge against the transition table, asks the inventory
// mapping for the copy-count delta and hands both to the repository's atomic
// section. A version race on the order re-reads and retries, bounded by
// maxTransitionAttempts; the re-read matters because the order may have been
// moved to a state from which the requested edge is no longer legal.
func (s *service) transitionOrder(orderID int64, target data.OrderStatus, adminNotes *string) (*data.BookOrder, error) {
	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		order, err := s.repo.GetOrder(orderID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrRecordNotFound):
				return nil, ErrRecordNotFound
			default:
				return nil, err
			}
		}
		if !order.Status.CanTransitionTo(target) {
			return nil, ErrInvalidStateTransition
		}
		if adminNotes != nil {
			order.AdminNotes = *adminNotes
			v := validator.New()
			if data.ValidateOrder(v, order); !v.Valid() {
				return nil, failedValidation(v.Errors)
			}
		}
		delta := data.InventoryDelta(order.Status, target)
		err = s.repo.TransitionOrder(order, target, delta)
		if err == nil {
			s.notifyOrderDecision(order)
			return order, nil
		}
		if !errors.Is(err, repository.ErrEditConflict) {
			return nil, s.translateTransitionError(err)
		}
	}
	return nil, ErrConcurrentModification
}

// translateTransitionError maps repository and context errors from the
// atomic section onto the service error taxonomy.
func (s *service) translateTransitionError(err error) error {
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, repository.ErrInventoryExhausted):
		return ErrInventoryExhausted
	case errors.Is(err, repository.ErrCapacityViolation):
		return ErrCapacityViolation
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return err
	}
}

// notifyOrderDecision emails the student about an order decision in a
// background goroutine. Delivery failures are logged and never surfaced to
// the API caller.
func (s *service) notifyOrderDecision(order *data.BookOrder) {
	if order.StudentEmail == "" {
		return
	}
	switch order.Status {
	case data.OrderStatusApproved, data.OrderStatusRejected, data.OrderStatusReturned:
	default:
		return
	}
	orderCopy := *order
	s.background(func() {
		bookTitle := ""
		book, err := s.repo.GetBook(orderCopy.BookID)
		if err == nil {
			bookTitle = book.Title
		}
		mailData := map[string]interface{}{
			"OrderID":    orderCopy.ID,
			"BookTitle":  bookTitle,
			"Status":     string(orderCopy.Status),
			"AdminNotes": orderCopy.AdminNotes,
		}
		err = s.mailer.Send(orderCopy.StudentEmail, "order_status.tmpl", mailData)
		if err != nil {
			s.logger.PrintError(err, map[string]string{
				"context": "order status notification",
			})
		}
	})
}

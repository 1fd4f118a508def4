package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/data/dto"
	"github.com/uofor/circulation/repository"
)

func testBook(available, total int) *data.Book {
	return &data.Book{
		ID:              1,
		Title:           "The Go Programming Language",
		Author:          []string{"Alan A. A. Donovan"},
		Year:            2015,
		TotalCopies:     total,
		AvailableCopies: available,
		IsVisible:       true,
	}
}

func TestRequestOrderDuplicateActive(t *testing.T) {
	repo := &mockRepo{
		getBook: func(bookID int64) (*data.Book, error) { return testBook(1, 1), nil },
		createOrder: func(order *data.BookOrder) error {
			return repository.ErrDuplicateActiveOrder
		},
	}
	s, _ := newTestService(repo)
	_, err := s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 1})
	assert.ErrorIs(t, err, ErrDuplicateActiveOrder)
}

func TestRequestOrderHiddenBook(t *testing.T) {
	repo := &mockRepo{
		getBook: func(bookID int64) (*data.Book, error) {
			book := testBook(1, 1)
			book.IsVisible = false
			return book, nil
		},
	}
	s, _ := newTestService(repo)
	_, err := s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 1})
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestRequestOrderUnknownBook(t *testing.T) {
	repo := &mockRepo{
		getBook: func(bookID int64) (*data.Book, error) { return nil, repository.ErrRecordNotFound },
	}
	s, _ := newTestService(repo)
	_, err := s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 42})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMarkOrderBorrowedPassesDebitDelta(t *testing.T) {
	var gotDelta int
	var gotTarget data.OrderStatus
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusApproved}, nil
		},
		transitionOrder: func(order *data.BookOrder, target data.OrderStatus, delta int) error {
			gotTarget, gotDelta = target, delta
			order.Status = target
			return nil
		},
	}
	s, _ := newTestService(repo)
	order, err := s.MarkOrderBorrowed(1, nil)
	require.NoError(t, err)
	assert.Equal(t, data.OrderStatusBorrowed, gotTarget)
	assert.Equal(t, -1, gotDelta)
	assert.Equal(t, data.OrderStatusBorrowed, order.Status)
}

func TestMarkOrderBorrowedInventoryExhausted(t *testing.T) {
	// The repository refuses the debit; the order must stay APPROVED.
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusApproved}, nil
		},
		transitionOrder: func(order *data.BookOrder, target data.OrderStatus, delta int) error {
			return repository.ErrInventoryExhausted
		},
	}
	s, _ := newTestService(repo)
	_, err := s.MarkOrderBorrowed(1, nil)
	assert.ErrorIs(t, err, ErrInventoryExhausted)
}

func TestTransitionOrderInvalidEdge(t *testing.T) {
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusReturned}, nil
		},
	}
	s, _ := newTestService(repo)
	_, err := s.ApproveOrder(1, nil)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestTransitionOrderBoundedRetry(t *testing.T) {
	reads := 0
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			reads++
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusPending}, nil
		},
		transitionOrder: func(order *data.BookOrder, target data.OrderStatus, delta int) error {
			return repository.ErrEditConflict
		},
	}
	s, _ := newTestService(repo)
	_, err := s.ApproveOrder(1, nil)
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.Equal(t, maxTransitionAttempts, reads)
}

func TestTransitionOrderRetrySucceeds(t *testing.T) {
	attempts := 0
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusPending, Version: int32(attempts)}, nil
		},
		transitionOrder: func(order *data.BookOrder, target data.OrderStatus, delta int) error {
			attempts++
			if attempts == 1 {
				return repository.ErrEditConflict
			}
			order.Status = target
			return nil
		},
	}
	s, _ := newTestService(repo)
	order, err := s.ApproveOrder(1, nil)
	require.NoError(t, err)
	assert.Equal(t, data.OrderStatusApproved, order.Status)
	assert.Equal(t, 2, attempts)
}

func TestTransitionOrderTimeout(t *testing.T) {
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusPending}, nil
		},
		transitionOrder: func(order *data.BookOrder, target data.OrderStatus, delta int) error {
			return context.DeadlineExceeded
		},
	}
	s, _ := newTestService(repo)
	_, err := s.ApproveOrder(1, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCancelOrderOwnerOnly(t *testing.T) {
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusPending}, nil
		},
	}
	s, _ := newTestService(repo)
	_, err := s.CancelOrder(1, 8)
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestCancelOrderPendingOnly(t *testing.T) {
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusApproved}, nil
		},
	}
	s, _ := newTestService(repo)
	_, err := s.CancelOrder(1, 7)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCancelOrderSucceeds(t *testing.T) {
	var gotDelta int
	var gotTarget data.OrderStatus
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusPending}, nil
		},
		transitionOrder: func(order *data.BookOrder, target data.OrderStatus, delta int) error {
			gotTarget, gotDelta = target, delta
			order.Status = target
			return nil
		},
	}
	s, _ := newTestService(repo)
	order, err := s.CancelOrder(1, 7)
	require.NoError(t, err)
	assert.Equal(t, data.OrderStatusRejected, gotTarget)
	assert.Equal(t, 0, gotDelta)
	assert.Equal(t, data.OrderStatusRejected, order.Status)
}

func TestDeleteOrderCreditsBorrowedCopy(t *testing.T) {
	var gotDelta int
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusBorrowed}, nil
		},
		deleteOrder: func(order *data.BookOrder, delta int) error {
			gotDelta = delta
			return nil
		},
	}
	s, _ := newTestService(repo)
	err := s.DeleteOrder(1)
	require.NoError(t, err)
	assert.Equal(t, 1, gotDelta)
}

func TestDeleteOrderNoCreditForNonBorrowed(t *testing.T) {
	var gotDelta int
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusApproved}, nil
		},
		deleteOrder: func(order *data.BookOrder, delta int) error {
			gotDelta = delta
			return nil
		},
	}
	s, _ := newTestService(repo)
	err := s.DeleteOrder(1)
	require.NoError(t, err)
	assert.Equal(t, 0, gotDelta)
}

func TestUpdateOrderNotesTerminalOrder(t *testing.T) {
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusReturned}, nil
		},
	}
	s, _ := newTestService(repo)
	notes := "please extend"
	_, err := s.UpdateOrderNotes(1, &data.Caller{ID: 7, Role: data.RoleStudent}, &notes, nil)
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestUpdateOrderNotesWrongStudent(t *testing.T) {
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusPending}, nil
		},
	}
	s, _ := newTestService(repo)
	notes := "please extend"
	_, err := s.UpdateOrderNotes(1, &data.Caller{ID: 8, Role: data.RoleStudent}, &notes, nil)
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestUpdateOrderNotesAdminNotesRequireAdmin(t *testing.T) {
	repo := &mockRepo{
		getOrder: func(orderID int64) (*data.BookOrder, error) {
			return &data.BookOrder{ID: orderID, BookID: 1, StudentID: 7, Status: data.OrderStatusPending}, nil
		},
	}
	s, _ := newTestService(repo)
	notes := "approved by desk"
	_, err := s.UpdateOrderNotes(1, &data.Caller{ID: 7, Role: data.RoleStudent}, nil, &notes)
	assert.ErrorIs(t, err, ErrNotPermitted)
}

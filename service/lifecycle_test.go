package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/data/dto"
	"github.com/uofor/circulation/repository"
)

// fakeLedger is an in-memory repository.Repository with the same concurrency
// semantics as the SQL implementation: a version check on every order write
// and the inventory preconditions inside one critical section. It lets the
// lifecycle and race tests run the real service code end to end.
type fakeLedger struct {
	mu     sync.Mutex
	books  map[int64]*data.Book
	orders map[int64]*data.BookOrder
	nextID int64
}

func newFakeLedger(books ...*data.Book) *fakeLedger {
	l := &fakeLedger{
		books:  map[int64]*data.Book{},
		orders: map[int64]*data.BookOrder{},
	}
	for _, b := range books {
		l.books[b.ID] = b
	}
	return l
}

func (l *fakeLedger) CreateBook(book *data.Book) error { panic("not implemented") }
func (l *fakeLedger) GetAllBooks(search string, visibleOnly bool, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	panic("not implemented")
}
func (l *fakeLedger) UpdateBook(book *data.Book) error { panic("not implemented") }
func (l *fakeLedger) UpdateBookCapacity(bookID int64, totalCopies, availableCopies int) (*data.Book, error) {
	panic("not implemented")
}
func (l *fakeLedger) DeleteBook(bookID int64) error { panic("not implemented") }
func (l *fakeLedger) GetAllOrders(status string, bookID, studentID int64, filters data.Filters) ([]*data.BookOrder, data.Metadata, error) {
	panic("not implemented")
}
func (l *fakeLedger) UpdateOrderNotes(order *data.BookOrder) error { panic("not implemented") }

func (l *fakeLedger) GetBook(bookID int64) (*data.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	book, ok := l.books[bookID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	copied := *book
	return &copied, nil
}

func (l *fakeLedger) CreateOrder(order *data.BookOrder) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.orders {
		if existing.StudentID == order.StudentID && existing.BookID == order.BookID && !existing.Status.IsTerminal() {
			return repository.ErrDuplicateActiveOrder
		}
	}
	l.nextID++
	order.ID = l.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	order.Version = 1
	copied := *order
	l.orders[order.ID] = &copied
	return nil
}

func (l *fakeLedger) GetOrder(orderID int64) (*data.BookOrder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	order, ok := l.orders[orderID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (l *fakeLedger) TransitionOrder(order *data.BookOrder, target data.OrderStatus, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, ok := l.orders[order.ID]
	if !ok || current.Version != order.Version {
		return repository.ErrEditConflict
	}
	if delta != 0 {
		book, ok := l.books[order.BookID]
		if !ok {
			return repository.ErrRecordNotFound
		}
		if book.AvailableCopies+delta < 0 {
			return repository.ErrInventoryExhausted
		}
		if book.AvailableCopies+delta > book.TotalCopies {
			return repository.ErrCapacityViolation
		}
		book.AvailableCopies += delta
	}
	current.Status = target
	current.AdminNotes = order.AdminNotes
	current.UpdatedAt = time.Now()
	current.Version++
	order.Status = target
	order.UpdatedAt = current.UpdatedAt
	order.Version = current.Version
	return nil
}

func (l *fakeLedger) DeleteOrder(order *data.BookOrder, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	current, ok := l.orders[order.ID]
	if !ok || current.Version != order.Version {
		return repository.ErrEditConflict
	}
	if delta != 0 {
		book, ok := l.books[order.BookID]
		if !ok {
			return repository.ErrRecordNotFound
		}
		if book.AvailableCopies+delta < 0 {
			return repository.ErrInventoryExhausted
		}
		if book.AvailableCopies+delta > book.TotalCopies {
			return repository.ErrCapacityViolation
		}
		book.AvailableCopies += delta
	}
	delete(l.orders, order.ID)
	return nil
}

var _ repository.Repository = (*fakeLedger)(nil)

// Two approved orders racing for the last copy: exactly one borrow succeeds.
func TestConcurrentBorrowOfLastCopy(t *testing.T) {
	ledger := newFakeLedger(testBook(1, 1))
	s, _ := newTestService(ledger)

	first, err := s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 1})
	require.NoError(t, err)
	second, err := s.RequestOrder(8, "", dto.CreateOrderRequestBody{BookID: 1})
	require.NoError(t, err)
	_, err = s.ApproveOrder(first.ID, nil)
	require.NoError(t, err)
	_, err = s.ApproveOrder(second.ID, nil)
	require.NoError(t, err)

	results := make(chan error, 2)
	for _, id := range []int64{first.ID, second.ID} {
		go func(orderID int64) {
			_, err := s.MarkOrderBorrowed(orderID, nil)
			results <- err
		}(id)
	}
	var succeeded, exhausted int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, ErrInventoryExhausted)
			exhausted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, exhausted)

	book, err := ledger.GetBook(1)
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)
}

// Two admins racing to close out the same borrowed order: one wins, the
// other's requested edge is no longer legal after the internal re-read, and
// the copy is credited back exactly once.
func TestConcurrentDecisionOnSameOrder(t *testing.T) {
	ledger := newFakeLedger(testBook(1, 1))
	s, _ := newTestService(ledger)

	order, err := s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 1})
	require.NoError(t, err)
	_, err = s.ApproveOrder(order.ID, nil)
	require.NoError(t, err)
	_, err = s.MarkOrderBorrowed(order.ID, nil)
	require.NoError(t, err)

	results := make(chan error, 2)
	go func() {
		_, err := s.MarkOrderReturned(order.ID, nil)
		results <- err
	}()
	go func() {
		_, err := s.RejectOrder(order.ID, nil)
		results <- err
	}()
	var failures int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			assert.ErrorIs(t, err, ErrInvalidStateTransition)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	final, err := s.GetOrder(order.ID)
	require.NoError(t, err)
	assert.True(t, final.Status.IsTerminal())

	book, err := ledger.GetBook(1)
	require.NoError(t, err)
	assert.Equal(t, 1, book.AvailableCopies)
}

// Full two-student lifecycle over a single-copy book: the failed borrow
// leaves the second order APPROVED and the book untouched, and the copy
// credited by the first student's return can then be lent out again.
func TestTwoStudentLifecycle(t *testing.T) {
	ledger := newFakeLedger(testBook(1, 1))
	s, _ := newTestService(ledger)

	first, err := s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 1})
	require.NoError(t, err)
	second, err := s.RequestOrder(8, "", dto.CreateOrderRequestBody{BookID: 1})
	require.NoError(t, err)

	_, err = s.ApproveOrder(first.ID, nil)
	require.NoError(t, err)
	_, err = s.ApproveOrder(second.ID, nil)
	require.NoError(t, err)

	_, err = s.MarkOrderBorrowed(first.ID, nil)
	require.NoError(t, err)
	book, _ := ledger.GetBook(1)
	assert.Equal(t, 0, book.AvailableCopies)

	_, err = s.MarkOrderBorrowed(second.ID, nil)
	assert.ErrorIs(t, err, ErrInventoryExhausted)
	stuck, _ := s.GetOrder(second.ID)
	assert.Equal(t, data.OrderStatusApproved, stuck.Status)
	book, _ = ledger.GetBook(1)
	assert.Equal(t, 0, book.AvailableCopies)

	_, err = s.MarkOrderReturned(first.ID, nil)
	require.NoError(t, err)
	book, _ = ledger.GetBook(1)
	assert.Equal(t, 1, book.AvailableCopies)

	_, err = s.MarkOrderBorrowed(second.ID, nil)
	require.NoError(t, err)
	book, _ = ledger.GetBook(1)
	assert.Equal(t, 0, book.AvailableCopies)
}

// A student may order the same book again once the previous order reached a
// terminal status, but not before.
func TestOneActiveOrderPerStudentAndBook(t *testing.T) {
	ledger := newFakeLedger(testBook(2, 2))
	s, _ := newTestService(ledger)

	first, err := s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 1})
	require.NoError(t, err)

	_, err = s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 1})
	assert.ErrorIs(t, err, ErrDuplicateActiveOrder)

	_, err = s.CancelOrder(first.ID, 7)
	require.NoError(t, err)

	_, err = s.RequestOrder(7, "", dto.CreateOrderRequestBody{BookID: 1})
	require.NoError(t, err)
}

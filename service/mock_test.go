package service

import (
	"io"
	"sync"

	"github.com/uofor/circulation/config"
	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/internal/jsonlog"
	"github.com/uofor/circulation/internal/mailer"
	"github.com/uofor/circulation/repository"
)

// mockRepo implements repository.Repository with per-test function fields.
// Methods without a function set panic so a test cannot silently depend on
// behaviour it did not stub.
type mockRepo struct {
	createBook         func(book *data.Book) error
	getBook            func(bookID int64) (*data.Book, error)
	getAllBooks        func(search string, visibleOnly bool, filters data.Filters) ([]*data.Book, data.Metadata, error)
	updateBook         func(book *data.Book) error
	updateBookCapacity func(bookID int64, totalCopies, availableCopies int) (*data.Book, error)
	deleteBook         func(bookID int64) error
	createOrder        func(order *data.BookOrder) error
	getOrder           func(orderID int64) (*data.BookOrder, error)
	getAllOrders       func(status string, bookID, studentID int64, filters data.Filters) ([]*data.BookOrder, data.Metadata, error)
	updateOrderNotes   func(order *data.BookOrder) error
	transitionOrder    func(order *data.BookOrder, target data.OrderStatus, delta int) error
	deleteOrder        func(order *data.BookOrder, delta int) error
}

func (m *mockRepo) CreateBook(book *data.Book) error { return m.createBook(book) }
func (m *mockRepo) GetBook(bookID int64) (*data.Book, error) {
	return m.getBook(bookID)
}
func (m *mockRepo) GetAllBooks(search string, visibleOnly bool, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	return m.getAllBooks(search, visibleOnly, filters)
}
func (m *mockRepo) UpdateBook(book *data.Book) error { return m.updateBook(book) }
func (m *mockRepo) UpdateBookCapacity(bookID int64, totalCopies, availableCopies int) (*data.Book, error) {
	return m.updateBookCapacity(bookID, totalCopies, availableCopies)
}
func (m *mockRepo) DeleteBook(bookID int64) error           { return m.deleteBook(bookID) }
func (m *mockRepo) CreateOrder(order *data.BookOrder) error { return m.createOrder(order) }
func (m *mockRepo) GetOrder(orderID int64) (*data.BookOrder, error) {
	return m.getOrder(orderID)
}
func (m *mockRepo) GetAllOrders(status string, bookID, studentID int64, filters data.Filters) ([]*data.BookOrder, data.Metadata, error) {
	return m.getAllOrders(status, bookID, studentID, filters)
}
func (m *mockRepo) UpdateOrderNotes(order *data.BookOrder) error { return m.updateOrderNotes(order) }
func (m *mockRepo) TransitionOrder(order *data.BookOrder, target data.OrderStatus, delta int) error {
	return m.transitionOrder(order, target, delta)
}
func (m *mockRepo) DeleteOrder(order *data.BookOrder, delta int) error {
	return m.deleteOrder(order, delta)
}

var _ repository.Repository = (*mockRepo)(nil)

func newTestService(repo repository.Repository) (*service, *sync.WaitGroup) {
	var wg sync.WaitGroup
	logger := jsonlog.New(io.Discard, jsonlog.LevelError)
	return New(config.Config{}, &wg, logger, repo, mailer.Mailer{}), &wg
}

package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/v1/books", h.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", h.requireAdmin(h.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:bookId", h.showBookHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId", h.requireAdmin(h.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:bookId", h.requireAdmin(h.deleteBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId/cover", h.requireAdmin(h.updateBookCoverHandler))

	router.HandlerFunc(http.MethodGet, "/v1/orders", h.requireCaller(h.listOrdersHandler))
	router.HandlerFunc(http.MethodPost, "/v1/orders", h.requireStudent(h.createOrderHandler))
	router.HandlerFunc(http.MethodGet, "/v1/orders/:orderId", h.requireCaller(h.showOrderHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/orders/:orderId", h.requireCaller(h.updateOrderNotesHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/orders/:orderId", h.requireAdmin(h.deleteOrderHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/orders/:orderId/status", h.requireAdmin(h.transitionOrderHandler))
	router.HandlerFunc(http.MethodPost, "/v1/orders/:orderId/cancel", h.requireStudent(h.cancelOrderHandler))

	router.HandlerFunc(http.MethodGet, "/debug/vars", h.basicAuth(expvar.Handler().ServeHTTP))
	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)

	// Swagger routes
	router.HandlerFunc(http.MethodGet, "/spec", h.handleSwaggerFile())
	router.HandlerFunc(http.MethodGet, "/docs/*any", httpSwagger.Handler(httpSwagger.URL("/spec")))

	return h.recoverPanic(h.enableCORS(h.rateLimit(h.metrics(h.requestID(h.identify(router))))))
}

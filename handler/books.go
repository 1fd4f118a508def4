package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jellydator/ttlcache/v3"
	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/data/dto"
	"github.com/uofor/circulation/internal/validator"
	"github.com/uofor/circulation/service"
)

// CreateBook godoc
// @Summary Add a new book to the catalog
// @Description This endpoint adds a new book and its copy counts to the catalog
// @Tags books
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param body body dto.CreateBookRequestBody true "JSON payload required to create a book"
// @Success 201 {object} data.Book
// @Failure 400
// @Failure 403
// @Failure 422
// @Failure 500
// @Router /v1/books [post]
func (h *Handler) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateBookRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.CreateBook(requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrInvalidCapacity):
			h.invalidCapacityResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/books/%d", book.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"book": book}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowBook godoc
// @Summary Show details of a book
// @Description This endpoint shows the details of a specific book
// @Tags books
// @Accept  json
// @Produce json
// @Param bookId path int true "ID of book to show"
// @Success 200 {object} data.Book
// @Failure 404
// @Failure 500
// @Router /v1/books/{bookId} [get]
func (h *Handler) showBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	// Serve reads from cache where possible. Mutating handlers invalidate the
	// entry, so a hit is at most one TTL stale.
	var book *data.Book
	if item := h.cache.Get(bookID); item != nil {
		book = item.Value()
	} else {
		book, err = h.service.GetBook(bookID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrRecordNotFound):
				h.notFoundResponse(w, r)
			default:
				h.serverErrorResponse(w, r, err)
			}
			return
		}
		h.cache.Set(bookID, book, ttlcache.DefaultTTL)
	}
	caller := h.contextGetCaller(r)
	if !book.IsVisible && !caller.IsAdmin() {
		h.notFoundResponse(w, r)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListBooks godoc
// @Summary List all books
// @Description This endpoint lists catalog books. Non-admin callers only see visible books
// @Tags books
// @Accept  json
// @Produce json
// @Param search query string false "Query string param for title search"
// @Param visible_only query bool false "Restrict the list to visible books"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Param sort query string false "Sort by ascending or descending order. Asc: id, title, year. Desc: -id, -title, -year"
// @Success 200 {array} data.Book
// @Failure 422
// @Failure 500
// @Router /v1/books [get]
func (h *Handler) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListBooks
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Search = h.readString(qs, "search", "")
	qsInput.VisibleOnly = h.readBool(qs, "visible_only", false, v)
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "id")
	qsInput.Filters.SortSafeList = []string{"id", "title", "year", "-id", "-title", "-year"}
	caller := h.contextGetCaller(r)
	if !caller.IsAdmin() {
		qsInput.VisibleOnly = true
	}
	books, metadata, err := h.service.ListBooks(qsInput.Search, qsInput.VisibleOnly, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateBook godoc
// @Summary Update a book
// @Description This endpoint partially updates a book's details and copy counts
// @Tags books
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param bookId path int true "ID of book to update"
// @Param body body dto.UpdateBookRequestBody true "JSON payload required to update a book"
// @Success 200 {object} data.Book
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/books/{bookId} [patch]
func (h *Handler) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateBookRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.UpdateBook(bookID, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrInvalidCapacity):
			h.invalidCapacityResponse(w, r)
		case errors.Is(err, service.ErrCapacityViolation):
			h.capacityViolationResponse(w, r)
		case errors.Is(err, service.ErrConcurrentModification):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	h.cache.Delete(bookID)
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateBookCover godoc
// @Summary Update a book's cover image
// @Description This endpoint uploads a cover image for a book
// @Tags books
// @Accept  mpfd
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param bookId path int true "ID of book to update"
// @Param cover formData file true "Cover image (jpeg or png)"
// @Success 200 {object} data.Book
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 413
// @Failure 415
// @Failure 500
// @Router /v1/books/{bookId}/cover [patch]
func (h *Handler) updateBookCoverHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	book, err := h.service.UpdateBookCover(bookID, r)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrBadRequest):
			h.badRequestResponse(w, r, err)
		case errors.Is(err, service.ErrContentTooLarge):
			h.contentTooLargeResponse(w, r)
		case errors.Is(err, service.ErrUnsupportedMediaType):
			h.unsupportedMediaTypeResponse(w, r)
		case errors.Is(err, service.ErrConcurrentModification):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	h.cache.Delete(bookID)
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteBook godoc
// @Summary Delete a book
// @Description This endpoint deletes a book that has no active orders
// @Tags books
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param bookId path int true "ID of book to delete"
// @Success 200
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/books/{bookId} [delete]
func (h *Handler) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrResourceInUse):
			h.resourceInUseResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	h.cache.Delete(bookID)
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "book successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/uofor/circulation/data"
	"github.com/uofor/circulation/data/dto"
	"github.com/uofor/circulation/internal/validator"
	"github.com/uofor/circulation/service"
)

// CreateOrder godoc
// @Summary Create a new lending order
// @Description This endpoint creates a new lending order in PENDING status for the calling student
// @Tags orders
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param body body dto.CreateOrderRequestBody true "JSON payload required to create an order"
// @Success 201 {object} data.BookOrder
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/orders [post]
func (h *Handler) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateOrderRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	caller := h.contextGetCaller(r)
	order, err := h.service.RequestOrder(caller.ID, caller.Email, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrDuplicateActiveOrder):
			h.duplicateActiveOrderResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/orders/%d", order.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"order": order}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ShowOrder godoc
// @Summary Show details of an order
// @Description This endpoint shows the details of a specific order. Students only see their own orders
// @Tags orders
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param orderId path int true "ID of order to show"
// @Success 200 {object} data.BookOrder
// @Failure 403
// @Failure 404
// @Failure 500
// @Router /v1/orders/{orderId} [get]
func (h *Handler) showOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.readIDParam(r, "orderId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	order, err := h.service.GetOrder(orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	caller := h.contextGetCaller(r)
	if !caller.IsAdmin() && order.StudentID != caller.ID {
		h.notPermittedResponse(w, r)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"order": order}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListOrders godoc
// @Summary List orders
// @Description This endpoint lists orders. Students only see their own orders
// @Tags orders
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param status query string false "Filter by order status (options: PENDING, APPROVED, BORROWED, RETURNED, REJECTED)"
// @Param book_id query int false "Filter by book"
// @Param student_id query int false "Filter by student (admin only)"
// @Param page query int false "Query string param for pagination (min 1)"
// @Param page_size query int false "Query string param for pagination (max 100)"
// @Param sort query string false "Sort by ascending or descending order. Asc: id, created_at. Desc: -id, -created_at"
// @Success 200 {array} data.BookOrder
// @Failure 422
// @Failure 500
// @Router /v1/orders [get]
func (h *Handler) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListOrders
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Status = h.readString(qs, "status", "")
	qsInput.BookID = h.readInt64(qs, "book_id", 0, v)
	qsInput.StudentID = h.readInt64(qs, "student_id", 0, v)
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "id")
	qsInput.Filters.SortSafeList = []string{"id", "created_at", "-id", "-created_at"}
	caller := h.contextGetCaller(r)
	if !caller.IsAdmin() {
		qsInput.StudentID = caller.ID
	}
	orders, metadata, err := h.service.ListOrders(qsInput.Status, qsInput.BookID, qsInput.StudentID, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"orders": orders, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// TransitionOrder godoc
// @Summary Move an order to a new status
// @Description This endpoint applies an admin decision to an order, moving it along the PENDING, APPROVED, BORROWED, RETURNED/REJECTED lifecycle and adjusting the book's available copies where the transition requires it
// @Tags orders
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param orderId path int true "ID of order to transition"
// @Param body body dto.TransitionOrderRequestBody true "Target status and optional admin notes"
// @Success 200 {object} data.BookOrder
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 408
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/orders/{orderId}/status [patch]
func (h *Handler) transitionOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.readIDParam(r, "orderId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.TransitionOrderRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	var order *data.BookOrder
	switch requestBody.Status {
	case data.OrderStatusApproved:
		order, err = h.service.ApproveOrder(orderID, requestBody.AdminNotes)
	case data.OrderStatusBorrowed:
		order, err = h.service.MarkOrderBorrowed(orderID, requestBody.AdminNotes)
	case data.OrderStatusReturned:
		order, err = h.service.MarkOrderReturned(orderID, requestBody.AdminNotes)
	case data.OrderStatusRejected:
		order, err = h.service.RejectOrder(orderID, requestBody.AdminNotes)
	default:
		h.badRequestResponse(w, r, fmt.Errorf("unknown order status %q", requestBody.Status))
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrInvalidStateTransition):
			h.invalidStateTransitionResponse(w, r)
		case errors.Is(err, service.ErrInventoryExhausted):
			h.inventoryExhaustedResponse(w, r)
		case errors.Is(err, service.ErrCapacityViolation):
			h.capacityViolationResponse(w, r)
		case errors.Is(err, service.ErrConcurrentModification):
			h.editConflictResponse(w, r)
		case errors.Is(err, service.ErrTimeout):
			h.timeoutResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	h.cache.Delete(order.BookID)
	err = h.encodeJSON(w, http.StatusOK, envelope{"order": order}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// CancelOrder godoc
// @Summary Cancel a pending order
// @Description This endpoint lets a student cancel their own order while it is still PENDING
// @Tags orders
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param orderId path int true "ID of order to cancel"
// @Success 200 {object} data.BookOrder
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/orders/{orderId}/cancel [post]
func (h *Handler) cancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.readIDParam(r, "orderId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	caller := h.contextGetCaller(r)
	order, err := h.service.CancelOrder(orderID, caller.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrInvalidStateTransition):
			h.invalidStateTransitionResponse(w, r)
		case errors.Is(err, service.ErrConcurrentModification):
			h.editConflictResponse(w, r)
		case errors.Is(err, service.ErrTimeout):
			h.timeoutResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"order": order}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateOrderNotes godoc
// @Summary Update the notes on an order
// @Description This endpoint updates the free-text notes on a non-terminal order. Students edit their own student notes, admins the admin notes
// @Tags orders
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param orderId path int true "ID of order to update"
// @Param body body dto.UpdateOrderNotesRequestBody true "JSON payload with the notes to update"
// @Success 200 {object} data.BookOrder
// @Failure 400
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 422
// @Failure 500
// @Router /v1/orders/{orderId} [patch]
func (h *Handler) updateOrderNotesHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.readIDParam(r, "orderId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.UpdateOrderNotesRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	caller := h.contextGetCaller(r)
	order, err := h.service.UpdateOrderNotes(orderID, caller, requestBody.StudentNotes, requestBody.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrConcurrentModification):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"order": order}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// DeleteOrder godoc
// @Summary Delete an order
// @Description This endpoint deletes an order record. Deleting a BORROWED order credits the copy back to the book
// @Tags orders
// @Accept  json
// @Produce json
// @Param X-Caller-ID header string true "Caller id forwarded by the gateway"
// @Param X-Caller-Role header string true "Caller role forwarded by the gateway"
// @Param orderId path int true "ID of order to delete"
// @Success 200
// @Failure 403
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /v1/orders/{orderId} [delete]
func (h *Handler) deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.readIDParam(r, "orderId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteOrder(orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrConcurrentModification):
			h.editConflictResponse(w, r)
		case errors.Is(err, service.ErrTimeout):
			h.timeoutResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "order successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

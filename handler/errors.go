package handler

import (
	"fmt"
	"net/http"
)

func (h *Handler) logError(r *http.Request, err error) {
	h.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
		"request_id":     requestIDFrom(r),
	})
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := envelope{"error": message}
	err := h.encodeJSON(w, status, env, nil)
	if err != nil {
		h.logError(r, err)
		w.WriteHeader(500)
	}
}

func (h *Handler) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	h.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (h *Handler) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	h.errorResponse(w, r, http.StatusNotFound, message)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	h.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (h *Handler) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (h *Handler) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	h.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

func (h *Handler) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "unable to update the record due to an edit conflict, please try again"
	h.errorResponse(w, r, http.StatusConflict, message)
}

func (h *Handler) notPermittedResponse(w http.ResponseWriter, r *http.Request) {
	message := "your account doesn't have the necessary permissions to access this resource"
	h.errorResponse(w, r, http.StatusForbidden, message)
}

func (h *Handler) identificationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	message := "you must provide a caller identity to access this resource"
	h.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (h *Handler) invalidCallerResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid or malformed caller identity"
	h.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (h *Handler) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	message := "invalid authentication credentials"
	h.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (h *Handler) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	h.errorResponse(w, r, http.StatusTooManyRequests, message)
}

func (h *Handler) contentTooLargeResponse(w http.ResponseWriter, r *http.Request) {
	message := "the request body is too large"
	h.errorResponse(w, r, http.StatusRequestEntityTooLarge, message)
}

func (h *Handler) unsupportedMediaTypeResponse(w http.ResponseWriter, r *http.Request) {
	message := "the file type is not supported for this resource"
	h.errorResponse(w, r, http.StatusUnsupportedMediaType, message)
}

func (h *Handler) duplicateActiveOrderResponse(w http.ResponseWriter, r *http.Request) {
	message := "you already have an active order for this book"
	h.errorResponse(w, r, http.StatusConflict, message)
}

func (h *Handler) invalidStateTransitionResponse(w http.ResponseWriter, r *http.Request) {
	message := "the order cannot move to the requested status from its current status"
	h.errorResponse(w, r, http.StatusUnprocessableEntity, message)
}

func (h *Handler) inventoryExhaustedResponse(w http.ResponseWriter, r *http.Request) {
	message := "no copies of this book are currently available"
	h.errorResponse(w, r, http.StatusConflict, message)
}

func (h *Handler) capacityViolationResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested copy counts conflict with copies currently out on loan"
	h.errorResponse(w, r, http.StatusConflict, message)
}

func (h *Handler) invalidCapacityResponse(w http.ResponseWriter, r *http.Request) {
	message := "copy counts must be non-negative and available copies cannot exceed total copies"
	h.errorResponse(w, r, http.StatusUnprocessableEntity, message)
}

func (h *Handler) resourceInUseResponse(w http.ResponseWriter, r *http.Request) {
	message := "the resource cannot be deleted while orders for it are still active"
	h.errorResponse(w, r, http.StatusConflict, message)
}

func (h *Handler) timeoutResponse(w http.ResponseWriter, r *http.Request) {
	message := "the request could not be completed in time, please try again"
	h.errorResponse(w, r, http.StatusRequestTimeout, message)
}

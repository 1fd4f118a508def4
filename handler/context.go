package handler

import (
	"context"
	"net/http"

	"github.com/uofor/circulation/data"
)

// Type contextKey is a custom contextKey type, with the underlying type string.
// This is necessary to prevent name collisions with external packages.
type contextKey string

const callerContextKey = contextKey("caller")

// contextSetCaller returns a new copy of the request with the provided Caller
// struct added to the context.
func (h *Handler) contextSetCaller(r *http.Request, caller *data.Caller) *http.Request {
	ctx := context.WithValue(r.Context(), callerContextKey, caller)
	return r.WithContext(ctx)
}

// contextGetCaller retrieves the Caller struct from the request context. Every
// route runs behind the identify middleware, so a missing value is firmly an
// 'unexpected' error.
func (h *Handler) contextGetCaller(r *http.Request) *data.Caller {
	caller, ok := r.Context().Value(callerContextKey).(*data.Caller)
	if !ok {
		panic("missing caller value in request context")
	}
	return caller
}

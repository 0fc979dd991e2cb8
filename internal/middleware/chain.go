package middleware

import (
	"net/http"
	"slices"
)

// Chain wraps h so that middlewares run in the order given: the first one
// sees the request first.
//
//	handler := Chain(mux,
//	    RequestID,
//	    RequestLogging,
//	    AuthMiddleware(authService),
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range slices.Backward(middlewares) {
		h = m(h)
	}
	return h
}

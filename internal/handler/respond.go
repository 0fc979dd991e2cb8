package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stockpile-hq/stockpile/internal/ctxkeys"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/service"
)

// maxBodyBytes caps JSON request bodies; uploads have their own limit.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeErrorBody(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, map[string]errorBody{"error": body})
}

// writeError maps service errors onto status codes. Storage failures keep
// their generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		slog.Error("unhandled error", "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		svcErr = &service.Error{Kind: service.KindStorage, Message: "internal storage error"}
	}

	message := svcErr.Message
	if message == "" {
		message = string(svcErr.Kind)
	}
	writeErrorBody(w, statusFor(svcErr.Kind), errorBody{
		Kind:    string(svcErr.Kind),
		Message: message,
		Field:   svcErr.Field,
	})
}

func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindUnsupportedType:
		return http.StatusBadRequest
	case service.KindInvalidValue:
		return http.StatusUnprocessableEntity
	case service.KindTypeMismatch:
		return http.StatusConflict
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into dst. Numbers stay json.Number so
// attribute values are validated from their literal text.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	err := dec.Decode(dst)
	if err != nil {
		message := "invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			message = "request body too large"
		case errors.Is(err, io.EOF):
			message = "request body is required"
		}
		writeErrorBody(w, http.StatusBadRequest, errorBody{Kind: string(service.KindValidation), Message: message})
		return false
	}
	return true
}

// principal is only called behind RequireAuth.
func principal(r *http.Request) model.Principal {
	p, _ := ctxkeys.Principal(r.Context())
	return p
}

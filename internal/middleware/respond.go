package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError matches the error envelope the handlers write.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"kind":    kind,
			"message": message,
		},
	})
}

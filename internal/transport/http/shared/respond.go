// Package shared centralizes JSON response writing so every handler returns
// the same envelopes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "carepath/pkg/domain-errors"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into the JSON error envelope. Errors
// without a domain code map to 500 with a generic detail.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	detail := "internal server error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		detail = de.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":  string(code),
		"detail": detail,
	})
}

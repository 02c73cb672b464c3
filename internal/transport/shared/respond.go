// Package shared holds the JSON response helpers used by every handler.
package shared

import (
	"encoding/json"
	"net/http"

	"idreclaim/pkg/domainerrors"
)

// WriteJSON serializes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// WriteError maps a domain error to its HTTP status and uniform body. Only the
// caller-safe message is surfaced; internal causes stay in the logs.
func WriteError(w http.ResponseWriter, err error) {
	code := domainerrors.CodeOf(err)
	WriteJSON(w, domainerrors.ToHTTPStatus(code), ErrorResponse{
		Error:       string(code),
		Description: domainerrors.MessageOf(err),
	})
}

// DecodeJSON parses a request body, translating failures into a validation
// error the caller can surface directly.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domainerrors.New(domainerrors.CodeValidation, "invalid request body")
	}
	return nil
}

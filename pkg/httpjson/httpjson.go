// Package httpjson writes and reads JSON bodies for the HTTP handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps request bodies read by Decode
const MaxBodyBytes = 1 << 20

// ErrorBody is the shape of every error response
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Write encodes v with the given status
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes an ErrorBody
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, ErrorBody{Error: message})
}

// FieldError writes an ErrorBody naming the rejected field
func FieldError(w http.ResponseWriter, status int, field, message string) {
	Write(w, status, ErrorBody{Error: message, Field: field})
}

// Decode reads a single JSON object into v, rejecting unknown fields
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

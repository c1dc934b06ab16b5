// Package respond writes the JSON bodies shared by handlers and middleware.
package respond

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the "error" field.
const (
	CodeInvalidRequest         = "invalid_request"
	CodeValidationFailed       = "validation_failed"
	CodeDuplicateEmail         = "duplicate_email"
	CodeInvalidCredentials     = "invalid_credentials"
	CodeEmailTaken             = "email_taken"
	CodeInvalidCurrentPassword = "invalid_current_password"
	CodeUnauthorized           = "unauthorized"
	CodeInternal               = "internal_error"
)

type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: code, Message: message})
}

func Message(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, MessageBody{Message: message})
}

// Unauthorized is the one body every failed access check produces.
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	Error(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
}

func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

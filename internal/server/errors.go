package server

import (
	"encoding/json"
	"net/http"
)

// HTTPErrorResponse is the JSON error envelope for all non-2xx responses.
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// HTTPError carries a stable machine-readable code and a human message.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stable error codes.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeInternal         = "INTERNAL"
)

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{
		Error: HTTPError{Code: code, Message: message},
	})
}

// writeJSON writes a 2xx JSON body.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, "resource not found")
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

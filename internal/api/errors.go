package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	wserrors "wordsmith/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
	Hint    string      `json:"hint,omitempty"`
}

// WriteError writes err as JSON with the given status
func WriteError(w http.ResponseWriter, err error, status int) {
	resp := ErrorResponse{
		Error: err.Error(),
		Code:  string(wserrors.InternalError),
	}

	var coded *wserrors.Error
	if stderrors.As(err, &coded) {
		resp.Error = coded.Message
		resp.Code = string(coded.Code)
		resp.Details = coded.Details
		resp.Hint = coded.Hint
	}

	WriteJSON(w, resp, status)
}

// WriteCodedError writes err with a status derived from its error code
func WriteCodedError(w http.ResponseWriter, err error) {
	WriteError(w, err, MapErrorToStatus(wserrors.CodeOf(err)))
}

// MapErrorToStatus maps error codes to HTTP status codes
func MapErrorToStatus(code wserrors.ErrorCode) int {
	switch code {
	case wserrors.InvalidInput:
		return http.StatusBadRequest
	case wserrors.UnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case wserrors.StorageUnavailable, wserrors.DictionaryUnavailable:
		return http.StatusServiceUnavailable
	case wserrors.ConfigInvalid, wserrors.InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, wserrors.New(wserrors.InvalidInput, message, nil), http.StatusBadRequest)
}

// MethodNotAllowed writes a 405 naming the allowed method
func MethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteError(w, wserrors.New(wserrors.InvalidInput, "method not allowed", nil), http.StatusMethodNotAllowed)
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteError(w, wserrors.New(wserrors.InternalError, message, err), http.StatusInternalServerError)
}

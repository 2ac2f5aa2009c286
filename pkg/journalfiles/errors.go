package journalfiles

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for common API error conditions.
var (
	// ErrNotFound is returned when the server responds with 404 Not Found.
	ErrNotFound = errors.New("journalfiles: not found")
	// ErrBadRequest is returned when the server responds with 400 Bad Request.
	ErrBadRequest = errors.New("journalfiles: bad request")
	// ErrServer is returned for 5xx responses once retries are exhausted.
	ErrServer = errors.New("journalfiles: server error")
)

// APIError represents an error returned by the download service.
// It implements the error interface and supports errors.Is() via Unwrap().
type APIError struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
	// Message is the error message from the server.
	Message string
	// Details carries the attempted sources for file-not-found responses.
	Details map[string]any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("journalfiles: API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the matching sentinel error for the status code.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 404:
		return ErrNotFound
	case e.StatusCode == 400:
		return ErrBadRequest
	case e.StatusCode >= 500:
		return ErrServer
	default:
		return nil
	}
}

// serverErrorResponse is used to parse the server's {"message": "...", "details": {...}} body.
type serverErrorResponse struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// newAPIError parses the server error response body and returns a wrapped *APIError.
func newAPIError(statusCode int, body []byte) error {
	var resp serverErrorResponse
	msg := string(body)
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		msg = resp.Message
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    msg,
		Details:    resp.Details,
	}
}

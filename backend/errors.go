package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultUserMessage is shown for every failure the backend did not explain
const DefaultUserMessage = "An error occurred."

// ErrMissingFields is returned when a success body lacks the response text
var ErrMissingFields = errors.New("backend response is missing required fields")

// Error is a non-2xx answer from the inference backend
type Error struct {
	StatusCode int
	// Message is the body's "error" field, empty when absent
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// UserMessage maps any lookup failure to the single line shown to the user:
// the backend's own error text when it sent one, otherwise DefaultUserMessage.
func UserMessage(err error) string {
	var be *Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return DefaultUserMessage
}

// StatusCode returns the HTTP status to relay for err: the backend's own
// status, or 502 when the backend could not be reached or understood.
func StatusCode(err error) int {
	var be *Error
	if errors.As(err, &be) && be.StatusCode >= 400 {
		return be.StatusCode
	}
	return http.StatusBadGateway
}

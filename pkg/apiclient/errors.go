package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

const fallbackMessage = "Something went wrong"

// Error is a non-2xx response decoded from the {message, error} envelope.
type Error struct {
	Status  int
	Message string
	Detail  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Display())
}

// Display is the text to show a user.
func (e *Error) Display() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	default:
		return fallbackMessage
	}
}

func newError(status int, body []byte) *Error {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &env)
	return &Error{Status: status, Message: env.Message, Detail: env.Error}
}

// Display renders any error for a user, unwrapping API errors.
func Display(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Display()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}

// StatusOf returns the HTTP status of an API error, or 0.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

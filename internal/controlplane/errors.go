package controlplane

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a failed control-plane call. StatusCode is zero when the
// request never produced a response.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("control plane request failed: %v", e.Err)
	}
	return fmt.Sprintf("control plane API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Temporary reports whether repeating the call may succeed.
func (e *APIError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= 500
	}
}

// newAPIError builds an error from a non-2xx response. The message is the
// detail or error field of a JSON body, else the status text.
func newAPIError(statusCode int, body []byte) *APIError {
	msg := http.StatusText(statusCode)

	var doc struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &doc); err == nil {
		switch {
		case doc.Detail != "":
			msg = doc.Detail
		case doc.Error != "":
			msg = doc.Error
		}
	}

	return &APIError{StatusCode: statusCode, Message: msg, Body: string(body)}
}

package client

import "fmt"

// maxExcerpt bounds the body excerpt kept on a DecodeError.
const maxExcerpt = 200

// APIError represents a non-2xx response from the sheet API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// DecodeError is returned when a 2xx response body is not the expected JSON.
type DecodeError struct {
	Body string
	Err  error
}

func newDecodeError(body []byte, err error) *DecodeError {
	excerpt := body
	if len(excerpt) > maxExcerpt {
		excerpt = excerpt[:maxExcerpt]
	}
	return &DecodeError{Body: string(excerpt), Err: err}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response: %v (body: %q)", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ActionError is returned when an action responds with success=false.
type ActionError struct {
	Action  string
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

// defaultActionMessages is used when a failed action carries no error text.
var defaultActionMessages = map[string]string{
	ActionUpdateRow:         "Update failed",
	ActionTriggerLeadUpdate: "Lead update failed",
	ActionDismissAlert:      "Dismiss failed",
	ActionOpenCallForm:      "Failed to generate call form URL",
}

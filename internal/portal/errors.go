package portal

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnexpectedFormat means the response body matched none of the envelope
// shapes this client knows how to read.
var ErrUnexpectedFormat = errors.New("unexpected response format")

// APIError carries an HTTP error response from the portal backend: the
// status code, a best-effort human-readable message, and whatever structured
// payload could be recovered for programmatic inspection.
type APIError struct {
	Status  int
	Message string
	Body    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal: %s (status %d)", e.Message, e.Status)
}

// newAPIError builds an APIError from a non-2xx response. It tries to parse
// the body as JSON and pull a message/error field; failing that it falls back
// to the raw body text, then to the status line.
func newAPIError(status int, statusLine string, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: statusLine}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Body = parsed
		if msg, ok := parsed["message"].(string); ok && msg != "" {
			apiErr.Message = msg
			return apiErr
		}
		if msg, ok := parsed["error"].(string); ok && msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	if len(body) > 0 {
		apiErr.Message = string(body)
	}
	return apiErr
}

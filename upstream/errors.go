package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError is one validation message for a single field.
type FieldError struct {
	Message string `json:"message"`
}

// ErrorDocument is the server's validation error body, keyed by field name.
type ErrorDocument map[string][]FieldError

// APIError is a non-2xx response from the commerce API. For 422 responses
// Errors carries the parsed validation document verbatim so the view layer
// can map field names to inline messages.
type APIError struct {
	StatusCode int
	Errors     ErrorDocument
}

func (e *APIError) Error() string {
	if e.IsValidation() {
		return fmt.Sprintf("upstream validation failed (%d fields)", len(e.Errors))
	}
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// IsValidation reports whether the failure is a 422 validation rejection.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// AsAPIError unwraps err into an *APIError if there is one in its chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

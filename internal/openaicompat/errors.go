package openaicompat

import (
	"errors"
	"fmt"
)

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.URL, e.StatusCode, truncate(e.Body, 512))
}

// Retryable reports whether the failure is worth another attempt.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ShapeError is returned when a 2xx response matches none of the known
// response layouts.
type ShapeError struct {
	Kind string
	Body string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected %s response shape: %s", e.Kind, truncate(e.Body, 512))
}

// IsCollaboratorError reports whether err came from the remote service rather
// than from local validation.
func IsCollaboratorError(err error) bool {
	var apiErr *APIError
	var shapeErr *ShapeError
	return errors.As(err, &apiErr) || errors.As(err, &shapeErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

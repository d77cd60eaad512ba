package generator

import (
	"fmt"
	"strings"
)

// PostTypeNotAllowedError is returned when the requested post type is
// disabled in the generation configuration.
type PostTypeNotAllowedError struct {
	PostType string
	Allowed  []string
}

func (e *PostTypeNotAllowedError) Error() string {
	return fmt.Sprintf("post type %q is not enabled (allowed: %s)", e.PostType, strings.Join(e.Allowed, ", "))
}

// ProviderUnavailableError is returned when every generation attempt failed,
// including the fallback model.
type ProviderUnavailableError struct {
	Attempts int
	LastErr  error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.LastErr }

// MalformedResponseError is returned when the model's output cannot be
// parsed into a draft. Raw carries the offending text for diagnostics.
type MalformedResponseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Package provider holds the LLM vendor clients. Each vendor implements the
// Provider interface over raw HTTP; the Registry routes a configured model
// label to the right client.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// CompletionRequest is a single non-streaming text completion.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Provider is a single LLM vendor backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// apiError is returned for non-2xx vendor responses.
type apiError struct {
	provider string
	status   int
	body     string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.provider, e.status, e.body)
}

// NewAPIError builds a vendor error carrying an HTTP status, for callers
// that classify failures by status code.
func NewAPIError(provider string, status int, body string) error {
	return &apiError{provider: provider, status: status, body: body}
}

// StatusCode returns the HTTP status of a vendor error, or 0 when err is not
// a vendor API error.
func StatusCode(err error) int {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status
	}
	return 0
}

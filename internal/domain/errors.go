package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals a query that cannot be processed (empty, too long).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidProduct signals a catalog record that cannot be indexed.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrProviderError signals a chat or embedding provider failure.
	ErrProviderError = errors.New("model provider error")
	// ErrMalformedResponse signals a provider answer that does not match the requested format.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrGenerationFailed signals that the final answer could not be generated.
	ErrGenerationFailed = errors.New("could not generate a response")
)

// CapabilityError tags a provider failure with the capability that was being exercised.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Capability, e.Err.Error())
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// NewCapabilityError wraps err with the capability name.
func NewCapabilityError(capability string, err error) error {
	return &CapabilityError{Capability: capability, Err: err}
}

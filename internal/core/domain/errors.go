package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidConfiguration indicates caller-fixable misconfiguration,
	// such as a chunk overlap that is not smaller than the chunk size or a
	// prompt template variable that was never supplied. Never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrProvider indicates an upstream embedding or generation failure.
	// Embedding batch failures may be retried by the caller at batch or
	// split-batch granularity; generation failures are never auto-retried.
	ErrProvider = errors.New("provider failure")

	// ErrProviderTimeout indicates a provider call exceeded its deadline.
	// It matches ErrProvider under errors.Is so retry policies treat it as
	// a provider failure subtype.
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrSchemaConflict indicates a vector collection already exists with a
	// different dimension or distance metric. Fatal: the caller must delete
	// and recreate the collection to change embedding model.
	ErrSchemaConflict = errors.New("collection schema conflict")

	// ErrCollectionNotFound indicates a search or answer was attempted
	// before the project was ever indexed. Surfaced to the user as an
	// "index this project first" condition, never an empty result.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrTemplateNotFound indicates a prompt template is missing in both
	// the requested and the default locale. A deployment bug.
	ErrTemplateNotFound = errors.New("prompt template not found")
)

// ProviderError carries the raw diagnostic of a failed provider call so the
// caller can decide whether to retry, split the batch, or abort.
type ProviderError struct {
	// Provider names the upstream service ("openai", "cohere", "ollama").
	Provider string

	// Op is the failed operation ("embed", "generate", "ping").
	Op string

	// StatusCode is the HTTP status when known, zero otherwise.
	StatusCode int

	// FailedIndex is the index of the first failing input in a batch call,
	// or -1 when the failure is not attributable to a single input.
	FailedIndex int

	// Message is the provider's raw diagnostic.
	Message string

	// Timeout marks deadline expiry; such errors match ErrProviderTimeout.
	Timeout bool
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.FailedIndex >= 0 {
		return fmt.Sprintf("%s %s failed at input %d: %s", e.Provider, e.Op, e.FailedIndex, e.Message)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Provider, e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Op, e.Message)
}

// Is routes errors.Is matching to the provider sentinels.
func (e *ProviderError) Is(target error) bool {
	if target == ErrProvider {
		return true
	}
	if target == ErrProviderTimeout {
		return e.Timeout
	}
	return false
}

// NewProviderError builds a ProviderError for a failure that is not tied to
// a specific batch input.
func NewProviderError(provider, op, message string) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, FailedIndex: -1, Message: message}
}

package types

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyDocument          = errors.New("document contains no readable text")
	ErrInvalidChunkConfig     = errors.New("invalid chunk configuration")
	ErrEmbeddingService       = errors.New("embedding service error")
	ErrSynthesis              = errors.New("answer synthesis failed")
	ErrEmptyQuery             = errors.New("query is empty")
	ErrEmbeddingModelMismatch = errors.New("query embedder differs from the index embedder")
	ErrSessionNotFound        = errors.New("session not found")
)

// ChunkConfigError reports which chunk parameters were rejected.
type ChunkConfigError struct {
	ChunkSize    int
	ChunkOverlap int
}

func (e *ChunkConfigError) Error() string {
	return fmt.Sprintf("%s: chunk_size=%d chunk_overlap=%d (need 0 <= overlap < size)",
		ErrInvalidChunkConfig, e.ChunkSize, e.ChunkOverlap)
}

func (e *ChunkConfigError) Is(target error) bool {
	return target == ErrInvalidChunkConfig
}

// EmbeddingServiceError wraps a provider failure during index build or query
// embedding. StatusCode is the provider HTTP status when known.
type EmbeddingServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *EmbeddingServiceError) Error() string {
	if e.CredentialRejected() {
		return fmt.Sprintf("%s: %s: credential rejected", ErrEmbeddingService, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", ErrEmbeddingService, e.Op, e.Err)
}

func (e *EmbeddingServiceError) Unwrap() error {
	return e.Err
}

func (e *EmbeddingServiceError) Is(target error) bool {
	return target == ErrEmbeddingService
}

func (e *EmbeddingServiceError) CredentialRejected() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// SynthesisError keeps the retrieval the failed answer was grounded on, so
// callers can still show the excerpts or retry with the same context.
type SynthesisError struct {
	Retrieved  RetrievalResult
	StatusCode int
	Err        error
}

func (e *SynthesisError) Error() string {
	if e.CredentialRejected() {
		return fmt.Sprintf("%s: credential rejected", ErrSynthesis)
	}
	return fmt.Sprintf("%s: %v", ErrSynthesis, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func (e *SynthesisError) Is(target error) bool {
	return target == ErrSynthesis
}

func (e *SynthesisError) CredentialRejected() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ProviderError is returned by embedding and completion adapters so the
// pipeline can classify failures without importing provider SDKs.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the provider HTTP status from err, or 0.
func StatusCode(err error) int {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.StatusCode
	}
	return 0
}

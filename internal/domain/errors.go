package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrIndexNotFound signals a missing index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexExists signals a duplicate index.
	ErrIndexExists = errors.New("index already exists")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidSchema signals an invalid schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidQuery signals a malformed search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrVersionConflict signals an optimistic locking conflict.
	ErrVersionConflict = errors.New("version conflict")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorSearchNotConfigured signals a kNN query without an embedder.
	ErrVectorSearchNotConfigured = errors.New("vector search not configured")
)

// ConflictMessagePrefix prefixes every translated optimistic locking failure.
const ConflictMessagePrefix = "version conflict: seq_no/primary_term mismatch"

// ConflictError wraps ErrVersionConflict with the seq_no and primary_term the
// engine reported for the current document. SeqNo/PrimaryTerm are -1 when
// they could not be extracted from the engine reason.
type ConflictError struct {
	SeqNo       int64
	PrimaryTerm int64
	Cause       error
}

func (e *ConflictError) Error() string {
	if e.SeqNo < 0 {
		return fmt.Sprintf("%s: %v", ConflictMessagePrefix, e.Cause)
	}
	return fmt.Sprintf("%s: current document has seq_no %d and primary_term %d: %v",
		ConflictMessagePrefix, e.SeqNo, e.PrimaryTerm, e.Cause)
}

func (e *ConflictError) Unwrap() []error { return []error{ErrVersionConflict, e.Cause} }

// NewConflict creates an optimistic locking failure keeping cause as the
// original engine error.
func NewConflict(seqNo, primaryTerm int64, cause error) error {
	return &ConflictError{SeqNo: seqNo, PrimaryTerm: primaryTerm, Cause: cause}
}

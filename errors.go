package esbind

import "github.com/esbind-io/esbind/internal/domain"

// Sentinel errors for errors.Is checks against any operation of this package.
var (
	// ErrIndexNotFound reports an operation against a missing index.
	ErrIndexNotFound = domain.ErrIndexNotFound
	// ErrIndexExists reports a Create against an index that already exists.
	ErrIndexExists = domain.ErrIndexExists
	// ErrDocumentNotFound reports a read of a missing document.
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	// ErrVersionConflict reports an optimistic locking failure. Inspect the
	// wrapped *ConflictError for the engine's current seq_no/primary_term.
	ErrVersionConflict = domain.ErrVersionConflict
	// ErrInvalidSchema reports a model or source that violates the declared schema.
	ErrInvalidSchema = domain.ErrInvalidSchema
	// ErrInvalidQuery reports a malformed search request.
	ErrInvalidQuery = domain.ErrInvalidQuery
	// ErrEmbeddingProviderError reports an embedding backend failure.
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	// ErrVectorSearchNotConfigured reports knn/hybrid search without an embedder.
	ErrVectorSearchNotConfigured = domain.ErrVectorSearchNotConfigured
)

// ConflictError carries the engine's current seq_no and primary_term on an
// optimistic locking failure. Matches ErrVersionConflict via errors.Is.
type ConflictError = domain.ConflictError

// ConflictMessagePrefix prefixes every version conflict error message.
const ConflictMessagePrefix = domain.ConflictMessagePrefix

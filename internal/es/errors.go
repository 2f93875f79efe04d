package es

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine operations.
var (
	ErrIndexNotFound = errors.New("es: index not found")
	ErrIndexExists   = errors.New("es: index already exists")
	ErrDocNotFound   = errors.New("es: document not found")
	ErrConflict      = errors.New("es: version conflict")
	ErrBadRequest    = errors.New("es: bad request")
)

// Op constants map to engine API endpoints for error context.
const (
	OpIndicesCreate     = "indices.create"
	OpIndicesDelete     = "indices.delete"
	OpIndicesExists     = "indices.exists"
	OpIndicesPutMapping = "indices.put_mapping"
	OpIndicesPutAlias   = "indices.put_alias"
	OpIndicesRefresh    = "indices.refresh"
	OpIndex             = "index"
	OpGet               = "get"
	OpUpdate            = "update"
	OpDelete            = "delete"
	OpExists            = "exists"
	OpBulk              = "bulk"
	OpSearch            = "search"
	OpCount             = "count"
	OpDeleteByQuery     = "delete_by_query"
	OpReindex           = "reindex"
	OpPing              = "ping"
	OpInfo              = "info"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ServerError is the structured fault the engine returned: HTTP status plus
// the error type and human-readable reason from the response body. It is the
// original engine exception that translated errors keep as their cause.
type ServerError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *ServerError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

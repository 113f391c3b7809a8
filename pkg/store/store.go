package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no record exists for a tenant identifier.
var ErrNotFound = errors.New("definition not found")

// Encoding values for Record.Encoding.
const (
	// EncodingIdentity marks a plain YAML definition blob.
	EncodingIdentity = "identity"

	// EncodingBrotli marks a brotli-compressed YAML definition blob.
	EncodingBrotli = "br"
)

// Record is a stored application definition.
type Record struct {
	// ID is the tenant identifier the record is keyed by.
	ID string

	// Title is a human readable name, copied from the definition on write.
	Title string

	// Definition is the serialized application definition. An empty
	// Definition is treated by readers as if no record existed.
	Definition []byte

	// Encoding describes how Definition is encoded (EncodingIdentity or
	// EncodingBrotli). Empty means EncodingIdentity.
	Encoding string

	// UpdatedAt is the time the record was last written.
	UpdatedAt time.Time
}

// HasDefinition reports whether the record carries a definition blob.
func (r *Record) HasDefinition() bool {
	return r != nil && len(r.Definition) > 0
}

// Reader looks definitions up by tenant identifier.
type Reader interface {
	// FindDefinition returns the record stored under id, or ErrNotFound.
	FindDefinition(ctx context.Context, id string) (*Record, error)

	// ListIDs returns all stored tenant identifiers in ascending order.
	ListIDs(ctx context.Context) ([]string, error)
}

// Writer stores and removes definitions. It is not used by the dispatch path.
type Writer interface {
	// PutDefinition inserts or replaces the record with rec.ID.
	PutDefinition(ctx context.Context, rec *Record) error

	// DeleteDefinition removes the record stored under id, or returns
	// ErrNotFound.
	DeleteDefinition(ctx context.Context, id string) error
}

// Store is a Reader and Writer that holds resources until closed.
type Store interface {
	Reader
	Writer
	Close() error
}

// StorageError wraps a backend failure with the operation that failed.
type StorageError struct {
	Backend   string
	Operation string
	Err       error
}

func (e *StorageError) Error() string {
	return e.Backend + " " + e.Operation + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, err error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Err: err}
}

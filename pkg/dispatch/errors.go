package dispatch

import "errors"

var (
	// ErrTenantNotFound is returned when the store has no usable definition
	// for a tenant, or the store could not be read.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrBuildFailed is returned when a stored definition could not be
	// decoded or built into a handler.
	ErrBuildFailed = errors.New("tenant build failed")
)

package store

import "errors"

var (
	// ErrValidation marks a malformed input record. The record is skipped
	// and counted; the batch continues.
	ErrValidation = errors.New("invalid record")

	// ErrConnectivity marks an unreachable or failing database. Fatal for
	// the run; the run is safe to repeat because writes are idempotent.
	ErrConnectivity = errors.New("database connectivity")
)

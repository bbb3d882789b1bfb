package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrCapacityExceeded indicates the store is full and no entry could be
	// evicted to make room.
	ErrCapacityExceeded = errors.New("repository: capacity exceeded")
)

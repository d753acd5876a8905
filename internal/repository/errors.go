package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write loses a unique-constraint race.
	ErrConflict = errors.New("unique constraint conflict")
)

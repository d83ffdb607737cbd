package repository

import "errors"

// Sentinel errors shared by all store implementations. Postgres
// implementations translate driver errors into these so services stay
// storage-agnostic.
var (
	// ErrNotFound indicates an unknown entity id.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateID indicates an insert with an id that already exists.
	ErrDuplicateID = errors.New("entity id already exists")

	// ErrStatusConflict indicates a compare-and-swap update lost a race:
	// the entity's stored status no longer matches the expected status.
	ErrStatusConflict = errors.New("entity status changed concurrently")
)

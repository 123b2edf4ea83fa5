package models

import "errors"

// Error kinds surfaced by the credential and profile store. All of them
// are recoverable at the handler boundary; none is fatal to the process.
var (
	// ErrDuplicateUsername is returned when a create (or username change)
	// collides with an existing username. Enforced by the storage tier's
	// unique index, not an application-level lock.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrHashingFailure is returned when salt generation or hashing fails.
	// The write is aborted entirely; nothing is persisted.
	ErrHashingFailure = errors.New("password hashing failed")

	// ErrCredentialFormat is returned when a stored hash is malformed.
	// Distinct from a failed match so operators can spot data corruption.
	ErrCredentialFormat = errors.New("stored credential is malformed")

	// ErrNotFound is returned by lookups with no matching user.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredentials is the service-level result for a failed
	// login. It covers both a wrong password and an unknown username so
	// the response never reveals which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrStorageUnavailable wraps storage-layer faults (connection loss
	// and the like), kept separate from credential errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

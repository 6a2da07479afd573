package apperr

import "errors"

// Sentinel error kinds for the lab engine. Services wrap these with
// fmt.Errorf("...: %w", ...) so controllers can map them to HTTP statuses
// with errors.Is while keeping the wrapped detail.
var (
	// ErrNotFound covers unknown or inactive modules and labs.
	ErrNotFound = errors.New("not found")

	// ErrForbidden covers premium labs requested without entitlement.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation covers a CTF flag mismatch on a completion attempt or
	// malformed input such as an out-of-range score.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned once the optimistic version-check retries are
	// exhausted. Safe for the caller to retry.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrStorage covers underlying persistence failures. Mutations commit
	// all-or-nothing, so no partial write survives this.
	ErrStorage = errors.New("storage unavailable")
)

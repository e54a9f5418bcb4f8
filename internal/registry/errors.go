package registry

import "errors"

// Sentinel kinds for lifecycle errors. Callers branch with errors.Is;
// the HTTP adapter maps each to a status code.
var (
	// ErrValidation marks malformed input, e.g. an empty description.
	// Caller's fault, never retried automatically.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState marks a transition attempted from a state that
	// does not allow it. The stored status is unchanged, so the caller
	// can show the current state instead of retrying blindly.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrForbidden marks a developer-only transition attempted by
	// someone other than the assignee.
	ErrForbidden = errors.New("caller is not the assignee")
)

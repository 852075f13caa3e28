package services

import "errors"

// Service-level error kinds. Handlers map these to HTTP statuses; the
// store's ErrNotFound passes through for missing or not-owned resources.
var (
	// ErrInvalidInput reports missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict reports a username or email uniqueness violation.
	ErrConflict = errors.New("conflict")

	// ErrWeakPassword reports a password rejected by the configured policy.
	ErrWeakPassword = errors.New("weak password")

	// ErrInvalidCredentials is returned for both unknown usernames and
	// wrong passwords so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// kindError carries a caller-facing message while matching its kind
// through errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func invalidInput(msg string) error {
	return &kindError{kind: ErrInvalidInput, msg: msg}
}

func conflict(msg string) error {
	return &kindError{kind: ErrConflict, msg: msg}
}

func weakPassword(msg string) error {
	return &kindError{kind: ErrWeakPassword, msg: msg}
}

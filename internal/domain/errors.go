package domain

import "errors"

var (
	// ErrValidation flags input the caller can correct locally (bad length,
	// mismatched confirmation, unknown account type).
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateUser is returned when a username is already taken.
	ErrDuplicateUser = errors.New("username already exists")
	// ErrDuplicateQuiz is returned when an imported document name collides
	// with one already in the catalog.
	ErrDuplicateQuiz = errors.New("a quiz with this name already exists")
	// ErrAuth is deliberately uninformative to avoid username enumeration.
	ErrAuth = errors.New("invalid username or password")
	// ErrSamePassword rejects a password change that keeps the old password.
	ErrSamePassword = errors.New("new password cannot be the same as the old password")
	// ErrInvalidState signals misuse of the session state machine.
	ErrInvalidState = errors.New("operation not allowed in current session state")
	// ErrPersistence wraps storage layer failures; no automatic retry.
	ErrPersistence = errors.New("storage failure")
	// ErrUserNotFound indicates an unknown account lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuizNotFound indicates the requested quiz is not in the catalog.
	ErrQuizNotFound = errors.New("quiz not found")
)

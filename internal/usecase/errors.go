package usecase

import "errors"

// Service error taxonomy. Handlers map these to HTTP statuses; anything else
// is treated as an internal error.
var (
	// ErrUserExists - registration hit an existing username or email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials - bad username or password. Deliberately one
	// error for both so responses never reveal which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotificationFailed - the OTP email could not be dispatched.
	ErrNotificationFailed = errors.New("failed to send OTP")
	// ErrChallengeNotFound - no pending code exists for the user.
	ErrChallengeNotFound = errors.New("OTP not found or expired")
	// ErrChallengeExpired - the pending code has passed its expiry.
	ErrChallengeExpired = errors.New("OTP expired")
	// ErrInvalidCode - submitted code does not match the stored one.
	ErrInvalidCode = errors.New("invalid OTP")
	// ErrUserNotFound - the referenced user id does not resolve.
	ErrUserNotFound = errors.New("user not found")
)

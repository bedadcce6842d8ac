// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/transport layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrConfiguration indicates missing or malformed startup configuration (keys, secrets).
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput indicates a caller error: empty values or malformed encoding.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthenticationFailure indicates that an AEAD tag did not verify (tampering or wrong key).
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrTokenParse indicates a malformed, badly signed or expired bearer token.
	ErrTokenParse = errors.New("token parse failure")

	// ErrTokenRevoked indicates the token is on the blacklist.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrSessionInactive indicates the token was just revoked for inactivity.
	ErrSessionInactive = errors.New("session expired due to inactivity")

	// ErrSensitiveData is the only failure surfaced to users when a protected field
	// cannot be encrypted or decrypted.
	ErrSensitiveData = errors.New("could not process sensitive data")
)

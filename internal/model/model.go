// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens is what a successful login hands back to the client.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User is an account able to log in. Passwords are stored as encoded argon2id hashes only.
type User struct {
	ID           uuid.UUID // PK
	Email        string    // unique, lower-cased
	CustomerCode string
	PwdHash      string
	CreatedAt    time.Time
}

// Sale is a recorded purchase. CardNumber is plaintext in memory and encrypted at rest.
type Sale struct {
	ID           uuid.UUID
	CustomerCode string
	AmountCents  int64
	CardNumber   string
	CreatedAt    time.Time
}

// BlacklistEntry is a revoked token, keyed by the SHA-256 hex digest of the raw token.
type BlacklistEntry struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time // mirrors the token's own exp claim
	CreatedAt time.Time
}

// ActivityRecord tracks the last time a token was admitted.
type ActivityRecord struct {
	TokenHash      string
	UserID         string
	CreatedAt      time.Time
	LastActivityAt time.Time
}

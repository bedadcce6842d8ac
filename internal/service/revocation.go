package service

import (
	"context"
	"fmt"
	"time"

	pkgcrypto "github.com/and161185/salesgate/internal/crypto"
	"github.com/and161185/salesgate/internal/model"
	"github.com/and161185/salesgate/internal/repository"
	"github.com/and161185/salesgate/internal/token"
)

// RevocationStore is a deny-list of tokens keyed by their SHA-256 digest.
type RevocationStore struct {
	repo   repository.BlacklistRepository
	tokens token.Parser
	now    func() time.Time
}

// NewRevocationStore constructs a RevocationStore.
func NewRevocationStore(repo repository.BlacklistRepository, tokens token.Parser) *RevocationStore {
	return &RevocationStore{repo: repo, tokens: tokens, now: time.Now}
}

// Add blacklists raw until the token's own expiry. The token must still parse:
// the user id and expiry come from its claims, so parse failures are returned as is.
// Adding the same token again overwrites the entry.
func (s *RevocationStore) Add(ctx context.Context, raw string) error {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return err
	}
	e := model.BlacklistEntry{
		TokenHash: pkgcrypto.HashToken(raw),
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: s.now(),
	}
	if err := s.repo.Upsert(ctx, e); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// IsRevoked reports whether raw is blacklisted. The token is never decoded.
func (s *RevocationStore) IsRevoked(ctx context.Context, raw string) (bool, error) {
	ok, err := s.repo.Exists(ctx, pkgcrypto.HashToken(raw))
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return ok, nil
}

// PruneExpired deletes entries with expiresAt <= now.
func (s *RevocationStore) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("prune blacklist: %w", err)
	}
	return n, nil
}

package token

import (
	"fmt"
	"time"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Parser turns a raw bearer token into verified claims.
type Parser interface {
	Parse(raw string) (*Claims, error)
}

// Issuer signs HS256 access tokens and mints opaque reset tokens.
// It holds only immutable configuration and is safe for concurrent use.
type Issuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

var _ Parser = (*Issuer)(nil)

// NewIssuer validates signing configuration once at startup.
func NewIssuer(key []byte, issuer string, ttl time.Duration) (*Issuer, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: missing jwt signing key", errs.ErrConfiguration)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: access token ttl must be positive", errs.ErrConfiguration)
	}
	return &Issuer{
		key:    append([]byte(nil), key...),
		issuer: issuer,
		ttl:    ttl,
		leeway: 30 * time.Second,
		now:    time.Now,
	}, nil
}

// TTL is the default access token lifetime.
func (s *Issuer) TTL() time.Duration { return s.ttl }

// IssueAccessToken creates a signed token for subject. A non-positive ttl means the configured default.
func (s *Issuer) IssueAccessToken(subject string, p Profile, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	exp := now.Add(ttl)
	claims := Claims{
		Profile: p,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.key)
	return signed, exp, err
}

// IssueResetToken returns a random UUIDv4 string for one-time password resets.
func (s *Issuer) IssueResetToken() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Parse verifies signature, issuer and expiry. Every failure wraps errs.ErrTokenParse.
func (s *Issuer) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", errs.ErrTokenParse)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrTokenParse, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", errs.ErrTokenParse)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", errs.ErrTokenParse)
	}
	return &claims, nil
}

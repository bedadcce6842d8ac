// Package authctx carries authenticated claims through request contexts
// and extracts bearer tokens from Authorization values.
package authctx

import (
	"context"
	"strings"
	"unicode"

	"github.com/and161185/salesgate/internal/token"
)

type ctxKey string

const claimsKey ctxKey = "sg.claims"

// WithClaims stores verified token claims in context.
func WithClaims(ctx context.Context, c *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromCtx fetches claims stored by WithClaims.
func ClaimsFromCtx(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*token.Claims)
	return c, ok && c != nil
}

// BearerToken parses "Bearer <token>". The scheme is case-insensitive and may be
// separated from the token by any run of whitespace; surrounding whitespace is ignored.
func BearerToken(header string) (string, bool) {
	v := strings.TrimSpace(header)
	i := strings.IndexFunc(v, unicode.IsSpace)
	if i < 0 || !strings.EqualFold(v[:i], "bearer") {
		return "", false
	}
	t := strings.TrimSpace(v[i:])
	return t, t != ""
}

package token

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *Issuer {
	t.Helper()
	s, err := NewIssuer([]byte("secret"), "salesgate", 24*time.Hour)
	require.NoError(t, err)
	return s
}

func TestNewIssuer_Config(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer(nil, "x", time.Hour)
	require.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = NewIssuer([]byte("k"), "x", 0)
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestIssueAndParse_Roundtrip(t *testing.T) {
	t.Parallel()
	s := newIssuer(t)
	sub := uuid.Must(uuid.NewV4()).String()

	raw, exp, err := s.IssueAccessToken(sub, Profile{Email: "a@b.c", CustomerCode: "C-1", Roles: RoleUser}, 0)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	c, err := s.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, sub, c.Subject)
	require.Equal(t, "a@b.c", c.Email)
	require.Equal(t, "C-1", c.CustomerCode)
	require.True(t, c.Roles.Has(RoleUser))
	require.Equal(t, "salesgate", c.Issuer)
	require.Equal(t, exp.Unix(), c.ExpiresAt.Unix())
}

func TestIssueAccessToken_ExplicitTTL(t *testing.T) {
	t.Parallel()
	s := newIssuer(t)

	_, exp, err := s.IssueAccessToken("u", Profile{}, time.Minute)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()
	s := newIssuer(t)

	_, err := s.Parse("")
	require.ErrorIs(t, err, errs.ErrTokenParse)

	_, err = s.Parse("abc.def.ghi")
	require.ErrorIs(t, err, errs.ErrTokenParse)

	// wrong key
	other, err := NewIssuer([]byte("other"), "salesgate", time.Hour)
	require.NoError(t, err)
	raw, _, err := other.IssueAccessToken("u", Profile{}, 0)
	require.NoError(t, err)
	_, err = s.Parse(raw)
	require.ErrorIs(t, err, errs.ErrTokenParse)

	// wrong issuer
	foreign, err := NewIssuer([]byte("secret"), "someone-else", time.Hour)
	require.NoError(t, err)
	raw, _, err = foreign.IssueAccessToken("u", Profile{}, 0)
	require.NoError(t, err)
	_, err = s.Parse(raw)
	require.ErrorIs(t, err, errs.ErrTokenParse)

	// expired beyond leeway
	past := time.Now().Add(-2 * time.Hour)
	old := newIssuer(t)
	old.now = func() time.Time { return past }
	raw, _, err = old.IssueAccessToken("u", Profile{}, time.Minute)
	require.NoError(t, err)
	_, err = s.Parse(raw)
	require.ErrorIs(t, err, errs.ErrTokenParse)

	// unexpected signing method
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer: "salesgate", Subject: "u", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	raw, err = tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Parse(raw)
	require.ErrorIs(t, err, errs.ErrTokenParse)

	// missing subject
	raw, _, err = s.IssueAccessToken("", Profile{}, 0)
	require.NoError(t, err)
	_, err = s.Parse(raw)
	require.ErrorIs(t, err, errs.ErrTokenParse)
}

func TestIssueResetToken_Unique(t *testing.T) {
	t.Parallel()
	s := newIssuer(t)

	a, err := s.IssueResetToken()
	require.NoError(t, err)
	b, err := s.IssueResetToken()
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	id, err := uuid.FromString(a)
	require.NoError(t, err)
	require.Equal(t, byte(4), id.Version())
}

func TestRoles_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Profile{Roles: RoleUser})
	require.NoError(t, err)
	require.JSONEq(t, `{"roles":["USER"]}`, string(b))

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"roles":["USER","ADMIN"]}`), &p))
	require.Equal(t, RoleUser, p.Roles)
	require.False(t, Roles(0).Has(RoleUser))
}

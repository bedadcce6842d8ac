package httpserver

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/model"
	"github.com/and161185/salesgate/internal/service"
	"github.com/and161185/salesgate/internal/token"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeGate struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (g *fakeGate) Admit(_ context.Context, raw string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, raw)
	return g.err
}

type fakeAuth struct {
	registerErr error
	loginErr    error
	logoutErr   error
	resetErr    error
	loggedOut   []string
}

var _ service.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Register(_ context.Context, _, _, _ string) (uuid.UUID, error) {
	if f.registerErr != nil {
		return uuid.Nil, f.registerErr
	}
	return uuid.Must(uuid.NewV4()), nil
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (model.Tokens, model.User, error) {
	if f.loginErr != nil {
		return model.Tokens{}, model.User{}, f.loginErr
	}
	u := model.User{ID: uuid.Must(uuid.NewV4()), Email: email, CustomerCode: "C-1"}
	return model.Tokens{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, u, nil
}

func (f *fakeAuth) Logout(_ context.Context, raw string) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.loggedOut = append(f.loggedOut, raw)
	return nil
}

func (f *fakeAuth) ForgotPassword(context.Context, string) error { return nil }

func (f *fakeAuth) ResetPassword(context.Context, string, string) error { return f.resetErr }

type fakeSales struct {
	byID  map[uuid.UUID]model.Sale
	err   error
	calls int
}

var _ service.SaleService = (*fakeSales)(nil)

func (f *fakeSales) Create(_ context.Context, code string, amount int64, card string) (*model.Sale, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidInput)
	}
	s := model.Sale{ID: uuid.Must(uuid.NewV4()), CustomerCode: code, AmountCents: amount, CardNumber: card, CreatedAt: time.Now()}
	if f.byID == nil {
		f.byID = map[uuid.UUID]model.Sale{}
	}
	f.byID[s.ID] = s
	return &s, nil
}

func (f *fakeSales) Get(_ context.Context, code string, id uuid.UUID) (*model.Sale, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byID[id]
	if !ok || s.CustomerCode != code {
		return nil, errs.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSales) List(_ context.Context, code string) ([]model.Sale, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Sale
	for _, s := range f.byID {
		if s.CustomerCode == code {
			out = append(out, s)
		}
	}
	return out, nil
}

type routerEnv struct {
	deps   Deps
	auth   *fakeAuth
	sales  *fakeSales
	gate   *fakeGate
	issuer *token.Issuer
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	iss, err := token.NewIssuer([]byte("test-secret"), "salesgate", time.Hour)
	require.NoError(t, err)
	env := &routerEnv{auth: &fakeAuth{}, sales: &fakeSales{}, gate: &fakeGate{}, issuer: iss}
	env.deps = Deps{Auth: env.auth, Sales: env.sales, Tokens: iss, Gate: env.gate, Log: zaptest.NewLogger(t)}
	return env
}

func (e *routerEnv) token(t *testing.T, customerCode string) string {
	t.Helper()
	raw, _, err := e.issuer.IssueAccessToken("u1", token.Profile{Email: "a@b.c", CustomerCode: customerCode, Roles: token.RoleUser}, 0)
	require.NoError(t, err)
	return raw
}

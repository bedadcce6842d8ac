// Package httpserver exposes the sales API over HTTP.
package httpserver

import (
	"context"
	"net/http"

	"github.com/and161185/salesgate/internal/service"
	"github.com/and161185/salesgate/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Admitter decides whether a request carrying raw may proceed.
type Admitter interface {
	Admit(ctx context.Context, raw string) error
}

// Deps are the collaborators the router needs.
type Deps struct {
	Auth   service.AuthService
	Sales  service.SaleService
	Tokens token.Parser
	Gate   Admitter
	Log    *zap.Logger
}

// NewRouter builds the HTTP handler. Protected routes run Authenticate, then RequestGate.
func NewRouter(d Deps) http.Handler {
	h := &handlers{auth: d.Auth, sales: d.Sales, log: d.Log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Log), middleware.Recoverer)

	r.Route("/api/auth", func(a chi.Router) {
		a.Post("/register", h.register)
		a.Post("/login", h.login)
		a.Post("/logout", h.logout)
		a.Post("/forgot-password", h.forgotPassword)
		a.Post("/reset-password", h.resetPassword)
	})
	r.Group(func(protected chi.Router) {
		protected.Use(Authenticate(d.Tokens), RequestGate(d.Gate, d.Log))
		protected.Get("/api/me", h.me)
		protected.Post("/api/sales", h.createSale)
		protected.Get("/api/sales", h.listSales)
		protected.Get("/api/sales/{id}", h.getSale)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

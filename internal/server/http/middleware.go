package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/and161185/salesgate/internal/authctx"
	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs request metadata only: no bodies, no headers.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Duration("dur", time.Since(start)),
				zap.String("peer", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Authenticate requires a valid bearer token and stores its claims in the request context.
func Authenticate(tokens token.Parser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := authctx.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(authctx.WithClaims(r.Context(), claims)))
		})
	}
}

// RequestGate runs the admission check for bearer tokens. Requests without a
// bearer token pass through untouched. Every rejection is a 401.
func RequestGate(gate Admitter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := authctx.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if err := gate.Admit(r.Context(), raw); err != nil {
				respondError(w, http.StatusUnauthorized, gateMessage(err, log))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func gateMessage(err error, log *zap.Logger) string {
	switch {
	case errors.Is(err, errs.ErrTokenRevoked):
		return "token has been revoked"
	case errors.Is(err, errs.ErrSessionInactive):
		return errs.ErrSessionInactive.Error()
	default:
		// store outage: fail closed
		log.Error("request gate failed", zap.Error(err))
		return "unauthorized"
	}
}

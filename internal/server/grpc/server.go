// Package grpcserver runs the gRPC listener: a health service plus a session
// service guarded by the same authentication and admission check as the HTTP API.
package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/and161185/salesgate/internal/token"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Admitter decides whether a call carrying raw may proceed.
type Admitter interface {
	Admit(ctx context.Context, raw string) error
}

// Server wraps a grpc.Server with a health service.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	log    *zap.Logger
}

// New constructs a server with Recover, Logging, Auth and Gate interceptors chained in that order.
func New(log *zap.Logger, tokens token.Parser, gate Admitter, opts ...grpc.ServerOption) *Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		RecoverUnary(log),
		LoggingUnary(log),
		AuthUnary(tokens),
		GateUnary(gate, log),
	))
	gs := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	gs.RegisterService(&sessionServiceDesc, sessionService{})
	return &Server{gs: gs, health: hs, log: log}
}

// Serve blocks serving lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc listening", zap.String("addr", lis.Addr().String()))
	return s.gs.Serve(lis)
}

// Shutdown marks the service NOT_SERVING and stops gracefully, forcing a stop after timeout.
func (s *Server) Shutdown(timeout time.Duration) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.gs.Stop()
	}
}

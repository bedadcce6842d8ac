package grpcserver

import (
	"context"

	"github.com/and161185/salesgate/internal/authctx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WhoAmIMethod is the full name of the session introspection RPC.
const WhoAmIMethod = "/salesgate.v1.Session/WhoAmI"

// SessionServer reports the caller's verified identity.
type SessionServer interface {
	WhoAmI(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

type sessionService struct{}

// WhoAmI returns the claims stored by AuthUnary.
func (sessionService) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	c, ok := authctx.ClaimsFromCtx(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	roles := make([]any, 0, 1)
	for _, r := range c.Roles.Names() {
		roles = append(roles, r)
	}
	out, err := structpb.NewStruct(map[string]any{
		"id":           c.Subject,
		"email":        c.Email,
		"customerCode": c.CustomerCode,
		"roles":        roles,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "encode profile")
	}
	return out, nil
}

func whoAmIHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServer).WhoAmI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WhoAmIMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// sessionServiceDesc is written by hand: the service only uses well-known message types.
var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: "salesgate.v1.Session",
	HandlerType: (*SessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "WhoAmI", Handler: whoAmIHandler},
	},
	Streams: []grpc.StreamDesc{},
}

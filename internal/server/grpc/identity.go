package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
)

const (
	identityServiceName = "youtube.auth.v1.Identity"

	// CurrentMethod is the full method name of Identity/Current.
	CurrentMethod = "/" + identityServiceName + "/Current"
)

// CurrentRequest is empty: the caller is identified by its access token.
type CurrentRequest struct{}

// IdentityServer is the server API for the Identity service.
type IdentityServer interface {
	Current(ctx context.Context, req *CurrentRequest) (*models.Identity, error)
}

var identityServiceDesc = grpc.ServiceDesc{
	ServiceName: identityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Current", Handler: currentHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "youtube/auth/v1/identity",
}

func currentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CurrentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).Current(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CurrentMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).Current(ctx, req.(*CurrentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Current returns the identity the interceptor resolved from the request's
// access token.
func (s *GRPCServer) Current(ctx context.Context, _ *CurrentRequest) (*models.Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, errUnauthenticatedInvalid
	}
	s.logger.Debug(ctx, "current identity", "user_id", identity.ID)
	return identity, nil
}

package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

var (
	errUnauthenticatedMissing = status.Error(codes.Unauthenticated, "missing token")
	errUnauthenticatedInvalid = status.Error(codes.Unauthenticated, "invalid token")
)

// protectedMethods require an access_token metadata entry.
var protectedMethods = map[string]bool{
	CurrentMethod: true,
}

// IdentityFromContext returns the identity stored by the access token
// interceptor.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*models.Identity)
	return identity, ok && identity != nil
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, errUnauthenticatedMissing
	}

	identity, err := s.users.Authenticate(ctx, accessToken)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, errUnauthenticatedInvalid
		}
		s.logger.Error(ctx, "authenticate failed", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return handler(context.WithValue(ctx, identityKey, identity), req)
}

// metricsInterceptor counts every finished call by method and status code.
func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if s.metrics != nil {
		s.metrics.RPC(info.FullMethod, status.Code(err).String())
	}
	return resp, err
}

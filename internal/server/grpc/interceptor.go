package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/metrics"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const transportGRPC = "grpc"

const healthServicePrefix = "/grpc.health.v1.Health/"

// TokenAuthenticator turns a bearer token into a principal.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

func isPublicMethod(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, healthServicePrefix)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if isPublicMethod(info.FullMethod) {
		return handler(ctx, req)
	}

	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}

	return handler(ctx, req)
}

// authedStream carries the principal-bearing context into stream handlers.
type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authedStream) Context() context.Context { return a.ctx }

func (s *GRPCServer) accessTokenStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if isPublicMethod(info.FullMethod) {
		return handler(srv, ss)
	}

	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}

	return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
}

func (s *GRPCServer) authenticate(ctx context.Context, method string) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationMetadataKey); len(values) > 0 {
			header = values[0]
		}
	}

	token, err := auth.ParseBearer(header)
	if err != nil {
		return nil, s.reject(ctx, method, err)
	}

	principal, err := s.sessions.Authenticate(ctx, token)
	if err != nil {
		return nil, s.reject(ctx, method, err)
	}

	s.metrics.ObserveAccepted(transportGRPC)
	return auth.WithPrincipal(ctx, principal), nil
}

func (s *GRPCServer) reject(ctx context.Context, method string, err error) error {
	reason := metrics.ReasonFor(err)
	s.metrics.ObserveRejection(transportGRPC, reason)

	st := rejection(err)
	if st.Code() == codes.Internal {
		s.logger.Error(ctx, "authentication failed", "reason", reason, "method", method, "error", err.Error())
	} else {
		s.logger.Warn(ctx, "call rejected", "reason", reason, "method", method)
	}

	return st.Err()
}

func rejection(err error) *status.Status {
	switch {
	case errors.Is(err, common.ErrMissingToken):
		return status.New(codes.Unauthenticated, common.MsgAccessTokenRequired)
	case errors.Is(err, common.ErrUserNotFound):
		return status.New(codes.Unauthenticated, common.MsgUserNotFound)
	case errors.Is(err, common.ErrMalformedToken),
		errors.Is(err, common.ErrInvalidSignature),
		errors.Is(err, common.ErrTokenExpired):
		return status.New(codes.Unauthenticated, common.MsgInvalidToken)
	default:
		return status.New(codes.Internal, common.MsgInternalError)
	}
}

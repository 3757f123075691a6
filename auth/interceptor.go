package auth

import (
	"context"
	"strings"
	"wish-wall/errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

// SessionID returns the session injected by the interceptor or the middleware.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// Interceptor checks session tokens on incoming gRPC calls.
type Interceptor struct {
	issuer        *Issuer
	publicMethods map[string]struct{}
}

// NewInterceptor guards every method except the listed public ones.
func NewInterceptor(issuer *Issuer, publicMethods ...string) *Interceptor {
	public := make(map[string]struct{}, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = struct{}{}
	}
	return &Interceptor{issuer: issuer, publicMethods: public}
}

func (i *Interceptor) Unary(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if i.isPublic(info.FullMethod) {
		return handler(ctx, req)
	}
	newCtx, err := i.authenticate(ctx)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return handler(newCtx, req)
}

func (i *Interceptor) Stream(srv any, ss grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if i.isPublic(info.FullMethod) {
		return handler(srv, ss)
	}
	newCtx, err := i.authenticate(ss.Context())
	if err != nil {
		return errors.MapToGRPCError(err)
	}
	return handler(srv, &sessionStream{ServerStream: ss, ctx: newCtx})
}

// authenticate reads "authorization: Bearer <token>" from the metadata and
// injects the session id into the context.
func (i *Interceptor) authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, errors.ErrMissingToken
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, errors.ErrMissingToken
	}
	claims, err := i.issuer.Validate(strings.TrimPrefix(values[0], "Bearer "))
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, SessionIDKey, claims.SessionID), nil
}

func (i *Interceptor) isPublic(method string) bool {
	_, ok := i.publicMethods[method]
	return ok
}

type sessionStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *sessionStream) Context() context.Context { return s.ctx }

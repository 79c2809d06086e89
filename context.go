package credauth

import (
	"context"

	"github.com/google/uuid"
)

type clientIPContextKey struct{}
type requestIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine copies it
// into audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRequestID attaches a request correlation ID to ctx. When absent, the
// Engine generates one per audited operation so events from a single login
// attempt can be stitched together.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return uuid.NewString()
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	if requestID == "" {
		return uuid.NewString()
	}

	return requestID
}

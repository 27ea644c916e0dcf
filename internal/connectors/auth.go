package connectors

import "context"

type authKey struct{}

// WithAuthorization stores the caller's Authorization header in the context.
// Connectors forward it verbatim to LAKE and the triplestore, which enforce
// their own access control.
func WithAuthorization(ctx context.Context, header string) context.Context {
	if header == "" {
		return ctx
	}
	return context.WithValue(ctx, authKey{}, header)
}

func authorization(ctx context.Context) string {
	if v, ok := ctx.Value(authKey{}).(string); ok {
		return v
	}
	return ""
}

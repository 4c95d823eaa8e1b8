package auth

import "context"

type contextKey struct{}

// Principal is the authenticated caller extracted from a verified token.
type Principal struct {
	UserID   string
	UserType string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

func UserID(ctx context.Context) string {
	p, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return p.UserID
}

func IsAdmin(ctx context.Context) bool {
	p, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return p.UserType == "admin"
}

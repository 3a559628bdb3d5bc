package identity

import "context"

type contextKey string

const userContextKey contextKey = "current_user"

func ContextWithUser(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, userContextKey, ident)
}

func UserFromContext(ctx context.Context) (*Identity, bool) {
	ident, ok := ctx.Value(userContextKey).(*Identity)
	if !ok || ident == nil {
		return nil, false
	}
	return ident, true
}

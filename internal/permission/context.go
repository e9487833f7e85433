package permission

import "context"

type ctxKey string

const contextPrincipalKey ctxKey = "principal"

// Principal is the authenticated identity plus its resolved effective set,
// placed in request context by the auth middleware and consumed by guard
// checks and permission handlers.
type Principal struct {
	UserID      int64
	Position    Position
	Permissions Set
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextPrincipalKey).(*Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextPrincipalKey, p)
}

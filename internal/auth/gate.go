package auth

import "context"

// Gate authorizes a single administrator principal.
type Gate struct {
	admin string
}

// NewGate returns a gate for the given administrator address.
func NewGate(admin string) *Gate {
	return &Gate{admin: admin}
}

// IsAdministrator reports whether caller is the administrator.
func (g *Gate) IsAdministrator(caller string) bool {
	return caller != "" && caller == g.admin
}

type callerKey struct{}

// WithCaller stores the authenticated caller address in ctx.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the authenticated caller, or "" for anonymous requests.
func CallerFrom(ctx context.Context) string {
	caller, _ := ctx.Value(callerKey{}).(string)
	return caller
}

package shared

import "context"

// Principal describes the authenticated actor attached to a request after
// the authorization middleware has re-validated it against live data.
type Principal struct {
	UserID int64
	Email  string
	// Roles holds the names of all currently-active role assignments,
	// oldest first.
	Roles []string
	// ActiveRole is the single-role context the user switched into, empty
	// when operating with the full role set.
	ActiveRole string
	// PrincipalRole is the highest-ranked active role, used for display.
	PrincipalRole string
}

// HasRole reports whether the principal currently holds the named role.
func (p *Principal) HasRole(name string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, nil when the
// request never passed an authorization gate.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

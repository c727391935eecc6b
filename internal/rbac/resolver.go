// Package rbac resolves effective permissions from live role assignments and
// gates HTTP routes on them. Nothing here trusts the role list embedded in a
// token: every check re-reads the assignment store so revocations take
// effect on the very next request.
package rbac

import (
	"context"

	"github.com/portafolio-docente/portafolio-docente/internal/assignment"
	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
)

// AssignmentSource is the live view of active role assignments.
type AssignmentSource interface {
	ActiveRolesFor(ctx context.Context, userID int64) ([]assignment.RoleAssignment, error)
}

// Resolver computes effective permission sets and the principal role.
type Resolver struct {
	store AssignmentSource
}

// NewResolver constructs a Resolver backed by the assignment store.
func NewResolver(store AssignmentSource) *Resolver {
	return &Resolver{store: store}
}

// ResolvePermissions unions the catalog permissions of every active role.
// A user with zero active roles gets an empty set, not an error; callers
// must treat the empty set as deny-all.
func (r *Resolver) ResolvePermissions(ctx context.Context, userID int64) (map[string]struct{}, error) {
	active, err := r.store.ActiveRolesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	effective := make(map[string]struct{})
	for _, a := range active {
		for p := range catalog.PermissionsFor(a.RoleName) {
			effective[p] = struct{}{}
		}
	}
	return effective, nil
}

// PrincipalRole returns the highest-ranked active role. Ties break toward
// the earliest assignment; ActiveRolesFor already returns oldest first, so a
// strictly-greater comparison preserves that tiebreak. Nil when the user has
// no active roles.
func (r *Resolver) PrincipalRole(ctx context.Context, userID int64) (*catalog.Role, error) {
	active, err := r.store.ActiveRolesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return principalFrom(active), nil
}

// HasPermission reports whether the user's effective set contains perm.
func (r *Resolver) HasPermission(ctx context.Context, userID int64, perm string) (bool, error) {
	effective, err := r.ResolvePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	_, ok := effective[perm]
	return ok, nil
}

// HasAnyPermission reports whether at least one of perms is granted.
func (r *Resolver) HasAnyPermission(ctx context.Context, userID int64, perms ...string) (bool, error) {
	effective, err := r.ResolvePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if _, ok := effective[p]; ok {
			return true, nil
		}
	}
	return false, nil
}

// HasAllPermissions reports whether every one of perms is granted.
func (r *Resolver) HasAllPermissions(ctx context.Context, userID int64, perms ...string) (bool, error) {
	effective, err := r.ResolvePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if _, ok := effective[p]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func principalFrom(active []assignment.RoleAssignment) *catalog.Role {
	var principal *catalog.Role
	for _, a := range active {
		role, ok := catalog.Get(a.RoleName)
		if !ok {
			continue
		}
		if principal == nil || role.HierarchyLevel > principal.HierarchyLevel {
			r := role
			principal = &r
		}
	}
	return principal
}

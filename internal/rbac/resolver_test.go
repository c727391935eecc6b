package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/portafolio-docente/portafolio-docente/internal/assignment"
	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
)

type fakeStore struct {
	byUser map[int64][]assignment.RoleAssignment
	err    error
}

func (f *fakeStore) ActiveRolesFor(_ context.Context, userID int64) ([]assignment.RoleAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byUser[userID], nil
}

func at(day int) time.Time {
	return time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
}

func TestResolvePermissionsUnion(t *testing.T) {
	store := &fakeStore{byUser: map[int64][]assignment.RoleAssignment{
		1: {
			{UserID: 1, RoleName: catalog.RoleTeacher, AssignedAt: at(1)},
			{UserID: 1, RoleName: catalog.RoleVerifier, AssignedAt: at(2)},
		},
	}}
	resolver := NewResolver(store)

	effective, err := resolver.ResolvePermissions(context.Background(), 1)
	require.NoError(t, err)

	// Union of both roles: upload from teacher, verify from verifier.
	require.Contains(t, effective, catalog.PermDocumentsUpload)
	require.Contains(t, effective, catalog.PermDocumentsVerify)
	require.Contains(t, effective, catalog.PermReportsView)
	require.NotContains(t, effective, catalog.PermRolesAssign)
}

func TestResolvePermissionsNoRolesIsDenyAll(t *testing.T) {
	resolver := NewResolver(&fakeStore{byUser: map[int64][]assignment.RoleAssignment{}})

	effective, err := resolver.ResolvePermissions(context.Background(), 99)
	require.NoError(t, err)
	require.Empty(t, effective)

	ok, err := resolver.HasPermission(context.Background(), 99, catalog.PermDocumentsUpload)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolvePermissionsIgnoresUnknownRoles(t *testing.T) {
	store := &fakeStore{byUser: map[int64][]assignment.RoleAssignment{
		1: {{UserID: 1, RoleName: "retired_role", AssignedAt: at(1)}},
	}}
	resolver := NewResolver(store)

	effective, err := resolver.ResolvePermissions(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, effective)
}

func TestAdministratorHasNoImplicitTeacherPermissions(t *testing.T) {
	store := &fakeStore{byUser: map[int64][]assignment.RoleAssignment{
		1: {{UserID: 1, RoleName: catalog.RoleAdministrator, AssignedAt: at(1)}},
	}}
	resolver := NewResolver(store)

	// Hierarchy ranks roles, it does not cascade permissions: an admin who
	// is not also a teacher cannot upload documents.
	ok, err := resolver.HasPermission(context.Background(), 1, catalog.PermDocumentsUpload)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = resolver.HasPermission(context.Background(), 1, catalog.PermRolesAssign)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPrincipalRoleHighestHierarchy(t *testing.T) {
	store := &fakeStore{byUser: map[int64][]assignment.RoleAssignment{
		1: {
			{UserID: 1, RoleName: catalog.RoleTeacher, AssignedAt: at(1)},
			{UserID: 1, RoleName: catalog.RoleAdministrator, AssignedAt: at(3)},
			{UserID: 1, RoleName: catalog.RoleVerifier, AssignedAt: at(2)},
		},
	}}
	resolver := NewResolver(store)

	role, err := resolver.PrincipalRole(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, role)
	require.Equal(t, catalog.RoleAdministrator, role.Name)
}

func TestPrincipalRoleNilWithoutRoles(t *testing.T) {
	resolver := NewResolver(&fakeStore{byUser: map[int64][]assignment.RoleAssignment{}})

	role, err := resolver.PrincipalRole(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, role)
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	store := &fakeStore{byUser: map[int64][]assignment.RoleAssignment{
		1: {{UserID: 1, RoleName: catalog.RoleVerifier, AssignedAt: at(1)}},
	}}
	resolver := NewResolver(store)
	ctx := context.Background()

	any, err := resolver.HasAnyPermission(ctx, 1, catalog.PermRolesAssign, catalog.PermDocumentsVerify)
	require.NoError(t, err)
	require.True(t, any)

	all, err := resolver.HasAllPermissions(ctx, 1, catalog.PermDocumentsVerify, catalog.PermRolesAssign)
	require.NoError(t, err)
	require.False(t, all)

	all, err = resolver.HasAllPermissions(ctx, 1, catalog.PermDocumentsVerify, catalog.PermDocumentsView)
	require.NoError(t, err)
	require.True(t, all)
}

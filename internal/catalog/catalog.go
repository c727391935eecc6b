// Package catalog holds the authoritative, static role catalog. Roles are
// defined at process start and never persisted or mutated at runtime; every
// other module validates role names against this closed set.
package catalog

import "sort"

// Role names form a closed set. Anything else is rejected upstream with
// INVALID_ROLE.
const (
	RoleTeacher       = "teacher"
	RoleVerifier      = "verifier"
	RoleAdministrator = "administrator"
)

// Canonical permission identifiers, dot-namespaced. This is the single
// permission table; modules must not declare their own variants.
const (
	PermDocumentsUpload = "documents.upload"
	PermDocumentsView   = "documents.view"
	PermDocumentsVerify = "documents.verify"

	PermCyclesView   = "cycles.view"
	PermCyclesEdit   = "cycles.edit"
	PermSubjectsView = "subjects.view"
	PermSubjectsEdit = "subjects.edit"

	PermUsersView   = "users.view"
	PermUsersEdit   = "users.edit"
	PermRolesView   = "roles.view"
	PermRolesAssign = "roles.assign"
	PermRolesRevoke = "roles.revoke"

	PermReportsView = "reports.view"
	PermImportsRun  = "imports.run"
)

// Role is a catalog entry. HierarchyLevel ranks roles for principal-role
// selection and display only; it grants no implicit permission inheritance.
type Role struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	HierarchyLevel int      `json:"hierarchy_level"`
	Color          string   `json:"color"`
	Icon           string   `json:"icon"`
	Permissions    []string `json:"permissions"`
}

var roles = map[string]Role{
	RoleTeacher: {
		Name:           RoleTeacher,
		Description:    "Docente: builds and maintains their own teaching portfolio",
		HierarchyLevel: 1,
		Color:          "#2563eb",
		Icon:           "book-open",
		Permissions: []string{
			PermDocumentsUpload,
			PermCyclesView,
			PermSubjectsView,
		},
	},
	RoleVerifier: {
		Name:           RoleVerifier,
		Description:    "Verificador: reviews and approves portfolio documents",
		HierarchyLevel: 2,
		Color:          "#16a34a",
		Icon:           "check-badge",
		Permissions: []string{
			PermDocumentsView,
			PermDocumentsVerify,
			PermCyclesView,
			PermSubjectsView,
			PermReportsView,
		},
	},
	RoleAdministrator: {
		Name:           RoleAdministrator,
		Description:    "Administrador: manages users, roles, cycles and subjects",
		HierarchyLevel: 3,
		Color:          "#dc2626",
		Icon:           "shield",
		Permissions: []string{
			PermUsersView,
			PermUsersEdit,
			PermRolesView,
			PermRolesAssign,
			PermRolesRevoke,
			PermCyclesView,
			PermCyclesEdit,
			PermSubjectsView,
			PermSubjectsEdit,
			PermDocumentsView,
			PermReportsView,
			PermImportsRun,
		},
	},
}

// List returns all catalog entries ordered by hierarchy level descending.
func List() []Role {
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].HierarchyLevel > out[j].HierarchyLevel
	})
	return out
}

// Get returns the catalog entry for the named role.
func Get(name string) (Role, bool) {
	r, ok := roles[name]
	return r, ok
}

// IsValid reports whether the name belongs to the closed role set.
func IsValid(name string) bool {
	_, ok := roles[name]
	return ok
}

// PermissionsFor returns the permission set for a role. Unknown roles yield
// an empty set, never an error; rejection happens at the calling layer.
func PermissionsFor(name string) map[string]struct{} {
	r, ok := roles[name]
	if !ok {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(r.Permissions))
	for _, p := range r.Permissions {
		set[p] = struct{}{}
	}
	return set
}

package assignment

import "time"

// RoleAssignment captures an active or historical user-role relation. Rows
// are never physically deleted: revocation flips Active and stamps RevokedAt.
type RoleAssignment struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	RoleName   string     `json:"role_name"`
	Active     bool       `json:"active"`
	AssignedAt time.Time  `json:"assigned_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	AssignedBy int64      `json:"assigned_by"`
	// Notes is an append-only audit annotation; revoke reasons are appended,
	// prior content is never overwritten.
	Notes string `json:"notes,omitempty"`
}

// RoleMember pairs a user with the assignment that links them to a role.
type RoleMember struct {
	UserID     int64          `json:"user_id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	IsActive   bool           `json:"is_active"`
	Assignment RoleAssignment `json:"assignment"`
}

package assignment

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
	"github.com/portafolio-docente/portafolio-docente/internal/users"
)

// RepositoryPort defines persistence operations for role assignments.
type RepositoryPort interface {
	Insert(ctx context.Context, userID int64, roleName string, assignedBy int64, notes string) (RoleAssignment, error)
	Revoke(ctx context.Context, userID int64, roleName string, revokedBy int64, reason string) error
	ActiveRolesFor(ctx context.Context, userID int64) ([]RoleAssignment, error)
	HistoryFor(ctx context.Context, userID int64, limit int) ([]RoleAssignment, error)
	UsersWithRole(ctx context.Context, roleName string, activeOnly bool) ([]RoleMember, error)
}

// UserSource is the read-only view of the user directory the store needs.
type UserSource interface {
	GetActive(ctx context.Context, id int64) (users.User, error)
}

// Service enforces the assignment domain rules on top of the repository.
type Service struct {
	repo   RepositoryPort
	users  UserSource
	audit  shared.Recorder
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, users UserSource, audit shared.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, audit: audit, logger: logger}
}

// Assign grants roleName to userID. Validation order: catalog membership,
// target user existence/activity, then insert. The duplicate pre-check lives
// in the repository's partial unique index, so concurrent assigns cannot
// produce two active rows; this layer just translates the violation.
func (s *Service) Assign(ctx context.Context, userID int64, roleName string, assignedBy int64, notes string) (RoleAssignment, error) {
	if !catalog.IsValid(roleName) {
		return RoleAssignment{}, shared.ErrInvalidRole
	}
	if _, err := s.users.GetActive(ctx, userID); err != nil {
		return RoleAssignment{}, err
	}
	created, err := s.repo.Insert(ctx, userID, roleName, assignedBy, notes)
	if err != nil {
		return RoleAssignment{}, err
	}
	s.recordAudit(ctx, assignedBy, "role.assign", created, map[string]any{"role": roleName, "user_id": userID})
	return created, nil
}

// Revoke deactivates the active assignment for the pair. The row is kept;
// only the active flag flips and the reason is appended to the notes.
func (s *Service) Revoke(ctx context.Context, userID int64, roleName string, revokedBy int64, reason string) error {
	if !catalog.IsValid(roleName) {
		return shared.ErrInvalidRole
	}
	if err := s.repo.Revoke(ctx, userID, roleName, revokedBy, reason); err != nil {
		return err
	}
	s.recordAudit(ctx, revokedBy, "role.revoke", RoleAssignment{UserID: userID, RoleName: roleName}, map[string]any{"role": roleName, "user_id": userID, "reason": reason})
	return nil
}

// ActiveRolesFor returns the user's active assignments, oldest first.
func (s *Service) ActiveRolesFor(ctx context.Context, userID int64) ([]RoleAssignment, error) {
	return s.repo.ActiveRolesFor(ctx, userID)
}

// HistoryFor returns active and revoked assignments, newest first.
func (s *Service) HistoryFor(ctx context.Context, userID int64, limit int) ([]RoleAssignment, error) {
	return s.repo.HistoryFor(ctx, userID, limit)
}

// UsersWithRole lists holders of a catalog role.
func (s *Service) UsersWithRole(ctx context.Context, roleName string, activeOnly bool) ([]RoleMember, error) {
	if !catalog.IsValid(roleName) {
		return nil, shared.ErrInvalidRole
	}
	return s.repo.UsersWithRole(ctx, roleName, activeOnly)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, a RoleAssignment, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entityID := strconv.FormatInt(a.ID, 10)
	if a.ID == 0 {
		entityID = strconv.FormatInt(a.UserID, 10) + ":" + a.RoleName
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "role_assignment",
		EntityID: entityID,
		Meta:     meta,
	})
	if err != nil && s.logger != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}

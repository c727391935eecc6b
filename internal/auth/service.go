package auth

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/portafolio-docente/portafolio-docente/internal/assignment"
	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// AssignmentSource is the live view of active role assignments.
type AssignmentSource interface {
	ActiveRolesFor(ctx context.Context, userID int64) ([]assignment.RoleAssignment, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	assignments AssignmentSource
	tokens      *TokenCodec
	logger      *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, assignments AssignmentSource, tokens *TokenCodec, logger *slog.Logger) *Service {
	return &Service{repo: repo, assignments: assignments, tokens: tokens, logger: logger}
}

// UserSummary is the user payload returned by login.
type UserSummary struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// LoginResult bundles the minted token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserSummary
}

// Login validates credentials and mints a token embedding the active role
// list. Unknown email, inactive account and wrong password all return the
// identical ErrInvalidCredentials to prevent user enumeration. Infrastructure
// failures keep their own error so callers see a retryable 503, not a 401.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	active, err := s.assignments.ActiveRolesFor(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	roles := roleNames(active)

	token, expiresAt, err := s.tokens.Issue(account.ID, account.Email, roles, "")
	if err != nil {
		return nil, err
	}

	if err := s.repo.TouchLastAccess(ctx, account.ID); err != nil && s.logger != nil {
		s.logger.Warn("touch last access", slog.Any("error", err))
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserSummary{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
			Roles: roles,
		},
	}, nil
}

// SwitchResult is the payload of a successful role-context switch.
type SwitchResult struct {
	Token       string
	ActiveRole  string
	Permissions []string
}

// SwitchActiveRole mints a new token pinned to a single role context. The
// requested role is checked against the live assignment store, not the
// token's embedded list, so a revoked role cannot be switched into.
func (s *Service) SwitchActiveRole(ctx context.Context, userID int64, email, requestedRole string) (*SwitchResult, error) {
	active, err := s.assignments.ActiveRolesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles := roleNames(active)
	held := false
	for _, r := range roles {
		if r == requestedRole {
			held = true
			break
		}
	}
	if !held {
		return nil, shared.ErrRoleNotHeld
	}

	token, _, err := s.tokens.Issue(userID, email, roles, requestedRole)
	if err != nil {
		return nil, err
	}

	perms := catalog.PermissionsFor(requestedRole)
	permissions := make([]string, 0, len(perms))
	for p := range perms {
		permissions = append(permissions, p)
	}
	sort.Strings(permissions)

	return &SwitchResult{Token: token, ActiveRole: requestedRole, Permissions: permissions}, nil
}

func roleNames(active []assignment.RoleAssignment) []string {
	names := make([]string, 0, len(active))
	for _, a := range active {
		names = append(names, a.RoleName)
	}
	return names
}

package shared

import (
	"errors"
	"net/http"
)

// DomainError carries a stable machine-readable code alongside the HTTP
// status the transport layer should use. Handlers never invent status codes;
// they map through httpx.RespondError.
type DomainError struct {
	Code    string
	Status  int
	Message string
	// Required lists the roles or permissions that would have satisfied a
	// FORBIDDEN check. Never populated with the caller's own grants.
	Required []string
	// Retryable marks transient infrastructure failures.
	Retryable bool
}

func (e *DomainError) Error() string { return e.Message }

// Is matches domain errors by code so sentinel comparisons keep working
// after WithRequired copies.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithRequired returns a copy annotated with the grants that were required.
func (e *DomainError) WithRequired(required ...string) *DomainError {
	clone := *e
	clone.Required = append([]string(nil), required...)
	return &clone
}

var (
	// ErrInvalidCredentials covers unknown email, inactive account and bad
	// password alike. The three cases must stay indistinguishable.
	ErrInvalidCredentials = &DomainError{Code: "INVALID_CREDENTIALS", Status: http.StatusUnauthorized, Message: "invalid credentials"}
	// ErrUnauthenticated covers missing, expired or malformed tokens, and
	// tokens whose subject is gone or deactivated.
	ErrUnauthenticated = &DomainError{Code: "UNAUTHENTICATED", Status: http.StatusUnauthorized, Message: "authentication required"}
	// ErrForbidden indicates a valid identity with insufficient grants.
	ErrForbidden = &DomainError{Code: "FORBIDDEN", Status: http.StatusForbidden, Message: "insufficient role or permission"}
	// ErrInvalidRole indicates a role name outside the catalog.
	ErrInvalidRole = &DomainError{Code: "INVALID_ROLE", Status: http.StatusBadRequest, Message: "unknown role"}
	// ErrDuplicateRole indicates an already-active assignment for the pair.
	ErrDuplicateRole = &DomainError{Code: "DUPLICATE_ROLE", Status: http.StatusBadRequest, Message: "role already assigned"}
	// ErrRoleNotActive indicates a revoke without an active assignment.
	ErrRoleNotActive = &DomainError{Code: "ROLE_NOT_ACTIVE", Status: http.StatusNotFound, Message: "no active assignment for role"}
	// ErrRoleNotHeld indicates a context switch to a role the user lacks.
	ErrRoleNotHeld = &DomainError{Code: "ROLE_NOT_HELD", Status: http.StatusBadRequest, Message: "role not held"}
	// ErrUserNotFound indicates a missing or inactive target user.
	ErrUserNotFound = &DomainError{Code: "USER_NOT_FOUND", Status: http.StatusNotFound, Message: "user not found"}
	// ErrNotFound is the generic missing-resource error.
	ErrNotFound = &DomainError{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: "not found"}
	// ErrValidation wraps request payload validation failures.
	ErrValidation = &DomainError{Code: "VALIDATION_FAILED", Status: http.StatusBadRequest, Message: "validation failed"}
	// ErrDatabaseUnavailable surfaces pool exhaustion and query timeouts.
	ErrDatabaseUnavailable = &DomainError{Code: "DATABASE_UNAVAILABLE", Status: http.StatusServiceUnavailable, Message: "database unavailable, retry later", Retryable: true}
	// ErrInternal is the catch-all; the client only ever sees this message.
	ErrInternal = &DomainError{Code: "INTERNAL", Status: http.StatusInternalServerError, Message: "internal error"}
)

// Forbidden builds a 403 annotated with the grants that were required.
func Forbidden(required ...string) *DomainError {
	return ErrForbidden.WithRequired(required...)
}

// Validation builds a 400 with a payload-specific message.
func Validation(message string) *DomainError {
	clone := *ErrValidation
	if message != "" {
		clone.Message = message
	}
	return &clone
}

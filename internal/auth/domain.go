package auth

import "time"

// Account is the credential-bearing view of a user row. Only this package
// ever sees the password hash.
type Account struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Package entity defines the domain entities for the auth feature.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user in the system.
// Email is the authentication identifier and is unique across all users.
type User struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string

	// Password is the bcrypt hash. Plaintext passwords are never stored.
	Password string

	IsActive    bool
	IsStaff     bool
	IsSuperuser bool

	LastLogin  *time.Time
	DateJoined time.Time
	UpdatedAt  time.Time
}

// FullName returns "first last" without surrounding spaces.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail trims the address and lowercases its domain part.
// The local part is kept as given.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

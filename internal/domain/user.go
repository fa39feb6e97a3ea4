package domain

import "time"

// UserRole enumerates roles for the end-user actor class.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// Valid reports whether r is a known user-class role.
func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// User is the credential record for shoppers and administrators.
type User struct {
	ID           string
	Name         *string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

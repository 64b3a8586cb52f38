package users

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/auth"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email is already taken")
	ErrUsernameTaken = errors.New("username is already taken")
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         auth.Role
	IsStaff      bool
	FullName     string
	Phone        *string
	Gender       *Gender
	IsActive     bool
	DateJoined   time.Time
}

// IsAdmin reports whether the user holds administrative rights: either the
// admin role or the staff flag set by the bootstrap path.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == auth.RoleAdmin || u.IsStaff
}

func (u *User) IsOrganizer() bool {
	return u != nil && u.Role == auth.RoleOrganizer
}

func (u *User) IsClient() bool {
	return u != nil && u.Role == auth.RoleClient
}

// Token is a persistent opaque bearer token, one per user.
type Token struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Key        string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// Filters narrows user listings. Exact fields win over substring fields
// when both are set for the same column.
type Filters struct {
	ID               *uuid.UUID
	Email            string
	EmailContains    string
	Username         string
	UsernameContains string
}

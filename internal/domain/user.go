package domain

import (
	"context"
	"time"
)

// Role is a user's authorization role. Unknown role strings never parse to
// a permissive default; ParseRole returns false and callers must reject.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

type User struct {
	ID        int64     `json:"id" db:"id"`
	Account   string    `json:"account" db:"user_account"`
	// PasswordHash is stripped before the user is cached or returned to a
	// client; only the postgres repository ever sees it populated.
	PasswordHash string    `json:"-" db:"user_password"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"user_role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Identity is the cached, secret-free snapshot of a user carried through a
// request once the session cache has resolved the bearer token.
type Identity struct {
	UserID  int64  `json:"userId"`
	Account string `json:"account"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Account: u.Account, Email: u.Email, Role: u.Role}
}

type UserRepository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByAccount(ctx context.Context, account string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, account, passwordHash, email string) (*User, error)
}

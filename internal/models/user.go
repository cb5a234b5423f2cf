package models

import "time"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user.
	ID int64

	// Username is the login name (unique).
	Username string

	// Email is the user's email address. It is informational only.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// IsAdmin grants access to user management and to every form,
	// preset, response and comment.
	IsAdmin bool

	// TokenVersion is embedded in issued tokens. Bumping it (on password
	// change) invalidates every token issued before.
	TokenVersion int64

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last credential or profile change.
	UpdatedAt int64
}

// NewUser creates a new User with the given credentials.
// ID is assigned by the store.
func NewUser(username, email, passwordHash string, isAdmin bool) *User {
	now := time.Now().Unix()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

package types

import "time"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FullName is the user's display name.
	FullName string `json:"fullName" db:"full_name"`

	// Email is the user's email address. It is unique across accounts
	// and used as the login name.
	Email string `json:"email" db:"email"`

	// IsAdmin indicates whether the user has administrator privileges.
	// Administrators author posts and moderate comments; there is no
	// finer-grained role model.
	IsAdmin bool `json:"isAdmin" db:"is_admin"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Principal is the identity carried inside an access token and attached
// to a request after authentication. It is a snapshot taken at token
// issuance: changes to the underlying user (including privilege changes)
// do not show up here until a new token is issued.
type Principal struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Snapshot returns the public-safe author snapshot for the principal.
func (p Principal) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{ID: p.ID, FullName: p.FullName}
}

// PrincipalOf builds the token principal for a stored user.
func PrincipalOf(user User) Principal {
	return Principal{ID: user.ID, FullName: user.FullName, IsAdmin: user.IsAdmin}
}

// AuthorSnapshot is the public-safe projection of a user embedded in the
// resources they author. Once written it is never reassigned, so ownership
// checks always run against the author captured at creation time.
type AuthorSnapshot struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
}

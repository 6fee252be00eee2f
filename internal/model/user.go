// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Accounts come from two places: the email/password sign-up form, or a
// GitHub social sign-in (created on first login). A social-only account has
// an empty PasswordHash and a non-zero GitHubID; a form account has the
// reverse. The two can coexist on one record if a GitHub login later matches
// an existing email.
//
// WHY PasswordHash IS json:"-":
// The bcrypt hash must never leave the server. Tagging the field with "-"
// means encoding/json skips it entirely — there is no code path that can
// accidentally serialize it into an API response.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"` // unique, matched case-sensitively
	PasswordHash string    `json:"-"          db:"password_hash"`
	FirstName    string    `json:"firstName"  db:"first_name"`
	LastName     string    `json:"lastName"   db:"last_name"`
	IsAdmin      bool      `json:"isAdmin"    db:"is_admin"`
	GitHubID     int64     `json:"-"          db:"github_id"` // 0 when no GitHub account is linked
	CreatedAt    time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"  db:"updated_at"`
}

// FullName returns the display name, tolerating a missing first or last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

package models

import "time"

// Account is the authentication identity behind a profile. Profile.ID equals
// Account.ID.
type Account struct {
	ID           string
	Email        string
	PasswordHash string // empty for OAuth-only accounts
	GoogleSub    string // empty when Google sign-in was never used
	TokenKey     string // per-account secret mixed into token signing
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Admin is a row of the moderation allowlist.
type Admin struct {
	UserID    string
	GrantedAt time.Time
	GrantedBy *string
}

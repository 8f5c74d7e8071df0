// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is the authenticatable identity. Email is the login identifier.
type Account struct {
	ID           int64
	Email        string
	Username     *string
	PasswordHash string
	IsStaff      bool
	IsActive     bool
	DateJoined   time.Time
	LastLogin    *time.Time
}

// AccountWithProfile is an account together with its one-to-one profile.
type AccountWithProfile struct {
	Account *Account
	Profile *Profile
}

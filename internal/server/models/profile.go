package models

import "time"

// Gender is the enumerated profile gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderDivers Gender = "divers"
)

// Valid reports whether g is one of the known values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderDivers:
		return true
	}
	return false
}

// Profile holds the non-authentication attributes of an account.
type Profile struct {
	ID        int64
	AccountID int64
	// Image is the storage path of the profile picture, "" when unset.
	Image     string
	Gender    Gender
	Birthdate *time.Time
}

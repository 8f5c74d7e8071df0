package services

import (
	"io"
	"time"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

// Upload is an uploaded file as received from the client.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProfileInput is the writable part of a profile. Nil fields are absent
// from the request.
type ProfileInput struct {
	Image     *Upload
	Gender    *models.Gender
	Birthdate *time.Time
}

// AccountInput is the writable part of an account with its nested profile.
// Nil fields are absent from the request; Password and Password2 are never
// returned to clients.
type AccountInput struct {
	Email     *string
	Username  *string
	Password  *string
	Password2 *string
	Profile   *ProfileInput

	// IsStaff is only honoured by CreateStaff.
	IsStaff bool
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefGender(g *models.Gender) models.Gender {
	if g == nil {
		return ""
	}
	return *g
}

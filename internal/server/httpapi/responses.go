package httpapi

import (
	"github.com/dmitrijs2005/userservice/internal/server/models"
)

type profileResponse struct {
	ID             int64   `json:"id"`
	ProfilePicture *string `json:"profile_picture"`
	Gender         string  `json:"gender"`
	Birthdate      *string `json:"birthdate"`
}

type accountResponse struct {
	ID       int64            `json:"id"`
	Email    string           `json:"email"`
	Username *string          `json:"username"`
	Profile  *profileResponse `json:"user_profile"`
}

func (s *Server) accountResponse(a *models.AccountWithProfile) accountResponse {
	resp := accountResponse{
		ID:       a.Account.ID,
		Email:    a.Account.Email,
		Username: a.Account.Username,
	}

	if p := a.Profile; p != nil {
		pr := &profileResponse{
			ID:     p.ID,
			Gender: string(p.Gender),
		}
		if p.Image != "" {
			url := s.opts.ImageURL(p.Image)
			pr.ProfilePicture = &url
		}
		if p.Birthdate != nil {
			d := p.Birthdate.Format(dateLayout)
			pr.Birthdate = &d
		}
		resp.Profile = pr
	}

	return resp
}

func (s *Server) accountList(items []*models.AccountWithProfile) []accountResponse {
	out := make([]accountResponse, 0, len(items))
	for _, a := range items {
		out = append(out, s.accountResponse(a))
	}
	return out
}

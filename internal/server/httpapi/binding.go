package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/media"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/services"
)

const (
	dateLayout = "2006-01-02"

	msgBadDate      = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// requestError is a malformed request body. It is reported as a single
// detail message rather than per field.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Unwrap() error { return common.ErrValidation }

type profileRequest struct {
	Gender    *string `json:"gender"`
	Birthdate *string `json:"birthdate"`
}

// accountRequest is bound from JSON or from a form. JSON nests the profile
// under "user_profile"; forms use dotted keys for the same fields.
type accountRequest struct {
	Email     *string         `json:"email" form:"email"`
	Username  *string         `json:"username" form:"username"`
	Password  *string         `json:"password" form:"password"`
	Password2 *string         `json:"password2" form:"password2"`
	Profile   *profileRequest `json:"user_profile" form:"-"`

	Gender    *string `json:"-" form:"user_profile.gender"`
	Birthdate *string `json:"-" form:"user_profile.birthdate"`
}

// bindAccountInput reads the account payload either from a JSON body or
// from a form. The picture can only arrive as a multipart file. The
// returned cleanup closes any opened upload.
func bindAccountInput(c *gin.Context) (*services.AccountInput, func(), error) {
	noop := func() {}

	var req accountRequest
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			return nil, noop, &requestError{msg: fmt.Sprintf("Multipart form parse error - %v", err)}
		}
		return bindForm(c, &req)
	case gin.MIMEPOSTForm:
		if err := c.ShouldBindWith(&req, binding.FormPost); err != nil {
			return nil, noop, &requestError{msg: fmt.Sprintf("Form parse error - %v", err)}
		}
		return bindForm(c, &req)
	default:
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			return nil, noop, &requestError{msg: fmt.Sprintf("JSON parse error - %v", err)}
		}
		in, err := bindJSON(&req)
		return in, noop, err
	}
}

func accountInput(req *accountRequest) *services.AccountInput {
	return &services.AccountInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Password2: req.Password2,
	}
}

func bindJSON(req *accountRequest) (*services.AccountInput, error) {
	in := accountInput(req)

	if req.Profile != nil {
		p, err := profileInput(req.Profile.Gender, req.Profile.Birthdate)
		if err != nil {
			return nil, err
		}
		in.Profile = p
	}

	return in, nil
}

func bindForm(c *gin.Context, req *accountRequest) (*services.AccountInput, func(), error) {
	noop := func() {}
	in := accountInput(req)

	fh, err := c.FormFile(services.FieldPicture)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		fh = nil
	case err != nil:
		return nil, noop, &requestError{msg: fmt.Sprintf("Could not read uploaded file - %v", err)}
	}

	if req.Gender == nil && req.Birthdate == nil && fh == nil {
		return in, noop, nil
	}

	p, err := profileInput(req.Gender, req.Birthdate)
	if err != nil {
		return nil, noop, err
	}
	in.Profile = p

	if fh == nil {
		return in, noop, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, &requestError{msg: fmt.Sprintf("Could not read uploaded file - %v", err)}
	}
	cleanup := func() { _ = f.Close() }

	if err := media.ValidateUpload(fh.Filename, f); err != nil {
		cleanup()
		verr := services.ValidationError{}
		verr.Add(services.FieldPicture, msgInvalidImage)
		return nil, noop, verr
	}

	p.Image = &services.Upload{Filename: fh.Filename, Content: f}
	return in, cleanup, nil
}

func profileInput(gender, birthdate *string) (*services.ProfileInput, error) {
	p := &services.ProfileInput{}

	if gender != nil {
		g := models.Gender(*gender)
		p.Gender = &g
	}

	if birthdate != nil && strings.TrimSpace(*birthdate) != "" {
		d, err := time.Parse(dateLayout, strings.TrimSpace(*birthdate))
		if err != nil {
			verr := services.ValidationError{}
			verr.Add(services.FieldBirthdate, msgBadDate)
			return nil, verr
		}
		p.Birthdate = &d
	}

	return p, nil
}

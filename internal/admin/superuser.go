package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/services"
)

// StaffCreator creates accounts with the staff flag set.
type StaffCreator interface {
	CreateStaff(ctx context.Context, in *services.AccountInput) (*models.AccountWithProfile, error)
}

// SuperuserOptions are values given on the command line. Empty Email and
// Username are asked for interactively.
type SuperuserOptions struct {
	Email    string
	Username string
	Gender   string
	NoInput  bool
	Password string
}

var ErrPasswordMismatch = errors.New("passwords do not match")

// CreateSuperuser collects the missing credentials and creates a staff
// account. Field errors are printed to w one per line before returning.
func CreateSuperuser(ctx context.Context, creator StaffCreator, reader *bufio.Reader, w io.Writer, opts SuperuserOptions) (*models.AccountWithProfile, error) {
	email := opts.Email
	if email == "" && !opts.NoInput {
		var err error
		if email, err = GetSimpleText(reader, "Email address", w); err != nil {
			return nil, fmt.Errorf("read email: %w", err)
		}
	}

	username := opts.Username
	if username == "" && !opts.NoInput {
		var err error
		if username, err = GetSimpleText(reader, "Username (leave blank for none)", w); err != nil {
			return nil, fmt.Errorf("read username: %w", err)
		}
	}

	password, password2 := opts.Password, opts.Password
	if password == "" && !opts.NoInput {
		var err error
		if password, err = GetPassword("Password", w); err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		if password2, err = GetPassword("Password (again)", w); err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		if password != password2 {
			return nil, ErrPasswordMismatch
		}
	}

	gender := models.Gender(opts.Gender)
	if gender == "" {
		gender = models.GenderDivers
	}

	in := &services.AccountInput{
		Email:     &email,
		Password:  &password,
		Password2: &password2,
		Profile:   &services.ProfileInput{Gender: &gender},
		IsStaff:   true,
	}
	if username != "" {
		in.Username = &username
	}

	created, err := creator.CreateStaff(ctx, in)
	if err != nil {
		if verr, ok := services.AsValidationError(err); ok {
			printFieldErrors(w, verr)
		}
		return nil, err
	}

	fmt.Fprintf(w, "Superuser %s created (id %d).\n", created.Account.Email, created.Account.ID)
	return created, nil
}

func printFieldErrors(w io.Writer, verr services.ValidationError) {
	fields := make([]string, 0, len(verr))
	for f := range verr {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		fmt.Fprintf(w, "Error: %s: %s\n", f, strings.Join(verr[f], " "))
	}
}

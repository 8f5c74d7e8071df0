package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/timex"
)

const (
	NonFieldErrors = "non_field_errors"

	FieldEmail     = "email"
	FieldUsername  = "username"
	FieldPassword  = "password"
	FieldPassword2 = "password2"
	FieldProfile   = "user_profile"
	FieldGender    = "user_profile.gender"
	FieldBirthdate = "user_profile.birthdate"
	FieldPicture   = "user_profile.profile_picture"
)

const (
	MsgRequired          = "This field is required."
	MsgRequiredRegister  = "This field is required for registering."
	MsgPasswordTooShort  = "Password must have 6 or more characters."
	MsgPasswordsMismatch = "The passwords have to be the same."
	MsgBirthdateInFuture = "Birthdate can't be in the future."
	MsgEmailTaken        = "user with this email address already exists."
)

const minPasswordLength = 6

// ValidationError maps a field name to its messages. Cross-field problems
// are reported under NonFieldErrors.
type ValidationError map[string][]string

func (e ValidationError) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], " ")))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e ValidationError) Unwrap() error {
	return common.ErrValidation
}

func (e ValidationError) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsValidationError extracts field messages from err if it carries any.
func AsValidationError(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type writeMode int

const (
	modeCreate writeMode = iota
	modeUpdate
	modePartialUpdate
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkVar runs a validator tag against v and records a readable message.
func checkVar(errs ValidationError, field string, v any, tag string) {
	err := validate.Var(v, tag)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add(field, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		errs.Add(field, message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fe.Value())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

func validateAccountInput(in *AccountInput, mode writeMode, now time.Time) error {
	errs := ValidationError{}
	full := mode != modePartialUpdate

	if in.Email != nil || full {
		checkVar(errs, FieldEmail, deref(in.Email), "required,email,max=254")
	}
	if in.Username != nil && *in.Username != "" {
		checkVar(errs, FieldUsername, *in.Username, "max=10")
	}

	validatePassword(errs, in.Password, mode)

	if mode == modeCreate && in.Password2 == nil {
		errs.Add(FieldPassword2, MsgRequired)
	}
	if in.Password != nil && in.Password2 != nil && *in.Password != *in.Password2 {
		errs.Add(NonFieldErrors, MsgPasswordsMismatch)
	}

	switch {
	case in.Profile != nil:
		validateProfileInput(errs, in.Profile, full, now)
	case full:
		errs.Add(FieldProfile, MsgRequired)
	}

	return errs.orNil()
}

func validatePassword(errs ValidationError, password *string, mode writeMode) {
	if password != nil && *password != "" {
		if utf8.RuneCountInString(*password) < minPasswordLength {
			errs.Add(FieldPassword, MsgPasswordTooShort)
			return
		}
		// bcrypt ignores everything past 72 bytes
		checkVar(errs, FieldPassword, []byte(*password), "max=72")
		return
	}
	if mode == modeCreate {
		errs.Add(FieldPassword, MsgRequiredRegister)
	}
}

func validateProfileInput(errs ValidationError, in *ProfileInput, full bool, now time.Time) {
	if in.Gender != nil || full {
		checkVar(errs, FieldGender, string(derefGender(in.Gender)), "required,oneof=male female divers")
	}
	if in.Birthdate != nil {
		validateBirthdate(errs, *in.Birthdate, now)
	}
}

// validateBirthdate accepts today and rejects any later date.
func validateBirthdate(errs ValidationError, birthdate, now time.Time) {
	if timex.DateOnly(birthdate).After(timex.DateOnly(now)) {
		errs.Add(FieldBirthdate, MsgBirthdateInFuture)
	}
}

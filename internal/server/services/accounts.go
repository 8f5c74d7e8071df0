// Package services contains the server-side business logic: account and
// profile writes with their validation, and token based authentication.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
)

// AccountService creates, updates and removes accounts together with their
// profile. Both rows are always written in one transaction.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	profiles    *ProfileService
	logger      logging.Logger

	now        func() time.Time
	bcryptCost int
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, profiles *ProfileService, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		profiles:    profiles,
		logger:      logger.With("module", "accounts"),
		now:         time.Now,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

// Create registers a new regular account.
func (s *AccountService) Create(ctx context.Context, in *AccountInput) (*models.AccountWithProfile, error) {
	return s.create(ctx, in, false)
}

// CreateStaff registers an account with the staff flag set.
func (s *AccountService) CreateStaff(ctx context.Context, in *AccountInput) (*models.AccountWithProfile, error) {
	return s.create(ctx, in, true)
}

func (s *AccountService) create(ctx context.Context, in *AccountInput, staff bool) (*models.AccountWithProfile, error) {
	if err := validateAccountInput(in, modeCreate, s.now()); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(*in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Email:        normalizeEmail(*in.Email),
		Username:     normalizeUsername(in.Username),
		PasswordHash: hash,
		IsStaff:      staff,
		IsActive:     true,
	}

	var (
		result *models.AccountWithProfile
		stored string
	)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Accounts(tx).Create(ctx, account)
		if err != nil {
			return err
		}

		profile, err := s.profiles.Create(ctx, tx, created.ID, in.Profile)
		if err != nil {
			return err
		}
		stored = profile.Image

		result = &models.AccountWithProfile{Account: created, Profile: profile}
		return nil
	})
	if err != nil {
		// the profile row was written but the commit failed
		s.profiles.DiscardImage(ctx, stored)
		return nil, s.translateWriteError("error creating account", err)
	}

	if err := s.profiles.AfterSave(ctx, result.Profile); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account created", "id", result.Account.ID, "staff", staff)
	return result, nil
}

// Update writes in onto the existing account. With partial set absent
// fields keep their values, otherwise the nested profile is required.
func (s *AccountService) Update(ctx context.Context, existing *models.Account, in *AccountInput, partial bool) (*models.AccountWithProfile, error) {
	mode := modeUpdate
	if partial {
		mode = modePartialUpdate
	}
	if err := validateAccountInput(in, mode, s.now()); err != nil {
		return nil, err
	}

	account := *existing
	if in.Email != nil {
		account.Email = normalizeEmail(*in.Email)
	}
	if in.Username != nil {
		account.Username = normalizeUsername(in.Username)
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}

	var (
		result *models.AccountWithProfile
		swap   ImageSwap
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// account row before any picture is stored
		if err := s.repomanager.Accounts(tx).Update(ctx, &account); err != nil {
			return err
		}

		profile, err := s.repomanager.Profiles(tx).GetByAccountID(ctx, account.ID)
		if err != nil {
			return err
		}

		if in.Profile != nil {
			profile, swap, err = s.profiles.Update(ctx, tx, profile, in.Profile)
			if err != nil {
				return err
			}
		}

		result = &models.AccountWithProfile{Account: &account, Profile: profile}
		return nil
	})
	if err != nil {
		s.profiles.AbortSwap(ctx, swap)
		return nil, s.translateWriteError("error updating account", err)
	}

	if err := s.profiles.FinishSwap(ctx, swap); err != nil {
		s.logger.Warn(ctx, "failed to remove replaced profile image", "path", swap.Old, "error", err)
	}

	if err := s.profiles.AfterSave(ctx, result.Profile); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account updated", "id", account.ID, "partial", partial)
	return result, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*models.AccountWithProfile, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := s.repomanager.Profiles(s.db).GetByAccountID(ctx, id)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return &models.AccountWithProfile{Account: account, Profile: profile}, nil
}

// List returns all accounts ordered by id.
func (s *AccountService) List(ctx context.Context) ([]*models.AccountWithProfile, error) {
	accounts, err := s.repomanager.Accounts(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.repomanager.Profiles(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	byAccount := make(map[int64]*models.Profile, len(profiles))
	for _, p := range profiles {
		byAccount[p.AccountID] = p
	}

	res := make([]*models.AccountWithProfile, 0, len(accounts))
	for _, a := range accounts {
		res = append(res, &models.AccountWithProfile{Account: a, Profile: byAccount[a.ID]})
	}
	return res, nil
}

// Delete removes the account; the profile row goes with it. The stored
// picture is removed afterwards on a best-effort basis.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	var image string
	profile, err := s.repomanager.Profiles(s.db).GetByAccountID(ctx, id)
	switch {
	case err == nil:
		image = profile.Image
	case !errors.Is(err, common.ErrorNotFound):
		return err
	}

	if err := s.repomanager.Accounts(s.db).Delete(ctx, id); err != nil {
		return err
	}

	s.profiles.DiscardImage(ctx, image)
	s.logger.Info(ctx, "account deleted", "id", id)
	return nil
}

func (s *AccountService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}
	return string(hash), nil
}

func (s *AccountService) translateWriteError(msg string, err error) error {
	if errors.Is(err, common.ErrorAlreadyExists) {
		return ValidationError{FieldEmail: {MsgEmailTaken}}
	}
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrStorage) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// normalizeEmail lowercases the domain part the way most mail systems treat it.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

func normalizeUsername(u *string) *string {
	if u == nil {
		return nil
	}
	v := strings.TrimSpace(*u)
	if v == "" {
		return nil
	}
	return &v
}

// Package accounts declares the repository contract for account rows and
// provides its PostgreSQL implementation.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	// Create inserts the account and fills in ID and DateJoined.
	// A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// Update writes every mutable column of the account identified by account.ID.
	Update(ctx context.Context, account *models.Account) error

	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)

	// Delete removes the account; the database cascades to its profile.
	Delete(ctx context.Context, id int64) error

	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

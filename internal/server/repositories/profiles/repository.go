// Package profiles declares the repository contract for the one-to-one
// account profile and provides its PostgreSQL implementation.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

type Repository interface {
	// Create inserts the profile for profile.AccountID and fills in ID.
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	// Update writes image, gender and birthdate of the profile identified by profile.ID.
	Update(ctx context.Context, profile *models.Profile) error
	GetByAccountID(ctx context.Context, accountID int64) (*models.Profile, error)
	// List returns every profile ordered by account id.
	List(ctx context.Context) ([]*models.Profile, error)
}

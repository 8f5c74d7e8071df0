// Package refreshtokens declares the repository contract for the opaque
// refresh tokens issued at login and rotated on refresh.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/userservice/internal/server/models"
)

type Repository interface {
	// Create stores a new refresh token for accountID expiring at now+validity.
	Create(ctx context.Context, accountID int64, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes the token; deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error
}

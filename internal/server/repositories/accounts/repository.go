package accounts

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// Repository is the read side of the account store used by the auth
// subsystem, plus Create for seeding.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

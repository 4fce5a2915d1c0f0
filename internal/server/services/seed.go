package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
)

// Demo account credentials created by Seeder.EnsureDemoAccount.
const (
	DemoEmail    = "demo@example.com"
	DemoUsername = "demo"
	DemoPassword = "DemoPassword123!"
)

// PasswordHasher produces stored hashes for new accounts.
type PasswordHasher interface {
	Hash(secret string) (string, error)
}

// Seeder creates accounts at startup. Account creation is otherwise outside
// the server's API.
type Seeder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
}

func NewSeeder(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher) *Seeder {
	return &Seeder{db: db, repomanager: m, hasher: h}
}

// EnsureDemoAccount creates the demo account unless an account with its
// email already exists. It reports whether a row was inserted.
func (s *Seeder) EnsureDemoAccount(ctx context.Context) (bool, error) {
	first, last := "Demo", "User"
	return s.EnsureAccount(ctx, &models.Account{
		Email:     DemoEmail,
		UserName:  DemoUsername,
		FirstName: &first,
		LastName:  &last,
	}, DemoPassword)
}

// EnsureAccount inserts account with password unless its email is taken.
func (s *Seeder) EnsureAccount(ctx context.Context, account *models.Account, password string) (bool, error) {
	created := false

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		_, err := repo.GetByEmail(ctx, account.Email)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("lookup %s: %w", account.Email, err)
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = hash

		if _, err := repo.Create(ctx, account); err != nil {
			return fmt.Errorf("create %s: %w", account.Email, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

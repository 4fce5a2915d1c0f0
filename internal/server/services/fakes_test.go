package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/accounts"
	"github.com/google/uuid"
)

// fakeAccounts is an in-memory accounts.Repository.
type fakeAccounts struct {
	mu        sync.Mutex
	byID      map[string]*models.Account
	lookupErr error
	createErr error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]*models.Account{}}
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	f.byID[a.ID] = &cp
	return a, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

// fakeManager hands out the same fakeAccounts regardless of DBTX.
type fakeManager struct {
	accounts *fakeAccounts
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) (int, error) { return 0, nil }
func (m *fakeManager) Accounts(dbx.DBTX) accounts.Repository     { return m.accounts }

// countingVerifier wraps plaintext "hashes" and counts calls.
type countingVerifier struct {
	mu           sync.Mutex
	checks       int
	missingCalls int
}

func (v *countingVerifier) Check(secret, storedHash string) bool {
	v.mu.Lock()
	v.checks++
	v.mu.Unlock()
	return "hashed:"+secret == storedHash
}

func (v *countingVerifier) CheckMissing(string) bool {
	v.mu.Lock()
	v.missingCalls++
	v.mu.Unlock()
	return false
}

func (v *countingVerifier) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty secret")
	}
	return "hashed:" + secret, nil
}

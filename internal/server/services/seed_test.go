package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDemoAccount_CreatesOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	accts := newFakeAccounts()
	s := NewSeeder(db, &fakeManager{accounts: accts}, &countingVerifier{})

	created, err := s.EnsureDemoAccount(context.Background())
	require.NoError(t, err)
	assert.True(t, created)

	again, err := s.EnsureDemoAccount(context.Background())
	require.NoError(t, err)
	assert.False(t, again)

	a, err := accts.GetByEmail(context.Background(), DemoEmail)
	require.NoError(t, err)
	assert.Equal(t, DemoUsername, a.UserName)
	assert.Equal(t, "hashed:"+DemoPassword, a.PasswordHash)
	assert.Equal(t, "Demo", *a.FirstName)
	assert.Equal(t, "User", *a.LastName)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAccount_RollsBackOnCreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	accts := newFakeAccounts()
	accts.createErr = errors.New("unique violation")
	s := NewSeeder(db, &fakeManager{accounts: accts}, &countingVerifier{})

	created, err := s.EnsureAccount(context.Background(), &models.Account{Email: "x@example.com"}, "pw")
	require.Error(t, err)
	assert.False(t, created)
	assert.Contains(t, err.Error(), "unique violation")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAccount_HashFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewSeeder(db, &fakeManager{accounts: newFakeAccounts()}, &countingVerifier{})

	_, err = s.EnsureAccount(context.Background(), &models.Account{Email: "x@example.com"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash password")
}

// Package services contains server-side business logic. This file implements
// SessionService, which issues session tokens on login and turns presented
// tokens back into an authenticated principal.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/fintrack/internal/server/services")

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Token string             `json:"token"`
	User  *models.PublicUser `json:"user"`
}

// SessionService provides the authentication operations:
//   - Login: verify credentials and mint a token
//   - Authenticate: verify a token and re-resolve the account it names
//
// It keeps no session records; tokens are stateless.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.TokenCodec
	verifier    auth.CredentialVerifier
}

// NewSessionService wires a SessionService.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.TokenCodec, verifier auth.CredentialVerifier) *SessionService {
	return &SessionService{db: db, repomanager: m, codec: codec, verifier: verifier}
}

// Login looks the account up by exact email and checks the password.
// Unknown accounts and wrong passwords both yield
// common.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, identifier, secret string) (*LoginResult, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Login", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.verifier.CheckMissing(secret)
			span.SetAttributes(attribute.String("auth.result", "invalid_credentials"))
			return nil, common.ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "account lookup failed")
		return nil, fmt.Errorf("%w: account lookup: %v", common.ErrorInternal, err)
	}

	if !s.verifier.Check(secret, account.PasswordHash) {
		span.SetAttributes(attribute.String("auth.result", "invalid_credentials"))
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.codec.Mint(account.ID, account.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mint failed")
		return nil, fmt.Errorf("%w: mint token: %v", common.ErrorInternal, err)
	}

	span.SetAttributes(attribute.String("auth.result", "success"))
	return &LoginResult{Token: token, User: account.Public()}, nil
}

// Authenticate verifies token and fetches the account it names afresh, so a
// deleted account stops working immediately.
//
// Errors: the token errors of auth.TokenCodec.Verify, common.ErrUserNotFound
// when the account is gone, common.ErrorInternal for store failures.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	ctx, span := tracer.Start(ctx, "SessionService.Authenticate", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	identity, err := s.codec.Verify(token)
	if err != nil {
		span.SetAttributes(attribute.String("auth.reject", err.Error()))
		return nil, err
	}

	user, err := s.ResolveUser(ctx, identity.SubjectID)
	if err != nil {
		if !errors.Is(err, common.ErrUserNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "account lookup failed")
		}
		return nil, err
	}

	return &models.Principal{UserID: user.ID, User: user}, nil
}

// ResolveUser returns the public projection of the account with id.
func (s *SessionService) ResolveUser(ctx context.Context, id string) (*models.PublicUser, error) {
	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: account lookup: %v", common.ErrorInternal, err)
	}
	return account.Public(), nil
}

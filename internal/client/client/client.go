package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
)

// Client is the FinTrack API as the CLI sees it.
type Client interface {
	Login(ctx context.Context, identifier, password string) (*models.LoginResult, error)
	Profile(ctx context.Context, token string) (*models.User, error)
	Insights(ctx context.Context, token, kind, userID string) (json.RawMessage, error)
	Ping(ctx context.Context) error
}

package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/metrics"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memAccounts is an in-memory accounts.Repository.
type memAccounts struct {
	mu   sync.Mutex
	rows map[string]models.Account
}

func (m *memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.rows[a.ID] = *a
	return a, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (m *memAccounts) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
}

type memManager struct{ repo *memAccounts }

func (m memManager) RunMigrations(context.Context, *sql.DB) (int, error) { return 0, nil }
func (m memManager) Accounts(dbx.DBTX) accounts.Repository      { return m.repo }

// testEnv is a full router backed by the real session service.
type testEnv struct {
	router   http.Handler
	codec    *auth.TokenCodec
	accounts *memAccounts
	demo     *models.Account
	registry *prometheus.Registry
}

func newTestEnv(t *testing.T, insights http.Handler) *testEnv {
	t.Helper()

	codec, err := auth.NewTokenCodec([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	verifier, err := auth.NewBcryptVerifier(bcrypt.MinCost)
	require.NoError(t, err)

	repo := &memAccounts{rows: map[string]models.Account{}}
	hash, err := verifier.Hash(services.DemoPassword)
	require.NoError(t, err)
	first, last := "Demo", "User"
	demo, err := repo.Create(context.Background(), &models.Account{
		Email: services.DemoEmail, UserName: services.DemoUsername, PasswordHash: hash,
		FirstName: &first, LastName: &last,
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "fintrack")
	log := logging.Discard()
	svc := services.NewSessionService(nil, memManager{repo: repo}, codec, verifier)

	router := NewRouter(RouterDeps{
		Handler:       NewHandler(svc, log, m),
		Authenticator: NewAuthenticator(svc, log, m),
		Insights:      insights,
		Gatherer:      reg,
		Logger:        log,
	})

	return &testEnv{router: router, codec: codec, accounts: repo, demo: demo, registry: reg}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func bearer(token string) map[string]string {
	return map[string]string{common.AuthorizationHeaderName: common.BearerPrefix + token}
}

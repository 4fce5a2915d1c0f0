package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/client"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/sessionstore"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var demo = &models.User{ID: "u1", Email: "demo@example.com", Username: "demo"}

func nextCall(t *testing.T, f *fakeAPI) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no request reached the API")
		return nil
	}
}

func TestStart_NoStoredToken(t *testing.T) {
	api := &instantAPI{}
	c := NewController(api, &recordingStore{}, logging.Discard())

	s := c.Start(context.Background())

	assert.Equal(t, Unauthenticated, s.Status)
	assert.Empty(t, s.Err)
	assert.Zero(t, api.profile, "no network call without a stored token")
}

func TestStart_RestoresSession(t *testing.T) {
	store := &recordingStore{token: "stored"}
	c := NewController(&instantAPI{user: demo}, store, logging.Discard())

	s := c.Start(context.Background())

	assert.Equal(t, Authenticated, s.Status)
	assert.Equal(t, "stored", s.Token)
	assert.Equal(t, demo, s.User)
	assert.Equal(t, "stored", store.get())
}

func TestStart_PassesThroughInitializing(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api, &recordingStore{token: "stored"}, logging.Discard())

	done := make(chan State, 1)
	go func() { done <- c.Start(context.Background()) }()

	pending := nextCall(t, api)
	assert.Equal(t, "stored", pending.identifier)

	s := c.State()
	assert.Equal(t, Initializing, s.Status)
	assert.Equal(t, Loading, Decide(s), "a known token alone must not render")

	pending.release <- result{user: demo}
	assert.Equal(t, Authenticated, (<-done).Status)

	_, profiles := api.counts()
	assert.Equal(t, 1, profiles)
}

// A stored token whose account was deleted: the profile fetch is rejected,
// the store is cleared and the session ends up unauthenticated.
func TestStart_DeletedAccountClearsStore(t *testing.T) {
	store := &recordingStore{token: "orphaned"}
	rejected := &client.APIError{Status: 401, Message: common.MsgUserNotFound, Kind: client.ErrUnauthorized}
	c := NewController(&instantAPI{err: rejected}, store, logging.Discard())

	s := c.Start(context.Background())

	assert.Equal(t, Unauthenticated, s.Status)
	assert.Empty(t, s.Token)
	assert.Nil(t, s.User)
	assert.Equal(t, MsgSessionExpired, s.Err)
	assert.Empty(t, store.get())
	assert.Equal(t, 1, store.clears)
}

func TestStart_ServerDownClearsStore(t *testing.T) {
	store := &recordingStore{token: "stored"}
	c := NewController(&instantAPI{err: client.ErrUnavailable}, store, logging.Discard())

	s := c.Start(context.Background())

	assert.Equal(t, Unauthenticated, s.Status)
	assert.Equal(t, MsgUnavailable, s.Err)
	assert.Empty(t, store.get())
}

func TestLogin_Success(t *testing.T) {
	store := &recordingStore{}
	c := NewController(&instantAPI{login: &models.LoginResult{Token: "t1", User: demo}}, store, logging.Discard())

	s := c.Login(context.Background(), "demo@example.com", "pw")

	assert.Equal(t, Authenticated, s.Status)
	assert.Equal(t, "t1", s.Token)
	assert.Equal(t, demo, s.User)
	assert.Empty(t, s.Err)
	assert.Equal(t, []string{"t1"}, store.saves)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "bad credentials", err: &client.APIError{Status: 401, Kind: client.ErrInvalidCredentials}, wantMsg: common.MsgInvalidCredentials},
		{name: "server down", err: client.ErrUnavailable, wantMsg: MsgUnavailable},
		{name: "other", err: errors.New("weird"), wantMsg: MsgLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{token: "old"}
			c := NewController(&instantAPI{err: tt.err}, store, logging.Discard())

			s := c.Login(context.Background(), "demo@example.com", "bad")

			assert.Equal(t, Failed, s.Status)
			assert.Equal(t, tt.wantMsg, s.Err)
			assert.Empty(t, s.Token)
			assert.Nil(t, s.User)
			assert.Empty(t, store.saves, "no token persisted")
			assert.Empty(t, store.get())
		})
	}
}

func TestLogin_ClearsErrorOnRetry(t *testing.T) {
	api := &instantAPI{err: client.ErrInvalidCredentials}
	c := NewController(api, &recordingStore{}, logging.Discard())

	require.Equal(t, Failed, c.Login(context.Background(), "a", "b").Status)

	api.err = nil
	api.login = &models.LoginResult{Token: "t", User: demo}
	s := c.Login(context.Background(), "a", "c")

	assert.Equal(t, Authenticated, s.Status)
	assert.Empty(t, s.Err)
}

// Two overlapping logins: only the second one's outcome counts, whichever
// response arrives first.
func TestLogin_SecondSupersedesFirst(t *testing.T) {
	orders := []struct {
		name        string
		firstWins   bool
		secondFails bool
	}{
		{name: "stale success arrives last"},
		{name: "stale success arrives first", firstWins: true},
		{name: "stale success after newer failure", secondFails: true},
	}

	for _, o := range orders {
		t.Run(o.name, func(t *testing.T) {
			api := newFakeAPI()
			store := &recordingStore{}
			c := NewController(api, store, logging.Discard())
			ctx := context.Background()

			firstDone := make(chan State, 1)
			go func() { firstDone <- c.Login(ctx, "first", "pw") }()
			first := nextCall(t, api)

			secondDone := make(chan State, 1)
			go func() { secondDone <- c.Login(ctx, "second", "pw") }()
			second := nextCall(t, api)

			require.Equal(t, "first", first.identifier)
			require.Equal(t, "second", second.identifier)

			firstResult := result{login: &models.LoginResult{Token: "stale", User: &models.User{ID: "stale"}}}
			secondResult := result{login: &models.LoginResult{Token: "fresh", User: demo}}
			if o.secondFails {
				secondResult = result{err: client.ErrInvalidCredentials}
			}

			if o.firstWins {
				first.release <- firstResult
				<-firstDone
				second.release <- secondResult
				<-secondDone
			} else {
				second.release <- secondResult
				<-secondDone
				first.release <- firstResult
				<-firstDone
			}

			logins, _ := api.counts()
			assert.Equal(t, 2, logins, "the second login does not queue behind the first")

			s := c.State()
			assert.NotContains(t, store.saves, "stale", "superseded token must never be persisted")
			if o.secondFails {
				assert.Equal(t, Failed, s.Status)
				assert.Empty(t, store.get())
				return
			}
			assert.Equal(t, Authenticated, s.Status)
			assert.Equal(t, "fresh", s.Token)
			assert.Equal(t, "fresh", store.get())
		})
	}
}

func TestLogin_SupersededRequestIsCancelled(t *testing.T) {
	api := &ctxAPI{seen: make(chan context.Context, 2)}
	c := NewController(api, &recordingStore{}, logging.Discard())

	go c.Login(context.Background(), "first", "pw")
	firstCtx := <-api.seen

	go c.Login(context.Background(), "second", "pw")
	secondCtx := <-api.seen

	select {
	case <-firstCtx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("first request was not cancelled")
	}
	assert.NoError(t, secondCtx.Err())

	c.Logout(context.Background())
	select {
	case <-secondCtx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("logout did not cancel the pending request")
	}
}

// ctxAPI exposes each request's context and blocks until it is cancelled.
type ctxAPI struct {
	seen chan context.Context
}

func (c *ctxAPI) Login(ctx context.Context, _, _ string) (*models.LoginResult, error) {
	c.seen <- ctx
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *ctxAPI) Profile(context.Context, string) (*models.User, error) {
	return nil, errors.New("unused")
}

func TestLogout_DuringLoginDiscardsResult(t *testing.T) {
	api := newFakeAPI()
	store := &recordingStore{}
	c := NewController(api, store, logging.Discard())

	done := make(chan State, 1)
	go func() { done <- c.Login(context.Background(), "demo", "pw") }()
	pending := nextCall(t, api)

	s := c.Logout(context.Background())
	assert.Equal(t, Unauthenticated, s.Status)

	pending.release <- result{login: &models.LoginResult{Token: "late", User: demo}}
	<-done

	assert.Equal(t, Unauthenticated, c.State().Status)
	assert.Empty(t, store.saves)
	assert.Empty(t, store.get())
}

func TestLogout_IsIdempotent(t *testing.T) {
	store := &recordingStore{}
	c := NewController(&instantAPI{login: &models.LoginResult{Token: "t", User: demo}}, store, logging.Discard())
	c.Login(context.Background(), "demo", "pw")

	for i := 0; i < 2; i++ {
		s := c.Logout(context.Background())
		assert.Equal(t, State{Status: Unauthenticated}, s)
	}
	assert.Empty(t, store.get())
}

func TestLogout_WithDegradedStorage(t *testing.T) {
	store := sessionstore.NewMemoryOnly(logging.Discard())
	c := NewController(&instantAPI{login: &models.LoginResult{Token: "t", User: demo}}, store, logging.Discard())

	require.Equal(t, Authenticated, c.Login(context.Background(), "demo", "pw").Status)
	tok, _ := store.Load(context.Background())
	assert.Equal(t, "t", tok)

	assert.Equal(t, Unauthenticated, c.Logout(context.Background()).Status)
	tok, _ = store.Load(context.Background())
	assert.Empty(t, tok)
}

func TestSubscribe_SeesLatestState(t *testing.T) {
	c := NewController(&instantAPI{login: &models.LoginResult{Token: "t", User: demo}}, &recordingStore{}, logging.Discard())

	ch, stop := c.Subscribe()
	defer stop()

	c.Login(context.Background(), "demo", "pw")

	select {
	case s := <-ch:
		assert.Equal(t, Authenticated, s.Status)
	case <-time.After(time.Second):
		t.Fatal("no state delivered")
	}

	stop()
	c.Logout(context.Background())
	select {
	case s := <-ch:
		t.Fatalf("unexpected delivery after stop: %v", s.Status)
	default:
	}
}

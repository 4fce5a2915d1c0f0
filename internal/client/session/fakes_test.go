package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
)

// call is one pending request held by fakeAPI until the test releases it.
type call struct {
	identifier string
	release    chan result
}

type result struct {
	login *models.LoginResult
	user  *models.User
	err   error
}

// fakeAPI parks every request until the test answers it, so tests control
// the order responses arrive in.
type fakeAPI struct {
	mu       sync.Mutex
	calls    chan *call
	profiles int
	logins   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(chan *call, 16)}
}

func (f *fakeAPI) Login(ctx context.Context, identifier, _ string) (*models.LoginResult, error) {
	f.mu.Lock()
	f.logins++
	f.mu.Unlock()

	c := &call{identifier: identifier, release: make(chan result, 1)}
	f.calls <- c
	r := <-c.release
	return r.login, r.err
}

func (f *fakeAPI) Profile(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	f.profiles++
	f.mu.Unlock()

	c := &call{identifier: token, release: make(chan result, 1)}
	f.calls <- c
	r := <-c.release
	return r.user, r.err
}

func (f *fakeAPI) counts() (logins, profiles int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins, f.profiles
}

// instantAPI answers immediately.
type instantAPI struct {
	login   *models.LoginResult
	user    *models.User
	err     error
	profile int
}

func (i *instantAPI) Login(context.Context, string, string) (*models.LoginResult, error) {
	return i.login, i.err
}

func (i *instantAPI) Profile(context.Context, string) (*models.User, error) {
	i.profile++
	return i.user, i.err
}

// recordingStore is an in-memory store that counts writes.
type recordingStore struct {
	mu     sync.Mutex
	token  string
	saves  []string
	clears int
}

func (r *recordingStore) Load(context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token, nil
}

func (r *recordingStore) Save(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
	r.saves = append(r.saves, token)
	return nil
}

func (r *recordingStore) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = ""
	r.clears++
	return nil
}

func (r *recordingStore) get() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/fintrack/internal/client/client"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/sessionstore"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

const (
	MsgUnavailable    = "Server unavailable, try again later"
	MsgLoginFailed    = "Login failed"
	MsgSessionExpired = "Session expired, please log in again"
)

// API is the part of the server the controller talks to.
type API interface {
	Login(ctx context.Context, identifier, password string) (*models.LoginResult, error)
	Profile(ctx context.Context, token string) (*models.User, error)
}

// Controller owns the client session. Every operation bumps a generation
// counter and cancels the one in flight; a result is applied only if its
// generation is still current, so the most recently started operation
// always decides the final state.
type Controller struct {
	api    API
	store  sessionstore.Store
	logger logging.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	subs    map[uint64]chan State
	nextSub uint64
}

func NewController(api API, store sessionstore.Store, l logging.Logger) *Controller {
	return &Controller{
		api:    api,
		store:  store,
		logger: l.With("module", "session"),
		subs:   make(map[uint64]chan State),
	}
}

// State returns a snapshot of the current session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel that always holds the latest state after a
// transition. Intermediate states may be skipped by slow readers. Call the
// returned func to stop.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan State, 1)
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Start restores the session from the store. With no stored token it goes
// straight to Unauthenticated without a network call; otherwise it
// validates the token by fetching the profile.
func (c *Controller) Start(ctx context.Context) State {
	token, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn(ctx, "could not read stored session", "error", err.Error())
		token = ""
	}

	if token == "" {
		c.supersede(State{Status: Unauthenticated})
		return c.State()
	}

	opCtx, gen := c.begin(ctx, State{Status: Initializing, Token: token})
	user, err := c.api.Profile(opCtx, token)

	c.finish(ctx, gen, func(storeCtx context.Context) {
		if err != nil {
			c.logger.Info(ctx, "stored session rejected", "error", err.Error())
			c.clearStore(storeCtx)
			c.setLocked(State{Status: Unauthenticated, Err: restoreErrorMessage(err)})
			return
		}
		c.setLocked(State{Status: Authenticated, Token: token, User: user})
	})

	return c.State()
}

// Login supersedes whatever is in flight and authenticates with the
// server. On success the token is persisted. On failure the state is
// Failed and no token is kept.
func (c *Controller) Login(ctx context.Context, identifier, password string) State {
	opCtx, gen := c.begin(ctx, State{Status: Authenticating})
	res, err := c.api.Login(opCtx, identifier, password)

	applied := c.finish(ctx, gen, func(storeCtx context.Context) {
		if err != nil {
			c.clearStore(storeCtx)
			c.setLocked(State{Status: Failed, Err: loginErrorMessage(err)})
			return
		}
		if serr := c.store.Save(storeCtx, res.Token); serr != nil {
			c.logger.Warn(ctx, "could not persist session", "error", serr.Error())
		}
		c.setLocked(State{Status: Authenticated, Token: res.Token, User: res.User})
	})
	if !applied {
		c.logger.Debug(ctx, "discarded superseded login result")
	}

	return c.State()
}

// Logout forgets the session locally and invalidates anything in flight.
// The server is not contacted; the token stays valid there until it
// expires. Calling it repeatedly is harmless.
func (c *Controller) Logout(ctx context.Context) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpLocked()
	c.clearStore(context.WithoutCancel(ctx))
	c.setLocked(State{Status: Unauthenticated})

	return c.state
}

// begin starts a new operation, cancelling the previous one.
func (c *Controller) begin(ctx context.Context, next State) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpLocked()
	opCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.setLocked(next)

	return opCtx, c.gen
}

// supersede ends any operation in flight and sets next.
func (c *Controller) supersede(next State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bumpLocked()
	c.setLocked(next)
}

// finish runs apply under the lock if gen is still current and reports
// whether it did. Store operations in apply use a context that outlives a
// cancelled caller.
func (c *Controller) finish(ctx context.Context, gen uint64, apply func(storeCtx context.Context)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	apply(context.WithoutCancel(ctx))
	return true
}

func (c *Controller) bumpLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) clearStore(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn(ctx, "could not clear stored session", "error", err.Error())
	}
}

func (c *Controller) setLocked(next State) {
	prev := c.state.Status
	c.state = next

	if prev != next.Status {
		c.logger.Debug(context.Background(), "session state changed", "from", prev.String(), "to", next.Status.String())
	}

	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}

func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		return common.MsgInvalidCredentials
	case errors.Is(err, client.ErrUnavailable):
		return MsgUnavailable
	default:
		return MsgLoginFailed
	}
}

func restoreErrorMessage(err error) string {
	if errors.Is(err, client.ErrUnavailable) {
		return MsgUnavailable
	}
	return MsgSessionExpired
}

// Package sessionstore holds the client's session token across restarts.
// It is a single string slot with no validation logic.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// TokenKey is the metadata key the raw token is stored under.
const TokenKey = "token"

// Store is the client session slot. Load returns "" when nothing is stored.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Durable keeps the token in the metadata table. Failures are reported as
// common.ErrStorageUnavailable.
type Durable struct {
	repo metadata.Repository
}

func NewDurable(repo metadata.Repository) *Durable {
	return &Durable{repo: repo}
}

func (d *Durable) Load(ctx context.Context) (string, error) {
	e, err := d.repo.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if e == nil {
		return "", nil
	}
	return string(e.Value), nil
}

// SavedAt reports when the stored token was written. ok is false when
// nothing is stored.
func (d *Durable) SavedAt(ctx context.Context) (at time.Time, ok bool, err error) {
	e, err := d.repo.Get(ctx, TokenKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if e == nil {
		return time.Time{}, false, nil
	}
	return e.UpdatedAt, true, nil
}

func (d *Durable) Save(ctx context.Context, token string) error {
	if err := d.repo.Put(ctx, TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

func (d *Durable) Clear(ctx context.Context) error {
	if err := d.repo.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

// Memory is a process-lifetime slot.
type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Fallback uses a durable store until it fails once, then keeps the session
// in memory for the rest of the process. It never returns an error.
type Fallback struct {
	mu       sync.Mutex
	durable  Store
	memory   *Memory
	degraded bool
	logger   logging.Logger
}

func NewFallback(durable Store, l logging.Logger) *Fallback {
	return &Fallback{durable: durable, memory: NewMemory(), logger: l.With("module", "session_store")}
}

// NewMemoryOnly returns a Fallback that starts degraded, for when the
// durable store could not be opened at all.
func NewMemoryOnly(l logging.Logger) *Fallback {
	f := NewFallback(nil, l)
	f.degraded = true
	return f
}

// Degraded reports whether the token now lives only in memory.
func (f *Fallback) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

func (f *Fallback) Load(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.degraded {
		token, err := f.durable.Load(ctx)
		if err == nil {
			_ = f.memory.Save(ctx, token)
			return token, nil
		}
		f.degrade(ctx, "load", err)
	}
	return f.memory.Load(ctx)
}

// SavedAt reports when the durable token was written. It is false once
// the store has degraded, since an in-memory token outlives nothing.
func (f *Fallback) SavedAt(ctx context.Context) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.degraded {
		return time.Time{}, false
	}
	d, ok := f.durable.(*Durable)
	if !ok {
		return time.Time{}, false
	}
	at, ok, err := d.SavedAt(ctx)
	if err != nil {
		f.degrade(ctx, "saved_at", err)
		return time.Time{}, false
	}
	return at, ok
}

func (f *Fallback) Save(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// memory always mirrors the latest value so a later degrade keeps it
	_ = f.memory.Save(ctx, token)
	if !f.degraded {
		if err := f.durable.Save(ctx, token); err != nil {
			f.degrade(ctx, "save", err)
		}
	}
	return nil
}

func (f *Fallback) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_ = f.memory.Clear(ctx)
	if !f.degraded {
		if err := f.durable.Clear(ctx); err != nil {
			f.degrade(ctx, "clear", err)
		}
	}
	return nil
}

func (f *Fallback) degrade(ctx context.Context, op string, err error) {
	f.degraded = true
	if !errors.Is(err, common.ErrStorageUnavailable) {
		err = fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	f.logger.Warn(ctx, "session storage unavailable, keeping session in memory", "op", op, "error", err.Error())
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/client"
	"github.com/dmitrijs2005/fintrack/internal/client/config"
	"github.com/dmitrijs2005/fintrack/internal/client/session"
	"github.com/dmitrijs2005/fintrack/internal/client/sessionstore"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the API client, the session store and the session controller
// behind the CLI commands.
type App struct {
	config     *config.Config
	logger     logging.Logger
	api        client.Client
	store      sessionstore.Store
	controller *session.Controller
	gate       *session.Gate
	db         *sql.DB
	reader     *bufio.Reader
	out        io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the session store at c.DatabaseDSN and connects the HTTP
// client to c.ServerEndpointAddr. A store that cannot be opened is not
// fatal; the session then lives in memory only.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	api, err := client.NewHTTPClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	store, db := sessionstore.Open(ctx, c.DatabaseDSN, l)

	a := newApp(c, l, api, store)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, l logging.Logger, api client.Client, store sessionstore.Store) *App {
	controller := session.NewController(api, store, l)
	return &App{
		config:     c,
		logger:     l.With("module", "cli"),
		api:        api,
		store:      store,
		controller: controller,
		gate:       session.NewGate(controller),
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}
}

// Close releases the session database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// checkOnline probes the server once and records the result.
func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is
// done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.controller.State().Status == session.Authenticated
}

// getStatus renders the prompt suffix, e.g. "(demo online)".
func (a *App) getStatus() string {
	s := ""
	if st := a.controller.State(); st.User != nil {
		s = st.User.Username + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

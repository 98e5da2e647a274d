package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/roomify-app/roomify/internal/client/annotations"
	"github.com/roomify-app/roomify/internal/client/api"
	"github.com/roomify-app/roomify/internal/client/chat"
	"github.com/roomify-app/roomify/internal/client/config"
	"github.com/roomify-app/roomify/internal/client/imagegen"
	"github.com/roomify-app/roomify/internal/client/session"
	"github.com/roomify-app/roomify/internal/client/storage"
	"github.com/roomify-app/roomify/internal/client/styles"
	"github.com/roomify-app/roomify/internal/client/ui"
	"github.com/roomify-app/roomify/internal/client/wizard"
	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/timex"
)

// initDatabase is a seam for tests.
var initDatabase = storage.InitDatabase

// Backend is the part of the API client used by commands.
type Backend interface {
	Health(ctx context.Context) error
	CurrentUser(ctx context.Context) (*api.User, error)
	ListKeys(ctx context.Context) ([]api.KeyView, error)
	AddKey(ctx context.Context, key string, provider common.Provider) ([]api.KeyView, error)
	RemoveKey(ctx context.Context, id string) error
	RecentUsage(ctx context.Context, limit int) ([]api.UsageEntry, error)
	Products(ctx context.Context) ([]api.Product, error)
	Checkout(ctx context.Context, req api.CheckoutRequest) (string, error)
	Subscription(ctx context.Context) (*api.Subscription, error)
	ActivePlan(ctx context.Context) (*api.Product, error)
}

// Sessions is the part of the session manager used by commands.
type Sessions interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, token, password string) error
	SignedIn() bool
	Session() *api.TokenPair
	Subscribe(fn session.Listener) (unsubscribe func())
	Watch(ctx context.Context) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	backend  Backend
	sessions Sessions
	wizard   *wizard.Wizard
	notes    *annotations.Store
	chat     *chat.Transcript
	catalog  *styles.Catalog
	notifier ui.Notifier
	progress *ui.ProgressBar
	clock    timex.Clock
	outMu    sync.Mutex
	out      io.Writer
	reader   *bufio.Reader
	replies  chan chat.Message
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := initDatabase(ctx, c.StatePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	state := storage.NewSQLiteStore(db)

	client := api.NewClient(c.ServerURL, c.RequestTimeout)
	sm := session.NewManager(client, state, logger)
	if err := sm.Load(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	notes := annotations.NewStore(state, logger)
	if err := notes.Load(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load annotations: %w", err)
	}

	notifier := ui.NewToaster(os.Stdout)
	clock := timex.Real{}
	images := imagegen.NewClient(c.ImageAPIURL, nil)

	a := &App{
		config:   c,
		logger:   logger.With("module", "cli"),
		db:       db,
		backend:  client,
		sessions: sm,
		wizard:   wizard.New(client, images, notifier, clock, logger),
		notes:    notes,
		catalog:  styles.Default(),
		notifier: notifier,
		progress: ui.NewProgressBar(40),
		clock:    clock,
		out:      os.Stdout,
		reader:   bufio.NewReader(os.Stdin),
	}
	a.setChat(chat.NewTranscript(clock))
	return a, nil
}

func (a *App) setChat(t *chat.Transcript) {
	a.chat = t
	a.replies = make(chan chat.Message, 1)
	t.OnMessage(func(m chat.Message) {
		if m.Role != chat.RoleAssistant {
			return
		}
		select {
		case a.replies <- m:
		default:
		}
	})
}

// Close releases the on-device database and pending chat replies.
func (a *App) Close() error {
	if a.chat != nil {
		a.chat.Close()
	}
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isSignedIn() bool {
	return a.sessions.SignedIn()
}

func (a *App) status() string {
	if s := a.sessions.Session(); s != nil {
		return "signed in"
	}
	return "signed out"
}

// reported marks an error the user has already been shown.
type reported struct{ err error }

func (r *reported) Error() string { return r.err.Error() }
func (r *reported) Unwrap() error { return r.err }

// report shows err as a notification and returns it.
func (a *App) report(err error) error {
	if err == nil {
		return nil
	}
	a.notifier.Error(userMessage(err))
	return &reported{err: err}
}

func userMessage(err error) string {
	var se *api.StatusError
	switch {
	case errors.Is(err, api.ErrNotSignedIn):
		return "Please sign in first"
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.Is(err, api.ErrRateLimited):
		return "Too many attempts, try again later"
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.Is(err, api.ErrUnauthorized):
		return "Session expired, please sign in again"
	default:
		return err.Error()
	}
}

// printf writes to the app's output. Session events arrive on other
// goroutines, so writes are serialised.
func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	_, _ = fmt.Fprintf(a.out, format, args...)
}

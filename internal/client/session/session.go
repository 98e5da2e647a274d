// Package session keeps the client's authenticated session: it persists the
// token pair on the device, restores it at start-up and tells subscribers
// about every session change.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/roomify-app/roomify/internal/client/api"
	"github.com/roomify-app/roomify/internal/client/storage"
	"github.com/roomify-app/roomify/internal/logging"
)

// EventType names a session change. The server-originated types match the
// values pushed on its event stream.
type EventType string

const (
	InitialSession   EventType = "INITIAL_SESSION"
	SignedIn         EventType = "SIGNED_IN"
	SignedOut        EventType = "SIGNED_OUT"
	TokenRefreshed   EventType = "TOKEN_REFRESHED"
	PasswordRecovery EventType = "PASSWORD_RECOVERY"
	UserUpdated      EventType = "USER_UPDATED"
)

// Listener receives session changes. s is nil when there is no session.
type Listener func(e EventType, s *api.TokenPair)

// AuthAPI is the part of the API client the manager drives.
type AuthAPI interface {
	SignUp(ctx context.Context, email, password string) (*api.TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*api.TokenPair, error)
	SignOut(ctx context.Context) error
	RequestRecovery(ctx context.Context, email string) error
	ConfirmRecovery(ctx context.Context, token, password string) (*api.TokenPair, error)
	Events(ctx context.Context) (<-chan api.Event, error)
	SetTokens(p *api.TokenPair)
	OnTokensRefreshed(fn func(api.TokenPair))
}

type Manager struct {
	api    AuthAPI
	store  storage.Store
	logger logging.Logger

	mu        sync.Mutex
	current   *api.TokenPair
	listeners map[int]Listener
	nextID    int
}

func NewManager(a AuthAPI, store storage.Store, logger logging.Logger) *Manager {
	m := &Manager{
		api:       a,
		store:     store,
		logger:    logger.With("module", "session"),
		listeners: make(map[int]Listener),
	}
	a.OnTokensRefreshed(func(p api.TokenPair) {
		m.apply(context.Background(), TokenRefreshed, &p)
	})
	return m
}

// Subscribe registers fn for every later session change. The returned func
// unsubscribes and is safe to call more than once.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.listeners, id)
		})
	}
}

// Load restores the persisted session and emits INITIAL_SESSION, with a nil
// session when none was stored or the stored value is unreadable.
func (m *Manager) Load(ctx context.Context) error {
	raw, err := m.store.Get(ctx, storage.KeySession)
	if err != nil {
		return err
	}

	var s *api.TokenPair
	if len(raw) > 0 {
		var p api.TokenPair
		if err := json.Unmarshal(raw, &p); err != nil {
			m.logger.Warn(ctx, "discarding unreadable stored session", "error", err)
		} else if p.AccessToken != "" {
			s = &p
		}
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	m.api.SetTokens(s)

	m.notify(InitialSession, s)
	return nil
}

// Session returns a copy of the current session, or nil.
func (m *Manager) Session() *api.TokenPair {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

func (m *Manager) SignedIn() bool {
	return m.Session() != nil
}

func (m *Manager) SignUp(ctx context.Context, email, password string) error {
	p, err := m.api.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	m.apply(ctx, SignedIn, p)
	return nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	p, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	m.apply(ctx, SignedIn, p)
	return nil
}

// SignOut ends the session locally even when the server cannot be reached;
// the server error is still returned.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.api.SignOut(ctx)
	m.apply(ctx, SignedOut, nil)
	return err
}

// ResetPassword asks the server to send a recovery token to email.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	if err := m.api.RequestRecovery(ctx, email); err != nil {
		return err
	}
	m.notify(PasswordRecovery, m.Session())
	return nil
}

// ConfirmReset sets a new password and signs the user in.
func (m *Manager) ConfirmReset(ctx context.Context, token, password string) error {
	p, err := m.api.ConfirmRecovery(ctx, token, password)
	if err != nil {
		return err
	}
	m.apply(ctx, UserUpdated, p)
	return nil
}

// Watch relays server-side session events until ctx ends or the stream
// closes. A SIGNED_OUT from another device ends the local session.
func (m *Manager) Watch(ctx context.Context) error {
	ch, err := m.api.Events(ctx)
	if err != nil {
		return err
	}
	for e := range ch {
		switch EventType(e.Type) {
		case SignedOut:
			m.api.SetTokens(nil)
			m.apply(ctx, SignedOut, nil)
		case InitialSession:
		default:
			m.notify(EventType(e.Type), m.Session())
		}
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// apply installs s as the current session, persists it and notifies.
func (m *Manager) apply(ctx context.Context, e EventType, s *api.TokenPair) {
	m.mu.Lock()
	if s == nil {
		m.current = nil
	} else {
		cp := *s
		m.current = &cp
	}
	m.mu.Unlock()

	if err := m.persist(ctx, s); err != nil {
		m.logger.Error(ctx, "failed to persist session", "error", err)
	}
	m.notify(e, s)
}

func (m *Manager) persist(ctx context.Context, s *api.TokenPair) error {
	if s == nil {
		return m.store.Delete(ctx, storage.KeySession)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, storage.KeySession, raw)
}

func (m *Manager) notify(e EventType, s *api.TokenPair) {
	m.mu.Lock()
	ls := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.Unlock()

	m.logger.Debug(context.Background(), "session event", "event", string(e), "signed_in", s != nil)
	for _, l := range ls {
		var cp *api.TokenPair
		if s != nil {
			v := *s
			cp = &v
		}
		l(e, cp)
	}
}

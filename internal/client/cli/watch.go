package cli

import (
	"context"
	"strings"
	"sync"

	"github.com/roomify-app/roomify/internal/client/api"
	"github.com/roomify-app/roomify/internal/client/session"
)

// followSession prints session changes and keeps the server event stream
// open while signed in. The returned func unsubscribes, closes the stream
// and waits for it to finish.
func (a *App) followSession(ctx context.Context) (stop func()) {
	w := &sessionWatch{app: a, parent: ctx}

	unsubscribe := a.sessions.Subscribe(func(e session.EventType, s *api.TokenPair) {
		a.printSessionEvent(e)
		switch {
		case s == nil:
			w.stop()
		case e == session.SignedIn || e == session.UserUpdated:
			w.start()
		}
	})
	if a.isSignedIn() {
		w.start()
	}

	return func() {
		unsubscribe()
		w.close()
	}
}

func (a *App) printSessionEvent(e session.EventType) {
	if e == session.InitialSession {
		return
	}
	text := strings.ToLower(strings.ReplaceAll(string(e), "_", " "))
	a.printf("%s\n", muted("session: "+text))
}

// sessionWatch runs at most one session.Watch at a time.
type sessionWatch struct {
	app    *App
	parent context.Context

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// start replaces the running stream with a new one.
func (w *sessionWatch) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(w.parent)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.app.sessions.Watch(ctx); err != nil && ctx.Err() == nil {
			w.app.logger.Warn(ctx, "session event stream stopped", "error", err)
		}
	}()
}

// stop only cancels; it may run on the watching goroutine itself.
func (w *sessionWatch) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *sessionWatch) close() {
	w.mu.Lock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()
	w.wg.Wait()
}

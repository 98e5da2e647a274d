// Package annotations keeps notes pinned to points of a room photo. Points
// are percentages of the rendered image box so they survive re-layout.
package annotations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roomify-app/roomify/internal/client/storage"
	"github.com/roomify-app/roomify/internal/common"
	"github.com/roomify-app/roomify/internal/logging"
)

var (
	ErrOutOfRange = fmt.Errorf("%w: position must be within 0..100", common.ErrorValidation)
	ErrEmptyNote  = fmt.Errorf("%w: note is empty", common.ErrorValidation)
	ErrNoBox      = errors.New("image box has no area")
)

type Annotation struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store holds the list in memory and rewrites it to the device store on
// every change.
type Store struct {
	state  storage.Store
	logger logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	items []Annotation
}

func NewStore(state storage.Store, logger logging.Logger) *Store {
	return &Store{
		state:  state,
		logger: logger.With("module", "annotations"),
		now:    time.Now,
	}
}

// Load reads the persisted list. Unreadable data is logged and dropped.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.state.Get(ctx, storage.KeyAnnotations)
	if err != nil {
		return err
	}

	var items []Annotation
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			s.logger.Warn(ctx, "discarding unreadable annotations", "error", err)
			items = nil
		}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Add pins note at (x, y) and returns the new annotation.
func (s *Store) Add(ctx context.Context, x, y float64, note string) (Annotation, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return Annotation{}, ErrEmptyNote
	}
	if !inRange(x) || !inRange(y) {
		return Annotation{}, ErrOutOfRange
	}

	a := Annotation{
		ID:        uuid.NewString(),
		X:         x,
		Y:         y,
		Note:      note,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(s.snapshot(), a)
	if err := s.save(ctx, next); err != nil {
		return Annotation{}, err
	}
	s.items = next
	return a, nil
}

// Delete removes id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Annotation, 0, len(s.items))
	for _, a := range s.items {
		if a.ID != id {
			next = append(next, a)
		}
	}
	if len(next) == len(s.items) {
		return nil
	}
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.items = next
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, []Annotation{}); err != nil {
		return err
	}
	s.items = nil
	return nil
}

// List returns the annotations in insertion order.
func (s *Store) List() []Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() []Annotation {
	out := make([]Annotation, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) save(ctx context.Context, items []Annotation) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := s.state.Set(ctx, storage.KeyAnnotations, raw); err != nil {
		s.logger.Error(ctx, "failed to save annotations", "error", err)
		return err
	}
	return nil
}

// ToPercent converts a point inside a w by h box to percentages.
func ToPercent(px, py, w, h float64) (x, y float64, err error) {
	if w <= 0 || h <= 0 {
		return 0, 0, ErrNoBox
	}
	return px / w * 100, py / h * 100, nil
}

func inRange(v float64) bool {
	return v >= 0 && v <= 100
}

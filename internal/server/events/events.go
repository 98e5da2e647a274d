// Package events fans session-change notifications out to a user's open
// event streams. The memory broker serves a single instance; the redis broker
// lets several server instances share one stream per user.
package events

import (
	"context"
	"time"
)

// Type names a session change.
type Type string

const (
	SignedIn         Type = "SIGNED_IN"
	SignedOut        Type = "SIGNED_OUT"
	TokenRefreshed   Type = "TOKEN_REFRESHED"
	PasswordRecovery Type = "PASSWORD_RECOVERY"
	UserUpdated      Type = "USER_UPDATED"
)

// Event is one session change for UserID.
type Event struct {
	Type   Type      `json:"event"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

// New stamps an event with the current time.
func New(t Type, userID string) Event {
	return Event{Type: t, UserID: userID, At: time.Now().UTC()}
}

// Broker delivers events to subscribers of the same user.
//
// Subscribe returns a channel that is closed once cancel is called or ctx ends.
// Slow subscribers lose events rather than block publishers.
type Broker interface {
	Publish(ctx context.Context, e Event) error
	Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error)
	Close() error
}

const subscriberBuffer = 16

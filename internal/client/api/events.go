package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const eventsHandshakeTimeout = 10 * time.Second

// Events opens the session event stream. The channel closes when ctx ends or
// the server drops the connection.
func (c *Client) Events(ctx context.Context) (<-chan Event, error) {
	access := c.accessToken()
	if access == "" {
		return nil, ErrNotSignedIn
	}

	u, err := url.Parse(c.baseURL + "/v1/auth/events")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("access_token", access)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: eventsHandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusSwitchingProtocols {
				return nil, decodeError(resp)
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	out := make(chan Event, 16)
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			var e Event
			if err := conn.ReadJSON(&e); err != nil {
				return
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

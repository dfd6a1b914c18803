package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Subscription is an open websocket on one push topic. Every message received
// becomes a signal on Events; signals that arrive while one is already
// pending are merged into it.
type Subscription struct {
	conn   *websocket.Conn
	events chan struct{}
	done   chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

// Subscribe opens a websocket on the named topic, for example "inventory"
func (c *Client) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	target, err := c.topicURL(topic)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if c.session.Authenticated(c.now()) {
		header.Set("Authorization", "Bearer "+c.session.Token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return nil, &NetworkError{Op: "SUBSCRIBE", URL: target, Err: err}
	}

	s := &Subscription{
		conn:   conn,
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (c *Client) topicURL(topic string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/topic/" + url.PathEscape(topic)
	return u.String(), nil
}

// readLoop turns incoming messages into signals until the connection ends,
// then closes Events.
func (s *Subscription) readLoop() {
	defer close(s.events)
	defer close(s.done)

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}
		select {
		case s.events <- struct{}{}:
		default:
		}
	}
}

// Events delivers one signal per received message. It is closed when the
// connection ends, whether by Close or by the server.
func (s *Subscription) Events() <-chan struct{} {
	return s.events
}

// Err returns the error that ended the connection, if it has ended
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription and waits for the reader to stop.
// It is safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
		<-s.done
	})
	return err
}

// Package push fans change notifications out to websocket subscribers.
// Messages are signals, not data: subscribers re-fetch whatever they display.
package push

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// InventoryTopic carries a signal for every item mutation
	InventoryTopic = "inventory"
	// UpdateMessage is the payload sent on InventoryTopic
	UpdateMessage = "update"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

// ErrClosed is returned when publishing on a closed hub
var ErrClosed = errors.New("push hub closed")

// Publisher sends a payload to every subscriber of a topic
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Recorder receives hub activity, normally the Prometheus monitor
type Recorder interface {
	Published(topic string)
	Dropped(topic string)
	Subscribers(topic string, n int)
}

type nopRecorder struct{}

func (nopRecorder) Published(string)        {}
func (nopRecorder) Dropped(string)          {}
func (nopRecorder) Subscribers(string, int) {}

// Options configures a Hub
type Options struct {
	// AllowedOrigins lists the browser origins allowed to subscribe. Empty allows all.
	AllowedOrigins []string
	Recorder       Recorder
	Logger         *zap.Logger
}

// Hub keeps the websocket subscribers of every topic
type Hub struct {
	upgrader websocket.Upgrader
	recorder Recorder
	logger   *zap.Logger

	mu     sync.Mutex
	topics map[string]map[*subscriber]struct{}
	closed bool
}

// NewHub creates an empty hub
func NewHub(opts Options) *Hub {
	h := &Hub{
		recorder: opts.Recorder,
		logger:   opts.Logger,
		topics:   make(map[string]map[*subscriber]struct{}),
	}
	if h.recorder == nil {
		h.recorder = nopRecorder{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Publish delivers payload to every current subscriber of topic. A subscriber
// whose buffer is full misses this message.
func (h *Hub) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	for sub := range h.topics[topic] {
		select {
		case sub.send <- payload:
		default:
			h.recorder.Dropped(topic)
			h.logger.Debug("subscriber buffer full, dropping message", zap.String("topic", topic))
		}
	}
	h.recorder.Published(topic)
	return nil
}

// Subscribers returns the number of open subscriptions on topic
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// Close disconnects every subscriber. Later publishes fail with ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for topic, subs := range h.topics {
		for sub := range subs {
			close(sub.send)
		}
		delete(h.topics, topic)
		h.recorder.Subscribers(topic, 0)
	}
}

// ServeTopic upgrades the request to a websocket subscribed to the topic
// named by the :name route parameter.
func (h *Hub) ServeTopic(c *gin.Context) {
	h.Serve(c, c.Param("name"))
}

// Serve upgrades the request to a websocket subscribed to topic
func (h *Hub) Serve(c *gin.Context, topic string) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", zap.String("topic", topic), zap.Error(err))
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(topic, sub) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	h.logger.Debug("subscriber connected", zap.String("topic", topic), zap.String("remote", c.Request.RemoteAddr))

	go sub.writePump()
	go func() {
		sub.readPump()
		h.remove(topic, sub)
		h.logger.Debug("subscriber disconnected", zap.String("topic", topic))
	}()
}

func (h *Hub) add(topic string, sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.recorder.Subscribers(topic, len(subs))
	return true
}

func (h *Hub) remove(topic string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.send)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
	h.recorder.Subscribers(topic, len(subs))
}

// subscriber is one websocket connection. send is closed by the hub.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// readPump only drains control frames; subscribers have nothing to say.
func (s *subscriber) readPump() {
	defer s.conn.Close()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

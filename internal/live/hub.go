package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"

	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/ingest"
	"github.com/JaimeStill/binsort/pkg/lifecycle"
	"github.com/JaimeStill/binsort/pkg/routes"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	broadcastQueue = 64
)

// StatusSource computes the fill state of every bin.
type StatusSource interface {
	Status(ctx context.Context) map[bins.ID]bins.Status
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected websocket clients and fans events out to them. It
// records upload outcomes as an ingest.Recorder and alerts as an
// alerts.Channel. Slow clients whose buffer fills are disconnected.
type Hub struct {
	status     StatusSource
	clock      clock.Clock
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	sendBuffer int

	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	count      chan chan int
	done       chan struct{}
}

// New creates a Hub. Start must be called before clients connect.
func New(status StatusSource, cfg Config, clk clock.Clock, logger *slog.Logger) *Hub {
	buffer := cfg.SendBuffer
	if buffer < 1 {
		buffer = DefaultSendBuffer
	}
	return &Hub{
		status:     status,
		clock:      clk,
		logger:     logger.With("system", "live"),
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		sendBuffer: buffer,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastQueue),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop on the coordinator. Connected clients are closed on shutdown.
func (h *Hub) Start(lc *lifecycle.Coordinator) error {
	h.logger.Info("starting live hub")
	lc.Go(h.run)
	return nil
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.logger.Info("live hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.logger.Debug("client disconnected", "clients", len(h.clients))

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("dropping slow client")
					delete(h.clients, c)
					close(c.send)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// ClientCount returns the number of connected clients, or 0 once the hub has stopped.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Publish queues an event for every client without blocking. It reports
// false when the event was dropped.
func (h *Hub) Publish(eventType string, data any) bool {
	msg, err := json.Marshal(Event{
		Type: eventType,
		Time: h.clock.Now().UTC(),
		Data: data,
	})
	if err != nil {
		h.logger.Error("encode live event", "type", eventType, "error", err)
		return false
	}

	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.broadcast <- msg:
		return true
	default:
		h.logger.Warn("live queue full, dropping event", "type", eventType)
		return false
	}
}

// PublishStatus broadcasts the current fill state of every bin.
func (h *Hub) PublishStatus(ctx context.Context) bool {
	return h.Publish(EventStatus, h.status.Status(ctx))
}

// RecordOutcome broadcasts the outcome followed by the refreshed status.
func (h *Hub) RecordOutcome(ctx context.Context, target bins.ID, o ingest.Outcome) error {
	h.Publish(EventOutcome, OutcomeData{Target: target, Outcome: o})
	if o.Status == ingest.StatusSuccess {
		h.PublishStatus(ctx)
	}
	return nil
}

// Name identifies the hub as an alert channel.
func (h *Hub) Name() string {
	return "live"
}

// Send broadcasts an alert event.
func (h *Hub) Send(ctx context.Context, a alerts.Alert) error {
	h.Publish(EventAlert, alertData(a))
	return nil
}

// Routes returns the route group for the websocket endpoint.
func (h *Hub) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/live", Handler: h.ServeWS},
		},
	}
}

// ServeWS upgrades the request and streams events until the client leaves.
// The first message is always the current status.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.sendBuffer)}

	initial, err := json.Marshal(Event{
		Type: EventStatus,
		Time: h.clock.Now().UTC(),
		Data: h.status.Status(r.Context()),
	})
	if err == nil {
		c.send <- initial
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package display

import (
	log "log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/system"
)

type EventType string

const (
	EventCommand  EventType = "command"
	EventResponse EventType = "response"
	EventStatus   EventType = "status"
	EventMetrics  EventType = "metrics"
)

// Event is what watchers receive over the websocket.
type Event struct {
	Type    EventType        `json:"type"`
	Text    string           `json:"text,omitempty"`
	Metrics *system.Snapshot `json:"metrics,omitempty"`
	At      time.Time        `json:"at"`
}

const (
	publishBuffer = 64
	clientBuffer  = 16
)

// Hub fans session events out to connected watchers. A single run
// goroutine owns the client set; publishers never block on slow
// watchers, events are dropped for them instead.
type Hub struct {
	upgrader websocket.Upgrader

	events chan Event
	add    chan *client
	remove chan *client
	done   chan struct{}
	once   sync.Once

	watchers atomic.Int64
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

func NewHub() *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		events: make(chan Event, publishBuffer),
		add:    make(chan *client),
		remove: make(chan *client),
		done:   make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	clients := make(map[*client]struct{})
	for {
		select {
		case c := <-h.add:
			clients[c] = struct{}{}
			h.watchers.Store(int64(len(clients)))

		case c := <-h.remove:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
			}
			h.watchers.Store(int64(len(clients)))

		case ev := <-h.events:
			for c := range clients {
				select {
				case c.send <- ev:
				default:
					// watcher is not keeping up, skip it
				}
			}

		case <-h.done:
			for c := range clients {
				close(c.send)
			}
			h.watchers.Store(0)
			return
		}
	}
}

// Publish hands an event to the watchers. It never blocks; when the
// hub itself is backlogged the event is dropped.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case <-h.done:
	case h.events <- ev:
	default:
		log.Warn("display hub backlogged, dropping event", "type", ev.Type)
	}
}

func (h *Hub) Command(text string)  { h.Publish(Event{Type: EventCommand, Text: text}) }
func (h *Hub) Response(text string) { h.Publish(Event{Type: EventResponse, Text: text}) }
func (h *Hub) Status(text string)   { h.Publish(Event{Type: EventStatus, Text: text}) }

func (h *Hub) Metrics(snap system.Snapshot) {
	h.Publish(Event{Type: EventMetrics, Metrics: &snap})
}

// Watchers reports how many clients are connected.
func (h *Hub) Watchers() int {
	return int(h.watchers.Load())
}

func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })
}

// ServeWS upgrades the request and streams events until the watcher
// hangs up.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan Event, clientBuffer)}
	select {
	case h.add <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump(h)
}

func (c *client) writePump() {
	defer c.conn.Close()
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *client) readPump(h *Hub) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case h.remove <- c:
	case <-h.done:
	}
}

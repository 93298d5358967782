package spectate

import (
	"fmt"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sasha-s/go-deadlock"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	sendBuffer   = 8
	writeTimeout = 5 * time.Second
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected spectator. A spectator that falls
// behind loses frames rather than stalling the simulation.
type Hub struct {
	mu      deadlock.Mutex
	subs    map[int]*subscriber
	nextID  int
	last    []byte
	sent    int
	dropped int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Publish encodes f and queues it for every spectator.
func (h *Hub) Publish(f Frame) error {
	data, err := msgpack.Marshal(&f)
	if err != nil {
		return fmt.Errorf("spectate: encode frame %d: %w", f.Tick, err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for _, s := range h.subs {
		select {
		case s.send <- data:
			h.sent++
		default:
			h.dropped++
		}
	}
	return nil
}

// Subscribers returns the number of connected spectators.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Counts returns frames queued and frames dropped for slow spectators.
func (h *Hub) Counts() (sent, dropped int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sent, h.dropped
}

func (h *Hub) subscribe(conn *websocket.Conn) (int, *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	if h.last != nil {
		s.send <- h.last
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = s
	return id, s
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		close(s.send)
		delete(h.subs, id)
	}
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.subs {
		close(s.send)
		delete(h.subs, id)
	}
}

// HandlerConfig configures a Handler. A nil Logger falls back to log.Default.
type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades spectator connections and attaches them to a hub.
type Handler struct {
	hub      *Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewHandler returns a Handler that attaches every upgraded connection to hub.
func NewHandler(hub *Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle serves one spectator until it disconnects. Spectators only listen;
// anything they send is discarded.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("spectator upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}
	id, sub := h.hub.subscribe(conn)
	done := make(chan struct{})
	go h.writeLoop(id, sub, done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.hub.unsubscribe(id)
	<-done
	conn.Close()
}

func (h *Handler) writeLoop(id int, sub *subscriber, done chan<- struct{}) {
	defer close(done)
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := sub.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			h.logger.Printf("spectator %d write failed: %v", id, err)
			sub.conn.Close()
			for range sub.send {
			}
			return
		}
	}
	sub.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

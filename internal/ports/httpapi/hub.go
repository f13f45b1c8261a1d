package httpapi

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"staredown/internal/lobby"
	"staredown/internal/ports"
)

// Drainer is what the hub pulls pending updates from.
type Drainer interface {
	Drain(token, roomID, playerID string) (lobby.Update, error)
}

var _ Drainer = (*lobby.Registry)(nil)

type seatKey struct {
	roomID   string
	playerID string
}

// conn wraps a socket. mu serialises every write, and a push holds it across
// drain and write so updates reach the client in sequence order.
type conn struct {
	ws           *websocket.Conn
	token        string
	writeTimeout time.Duration

	mu     sync.Mutex
	seat   seatKey
	closed bool
}

func (c *conn) writeJSON(v any) error {
	if c.closed {
		return websocket.ErrCloseSent
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *conn) sessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// setSessionToken switches the session later pushes and keepalives use.
func (c *conn) setSessionToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// send writes v under the connection lock.
func (c *conn) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeJSON(v)
}

type pushMessage struct {
	Type string `json:"type"`
	lobby.Update
}

// Hub tracks which socket watches which seat and pushes updates to it when
// the registry signals a change. It implements ports.Notifier.
type Hub struct {
	mu     sync.RWMutex
	conns  map[seatKey]*conn
	source Drainer

	pool         *ants.Pool
	writeTimeout time.Duration
	logger       *zap.Logger
}

var _ ports.Notifier = (*Hub)(nil)

// NewHub creates a hub whose pushes run on a pool of poolSize goroutines.
func NewHub(poolSize int, writeTimeout time.Duration, logger *zap.Logger) (*Hub, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		conns:        make(map[seatKey]*conn),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
	pool, err := ants.NewPool(poolSize,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			h.logger.Error("push panicked", zap.Any("panic", p), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, err
	}
	h.pool = pool
	return h, nil
}

// Attach sets the registry the hub drains from. It must be called before the
// hub receives notifications.
func (h *Hub) Attach(d Drainer) {
	h.mu.Lock()
	h.source = d
	h.mu.Unlock()
}

// Notify implements ports.Notifier.
func (h *Hub) Notify(roomID string, playerIDs []string) {
	for _, id := range playerIDs {
		key := seatKey{roomID, id}
		h.mu.RLock()
		c, ok := h.conns[key]
		h.mu.RUnlock()
		if !ok {
			continue
		}
		h.submit(func() { h.push(c, key) })
	}
}

func (h *Hub) submit(task func()) {
	err := h.pool.Submit(task)
	if err == nil {
		return
	}
	if errors.Is(err, ants.ErrPoolOverload) {
		go task()
		return
	}
	h.logger.Warn("push dropped", zap.Error(err))
}

// push drains the seat's outbox and writes it to the socket. The drain and
// the write happen under the connection lock so concurrent pushes to the same
// client cannot reorder messages.
func (h *Hub) push(c *conn, key seatKey) {
	h.mu.RLock()
	src := h.source
	h.mu.RUnlock()
	if src == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seat != key {
		return
	}
	u, err := src.Drain(c.token, key.roomID, key.playerID)
	if err != nil {
		h.logger.Debug("push drain failed",
			zap.String("room", key.roomID), zap.String("player", key.playerID), zap.Error(err))
		return
	}
	if len(u.Messages) == 0 {
		return
	}
	if err := c.writeJSON(pushMessage{Type: "update", Update: u}); err != nil {
		h.logger.Debug("push write failed", zap.String("player", key.playerID), zap.Error(err))
	}
}

// subscribe points c at a seat, replacing whatever it watched before.
func (h *Hub) subscribe(c *conn, roomID, playerID string) {
	key := seatKey{roomID, playerID}
	h.mu.Lock()
	c.mu.Lock()
	if c.seat != (seatKey{}) && h.conns[c.seat] == c {
		delete(h.conns, c.seat)
	}
	c.seat = key
	c.mu.Unlock()
	h.conns[key] = c
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(c *conn) {
	h.mu.Lock()
	c.mu.Lock()
	if h.conns[c.seat] == c {
		delete(h.conns, c.seat)
	}
	c.seat = seatKey{}
	c.mu.Unlock()
	h.mu.Unlock()
}

// Prune drops subscriptions to seats an expiry sweep removed. The sockets
// stay open and can join again.
func (h *Hub) Prune(report lobby.ExpiryReport) {
	if len(report.Rooms) == 0 && len(report.Evicted) == 0 {
		return
	}
	gone := make(map[string]bool, len(report.Rooms))
	for _, id := range report.Rooms {
		gone[id] = true
	}
	evicted := make(map[seatKey]bool, len(report.Evicted))
	for _, b := range report.Evicted {
		evicted[seatKey{b.RoomID, b.PlayerID}] = true
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for key, c := range h.conns {
		if !gone[key.roomID] && !evicted[key] {
			continue
		}
		delete(h.conns, key)
		c.mu.Lock()
		if c.seat == key {
			c.seat = seatKey{}
		}
		c.mu.Unlock()
	}
}

// Len reports the number of subscribed sockets.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close releases the pool and closes every subscribed socket.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[seatKey]*conn)
	h.mu.Unlock()

	for _, c := range conns {
		c.mu.Lock()
		c.closed = true
		_ = c.ws.Close()
		c.mu.Unlock()
	}
	h.pool.Release()
}

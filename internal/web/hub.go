package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vitos/liquidation_heatmap/internal/domain"
	"github.com/vitos/liquidation_heatmap/internal/usecase"
)

const (
	writeWait           = 10 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = (pongWait * 9) / 10
	maxMessageSize      = 4 * 1024
	sendBuffer          = 16
	maxConsecutiveDrops = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
}

// Hub tracks live dashboard connections and the session each one is watching.
// It implements usecase.SnapshotPublisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	drops   atomic.Uint64
	logger  *zap.Logger
}

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session domain.Session
	drops   int
	closed  bool
}

// selection is what a dashboard sends to switch symbol, timeframe or view.
type selection struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	View      string `json:"view"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Sessions lists each distinct session that has at least one viewer.
func (h *Hub) Sessions() []domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool)
	var out []domain.Session
	for c := range h.clients {
		if key := c.session.Key(); !seen[key] {
			seen[key] = true
			out = append(out, c.session)
		}
	}
	return out
}

// Count is the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Drops is the number of snapshots discarded because a viewer's buffer was full.
func (h *Hub) Drops() uint64 {
	return h.drops.Load()
}

func (h *Hub) Publish(sess domain.Session, snap *usecase.HeatmapSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("Failed to encode snapshot", zap.String("session", sess.Key()), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.session != sess {
			continue
		}
		h.enqueueLocked(c, data)
	}
}

// enqueueLocked never blocks. A viewer that keeps falling behind is evicted.
func (h *Hub) enqueueLocked(c *client, data []byte) {
	select {
	case c.send <- data:
		c.drops = 0
	default:
		h.drops.Add(1)
		c.drops++
		if c.drops > maxConsecutiveDrops {
			h.logger.Warn("Evicting slow viewer", zap.Int("drops", c.drops))
			h.removeLocked(c)
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) send(c *client, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !c.closed {
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(c *client) {
	if c.closed {
		return
	}
	c.closed = true
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) setSession(c *client, sess domain.Session) {
	h.mu.Lock()
	c.session = sess
	h.mu.Unlock()
}

// CloseAll disconnects every viewer.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
		_ = c.conn.Close()
	}
}

// serve upgrades the request and streams snapshots for sess until the peer leaves.
// resolve turns a selection message, read against the viewer's current session,
// into the next session plus its first snapshot.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, sess domain.Session, first []byte,
	resolve func(prev domain.Session, sel selection) (domain.Session, []byte, error)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), session: sess}
	h.register(c)
	h.logger.Debug("Viewer connected", zap.String("session", sess.Key()))
	if first != nil {
		h.send(c, first)
	}

	go c.writePump()
	c.readPump(sess, resolve)
}

func (c *client) readPump(current domain.Session, resolve func(domain.Session, selection) (domain.Session, []byte, error)) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var sel selection
		if err := c.conn.ReadJSON(&sel); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Viewer read failed", zap.Error(err))
			}
			return
		}

		sess, data, err := resolve(current, sel)
		if err != nil {
			msg, _ := json.Marshal(map[string]string{"error": err.Error()})
			c.hub.send(c, msg)
			continue
		}
		current = sess
		c.hub.setSession(c, sess)
		c.hub.send(c, data)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

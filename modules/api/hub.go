package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zachfi/nowplaying/pkg/track"
)

const writeTimeout = 5 * time.Second

// update is the message pushed to websocket clients.
type update struct {
	Pairs []track.Pair      `json:"pairs"`
	Track map[string]string `json:"track"`
}

// hub is a sink broadcasting updates to websocket clients. A client whose
// buffer is full is disconnected rather than slowing the pipeline down.
type hub struct {
	logger *slog.Logger
	buffer int

	mtx     sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

func newHub(buffer int, logger *slog.Logger) *hub {
	return &hub{
		logger:  logger,
		buffer:  buffer,
		clients: make(map[*client]struct{}),
	}
}

func (h *hub) Name() string { return "websocket" }

func (h *hub) Update(_ context.Context, pairs []track.Pair) error {
	msg, err := json.Marshal(update{Pairs: pairs, Track: track.NewRecord(pairs).Map()})
	if err != nil {
		return err
	}

	h.mtx.Lock()
	defer h.mtx.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client", "remote", c.remote)
			delete(h.clients, c)
			c.close()
		}
	}
	return nil
}

// serve registers conn and pumps messages to it until either side closes.
func (h *hub) serve(conn *websocket.Conn) {
	c := &client{conn: conn, remote: conn.RemoteAddr().String(), send: make(chan []byte, h.buffer)}

	if !h.add(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		_ = conn.Close()
		return
	}

	// Reads only detect the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(c)
				return
			}
		}
	}()

	defer conn.Close()
	for msg := range c.send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// add registers c unless the hub has been closed.
func (h *hub) add(c *client) bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *hub) remove(c *client) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	delete(h.clients, c)
	c.close()
}

// closeAll disconnects every client and refuses new ones.
func (h *hub) closeAll() {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.closed = true

	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *hub) len() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return len(h.clients)
}

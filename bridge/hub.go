package bridge

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jonwraymond/wxshell/observe"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	readLimit  = 1024
)

// Authorize resolves the client id a websocket request may attach to.
type Authorize func(r *http.Request) (clientID string, err error)

// Hub attaches browser websockets to page contexts as watchers. Every
// message the page handles is written to the socket as JSON.
type Hub struct {
	upgrader  websocket.Upgrader
	pages     *Registry
	authorize Authorize
	logger    observe.Logger
}

// NewHub creates a hub resolving pages from reg.
func NewHub(reg *Registry, authorize Authorize, logger observe.Logger) *Hub {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pages:     reg,
		authorize: authorize,
		logger:    logger,
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorize(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	page, ok := h.pages.Page(id)
	if !ok {
		http.Error(w, "unknown client", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug(r.Context(), "websocket upgrade failed", observe.F("error", err))
		return
	}

	msgs, detach := page.Watch(DefaultMailboxSize)
	go h.writePump(conn, msgs)
	h.readPump(conn)
	detach()
}

// readPump discards inbound frames and returns when the socket fails.
func (h *Hub) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, msgs <-chan Message) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case m, ok := <-msgs:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

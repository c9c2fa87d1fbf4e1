package ws

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"valentinelink/internal/game"
	"valentinelink/internal/metrics"
	"valentinelink/internal/presentation"
	"valentinelink/internal/service"
)

// upgrader configures the WebSocket handshake. CheckOrigin returns true to
// allow the statically hosted page to connect from any host.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks the live game sessions. Unlike a broadcast hub, sessions never
// talk to each other: each one exclusively owns its own game state, so the
// registry exists only for metrics and shutdown.
type Hub struct {
	links    service.LinkService
	settings game.Settings
	metrics  *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewHub creates a session registry serving games with the given tuning.
func NewHub(links service.LinkService, settings game.Settings, m *metrics.Metrics) *Hub {
	return &Hub{
		links:    links,
		settings: settings,
		metrics:  m,
		sessions: make(map[string]*Session),
	}
}

// ServeWS handles GET /api/game/ws. The query string carries the same
// configuration sources as the page itself: a short link id, an inline
// Base64 config, or nothing (stock configuration).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cfg, err := presentation.ResolveConfig(r.Context(), h.links,
		query.Get("id"), query.Get("config"), query.Get("lang"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrMissingID) {
			http.Error(w, "Config not found", http.StatusNotFound)
			return
		}
		log.Printf("WS: failed to resolve config: %v", err)
		http.Error(w, "Failed to get config", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS upgrade error: %v", err)
		return
	}

	session := newSession(uuid.NewString(), h, conn,
		presentation.NewController(cfg, h.settings))

	if !h.register(session) {
		conn.Close()
		return
	}

	// One goroutine per pump; the game loop runs inside the write side so a
	// slow reader never stalls the simulation of other sessions.
	go session.writePump()
	go session.readPump()

	session.sendConfig()
}

// register adds a session to the registry unless the hub is shutting down.
func (h *Hub) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.sessions[s.id] = s
	h.metrics.GameSessions.Inc()
	log.Printf("WS: session %s connected", s.id)
	return true
}

// remove drops a session from the registry.
func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.id]; ok {
		delete(h.sessions, s.id)
		h.metrics.GameSessions.Dec()
		log.Printf("WS: session %s disconnected", s.id)
	}
}

// Shutdown closes every live session and refuses new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"valentinelink/internal/game"
	"valentinelink/internal/presentation"
)

// tickInterval is the simulation cadence, roughly one tick per animation
// frame at 60 Hz. Spawn and countdown timing inside the engine is
// timestamp-driven, so a missed tick slows rendering, not game pacing.
const tickInterval = 16 * time.Millisecond

// Session is one connected player: a WebSocket connection, the page's
// resolved configuration and at most one running game. The session's write
// goroutine is the only one that advances the engine; the read goroutine
// only feeds the input buffer and flips the engine pointer under the lock.
type Session struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	ctrl *presentation.Controller

	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	engine *game.Engine

	closeOnce sync.Once
}

func newSession(id string, hub *Hub, conn *websocket.Conn, ctrl *presentation.Controller) *Session {
	return &Session{
		id:   id,
		hub:  hub,
		conn: conn,
		ctrl: ctrl,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
}

// sendConfig delivers the resolved configuration, reward withheld.
func (s *Session) sendConfig() {
	cfg := s.ctrl.Config()
	s.enqueue(TypeConfig, ConfigPayload{
		Recipient: cfg.Recipient,
		Sender:    cfg.Sender,
		Letter:    cfg.Letter,
		Lang:      cfg.Lang,
		Game:      s.hub.settings,
	})
}

// readPump pumps messages from the websocket connection into the session.
func (s *Session) readPump() {
	defer s.close()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WS: session %s read error: %v", s.id, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("WS: session %s sent malformed message: %v", s.id, err)
			continue
		}

		s.handleMessage(msg)
	}
}

// handleMessage dispatches one inbound message. Unknown types are ignored;
// the game itself has no error states to surface.
func (s *Session) handleMessage(msg Message) {
	switch msg.Type {
	case TypeStart:
		s.startGame(false)

	case TypeRetry:
		s.startGame(true)

	case TypeInput:
		var input InputPayload
		if err := json.Unmarshal(msg.Payload, &input); err != nil {
			return
		}
		if engine := s.currentEngine(); engine != nil {
			engine.Input().SetKey(input.Key, input.Pressed)
		}

	case TypePointer:
		var pointer PointerPayload
		if err := json.Unmarshal(msg.Payload, &pointer); err != nil {
			return
		}
		if engine := s.currentEngine(); engine != nil {
			engine.Input().SetPointer(pointer.X, pointer.Y)
		}
	}
}

// startGame begins a session, or on retry discards the finished one. A
// start while a game is still in play is ignored.
func (s *Session) startGame(retry bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil && s.engine.Phase() == game.PhasePlaying && !retry {
		return
	}

	s.engine = s.ctrl.StartGame(func(won bool) {
		outcome := "lost"
		if won {
			outcome = "won"
		}
		s.hub.metrics.GameOutcomes.WithLabelValues(outcome).Inc()

		verdict := VerdictPayload{Won: won}
		if reward, ok := s.ctrl.Reward(); ok {
			verdict.Reward = reward
		}
		s.enqueue(TypeVerdict, verdict)
	})
}

// currentEngine returns the live engine, nil before the first start.
func (s *Session) currentEngine() *game.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// writePump owns the connection's write side: it advances the simulation on
// a fixed ticker, publishes snapshots and drains the outbound queue. It
// exits when the session closes, which stops all further state mutation.
func (s *Session) writePump() {
	ticker := time.NewTicker(tickInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.hub.remove(s)
	}()

	for {
		select {
		case <-s.done:
			return

		case message, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			engine := s.currentEngine()
			if engine == nil {
				continue
			}

			wasPlaying := engine.Phase() == game.PhasePlaying
			engine.Advance(time.Now())
			if !wasPlaying {
				// Terminal sessions stay quiet until a retry.
				continue
			}

			raw, err := encodeMessage(TypeState, engine.Snapshot())
			if err != nil {
				log.Printf("WS: session %s snapshot encode error: %v", s.id, err)
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		}
	}
}

// enqueue queues an outbound envelope without ever blocking the caller. A
// full queue means the client stopped reading; the write pump will notice
// soon enough.
func (s *Session) enqueue(msgType string, payload interface{}) {
	raw, err := encodeMessage(msgType, payload)
	if err != nil {
		log.Printf("WS: session %s encode error: %v", s.id, err)
		return
	}

	select {
	case s.send <- raw:
	default:
	}
}

// close tears the session down exactly once: further ticks stop, the
// connection closes and the hub forgets the session.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		s.hub.remove(s)
	})
}

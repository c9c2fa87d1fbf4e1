package ws

import (
	"encoding/json"

	"valentinelink/internal/domain"
	"valentinelink/internal/game"
)

// Message is the JSON envelope for all real-time communication, both
// directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound message types.
const (
	// TypeStart begins a fresh game session.
	TypeStart = "start"
	// TypeRetry discards the current session and starts another.
	TypeRetry = "retry"
	// TypeInput carries a key press or release.
	TypeInput = "input"
	// TypePointer carries an absolute pointer/touch target.
	TypePointer = "pointer"
)

// Outbound message types.
const (
	// TypeConfig delivers the resolved page configuration on connect.
	TypeConfig = "config"
	// TypeState delivers a session snapshot, once per tick.
	TypeState = "state"
	// TypeVerdict delivers the single win/lose outcome of a session.
	TypeVerdict = "verdict"
)

// InputPayload is the body of an input message.
type InputPayload struct {
	Key     game.Key `json:"key"`
	Pressed bool     `json:"pressed"`
}

// PointerPayload is the body of a pointer message.
type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ConfigPayload is the body of the config message sent on connect. The
// reward is deliberately absent: it is only ever revealed by a won verdict.
type ConfigPayload struct {
	Recipient domain.Recipient `json:"recipient"`
	Sender    domain.Sender    `json:"sender"`
	Letter    domain.Letter    `json:"letter"`
	Lang      string           `json:"lang"`
	Game      game.Settings    `json:"game"`
}

// VerdictPayload is the body of the verdict message. Reward is present only
// when the session was won.
type VerdictPayload struct {
	Won    bool           `json:"won"`
	Reward *domain.Reward `json:"reward,omitempty"`
}

// encodeMessage marshals an envelope with the given payload.
func encodeMessage(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Payload: raw})
}

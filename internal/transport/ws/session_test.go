package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"valentinelink/internal/domain"
	"valentinelink/internal/game"
	"valentinelink/internal/metrics"
	"valentinelink/internal/service"
	"valentinelink/internal/service/mocks"
)

// testSettings keeps sessions short and deterministic: no spawns, so the
// verdict is decided purely by target score and clock.
func testSettings(targetScore int, duration time.Duration) game.Settings {
	s := game.DefaultSettings()
	s.FireInterval = time.Hour
	s.HeartInterval = time.Hour
	s.TargetScore = targetScore
	s.Duration = duration
	return s
}

func newTestHub(t *testing.T, links service.LinkService, settings game.Settings) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(links, settings, metrics.New(prometheus.NewRegistry()))
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))

	t.Cleanup(func() {
		hub.Shutdown()
		server.Close()
	})

	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %q message", msgType)
		if msg.Type == msgType {
			return msg
		}
	}
}

func writeMessage(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()

	raw, err := encodeMessage(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func TestSession_ConfigWithholdsReward(t *testing.T) {
	links := &mocks.LinkService{}
	_, server := newTestHub(t, links, testSettings(1, time.Second))

	conn := dial(t, server, "lang=en")

	msg := readUntil(t, conn, TypeConfig)

	var cfg ConfigPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &cfg))
	assert.Equal(t, "Valentine", cfg.Recipient.Name)

	// The envelope must not leak the reward before a verdict.
	assert.NotContains(t, string(msg.Payload), "reward")
	assert.NotContains(t, string(msg.Payload), domain.DefaultConfig().Game.Reward.Code)
}

func TestSession_WinDeliversRewardOnce(t *testing.T) {
	links := &mocks.LinkService{}
	// Target score zero wins on the first tick after start.
	_, server := newTestHub(t, links, testSettings(0, 20*time.Second))

	conn := dial(t, server, "")
	readUntil(t, conn, TypeConfig)

	writeMessage(t, conn, TypeStart, struct{}{})

	msg := readUntil(t, conn, TypeVerdict)

	var verdict VerdictPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &verdict))
	assert.True(t, verdict.Won)
	require.NotNil(t, verdict.Reward)
	assert.Equal(t, domain.DefaultConfig().Game.Reward, *verdict.Reward)
}

func TestSession_LossWithholdsReward(t *testing.T) {
	links := &mocks.LinkService{}
	_, server := newTestHub(t, links, testSettings(1, time.Second))

	conn := dial(t, server, "")
	readUntil(t, conn, TypeConfig)

	writeMessage(t, conn, TypeStart, struct{}{})

	msg := readUntil(t, conn, TypeVerdict)

	var verdict VerdictPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &verdict))
	assert.False(t, verdict.Won)
	assert.Nil(t, verdict.Reward)
}

func TestSession_RetryAfterLoss(t *testing.T) {
	links := &mocks.LinkService{}
	_, server := newTestHub(t, links, testSettings(1, time.Second))

	conn := dial(t, server, "")
	readUntil(t, conn, TypeConfig)

	writeMessage(t, conn, TypeStart, struct{}{})
	readUntil(t, conn, TypeVerdict)

	// A fresh session starts with a reset clock and score.
	writeMessage(t, conn, TypeRetry, struct{}{})

	msg := readUntil(t, conn, TypeState)
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, game.PhasePlaying, snap.Phase)
	assert.Equal(t, 0, snap.Score)
}

func TestSession_InputMovesShip(t *testing.T) {
	links := &mocks.LinkService{}
	_, server := newTestHub(t, links, testSettings(10, 20*time.Second))

	conn := dial(t, server, "")
	readUntil(t, conn, TypeConfig)

	writeMessage(t, conn, TypeStart, struct{}{})

	first := readUntil(t, conn, TypeState)
	var before game.Snapshot
	require.NoError(t, json.Unmarshal(first.Payload, &before))

	writeMessage(t, conn, TypeInput, InputPayload{Key: game.KeyLeft, Pressed: true})

	// Give the loop a few ticks to consume the key.
	moved := false
	for i := 0; i < 100 && !moved; i++ {
		msg := readUntil(t, conn, TypeState)
		var after game.Snapshot
		require.NoError(t, json.Unmarshal(msg.Payload, &after))
		moved = after.Ship.X < before.Ship.X
	}
	assert.True(t, moved, "ship never moved left")
}

func TestSession_ResolvesInlineConfig(t *testing.T) {
	// A non-ASCII configuration whose Base64 form contains '+', delivered
	// the way a browser would embed it in the connect URL.
	inline := domain.DefaultConfigZH()
	inline.Recipient.Name = "亲爱的0"
	param, err := domain.EncodeInlineConfig(inline)
	require.NoError(t, err)

	links := &mocks.LinkService{}
	_, server := newTestHub(t, links, testSettings(1, time.Second))

	conn := dial(t, server, "config="+param)

	msg := readUntil(t, conn, TypeConfig)
	var cfg ConfigPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &cfg))
	assert.Equal(t, "亲爱的0", cfg.Recipient.Name)
	assert.Equal(t, inline.Letter, cfg.Letter)
}

func TestSession_ResolvesStoredConfig(t *testing.T) {
	stored := domain.DefaultConfigZH()

	links := &mocks.LinkService{}
	links.On("ResolveLink", mock.Anything, "abc123").Return(stored, nil)

	_, server := newTestHub(t, links, testSettings(1, time.Second))

	conn := dial(t, server, "id=abc123")

	msg := readUntil(t, conn, TypeConfig)
	var cfg ConfigPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &cfg))
	assert.Equal(t, stored.Recipient.Name, cfg.Recipient.Name)
	assert.Equal(t, domain.LangZH, cfg.Lang)
}

func TestSession_StorageFailureIsServerError(t *testing.T) {
	links := &mocks.LinkService{}
	links.On("ResolveLink", mock.Anything, "abc123").Return(nil, assert.AnError)

	_, server := newTestHub(t, links, testSettings(1, time.Second))

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?id=abc123"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSession_UnknownLinkRejected(t *testing.T) {
	links := &mocks.LinkService{}
	links.On("ResolveLink", mock.Anything, "doesnotexist").Return(nil, service.ErrNotFound)

	_, server := newTestHub(t, links, testSettings(1, time.Second))

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?id=doesnotexist"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

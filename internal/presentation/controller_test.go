package presentation

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"valentinelink/internal/domain"
	"valentinelink/internal/game"
	"valentinelink/internal/service"
	"valentinelink/internal/service/mocks"
)

func TestResolveConfig_StoredLink(t *testing.T) {
	ctx := context.Background()
	stored := domain.DefaultConfigZH()

	links := &mocks.LinkService{}
	links.On("ResolveLink", ctx, "abc123").Return(stored, nil)

	cfg, err := ResolveConfig(ctx, links, "abc123", "", "")
	require.NoError(t, err)
	assert.Equal(t, stored, cfg)
	links.AssertExpectations(t)
}

func TestResolveConfig_UnknownLinkIsAnError(t *testing.T) {
	ctx := context.Background()

	links := &mocks.LinkService{}
	links.On("ResolveLink", ctx, "doesnotexist").Return(nil, service.ErrNotFound)

	cfg, err := ResolveConfig(ctx, links, "doesnotexist", "", "")
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Nil(t, cfg)
}

func TestResolveConfig_InlinePayload(t *testing.T) {
	ctx := context.Background()
	inline := domain.DefaultConfig()
	inline.Recipient.Name = "Inline"
	param, err := domain.EncodeInlineConfig(inline)
	require.NoError(t, err)

	links := &mocks.LinkService{}

	cfg, err := ResolveConfig(ctx, links, "", queryValue(t, param), "")
	require.NoError(t, err)
	assert.Equal(t, "Inline", cfg.Recipient.Name)
	links.AssertNotCalled(t, "ResolveLink", mock.Anything, mock.Anything)
}

// queryValue runs an encoded parameter through query parsing, reproducing
// what the transport hands to ResolveConfig.
func queryValue(t *testing.T, param string) string {
	t.Helper()

	values, err := url.ParseQuery("config=" + param)
	require.NoError(t, err)
	return values.Get("config")
}

func TestResolveConfig_InlineNonASCIIPayload(t *testing.T) {
	ctx := context.Background()

	// The Base64 form of this configuration contains '+' characters; it
	// must resolve to the inline content, not fall back to a default.
	inline := domain.DefaultConfigZH()
	inline.Recipient.Name = "亲爱的0"
	param, err := domain.EncodeInlineConfig(inline)
	require.NoError(t, err)

	links := &mocks.LinkService{}

	cfg, err := ResolveConfig(ctx, links, "", queryValue(t, param), "")
	require.NoError(t, err)
	assert.Equal(t, inline, cfg)
}

func TestResolveConfig_MalformedInlineFallsBack(t *testing.T) {
	ctx := context.Background()
	links := &mocks.LinkService{}

	// A broken preview payload is swallowed, never surfaced.
	cfg, err := ResolveConfig(ctx, links, "", "!!!garbage!!!", domain.LangZH)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfigZH(), cfg)
}

func TestResolveConfig_Default(t *testing.T) {
	ctx := context.Background()
	links := &mocks.LinkService{}

	cfg, err := ResolveConfig(ctx, links, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

// playToVerdict drives an engine to the requested outcome using injected
// deterministic ticks.
func playToVerdict(t *testing.T, engine *game.Engine, win bool) {
	t.Helper()

	now := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	engine.Advance(now)

	deadline := now.Add(engine.Settings().Duration + 2*time.Second)
	for engine.Phase() == game.PhasePlaying {
		now = now.Add(time.Second)
		require.True(t, now.Before(deadline.Add(5*time.Second)), "engine never reached a verdict")
		engine.Advance(now)
	}
	if win {
		require.Equal(t, game.PhaseWon, engine.Phase())
	} else {
		require.Equal(t, game.PhaseLost, engine.Phase())
	}
}

// controllerSettings disables spawns so the verdict comes from the clock
// against the given target alone: target 0 wins on the first tick, any
// higher target loses when time runs out.
func controllerSettings(targetScore int) game.Settings {
	s := game.DefaultSettings()
	s.FireInterval = time.Hour
	s.HeartInterval = time.Hour
	s.TargetScore = targetScore
	return s
}

func TestController_RewardGatedOnWin(t *testing.T) {
	cfg := domain.DefaultConfig()
	ctrl := NewController(cfg, controllerSettings(0))

	// Nothing to reveal before any game runs.
	_, ok := ctrl.Reward()
	assert.False(t, ok)

	var calls int
	engine := ctrl.StartGame(func(won bool) {
		calls++
		assert.True(t, won)
	})
	playToVerdict(t, engine, true)

	require.Equal(t, game.PhaseWon, engine.Phase())
	assert.Equal(t, 1, calls)
	assert.True(t, ctrl.Won())

	reward, ok := ctrl.Reward()
	require.True(t, ok)
	assert.Equal(t, cfg.Game.Reward, *reward)
}

func TestController_NoRewardOnLoss(t *testing.T) {
	ctrl := NewController(domain.DefaultConfig(), controllerSettings(1))

	engine := ctrl.StartGame(nil)
	playToVerdict(t, engine, false)

	assert.False(t, ctrl.Won())
	_, ok := ctrl.Reward()
	assert.False(t, ok)
}

func TestController_RetryDiscardsPriorSession(t *testing.T) {
	ctrl := NewController(domain.DefaultConfig(), controllerSettings(1))

	first := ctrl.StartGame(nil)
	playToVerdict(t, first, false)
	require.Equal(t, game.PhaseLost, first.Phase())

	// Retry: fresh session, verdict cleared, score and timer reset.
	second := ctrl.StartGame(nil)
	assert.NotSame(t, first, second)
	assert.Equal(t, game.PhasePlaying, second.Phase())
	assert.Equal(t, 0, second.Snapshot().Score)
	assert.False(t, ctrl.Won())
	_, ok := ctrl.Reward()
	assert.False(t, ok)
}

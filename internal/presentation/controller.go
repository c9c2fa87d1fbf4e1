package presentation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"valentinelink/internal/domain"
	"valentinelink/internal/game"
	"valentinelink/internal/service"
)

// ResolveConfig picks the configuration for a page view, in order of
// preference: the stored record for a short link id, an inline Base64
// payload, then the stock configuration for the requested language. An
// unknown id is an error (the page renders not-found); a malformed inline
// payload is not (the preview path is best-effort and falls back silently).
func ResolveConfig(ctx context.Context, links service.LinkService, id, inlineParam, lang string) (*domain.ValentineConfig, error) {
	if id != "" {
		cfg, err := links.ResolveLink(ctx, id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrMissingID) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to resolve link %s: %w", id, err)
		}
		return cfg, nil
	}

	if inlineParam != "" {
		cfg, err := domain.DecodeInlineConfig(inlineParam)
		if err == nil {
			return cfg, nil
		}
		log.Printf("Ignoring malformed inline config: %v", err)
	}

	return domain.DefaultConfigForLang(lang), nil
}

// Controller wires one resolved configuration to at most one live game
// session and gates reward reveal on the session's verdict. It owns its
// engine exclusively; a retry discards the old session entirely.
type Controller struct {
	mu sync.Mutex

	config   *domain.ValentineConfig
	settings game.Settings

	engine  *game.Engine
	verdict *bool
}

// NewController creates a controller for one page view.
func NewController(config *domain.ValentineConfig, settings game.Settings) *Controller {
	return &Controller{
		config:   config,
		settings: settings,
	}
}

// Config returns the configuration driving the page.
func (c *Controller) Config() *domain.ValentineConfig {
	return c.config
}

// StartGame creates a fresh game session, discarding any previous one along
// with its verdict. onComplete is invoked exactly once per session.
func (c *Controller) StartGame(onComplete func(won bool)) *game.Engine {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.verdict = nil
	c.engine = game.NewEngine(c.settings, func(won bool) {
		c.mu.Lock()
		c.verdict = &won
		c.mu.Unlock()

		if onComplete != nil {
			onComplete(won)
		}
	})
	return c.engine
}

// Engine returns the live session, or nil before StartGame.
func (c *Controller) Engine() *game.Engine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine
}

// Reward returns the reward only after a Won verdict. Before a verdict, or
// after a loss, there is nothing to reveal.
func (c *Controller) Reward() (*domain.Reward, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.verdict == nil || !*c.verdict {
		return nil, false
	}
	reward := c.config.Game.Reward
	return &reward, true
}

// Won reports whether the current session ended in a win.
func (c *Controller) Won() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verdict != nil && *c.verdict
}

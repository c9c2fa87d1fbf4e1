package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// LinkTTL is how long a stored configuration remains valid after creation.
// Expired records stay readable until an explicit purge runs.
const LinkTTL = 30 * 24 * time.Hour

// Recipient identifies who the generated page is addressed to.
type Recipient struct {
	Name string `json:"name"`
}

// Sender identifies who the generated page is from.
type Sender struct {
	Name string `json:"name"`
}

// Letter holds the letter body, one entry per paragraph.
type Letter struct {
	Content []string `json:"content"`
}

// Reward is the gift revealed after winning the game.
type Reward struct {
	Code     string `json:"code"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

// Game holds the game-gated portion of a configuration.
type Game struct {
	Reward Reward `json:"reward"`
}

// ValentineConfig is the user-authored content that parameterizes a
// generated page. It is stored verbatim as an opaque JSON document.
type ValentineConfig struct {
	Recipient Recipient `json:"recipient"`
	Sender    Sender    `json:"sender"`
	Letter    Letter    `json:"letter"`
	Game      Game      `json:"game"`
	Lang      string    `json:"lang,omitempty"`
}

// Supported languages.
const (
	LangEN = "en"
	LangZH = "zh"
)

// Normalize drops blank letter paragraphs and defaults the language to "en".
func (c *ValentineConfig) Normalize() {
	filtered := c.Letter.Content[:0]
	for _, p := range c.Letter.Content {
		if strings.TrimSpace(p) != "" {
			filtered = append(filtered, p)
		}
	}
	c.Letter.Content = filtered

	if c.Lang == "" {
		c.Lang = LangEN
	}
}

// Validate checks the structural shape of a normalized configuration.
func (c *ValentineConfig) Validate() error {
	if strings.TrimSpace(c.Recipient.Name) == "" {
		return fmt.Errorf("recipient name is required")
	}
	if strings.TrimSpace(c.Sender.Name) == "" {
		return fmt.Errorf("sender name is required")
	}
	if len(c.Letter.Content) == 0 {
		return fmt.Errorf("letter must contain at least one paragraph")
	}
	if c.Game.Reward.Amount < 0 {
		return fmt.Errorf("reward amount must be non-negative")
	}
	if c.Lang != LangEN && c.Lang != LangZH {
		return fmt.Errorf("unsupported language %q", c.Lang)
	}
	return nil
}

// ShortLinkRecord is a stored configuration keyed by its short identifier.
type ShortLinkRecord struct {
	ID        string          `json:"id"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the record's TTL has passed at the given time.
func (r *ShortLinkRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// CreateLinkResponse is the response when creating a short link.
type CreateLinkResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the JSON error body returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeInlineConfig parses a URL-embedded configuration: a Base64-encoded
// UTF-8 JSON document. The caller passes the query parameter value as the
// transport delivered it, already percent-decoded; unescaping again here
// would corrupt any Base64 text containing '+'. This is the serverless
// preview path, so any failure returns an error for the caller to swallow,
// not surface.
func DecodeInlineConfig(param string) (*ValentineConfig, error) {
	raw, err := base64.StdEncoding.DecodeString(param)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config parameter: %w", err)
	}

	var cfg ValentineConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse inline config: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inline config: %w", err)
	}

	return &cfg, nil
}

// EncodeInlineConfig produces the percent-escaped parameter value for a
// shareable preview link that bypasses server persistence. The transport's
// query parsing undoes the escaping before DecodeInlineConfig sees it.
func EncodeInlineConfig(cfg *ValentineConfig) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return url.QueryEscape(base64.StdEncoding.EncodeToString(raw)), nil
}

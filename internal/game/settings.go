package game

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings stores the tuning variables for one game session: play-field
// geometry, entity speeds, spawn cadence and the win condition. Values map
// directly to an optional YAML tuning file.
type Settings struct {
	FieldWidth  float64 `yaml:"field_width" json:"field_width"`   // Play-field width in pixels
	FieldHeight float64 `yaml:"field_height" json:"field_height"` // Play-field height in pixels

	ShipSize     float64 `yaml:"ship_size" json:"ship_size"`         // Ship is square, this is its side
	BulletWidth  float64 `yaml:"bullet_width" json:"bullet_width"`   // Bullet bounding-box width
	BulletHeight float64 `yaml:"bullet_height" json:"bullet_height"` // Bullet bounding-box height
	HeartSize    float64 `yaml:"heart_size" json:"heart_size"`       // Heart is square, this is its side

	ShipSpeed   float64 `yaml:"ship_speed" json:"ship_speed"`     // Pixels per frame
	BulletSpeed float64 `yaml:"bullet_speed" json:"bullet_speed"` // Pixels per frame, upward
	HeartSpeed  float64 `yaml:"heart_speed" json:"heart_speed"`   // Pixels per frame, downward

	FireInterval  time.Duration `yaml:"fire_interval" json:"fire_interval"`   // Wall-clock time between autofired bullets
	HeartInterval time.Duration `yaml:"heart_interval" json:"heart_interval"` // Wall-clock time between heart spawns

	TargetScore int           `yaml:"target_score" json:"target_score"` // Hearts to destroy to win
	Duration    time.Duration `yaml:"duration" json:"duration"`         // Session length
}

// DefaultSettings returns the stock tuning: a 300x450 field, 20 seconds to
// shoot down 10 hearts.
func DefaultSettings() Settings {
	return Settings{
		FieldWidth:    300,
		FieldHeight:   450,
		ShipSize:      40,
		BulletWidth:   5,
		BulletHeight:  10,
		HeartSize:     30,
		ShipSpeed:     5,
		BulletSpeed:   6,
		HeartSpeed:    2,
		FireInterval:  300 * time.Millisecond,
		HeartInterval: time.Second,
		TargetScore:   10,
		Duration:      20 * time.Second,
	}
}

// LoadSettings reads a YAML tuning file over the defaults. Fields absent
// from the file keep their default values.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	raw, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read game settings: %w", err)
	}

	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse game settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid game settings: %w", err)
	}

	return settings, nil
}

// Validate checks the tuning values are usable
func (s Settings) Validate() error {
	if s.FieldWidth <= s.ShipSize || s.FieldHeight <= s.ShipSize {
		return fmt.Errorf("play field %gx%g cannot fit ship of size %g", s.FieldWidth, s.FieldHeight, s.ShipSize)
	}
	if s.ShipSpeed <= 0 || s.BulletSpeed <= 0 || s.HeartSpeed <= 0 {
		return fmt.Errorf("entity speeds must be positive")
	}
	if s.FireInterval <= 0 || s.HeartInterval <= 0 {
		return fmt.Errorf("spawn intervals must be positive")
	}
	if s.TargetScore <= 0 {
		return fmt.Errorf("target score must be positive, got %d", s.TargetScore)
	}
	if s.Duration < time.Second {
		return fmt.Errorf("duration must be at least one second, got %v", s.Duration)
	}
	return nil
}

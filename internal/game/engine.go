package game

import (
	"math/rand"
	"time"
)

// Phase is the session state machine: Playing until the target score is
// reached (Won) or time runs out first (Lost). Both outcomes are terminal.
type Phase string

const (
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
	PhaseLost    Phase = "lost"
)

// Entity is a bullet or heart in flight. Ids come from a per-engine
// monotonic counter, so entities are unique within a session but two
// concurrent sessions never contend over shared state.
type Entity struct {
	ID uint64  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Snapshot is an immutable copy of session state published for rendering.
// The engine's own state remains the single authoritative copy; renderers
// only ever see snapshots.
type Snapshot struct {
	Ship     Point    `json:"ship"`
	Bullets  []Entity `json:"bullets"`
	Hearts   []Entity `json:"hearts"`
	Score    int      `json:"score"`
	TimeLeft int      `json:"time_left"`
	Phase    Phase    `json:"phase"`
}

// Engine runs one authoritative game session. A single goroutine drives it
// through Advance; only the input buffer may be touched from elsewhere.
// There are no error states: every input maps to a valid next state.
type Engine struct {
	settings Settings
	input    *InputBuffer

	ship     Point
	bullets  []Entity
	hearts   []Entity
	score    int
	timeLeft int
	phase    Phase

	nextEntityID uint64
	rng          *rand.Rand

	started   bool
	lastFire  time.Time
	lastHeart time.Time
	lastTimer time.Time

	onComplete func(won bool)
	completed  bool
}

// NewEngine creates a session in the Playing phase with the ship centered at
// the bottom of the field. onComplete is invoked exactly once, when the
// session reaches a terminal phase.
func NewEngine(settings Settings, onComplete func(won bool)) *Engine {
	return &Engine{
		settings: settings,
		input:    NewInputBuffer(),
		ship: Point{
			X: settings.FieldWidth/2 - settings.ShipSize/2,
			Y: settings.FieldHeight - settings.ShipSize - 10,
		},
		timeLeft:   int(settings.Duration / time.Second),
		phase:      PhasePlaying,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		onComplete: onComplete,
	}
}

// Input returns the session's input buffer for transport goroutines to feed.
func (e *Engine) Input() *InputBuffer {
	return e.input
}

// Advance runs one simulation tick at the given timestamp. Timestamps must be
// monotonically non-decreasing across calls. Spawn and countdown cadence are
// timestamp-driven so pacing is identical at any frame rate; movement uses
// fixed per-frame deltas, an accepted simplification for a 20-second game.
func (e *Engine) Advance(now time.Time) {
	if e.phase != PhasePlaying {
		return
	}

	if !e.started {
		e.started = true
		e.lastFire = now
		e.lastHeart = now
		e.lastTimer = now
	}

	held, pointer := e.input.snapshot()

	// 1. Ship movement, clamped to the field on both axes.
	if pointer != nil {
		e.ship.X = pointer.X
		e.ship.Y = pointer.Y
	} else {
		if held[KeyLeft] {
			e.ship.X -= e.settings.ShipSpeed
		}
		if held[KeyRight] {
			e.ship.X += e.settings.ShipSpeed
		}
		if held[KeyUp] {
			e.ship.Y -= e.settings.ShipSpeed
		}
		if held[KeyDown] {
			e.ship.Y += e.settings.ShipSpeed
		}
	}
	e.ship.X = clamp(e.ship.X, 0, e.settings.FieldWidth-e.settings.ShipSize)
	e.ship.Y = clamp(e.ship.Y, 0, e.settings.FieldHeight-e.settings.ShipSize)

	// 2. Autofire from the ship's horizontal center.
	if now.Sub(e.lastFire) >= e.settings.FireInterval {
		e.bullets = append(e.bullets, Entity{
			ID: e.nextID(),
			X:  e.ship.X + e.settings.ShipSize/2 - e.settings.BulletWidth/2,
			Y:  e.ship.Y,
		})
		e.lastFire = now
	}

	// 3. Bullets travel up; gone past the top edge means gone for good.
	live := e.bullets[:0]
	for _, b := range e.bullets {
		b.Y -= e.settings.BulletSpeed
		if b.Y > -e.settings.BulletHeight {
			live = append(live, b)
		}
	}
	e.bullets = live

	// 4. Hearts spawn at the top edge at a uniformly random x.
	if now.Sub(e.lastHeart) >= e.settings.HeartInterval {
		e.hearts = append(e.hearts, Entity{
			ID: e.nextID(),
			X:  e.rng.Float64() * (e.settings.FieldWidth - e.settings.HeartSize),
			Y:  -e.settings.HeartSize,
		})
		e.lastHeart = now
	}

	// 5. Hearts fall; one slipping past the bottom is removed with no
	// penalty. Missing a heart is free.
	falling := e.hearts[:0]
	for _, h := range e.hearts {
		h.Y += e.settings.HeartSpeed
		if h.Y < e.settings.FieldHeight {
			falling = append(falling, h)
		}
	}
	e.hearts = falling

	// 6. Collision: any bullet overlapping a heart destroys it for exactly
	// one point, however many bullets overlap it this frame. Bullets pass
	// through and are not consumed.
	remaining := e.hearts[:0]
	for _, h := range e.hearts {
		hit := false
		for _, b := range e.bullets {
			if b.X < h.X+e.settings.HeartSize &&
				b.X+e.settings.BulletWidth > h.X &&
				b.Y < h.Y+e.settings.HeartSize &&
				b.Y+e.settings.BulletHeight > h.Y {
				hit = true
				break
			}
		}
		if hit {
			e.score++
		} else {
			remaining = append(remaining, h)
		}
	}
	e.hearts = remaining

	// 7. Win check runs before the countdown, so the player wins a tick
	// where the final heart dies as time expires.
	if e.score >= e.settings.TargetScore {
		e.finish(PhaseWon)
		return
	}

	// 8. Countdown, once per elapsed real second.
	if now.Sub(e.lastTimer) >= time.Second {
		e.timeLeft--
		e.lastTimer = now
		if e.timeLeft <= 0 {
			e.finish(PhaseLost)
		}
	}
}

// finish moves the session to a terminal phase and emits the verdict. The
// completed guard makes the callback fire at most once per session.
func (e *Engine) finish(phase Phase) {
	e.phase = phase
	if e.completed {
		return
	}
	e.completed = true
	if e.onComplete != nil {
		e.onComplete(phase == PhaseWon)
	}
}

// Snapshot publishes a render copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	bullets := make([]Entity, len(e.bullets))
	copy(bullets, e.bullets)
	hearts := make([]Entity, len(e.hearts))
	copy(hearts, e.hearts)

	return Snapshot{
		Ship:     e.ship,
		Bullets:  bullets,
		Hearts:   hearts,
		Score:    e.score,
		TimeLeft: e.timeLeft,
		Phase:    e.phase,
	}
}

// Phase returns the current session phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Settings returns the tuning this session runs with.
func (e *Engine) Settings() Settings {
	return e.settings
}

func (e *Engine) nextID() uint64 {
	e.nextEntityID++
	return e.nextEntityID
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package game

import "sync"

// Key identifies a directional control held by the player.
type Key string

// Directional controls. Arrow keys and WASD map onto these four.
const (
	KeyLeft  Key = "left"
	KeyRight Key = "right"
	KeyUp    Key = "up"
	KeyDown  Key = "down"
)

// InputBuffer collects pending player input. Transport goroutines mutate it
// as events arrive; the engine consults it once per tick without blocking.
// Conflicting input (opposite keys held together) is not an error, the
// per-tick movement simply cancels out and clamping absorbs the rest.
type InputBuffer struct {
	mu      sync.Mutex
	keys    map[Key]bool
	pointer *Point
}

// Point is a position inside the play field.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewInputBuffer creates an empty input buffer.
func NewInputBuffer() *InputBuffer {
	return &InputBuffer{
		keys: make(map[Key]bool),
	}
}

// SetKey records a key press or release.
func (b *InputBuffer) SetKey(key Key, pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys[key] = pressed
}

// SetPointer records an absolute pointer/touch target. The pointer overrides
// key movement until the next tick consumes it.
func (b *InputBuffer) SetPointer(x, y float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pointer = &Point{X: x, Y: y}
}

// snapshot returns the held keys and consumes any pending pointer target.
func (b *InputBuffer) snapshot() (held map[Key]bool, pointer *Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	held = make(map[Key]bool, len(b.keys))
	for k, v := range b.keys {
		held[k] = v
	}

	pointer = b.pointer
	b.pointer = nil
	return held, pointer
}

// Reset clears all pending input.
func (b *InputBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = make(map[Key]bool)
	b.pointer = nil
}

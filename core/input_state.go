package core

import "github.com/kamstrup/intmap"

// Key identifies a physical key. Values match GLFW key codes so the window
// layer can convert with a plain cast.
type Key int

// Keys bound by the default key map
const (
	KeySpace     Key = 32
	KeyA         Key = 65
	KeyD         Key = 68
	KeyS         Key = 83
	KeyW         Key = 87
	KeyLeftShift Key = 340
)

// InputState tracks held keys, the pending mouse delta and window focus.
// It is only touched from the event/render thread.
type InputState struct {
	keys    *intmap.Map[Key, bool]
	dx, dy  float32
	focused bool
}

// NewInputState returns an empty input state with focus assumed
func NewInputState() *InputState {
	return &InputState{
		keys:    intmap.New[Key, bool](16),
		focused: true,
	}
}

// SetPressed records whether key is currently held
func (s *InputState) SetPressed(key Key, pressed bool) {
	s.keys.Put(key, pressed)
}

// IsPressed reports whether key is held; keys never seen are not
func (s *InputState) IsPressed(key Key) bool {
	pressed, ok := s.keys.Get(key)
	return ok && pressed
}

// SetMouseDelta replaces the pending mouse delta
func (s *InputState) SetMouseDelta(dx, dy float32) {
	s.dx, s.dy = dx, dy
}

// AddMouseDelta adds one cursor event to the pending delta. The cursor is
// recentred after every event, so events between two frames sum up.
func (s *InputState) AddMouseDelta(dx, dy float32) {
	s.dx += dx
	s.dy += dy
}

// TakeMouseDelta returns the pending delta and resets it to zero
func (s *InputState) TakeMouseDelta() (dx, dy float32) {
	dx, dy = s.dx, s.dy
	s.dx, s.dy = 0, 0
	return dx, dy
}

// SetFocused records whether the window has input focus
func (s *InputState) SetFocused(focused bool) {
	s.focused = focused
}

// Focused reports whether mouse deltas should be applied
func (s *InputState) Focused() bool {
	return s.focused
}

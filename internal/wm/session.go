package wm

import "github.com/1broseidon/casement/internal/platform"

// State is the interaction state visible to callers.
type State int

const (
	StateIdle State = iota
	StateDrag
	StateResize
	StateClose
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrag:
		return "drag"
	case StateResize:
		return "resize"
	case StateClose:
		return "close"
	default:
		return "unknown"
	}
}

// session is the active pointer interaction. A nil session is Idle.
type session interface {
	state() State
	// target is the frame the interaction started on.
	target() platform.WindowID
}

// pending is the single latest-wins geometry slot of a drag or resize.
type pending struct {
	geom  platform.Rect
	dirty bool
}

func (p *pending) set(r platform.Rect) {
	p.geom = r
	p.dirty = true
}

// take returns the stored geometry and clears the dirty flag.
func (p *pending) take() (platform.Rect, bool) {
	if !p.dirty {
		return platform.Rect{}, false
	}
	p.dirty = false
	return p.geom, true
}

type dragSession struct {
	frame  platform.WindowID
	client platform.WindowID
	// Pointer offset inside the frame at press time.
	offsetX int
	offsetY int
	pending pending
}

func (s *dragSession) state() State              { return StateDrag }
func (s *dragSession) target() platform.WindowID { return s.frame }

type resizeSession struct {
	frame  platform.WindowID
	client platform.WindowID
	// Root pointer position at press time.
	anchorX int
	anchorY int
	// Client box when the resize started; the top-left corner stays put.
	start      platform.Rect
	horizontal bool
	vertical   bool
	pending    pending
}

func (s *resizeSession) state() State              { return StateResize }
func (s *resizeSession) target() platform.WindowID { return s.frame }

type closeSession struct {
	frame platform.WindowID
	hover bool
}

func (s *closeSession) state() State              { return StateClose }
func (s *closeSession) target() platform.WindowID { return s.frame }

// State returns the current interaction state.
func (m *Manager) State() State {
	if m.session == nil {
		return StateIdle
	}
	return m.session.state()
}

// resetInteraction drops any session without applying its pending geometry.
func (m *Manager) resetInteraction() {
	if m.session != nil {
		m.logger.Debug("interaction reset", "state", m.session.state().String())
	}
	m.session = nil
}

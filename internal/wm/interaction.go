package wm

import (
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/tree"
)

// Pointer is a button or motion event. X and Y are relative to Window.
type Pointer struct {
	Window platform.WindowID
	X      int
	Y      int
	RootX  int
	RootY  int
}

// ButtonPress raises the clicked container and, on a frame, starts a close,
// resize or drag interaction depending on where the press landed.
func (m *Manager) ButtonPress(p Pointer) {
	if m.session != nil {
		m.resetInteraction()
	}
	n, ok := m.reg.Lookup(p.Window)
	if !ok {
		m.logger.Debug("button press on untracked window", "window", p.Window)
		return
	}
	m.Raise(n.Window)
	if n.Kind != tree.KindFrame {
		return
	}

	frame := n
	client, ok := m.reg.Lookup(frame.PrimaryChild())
	if !ok {
		return
	}

	clientWidth, clientHeight := Deflate(frame.Geom, m.opts.Insets)
	margin := m.opts.ResizeMargin
	onRight := p.X > frame.Geom.Width-margin
	onBottom := p.Y > frame.Geom.Height-margin

	switch {
	case m.opts.CloseButton.Contains(p.X, p.Y):
		m.session = &closeSession{frame: frame.Window, hover: true}
		m.markDirty(frame.Window)
	case onRight || onBottom:
		m.session = &resizeSession{
			frame:   frame.Window,
			client:  client.Window,
			anchorX: p.RootX,
			anchorY: p.RootY,
			start: platform.Rect{
				X:      frame.Geom.X,
				Y:      frame.Geom.Y,
				Width:  clientWidth,
				Height: clientHeight,
			},
			horizontal: onRight,
			vertical:   onBottom,
		}
	default:
		m.session = &dragSession{
			frame:   frame.Window,
			client:  client.Window,
			offsetX: p.X,
			offsetY: p.Y,
		}
	}
	m.logger.Debug("interaction started", "state", m.State().String(), "frame", frame.Window)
}

// Motion updates the active interaction. Drag and resize only record the
// latest candidate geometry; EndBatch applies it.
func (m *Manager) Motion(p Pointer) {
	switch s := m.session.(type) {
	case nil:
		return
	case *dragSession:
		client, ok := m.reg.Lookup(s.client)
		if !ok {
			m.resetInteraction()
			return
		}
		s.pending.set(platform.Rect{
			X:      p.RootX - s.offsetX,
			Y:      p.RootY - s.offsetY,
			Width:  client.Geom.Width,
			Height: client.Geom.Height,
		})
	case *resizeSession:
		width, height := s.start.Width, s.start.Height
		if s.horizontal {
			width += p.RootX - s.anchorX
		}
		if s.vertical {
			height += p.RootY - s.anchorY
		}
		s.pending.set(platform.Rect{
			X:      s.start.X,
			Y:      s.start.Y,
			Width:  max(width, m.opts.MinWidth),
			Height: max(height, m.opts.MinHeight),
		})
	case *closeSession:
		hover := p.Window == s.frame && m.opts.CloseButton.Contains(p.X, p.Y)
		if hover != s.hover {
			s.hover = hover
			m.markDirty(s.frame)
		}
	default:
		m.resetInteraction()
	}
}

// ButtonRelease ends the active interaction. A drag or resize applies its
// last candidate; a close sends the delete request only if the pointer is
// still over the close glyph.
func (m *Manager) ButtonRelease(p Pointer) {
	switch s := m.session.(type) {
	case nil:
		return
	case *dragSession:
		m.applyPending(s.client, &s.pending)
	case *resizeSession:
		m.applyPending(s.client, &s.pending)
	case *closeSession:
		if s.hover {
			m.requestClose(m.Focused())
		}
		m.markDirty(s.frame)
		m.markDirty(m.stacking.Front())
	}
	m.session = nil
}

// applySession flushes the geometry coalesced from this batch's motion.
func (m *Manager) applySession() {
	switch s := m.session.(type) {
	case *dragSession:
		m.applyPending(s.client, &s.pending)
	case *resizeSession:
		m.applyPending(s.client, &s.pending)
	}
}

func (m *Manager) applyPending(client platform.WindowID, p *pending) {
	geom, ok := p.take()
	if !ok {
		return
	}
	m.Configure(client, geom.X, geom.Y, geom.Width, geom.Height)
}

// requestClose asks a client to close itself through WM_DELETE_WINDOW.
func (m *Manager) requestClose(client platform.WindowID) {
	if client == platform.None {
		return
	}
	msg := platform.ClientMessage{
		Window: client,
		Type:   m.atoms.Protocols,
		Data:   [5]uint32{m.atoms.DeleteWindow, platform.CurrentTime},
	}
	m.ignore("send close request", client, m.backend.SendMessage(msg))
	m.logger.Debug("close requested", "window", client)
}

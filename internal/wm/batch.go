package wm

import (
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/tree"
)

// EndBatch runs once per loop iteration after every available event has
// been handled: it applies coalesced interaction geometry, paints the queued
// frames and republishes the client list if the stacking order moved.
func (m *Manager) EndBatch() {
	m.applySession()

	for _, id := range m.Drain() {
		view, ok := m.FrameView(id)
		if !ok || m.renderer == nil {
			continue
		}
		if err := m.renderer.PaintFrame(view); err != nil {
			m.logger.Debug("paint failed", "frame", id, "error", err)
		}
	}

	if m.stackingChanged {
		m.stackingChanged = false
		m.ignore("publish clients", platform.None, m.backend.PublishClients(m.stackedClients()))
	}
}

// FrameView describes a frame for the renderer.
func (m *Manager) FrameView(id platform.WindowID) (platform.FrameView, bool) {
	frame, ok := m.reg.Lookup(id)
	if !ok || frame.Kind != tree.KindFrame {
		return platform.FrameView{}, false
	}
	title := tree.DefaultTitle
	if client, ok := m.reg.Lookup(frame.PrimaryChild()); ok {
		title = client.Title
	}
	hover := false
	if s, ok := m.session.(*closeSession); ok && s.frame == id {
		hover = s.hover
	}
	return platform.FrameView{
		Frame:      id,
		Width:      frame.Geom.Width,
		Height:     frame.Geom.Height,
		Title:      title,
		Active:     m.stacking.Front() == id,
		CloseHover: hover,
	}, true
}

func (m *Manager) stackedClients() []platform.WindowID {
	out := make([]platform.WindowID, 0, m.stacking.Len())
	for _, id := range m.stacking.Items() {
		n, ok := m.reg.Lookup(id)
		if !ok {
			continue
		}
		if n.Kind == tree.KindClient && n.Management == tree.ManagementNoRedirect {
			continue
		}
		out = append(out, m.clientOf(n))
	}
	return out
}

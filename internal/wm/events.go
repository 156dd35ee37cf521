package wm

import (
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/tree"
)

// MapRequest maps a client and its frame and raises it.
func (m *Manager) MapRequest(id platform.WindowID) {
	n, ok := m.reg.Lookup(id)
	if !ok {
		m.logger.Debug("map request for untracked window", "window", id)
		m.ignore("map", id, m.backend.Map(id))
		return
	}
	n.WindowState = tree.StateNormal
	if frame := m.directFrame(n); frame != nil {
		m.ignore("map", frame.Window, m.backend.Map(frame.Window))
		m.ignore("set wm state", id, m.backend.SetWMState(id, uint32(tree.StateNormal)))
	}
	m.ignore("map", id, m.backend.Map(id))
	m.Raise(id)
}

// MapNotify tracks a window becoming visible. Reparenting an already mapped
// window makes the server unmap and remap it; ParentMapped keeps that pair
// from being read as the client withdrawing.
func (m *Manager) MapNotify(id platform.WindowID) {
	n, ok := m.reg.Lookup(id)
	if !ok || n.Kind == tree.KindFrame || n.ParentMapped {
		return
	}
	n.WindowState = tree.StateNormal
	n.ParentMapped = true
	if frame := m.directFrame(n); frame != nil {
		m.ignore("map", frame.Window, m.backend.Map(frame.Window))
		m.ignore("set wm state", id, m.backend.SetWMState(id, uint32(tree.StateNormal)))
	}
	m.Raise(id)
}

// UnmapNotify withdraws a client that was mapped, hiding its frame.
func (m *Manager) UnmapNotify(id platform.WindowID) {
	n, ok := m.reg.Lookup(id)
	if !ok || n.Kind == tree.KindFrame || !n.ParentMapped {
		return
	}
	n.WindowState = tree.StateWithdrawn
	n.ParentMapped = false
	if frame := m.directFrame(n); frame != nil {
		m.ignore("unmap", frame.Window, m.backend.Unmap(frame.Window))
		m.ignore("set wm state", id, m.backend.SetWMState(id, uint32(tree.StateWithdrawn)))
	}
}

// ReparentNotify confirms a client landed in its frame and re-applies the
// frame geometry so the pair is consistent on screen.
func (m *Manager) ReparentNotify(id, parent platform.WindowID) {
	n, ok := m.reg.Lookup(id)
	if !ok {
		return
	}
	frame := m.directFrame(n)
	if frame == nil || frame.Window != parent {
		return
	}
	n.SetManagement(tree.ManagementReparented)
	m.Configure(id, frame.Geom.X, frame.Geom.Y, n.Geom.Width, n.Geom.Height)
}

// Rename replaces a window's title. Empty titles are ignored.
func (m *Manager) Rename(id platform.WindowID, title string) {
	if title == "" {
		return
	}
	n, ok := m.reg.Lookup(id)
	if !ok {
		return
	}
	n.SetTitle(title)
	if frame := m.directFrame(n); frame != nil {
		m.markDirty(frame.Window)
	}
}

// Expose queues a frame whose contents the server discarded.
func (m *Manager) Expose(id platform.WindowID) {
	m.markDirty(id)
}

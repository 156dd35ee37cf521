package wm

import (
	"fmt"

	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/tree"
)

// Raise brings the container of id to the top of the stacking order and
// gives its client input focus. Windows that are not in the stacking list,
// for example because they lost a race with destruction, are left alone.
func (m *Manager) Raise(id platform.WindowID) {
	n, ok := m.reg.Lookup(id)
	if !ok {
		m.logger.Debug("raise of untracked window", "window", id)
		return
	}
	container := m.reg.ContainerOf(n)
	if container == nil || m.reg.IsRoot(container.Window) {
		return
	}
	if !m.stacking.Contains(container.Window) {
		return
	}

	previous := m.stacking.Front()
	if previous != container.Window {
		m.stacking.MoveToFront(container.Window)
		m.stackingChanged = true
	}
	m.markDirty(previous)
	m.markDirty(container.Window)

	m.ignore("focus", m.clientOf(container), m.backend.Focus(m.clientOf(container)))
	m.ignore("raise", container.Window, m.backend.Raise(container.Window))
}

// Focused returns the client window of the topmost container, or None.
func (m *Manager) Focused() platform.WindowID {
	top, ok := m.reg.Lookup(m.stacking.Front())
	if !ok {
		return platform.None
	}
	return m.clientOf(top)
}

// CycleFocus raises the bottom-most container, rotating the stacking order.
func (m *Manager) CycleFocus() {
	if m.stacking.Len() < 2 {
		return
	}
	m.Raise(m.stacking.At(m.stacking.Len() - 1))
}

// clientOf maps a container to the window that receives focus and protocol
// messages: a frame's client, or the container itself.
func (m *Manager) clientOf(container *tree.Node) platform.WindowID {
	if container.Kind == tree.KindFrame {
		if c := container.PrimaryChild(); c != platform.None {
			return c
		}
	}
	return container.Window
}

// markDirty queues a frame for repaint. Anything else is ignored.
func (m *Manager) markDirty(id platform.WindowID) {
	n, ok := m.reg.Lookup(id)
	if !ok || n.Kind != tree.KindFrame {
		return
	}
	// The redraw queue is unbounded; Add cannot fail.
	_ = m.redraw.Add(id)
}

// MarkAllDirty queues every frame, used after a theme change.
func (m *Manager) MarkAllDirty() {
	for _, n := range m.reg.Nodes() {
		if n.Kind == tree.KindFrame {
			m.markDirty(n.Window)
		}
	}
}

// Drain returns the queued frames in insertion order and empties the queue.
func (m *Manager) Drain() []platform.WindowID {
	out := m.redraw.Items()
	m.redraw.Clear()
	return out
}

// Pending reports whether frames are waiting to be painted.
func (m *Manager) Pending() int {
	return m.redraw.Len()
}

func (m *Manager) forget(id platform.WindowID) {
	if m.stacking.Remove(id) {
		m.stackingChanged = true
	}
	m.redraw.Remove(id)
}

func (m *Manager) checkQueues() error {
	seen := make(map[platform.WindowID]bool)
	for _, id := range m.stacking.Items() {
		if seen[id] {
			return fmt.Errorf("window %#x stacked twice", id)
		}
		seen[id] = true
		n, ok := m.reg.Lookup(id)
		if !ok {
			return fmt.Errorf("stacked window %#x is not tracked", id)
		}
		if !m.stackable(n) {
			return fmt.Errorf("stacked window %#x (%s) is not independently stackable", id, n.Kind)
		}
	}
	for _, n := range m.reg.Nodes() {
		if m.stackable(n) && !seen[n.Window] {
			return fmt.Errorf("stackable window %#x missing from stacking order", n.Window)
		}
	}
	for _, id := range m.redraw.Items() {
		n, ok := m.reg.Lookup(id)
		if !ok || n.Kind != tree.KindFrame {
			return fmt.Errorf("redraw queue holds non-frame %#x", id)
		}
	}
	return nil
}

// stackable reports whether n belongs in the stacking list: a frame, or a
// client sitting directly under the root.
func (m *Manager) stackable(n *tree.Node) bool {
	if n.Parent != m.reg.Root().Window {
		return false
	}
	return n.Kind == tree.KindFrame || n.Kind == tree.KindClient
}

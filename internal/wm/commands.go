package wm

import (
	"errors"
	"fmt"

	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/tree"
)

// ErrUnknownWindow is returned by commands naming a window that is not managed.
var ErrUnknownWindow = errors.New("window is not managed")

// WindowInfo describes one stacked container for listings.
type WindowInfo struct {
	Client     platform.WindowID
	Frame      platform.WindowID
	Title      string
	Kind       string
	Management string
	State      string
	Geometry   platform.Rect
	Focused    bool
}

// Status summarises the manager for status queries.
type Status struct {
	Nodes       int
	Frames      int
	Stacked     int
	Focused     platform.WindowID
	Interaction string
	Pending     int
}

// RaiseWindow raises the container holding id on behalf of an external request.
func (m *Manager) RaiseWindow(id platform.WindowID) error {
	n, ok := m.reg.Lookup(id)
	if !ok || m.reg.IsRoot(id) {
		return fmt.Errorf("raise %#x: %w", id, ErrUnknownWindow)
	}
	m.Raise(n.Window)
	return nil
}

// CloseWindow asks the client behind id to close itself.
func (m *Manager) CloseWindow(id platform.WindowID) error {
	n, ok := m.reg.Lookup(id)
	if !ok || m.reg.IsRoot(id) {
		return fmt.Errorf("close %#x: %w", id, ErrUnknownWindow)
	}
	m.requestClose(m.clientOf(m.reg.ContainerOf(n)))
	return nil
}

// CloseFocused asks the focused client to close itself.
func (m *Manager) CloseFocused() {
	m.requestClose(m.Focused())
}

// Windows lists the stacked containers, topmost first.
func (m *Manager) Windows() []WindowInfo {
	items := m.stacking.Items()
	out := make([]WindowInfo, 0, len(items))
	for i, id := range items {
		container, ok := m.reg.Lookup(id)
		if !ok {
			continue
		}
		client := container
		if c, ok := m.reg.Lookup(m.clientOf(container)); ok {
			client = c
		}
		info := WindowInfo{
			Client:     client.Window,
			Title:      client.Title,
			Kind:       container.Kind.String(),
			Management: client.Management.String(),
			State:      client.WindowState.String(),
			Geometry:   container.Geom,
			Focused:    i == 0,
		}
		if container.Kind == tree.KindFrame {
			info.Frame = container.Window
		}
		out = append(out, info)
	}
	return out
}

// Status reports counters and the interaction state.
func (m *Manager) Status() Status {
	frames := 0
	for _, n := range m.reg.Nodes() {
		if n.Kind == tree.KindFrame {
			frames++
		}
	}
	return Status{
		Nodes:       m.reg.Len(),
		Frames:      frames,
		Stacked:     m.stacking.Len(),
		Focused:     m.Focused(),
		Interaction: m.State().String(),
		Pending:     m.redraw.Len(),
	}
}

// Sweep destroys every tracked top-level whose window is no longer present,
// for windows that vanished without a destroy notification reaching us.
// alive reports whether the server still knows a window.
func (m *Manager) Sweep(alive func(platform.WindowID) bool) (int, error) {
	removed := 0
	for _, id := range m.reg.Root().Children.Items() {
		n, ok := m.reg.Lookup(id)
		if !ok {
			continue
		}
		dead := !alive(n.Window)
		target := n
		if n.Kind == tree.KindFrame {
			if c, ok := m.reg.Lookup(n.PrimaryChild()); ok {
				target = c
				dead = dead || !alive(c.Window)
			}
		}
		if !dead {
			continue
		}
		m.logger.Info("removing vanished window", "window", target.Window)
		if err := m.destroy(target); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

package wm

import (
	"fmt"

	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/tree"
)

// AdoptRequest describes a window the display server reported as created.
type AdoptRequest struct {
	Window           platform.WindowID
	Parent           platform.WindowID
	Geom             platform.Rect
	OverrideRedirect bool
}

// Adopt brings a window under management. A window already tracked is left
// untouched, so creation notifications and startup enumeration may overlap.
// Frames created by the manager are never adopted, including ones already
// destroyed again by the time their creation is reported.
//
// A window created on the root that did not opt out of management is wrapped
// in a new frame; a window created inside another tracked window becomes an
// embedded child; an override-redirect window on the root is stacked bare.
// The only error that matters to callers is one wrapping ErrCapacity.
func (m *Manager) Adopt(req AdoptRequest) error {
	if req.Window == platform.None || m.reg.IsRoot(req.Window) {
		return nil
	}
	if _, own := m.unannounced[req.Window]; own {
		delete(m.unannounced, req.Window)
		return nil
	}
	if _, own := m.released[req.Window]; own {
		return nil
	}
	if _, ok := m.reg.Lookup(req.Window); ok {
		m.logger.Debug("window already tracked", "window", req.Window)
		return nil
	}

	root := m.reg.Root()
	parent, ok := m.reg.Lookup(req.Parent)
	if !ok {
		parent = root
	}

	geom := req.Geom
	if geom.Width < 1 {
		geom.Width = 1
	}
	if geom.Height < 1 {
		geom.Height = 1
	}

	var err error
	switch {
	case parent == root && !req.OverrideRedirect:
		err = m.adoptDecorated(req.Window, geom)
	case parent != root:
		err = m.adoptEmbedded(req.Window, parent, geom)
	default:
		err = m.adoptBare(req.Window, geom)
	}
	if err != nil {
		return err
	}

	m.ignore("select input", req.Window, m.backend.SelectInput(req.Window, platform.InterestClient))
	m.Raise(req.Window)
	return nil
}

func (m *Manager) adoptDecorated(id platform.WindowID, geom platform.Rect) error {
	if geom.X == 0 && geom.Y == 0 {
		geom.X, geom.Y = m.spawn.next(m.screen)
	}
	outer := Inflate(geom, m.opts.Insets)

	frameID, err := m.backend.CreateFrame(outer)
	if err != nil {
		return fmt.Errorf("create frame for %#x: %w", id, err)
	}
	m.unannounced[frameID] = struct{}{}
	m.ignore("select input", frameID, m.backend.SelectInput(frameID, platform.InterestFrame))
	m.ignore("reparent", id, m.backend.Reparent(id, frameID, m.opts.Insets.Left, m.opts.Insets.Top))

	frame := m.reg.NewNode(tree.KindFrame, frameID, outer)
	client := m.reg.NewNode(tree.KindClient, id, platform.Rect{
		X:      m.opts.Insets.Left,
		Y:      m.opts.Insets.Top,
		Width:  geom.Width,
		Height: geom.Height,
	})
	if err := m.reg.Insert(frame); err != nil {
		return err
	}
	if err := m.reg.Insert(client); err != nil {
		return err
	}
	if err := m.reg.AddChild(m.reg.Root(), frame); err != nil {
		return err
	}
	if err := m.reg.AddChild(frame, client); err != nil {
		return err
	}
	if err := m.stack(frameID); err != nil {
		return err
	}
	frame.SetManagement(tree.ManagementReparented)
	client.SetManagement(tree.ManagementReparented)

	m.logger.Debug("framed window", "window", id, "frame", frameID,
		"x", outer.X, "y", outer.Y, "width", outer.Width, "height", outer.Height)
	return nil
}

func (m *Manager) adoptEmbedded(id platform.WindowID, parent *tree.Node, geom platform.Rect) error {
	n := m.reg.NewNode(tree.KindClient, id, geom)
	n.SetManagement(tree.ManagementChild)
	if err := m.reg.Insert(n); err != nil {
		return err
	}
	if err := m.reg.AddChild(parent, n); err != nil {
		return err
	}
	m.logger.Debug("embedded window", "window", id, "parent", parent.Window)
	return nil
}

func (m *Manager) adoptBare(id platform.WindowID, geom platform.Rect) error {
	n := m.reg.NewNode(tree.KindClient, id, geom)
	n.SetManagement(tree.ManagementNoRedirect)
	if err := m.reg.Insert(n); err != nil {
		return err
	}
	if err := m.reg.AddChild(m.reg.Root(), n); err != nil {
		return err
	}
	if err := m.stack(id); err != nil {
		return err
	}
	m.logger.Debug("unreparented window", "window", id)
	return nil
}

func (m *Manager) stack(id platform.WindowID) error {
	if err := m.stacking.Add(id); err != nil {
		return fmt.Errorf("stack %#x: %w", id, err)
	}
	m.stackingChanged = true
	return nil
}

// Destroy removes a window from management. Its children are lifted to its
// parent at the same on-screen position, and a frame or group left empty is
// destroyed in turn. Destroying an untracked window is logged and ignored.
func (m *Manager) Destroy(id platform.WindowID) error {
	if m.reg.IsRoot(id) {
		return nil
	}
	n, ok := m.reg.Lookup(id)
	if !ok {
		if _, mine := m.released[id]; mine {
			delete(m.released, id)
			m.logger.Debug("frame destroyed", "window", id)
			return nil
		}
		m.logger.Warn("window removed that was not tracked", "window", id)
		return nil
	}
	return m.destroy(n)
}

func (m *Manager) destroy(n *tree.Node) error {
	if m.session != nil {
		target := m.session.target()
		if target == n.Window || (m.reg.FrameOf(n) != nil && m.reg.FrameOf(n).Window == target) {
			m.session = nil
		}
	}

	parent, ok := m.reg.Parent(n)
	if !ok {
		parent = m.reg.Root()
	}
	stackIndex := m.stacking.Index(n.Window)
	m.forget(n.Window)

	for _, childID := range n.Children.Items() {
		child, ok := m.reg.Lookup(childID)
		if !ok {
			n.Children.Remove(childID)
			continue
		}
		if err := m.lift(child, n, parent, stackIndex); err != nil {
			return err
		}
	}

	m.reg.RemoveChild(parent, n)
	m.reg.Delete(n.Window)
	// Clients belong to their programs; only our own containers are
	// destroyed at the server.
	if n.Kind == tree.KindFrame || n.Kind == tree.KindGroup {
		m.ignore("destroy", n.Window, m.backend.Destroy(n.Window))
		m.released[n.Window] = struct{}{}
	}
	m.logger.Debug("window destroyed", "window", n.Window, "kind", n.Kind.String())

	// Focus passes to whatever is now on top.
	if stackIndex == 0 && m.stacking.Len() > 0 {
		m.Raise(m.stacking.Front())
	}

	if (parent.Kind == tree.KindFrame || parent.Kind == tree.KindGroup) && parent.Children.Len() == 0 {
		return m.destroy(parent)
	}
	return nil
}

// lift moves child from its dying parent to grandparent, keeping its
// position on screen.
func (m *Manager) lift(child, dying, grandparent *tree.Node, stackIndex int) error {
	child.Geom.X += dying.Geom.X
	child.Geom.Y += dying.Geom.Y
	m.ignore("reparent", child.Window,
		m.backend.Reparent(child.Window, grandparent.Window, child.Geom.X, child.Geom.Y))

	if err := m.reg.AddChild(grandparent, child); err != nil {
		return err
	}
	if m.reg.IsRoot(grandparent.Window) && child.Kind == tree.KindClient {
		if err := m.restack(child.Window, stackIndex); err != nil {
			return err
		}
	}
	return nil
}

// restack places id where the container it replaces sat, or at the bottom.
func (m *Manager) restack(id platform.WindowID, at int) error {
	var err error
	if at >= 0 {
		err = m.stacking.InsertAt(at, id)
	} else {
		err = m.stacking.Add(id)
	}
	if err != nil {
		return fmt.Errorf("stack %#x: %w", id, err)
	}
	m.stackingChanged = true
	return nil
}

// AdoptExisting manages the windows that were already on screen when the
// window manager started.
func (m *Manager) AdoptExisting() error {
	existing, err := m.backend.QueryTree()
	if err != nil {
		return fmt.Errorf("query existing windows: %w", err)
	}
	adopted := 0
	for _, w := range existing {
		if w.OverrideRedirect {
			continue
		}
		if _, tracked := m.reg.Lookup(w.ID); tracked {
			continue
		}
		if err := m.Adopt(AdoptRequest{Window: w.ID, Parent: m.reg.Root().Window, Geom: w.Bounds}); err != nil {
			if IsFatal(err) {
				return err
			}
			m.logger.Warn("failed to adopt existing window", "window", w.ID, "error", err)
			continue
		}
		adopted++
		m.logger.Debug("adopted existing window", "window", w.ID, "viewable", w.Viewable)
	}
	m.logger.Info("adopted existing windows", "count", adopted)
	return nil
}

// Teardown hands every framed client back to the root at its on-screen
// position and destroys every frame. It never fails; the manager is unusable
// afterwards.
func (m *Manager) Teardown() {
	root := m.reg.Root()
	for _, id := range root.Children.Items() {
		frame, ok := m.reg.Lookup(id)
		if !ok || frame.Kind != tree.KindFrame {
			continue
		}
		for _, childID := range frame.Children.Items() {
			child, ok := m.reg.Lookup(childID)
			if !ok {
				continue
			}
			x, y := m.reg.AbsolutePosition(child)
			m.ignore("reparent", childID, m.backend.Reparent(childID, root.Window, x, y))
			frame.Children.Remove(childID)
			m.reg.Delete(childID)
		}
		m.ignore("destroy", id, m.backend.Destroy(id))
		root.Children.Remove(id)
		m.reg.Delete(id)
		m.forget(id)
	}
	m.session = nil
	m.ignore("flush", platform.None, m.backend.Flush())
	m.logger.Info("window manager torn down")
}

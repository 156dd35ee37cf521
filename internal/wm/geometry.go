package wm

import (
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/tree"
)

// Inflate returns the frame box for a client box: same top-left corner, grown
// by the insets plus one pixel in each dimension.
func Inflate(client platform.Rect, in Insets) platform.Rect {
	return platform.Rect{
		X:      client.X,
		Y:      client.Y,
		Width:  client.Width + in.Left + in.Right + 1,
		Height: client.Height + in.Top + in.Bottom + 1,
	}
}

// Deflate is the inverse of Inflate on the size only.
func Deflate(frame platform.Rect, in Insets) (width, height int) {
	return frame.Width - in.Left - in.Right - 1, frame.Height - in.Top - in.Bottom - 1
}

// Clamp shifts r left/up by however far it overflows the screen, then pins
// a negative corner to zero. The size is never changed.
func Clamp(r, screen platform.Rect) platform.Rect {
	if over := r.Right() - screen.Right(); over > 0 {
		r.X -= over
	}
	if over := r.Bottom() - screen.Bottom(); over > 0 {
		r.Y -= over
	}
	if r.X < screen.X {
		r.X = screen.X
	}
	if r.Y < screen.Y {
		r.Y = screen.Y
	}
	return r
}

// Configure moves and resizes a client. For a framed client x and y place
// the frame and width and height size the client; the frame follows. Frames
// themselves are never configured directly.
func (m *Manager) Configure(id platform.WindowID, x, y, width, height int) {
	n, ok := m.reg.Lookup(id)
	if !ok {
		m.logger.Debug("configure of untracked window", "window", id)
		return
	}
	if n.Kind == tree.KindFrame || m.reg.IsRoot(id) {
		return
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	box := platform.Rect{X: x, Y: y, Width: width, Height: height}

	parent, _ := m.reg.Parent(n)
	switch {
	case parent != nil && parent.Kind == tree.KindFrame:
		m.configureFramed(parent, n, box)
	case parent != nil && m.reg.IsRoot(parent.Window):
		box = Clamp(box, m.screen)
		n.Geom = box
		m.ignore("configure", n.Window, m.backend.Configure(n.Window, platform.ConfigAll, box))
	default:
		// Embedded children live in their parent's coordinates.
		n.Geom = box
		m.ignore("configure", n.Window, m.backend.Configure(n.Window, platform.ConfigAll, box))
	}
}

func (m *Manager) configureFramed(frame, client *tree.Node, box platform.Rect) {
	outer := Clamp(Inflate(box, m.opts.Insets), m.screen)
	resized := outer.Width != frame.Geom.Width || outer.Height != frame.Geom.Height

	frame.Geom = outer
	client.Geom = platform.Rect{
		X:      m.opts.Insets.Left,
		Y:      m.opts.Insets.Top,
		Width:  box.Width,
		Height: box.Height,
	}

	// The client's parent link is the frame by construction; a frame whose
	// client has left it is not touched.
	if frame.PrimaryChild() == client.Window {
		m.ignore("configure", frame.Window, m.backend.Configure(frame.Window, platform.ConfigAll, outer))
	}
	m.ignore("configure", client.Window, m.backend.Configure(client.Window, platform.ConfigAll, client.Geom))
	if resized {
		m.markDirty(frame.Window)
	}
}

// ConfigureRequest carries a client's configure request. Fields whose bit
// is absent from Mask keep the current geometry.
type ConfigureRequest struct {
	Window platform.WindowID
	Mask   platform.ConfigMask
	X      int
	Y      int
	Width  int
	Height int
}

// HandleConfigureRequest answers a client's request through Configure.
// Untracked windows are configured exactly as asked, since nothing manages
// them yet.
func (m *Manager) HandleConfigureRequest(req ConfigureRequest) {
	n, ok := m.reg.Lookup(req.Window)
	if !ok {
		bounds := platform.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
		m.ignore("configure", req.Window, m.backend.Configure(req.Window, req.Mask, bounds))
		return
	}
	if n.Kind == tree.KindFrame {
		return
	}

	x, y := n.Geom.X, n.Geom.Y
	if frame := m.directFrame(n); frame != nil {
		x, y = frame.Geom.X, frame.Geom.Y
	}
	width, height := n.Geom.Width, n.Geom.Height

	if req.Mask.Has(platform.ConfigX) {
		x = req.X
	}
	if req.Mask.Has(platform.ConfigY) {
		y = req.Y
	}
	if req.Mask.Has(platform.ConfigWidth) {
		width = req.Width
	}
	if req.Mask.Has(platform.ConfigHeight) {
		height = req.Height
	}
	m.Configure(n.Window, x, y, width, height)
}

// directFrame returns n's parent when that parent is a frame.
func (m *Manager) directFrame(n *tree.Node) *tree.Node {
	parent, ok := m.reg.Parent(n)
	if !ok || parent.Kind != tree.KindFrame {
		return nil
	}
	return parent
}

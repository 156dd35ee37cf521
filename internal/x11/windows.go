package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Event masks for the two kinds of windows the manager listens on.
const (
	ClientEventMask = xproto.EventMaskPropertyChange |
		xproto.EventMaskExposure |
		xproto.EventMaskSubstructureNotify

	FrameEventMask = xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskButtonMotion |
		xproto.EventMaskExposure |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskSubstructureRedirect
)

// Configure value mask bits, in wire order.
const (
	ConfigX      = xproto.ConfigWindowX
	ConfigY      = xproto.ConfigWindowY
	ConfigWidth  = xproto.ConfigWindowWidth
	ConfigHeight = xproto.ConfigWindowHeight
)

// TopLevel describes one child of the root found by QueryTopLevels.
type TopLevel struct {
	Window           xproto.Window
	X, Y             int
	Width, Height    int
	OverrideRedirect bool
	Viewable         bool
}

// CreateWindow creates an unmapped input-output child of the root.
func (c *Connection) CreateWindow(x, y, width, height int, background uint32, cursor xproto.Cursor) (xproto.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("allocate window id: %w", err)
	}
	mask := xproto.CwBackPixel
	values := []uint32{background}
	if cursor != 0 {
		mask |= xproto.CwCursor
		values = append(values, uint32(cursor))
	}
	if err := win.CreateChecked(c.Root, x, y, width, height, mask, values...); err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}
	return win.Id, nil
}

func (c *Connection) DestroyWindow(win xproto.Window) error {
	return xproto.DestroyWindowChecked(c.XUtil.Conn(), win).Check()
}

func (c *Connection) MapWindow(win xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), win).Check()
}

func (c *Connection) UnmapWindow(win xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), win).Check()
}

// Reparent moves win under parent. Windows placed inside a frame join the
// save-set so they survive if this process dies.
func (c *Connection) Reparent(win, parent xproto.Window, x, y int) error {
	conn := c.XUtil.Conn()
	mode := byte(xproto.SetModeInsert)
	if parent == c.Root {
		mode = xproto.SetModeDelete
	}
	// Best effort: the save-set does not affect the reparent itself.
	xproto.ChangeSaveSet(conn, mode, win)
	return xproto.ReparentWindowChecked(conn, win, parent, int16(x), int16(y)).Check()
}

// Configure applies the fields selected by mask. Values are read from
// x, y, width and height in that order.
func (c *Connection) Configure(win xproto.Window, mask uint16, x, y, width, height int) error {
	var values []uint32
	if mask&ConfigX != 0 {
		values = append(values, uint32(int32(x)))
	}
	if mask&ConfigY != 0 {
		values = append(values, uint32(int32(y)))
	}
	if mask&ConfigWidth != 0 {
		values = append(values, uint32(max(width, 1)))
	}
	if mask&ConfigHeight != 0 {
		values = append(values, uint32(max(height, 1)))
	}
	if len(values) == 0 {
		return nil
	}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), win, mask, values).Check()
}

// Raise puts win on top of its siblings.
func (c *Connection) Raise(win xproto.Window) error {
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), win,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
}

func (c *Connection) SelectInput(win xproto.Window, mask uint32) error {
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), win,
		xproto.CwEventMask, []uint32{mask}).Check()
}

// Focus gives win the input focus and advertises it as the active window.
func (c *Connection) Focus(win xproto.Window) error {
	err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		win, xproto.TimeCurrentTime).Check()
	if err != nil {
		return err
	}
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

// SendClientMessage delivers a 32-bit client message to win with an empty
// event mask, which reaches the window's owner.
func (c *Connection) SendClientMessage(win xproto.Window, typ xproto.Atom, data [5]uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win, xproto.EventMaskNoEvent,
		string(ev.Bytes())).Check()
}

// SendRootMessage delivers a client message to whoever redirects the root,
// which is the running window manager.
func (c *Connection) SendRootMessage(typ xproto.Atom, data [5]uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.Root,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes())).Check()
}

// SetWMState writes the ICCCM WM_STATE property.
func (c *Connection) SetWMState(win xproto.Window, state uint) error {
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: state})
}

// Title returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return name
	}
	return ""
}

// Alive reports whether win still exists on the server.
func (c *Connection) Alive(win xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	return err == nil
}

// QueryTopLevels lists the children of the root, bottom-most first.
// Windows that vanish while being inspected are skipped.
func (c *Connection) QueryTopLevels() ([]TopLevel, error) {
	conn := c.XUtil.Conn()
	tree, err := xproto.QueryTree(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree: %w", err)
	}

	out := make([]TopLevel, 0, len(tree.Children))
	for _, child := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(conn, child).Reply()
		if err != nil {
			continue
		}
		geom, err := xproto.GetGeometry(conn, xproto.Drawable(child)).Reply()
		if err != nil {
			continue
		}
		out = append(out, TopLevel{
			Window:           child,
			X:                int(geom.X),
			Y:                int(geom.Y),
			Width:            int(geom.Width),
			Height:           int(geom.Height),
			OverrideRedirect: attrs.OverrideRedirect,
			Viewable:         attrs.MapState == xproto.MapStateViewable,
		})
	}
	return out, nil
}

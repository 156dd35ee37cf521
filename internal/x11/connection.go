package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"
)

// ErrOtherWM is returned by BecomeWM when another client already holds
// substructure redirection on the root window.
var ErrOtherWM = errors.New("another window manager is already running")

// Atom names interned at connect time.
const (
	AtomProtocols    = "WM_PROTOCOLS"
	AtomDeleteWindow = "WM_DELETE_WINDOW"
	AtomWMState      = "WM_STATE"
	AtomWMName       = "WM_NAME"
	AtomNetWMName    = "_NET_WM_NAME"
	AtomReload       = "_CASEMENT_RELOAD"
	AtomActiveWindow = "_NET_ACTIVE_WINDOW"
	AtomCloseWindow  = "_NET_CLOSE_WINDOW"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
	atoms map[string]xproto.Atom
}

// NewConnection connects to display, or $DISPLAY when display is empty.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	// Required before any key grab.
	keybind.Initialize(xu)

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		atoms: make(map[string]xproto.Atom),
	}
	for _, name := range []string{AtomProtocols, AtomDeleteWindow, AtomWMState, AtomWMName, AtomNetWMName, AtomReload, AtomActiveWindow, AtomCloseWindow} {
		atom, err := xprop.Atm(xu, name)
		if err != nil {
			xu.Conn().Close()
			return nil, fmt.Errorf("intern %s: %w", name, err)
		}
		c.atoms[name] = atom
	}
	return c, nil
}

// Atom returns an atom interned by NewConnection.
func (c *Connection) Atom(name string) xproto.Atom {
	return c.atoms[name]
}

// ScreenSize returns the root window size in pixels.
func (c *Connection) ScreenSize() (int, int) {
	s := c.XUtil.Screen()
	return int(s.WidthInPixels), int(s.HeightInPixels)
}

// BecomeWM selects substructure redirection on the root. Only one client
// may hold it, so failure means another window manager is running.
func (c *Connection) BecomeWM() error {
	mask := uint32(xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskPropertyChange)
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root,
		xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		var access xproto.AccessError
		if errors.As(err, &access) {
			return ErrOtherWM
		}
		return fmt.Errorf("select root events: %w", err)
	}
	return nil
}

// ReadEvents blocks for the next event, then collects everything else
// already queued. ok is false once the connection is closed.
func (c *Connection) ReadEvents() (batch []xgbutil.EventOrError, ok bool) {
	conn := c.XUtil.Conn()
	ev, xerr := conn.WaitForEvent()
	if ev == nil && xerr == nil {
		return nil, false
	}
	batch = append(batch, xgbutil.EventOrError{Event: ev, Err: xerr})
	for {
		ev, xerr = conn.PollForEvent()
		if ev == nil && xerr == nil {
			return batch, true
		}
		batch = append(batch, xgbutil.EventOrError{Event: ev, Err: xerr})
	}
}

// Sync waits until the server has processed every request sent so far.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

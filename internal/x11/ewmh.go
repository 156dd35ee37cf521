package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

var supportedHints = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLOSE_WINDOW",
	"_NET_WM_NAME",
}

// AnnounceWM creates the EWMH check window and advertises the supported
// hints so pagers and panels can find the manager by name.
func (c *Connection) AnnounceWM(name string) (xproto.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("allocate window id: %w", err)
	}
	// Override-redirect keeps the check window out of the managed set.
	if err := win.CreateChecked(c.Root, -1, -1, 1, 1, xproto.CwOverrideRedirect, 1); err != nil {
		return 0, fmt.Errorf("create check window: %w", err)
	}
	check := win.Id
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check); err != nil {
		return check, fmt.Errorf("set supporting wm check on root: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check, check); err != nil {
		return check, fmt.Errorf("set supporting wm check: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, check, name); err != nil {
		return check, fmt.Errorf("set wm name: %w", err)
	}
	if err := ewmh.SupportedSet(c.XUtil, supportedHints); err != nil {
		return check, fmt.Errorf("set supported hints: %w", err)
	}
	return check, nil
}

// PublishClients sets _NET_CLIENT_LIST and _NET_CLIENT_LIST_STACKING from a
// topmost-first list.
func (c *Connection) PublishClients(topmostFirst []xproto.Window) error {
	bottomFirst := make([]xproto.Window, len(topmostFirst))
	for i, w := range topmostFirst {
		bottomFirst[len(topmostFirst)-1-i] = w
	}
	if err := ewmh.ClientListSet(c.XUtil, bottomFirst); err != nil {
		return err
	}
	return ewmh.ClientListStackingSet(c.XUtil, bottomFirst)
}

package daemon

import (
	"log/slog"

	"github.com/1broseidon/casement/internal/hotkeys"
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/wm"
	"github.com/1broseidon/casement/internal/x11"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Display is the part of the backend the dispatcher queries directly.
type Display interface {
	Title(id platform.WindowID) string
	SetScreenSize(width, height int)
}

// KeyMatcher resolves key presses to bound actions.
type KeyMatcher interface {
	Match(ev xproto.KeyPressEvent) (hotkeys.Action, bool)
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Manager    *wm.Manager
	Display    Display
	Keys       KeyMatcher
	NameAtoms  []xproto.Atom
	ReloadAtom xproto.Atom
	// ActiveAtom and CloseAtom are the EWMH pager requests
	// _NET_ACTIVE_WINDOW and _NET_CLOSE_WINDOW.
	ActiveAtom xproto.Atom
	CloseAtom  xproto.Atom
	Reload     func(*wm.Manager) error
	// Ignore lists windows of our own that must never be adopted.
	Ignore []platform.WindowID
	Logger *slog.Logger
}

// Dispatcher translates X events into manager operations.
type Dispatcher struct {
	m          *wm.Manager
	display    Display
	keys       KeyMatcher
	nameAtoms  map[xproto.Atom]struct{}
	reloadAtom xproto.Atom
	activeAtom xproto.Atom
	closeAtom  xproto.Atom
	reload     func(*wm.Manager) error
	ignore     map[platform.WindowID]struct{}
	logger     *slog.Logger
}

var _ EventHandler = (*Dispatcher)(nil)

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	names := make(map[xproto.Atom]struct{}, len(cfg.NameAtoms))
	for _, a := range cfg.NameAtoms {
		names[a] = struct{}{}
	}
	ignore := make(map[platform.WindowID]struct{}, len(cfg.Ignore))
	for _, id := range cfg.Ignore {
		ignore[id] = struct{}{}
	}
	return &Dispatcher{
		m:          cfg.Manager,
		display:    cfg.Display,
		keys:       cfg.Keys,
		nameAtoms:  names,
		reloadAtom: cfg.ReloadAtom,
		activeAtom: cfg.ActiveAtom,
		closeAtom:  cfg.CloseAtom,
		reload:     cfg.Reload,
		ignore:     ignore,
		logger:     logger,
	}
}

// HandleError logs request errors. Most are BadWindow replies for windows
// that died before a request reached them.
func (d *Dispatcher) HandleError(err xgb.Error) {
	d.logger.Debug("x11 request failed", "error", err)
}

// HandleEvent applies one event. Only fatal errors are returned.
func (d *Dispatcher) HandleEvent(ev xgb.Event) error {
	switch e := ev.(type) {
	case xproto.CreateNotifyEvent:
		return d.created(e)

	case xproto.DestroyNotifyEvent:
		return d.m.Destroy(platform.WindowID(e.Window))

	case xproto.MapRequestEvent:
		d.m.MapRequest(platform.WindowID(e.Window))

	case xproto.MapNotifyEvent:
		d.m.MapNotify(platform.WindowID(e.Window))

	case xproto.UnmapNotifyEvent:
		d.m.UnmapNotify(platform.WindowID(e.Window))

	case xproto.ReparentNotifyEvent:
		d.m.ReparentNotify(platform.WindowID(e.Window), platform.WindowID(e.Parent))

	case xproto.ConfigureRequestEvent:
		d.m.HandleConfigureRequest(configureRequest(e))

	case xproto.PropertyNotifyEvent:
		if _, ok := d.nameAtoms[e.Atom]; ok && e.State == xproto.PropertyNewValue {
			id := platform.WindowID(e.Window)
			d.m.Rename(id, d.display.Title(id))
		}

	case xproto.ExposeEvent:
		// Only the last of a series; the whole frame is repainted anyway.
		if e.Count == 0 {
			d.m.Expose(platform.WindowID(e.Window))
		}

	case xproto.ButtonPressEvent:
		d.m.ButtonPress(pointer(e.Event, e.EventX, e.EventY, e.RootX, e.RootY))

	case xproto.MotionNotifyEvent:
		d.m.Motion(pointer(e.Event, e.EventX, e.EventY, e.RootX, e.RootY))

	case xproto.ButtonReleaseEvent:
		d.m.ButtonRelease(pointer(e.Event, e.EventX, e.EventY, e.RootX, e.RootY))

	case xproto.KeyPressEvent:
		return d.key(e)

	case xproto.ClientMessageEvent:
		return d.clientMessage(e)

	default:
		if w, h, ok := x11.ScreenChange(ev); ok {
			d.display.SetScreenSize(w, h)
			d.m.SetScreen(platform.Rect{Width: w, Height: h})
		}
	}
	return nil
}

func (d *Dispatcher) created(e xproto.CreateNotifyEvent) error {
	id := platform.WindowID(e.Window)
	if _, skip := d.ignore[id]; skip {
		return nil
	}
	// Adopt sees every creation, including our own frames, so it can
	// retire the frames it is waiting on.
	_, known := d.m.Lookup(id)
	err := d.m.Adopt(wm.AdoptRequest{
		Window:           id,
		Parent:           platform.WindowID(e.Parent),
		Geom:             platform.Rect{X: int(e.X), Y: int(e.Y), Width: int(e.Width), Height: int(e.Height)},
		OverrideRedirect: e.OverrideRedirect,
	})
	if err != nil {
		if wm.IsFatal(err) {
			return err
		}
		d.logger.Warn("failed to adopt window", "window", id, "parent", e.Parent, "error", err)
		return nil
	}
	if _, tracked := d.m.Lookup(id); tracked && !known && !e.OverrideRedirect {
		d.m.Rename(id, d.display.Title(id))
	}
	return nil
}

func (d *Dispatcher) clientMessage(e xproto.ClientMessageEvent) error {
	id := platform.WindowID(e.Window)
	switch {
	case e.Type == 0:
	case e.Type == d.reloadAtom:
		d.logger.Info("reload requested by client message")
		return d.runReload()
	case e.Type == d.activeAtom:
		if err := d.m.RaiseWindow(id); err != nil {
			d.logger.Debug("activate request ignored", "window", id, "error", err)
		}
		return nil
	case e.Type == d.closeAtom:
		if err := d.m.CloseWindow(id); err != nil {
			d.logger.Debug("close request ignored", "window", id, "error", err)
		}
		return nil
	}
	d.logger.Debug("unhandled client message", "window", id, "type", e.Type)
	return nil
}

func (d *Dispatcher) key(e xproto.KeyPressEvent) error {
	if d.keys == nil {
		return nil
	}
	action, ok := d.keys.Match(e)
	if !ok {
		return nil
	}
	d.logger.Debug("hotkey pressed", "action", action.String())
	switch action {
	case hotkeys.ActionClose:
		d.m.CloseFocused()
	case hotkeys.ActionCycle:
		d.m.CycleFocus()
	case hotkeys.ActionReload:
		return d.runReload()
	}
	return nil
}

func (d *Dispatcher) runReload() error {
	if d.reload == nil {
		return nil
	}
	err := d.reload(d.m)
	if wm.IsFatal(err) {
		return err
	}
	if err != nil {
		d.logger.Error("reload failed; keeping current configuration", "error", err)
	}
	return nil
}

func pointer(win xproto.Window, x, y, rootX, rootY int16) wm.Pointer {
	return wm.Pointer{
		Window: platform.WindowID(win),
		X:      int(x),
		Y:      int(y),
		RootX:  int(rootX),
		RootY:  int(rootY),
	}
}

func configureRequest(e xproto.ConfigureRequestEvent) wm.ConfigureRequest {
	var mask platform.ConfigMask
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		mask |= platform.ConfigX
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		mask |= platform.ConfigY
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		mask |= platform.ConfigWidth
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		mask |= platform.ConfigHeight
	}
	return wm.ConfigureRequest{
		Window: platform.WindowID(e.Window),
		Mask:   mask,
		X:      int(e.X),
		Y:      int(e.Y),
		Width:  int(e.Width),
		Height: int(e.Height),
	}
}

//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/1broseidon/casement/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Decor places the title bar contents inside a frame.
type Decor struct {
	TitleBar    int
	CloseButton Rect
}

// LinuxBackend implements Backend and Renderer on an X11 connection.
type LinuxBackend struct {
	conn    *x11.Connection
	painter *x11.Painter

	mu     sync.RWMutex
	screen Rect
	theme  x11.Theme
	decor  Decor
}

var (
	_ Backend  = (*LinuxBackend)(nil)
	_ Renderer = (*LinuxBackend)(nil)
)

// NewLinuxBackend wraps an X11 connection that already holds substructure
// redirection on the root.
func NewLinuxBackend(conn *x11.Connection, theme x11.Theme, decor Decor) (*LinuxBackend, error) {
	painter, err := x11.NewPainter(conn, theme)
	if err != nil {
		return nil, err
	}
	w, h := conn.ScreenSize()
	return &LinuxBackend{
		conn:    conn,
		painter: painter,
		screen:  Rect{Width: w, Height: h},
		theme:   theme,
		decor:   decor,
	}, nil
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	return b.conn.XUtil
}

// Connection returns the wrapped X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	return b.conn
}

// SetScreenSize records a new root size after a RandR change.
func (b *LinuxBackend) SetScreenSize(width, height int) {
	b.mu.Lock()
	b.screen = Rect{Width: width, Height: height}
	b.mu.Unlock()
}

// SetAppearance swaps theme and decoration layout on reload.
func (b *LinuxBackend) SetAppearance(theme x11.Theme, decor Decor) error {
	if err := b.painter.SetTheme(theme); err != nil {
		return err
	}
	b.mu.Lock()
	b.theme = theme
	b.decor = decor
	b.mu.Unlock()
	return nil
}

// Alive reports whether id still exists on the server.
func (b *LinuxBackend) Alive(id WindowID) bool {
	return b.conn.Alive(xproto.Window(id))
}

// Title returns the current title of a client window.
func (b *LinuxBackend) Title(id WindowID) string {
	return b.conn.Title(xproto.Window(id))
}

func (b *LinuxBackend) Root() WindowID {
	return WindowID(b.conn.Root)
}

func (b *LinuxBackend) Screen() Rect {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.screen
}

func (b *LinuxBackend) Atoms() Atoms {
	return Atoms{
		Protocols:    uint32(b.conn.Atom(x11.AtomProtocols)),
		DeleteWindow: uint32(b.conn.Atom(x11.AtomDeleteWindow)),
	}
}

func (b *LinuxBackend) CreateFrame(bounds Rect) (WindowID, error) {
	b.mu.RLock()
	bg := b.theme.InactiveBackground
	b.mu.RUnlock()
	win, err := b.conn.CreateWindow(bounds.X, bounds.Y, bounds.Width, bounds.Height, bg, b.painter.Cursor())
	if err != nil {
		return None, err
	}
	return WindowID(win), nil
}

func (b *LinuxBackend) Destroy(id WindowID) error {
	return b.conn.DestroyWindow(xproto.Window(id))
}

func (b *LinuxBackend) Map(id WindowID) error {
	return b.conn.MapWindow(xproto.Window(id))
}

func (b *LinuxBackend) Unmap(id WindowID) error {
	return b.conn.UnmapWindow(xproto.Window(id))
}

func (b *LinuxBackend) Reparent(id, parent WindowID, x, y int) error {
	return b.conn.Reparent(xproto.Window(id), xproto.Window(parent), x, y)
}

func (b *LinuxBackend) Configure(id WindowID, mask ConfigMask, bounds Rect) error {
	var m uint16
	if mask.Has(ConfigX) {
		m |= x11.ConfigX
	}
	if mask.Has(ConfigY) {
		m |= x11.ConfigY
	}
	if mask.Has(ConfigWidth) {
		m |= x11.ConfigWidth
	}
	if mask.Has(ConfigHeight) {
		m |= x11.ConfigHeight
	}
	return b.conn.Configure(xproto.Window(id), m, bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) Raise(id WindowID) error {
	return b.conn.Raise(xproto.Window(id))
}

func (b *LinuxBackend) SelectInput(id WindowID, interest Interest) error {
	switch interest {
	case InterestClient:
		return b.conn.SelectInput(xproto.Window(id), x11.ClientEventMask)
	case InterestFrame:
		return b.conn.SelectInput(xproto.Window(id), x11.FrameEventMask)
	default:
		return fmt.Errorf("unknown interest %d", interest)
	}
}

func (b *LinuxBackend) Focus(id WindowID) error {
	return b.conn.Focus(xproto.Window(id))
}

func (b *LinuxBackend) SendMessage(msg ClientMessage) error {
	return b.conn.SendClientMessage(xproto.Window(msg.Window), xproto.Atom(msg.Type), msg.Data)
}

func (b *LinuxBackend) SetWMState(id WindowID, state uint32) error {
	return b.conn.SetWMState(xproto.Window(id), uint(state))
}

func (b *LinuxBackend) PublishClients(stacking []WindowID) error {
	wins := make([]xproto.Window, len(stacking))
	for i, id := range stacking {
		wins[i] = xproto.Window(id)
	}
	return b.conn.PublishClients(wins)
}

func (b *LinuxBackend) QueryTree() ([]ExistingWindow, error) {
	tops, err := b.conn.QueryTopLevels()
	if err != nil {
		return nil, err
	}
	out := make([]ExistingWindow, 0, len(tops))
	for _, t := range tops {
		out = append(out, ExistingWindow{
			ID:               WindowID(t.Window),
			Bounds:           Rect{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height},
			OverrideRedirect: t.OverrideRedirect,
			Viewable:         t.Viewable,
		})
	}
	return out, nil
}

// Flush waits for the server to process the batch so request errors
// surface before the next event read.
func (b *LinuxBackend) Flush() error {
	b.conn.Sync()
	return nil
}

func (b *LinuxBackend) PaintFrame(view FrameView) error {
	b.mu.RLock()
	decor := b.decor
	b.mu.RUnlock()
	return b.painter.Paint(x11.FrameDecor{
		Window:     xproto.Window(view.Frame),
		Width:      view.Width,
		Height:     view.Height,
		TitleBar:   decor.TitleBar,
		Title:      view.Title,
		Active:     view.Active,
		CloseX:     decor.CloseButton.X,
		CloseY:     decor.CloseButton.Y,
		CloseSize:  decor.CloseButton.Width,
		CloseHover: view.CloseHover,
	})
}

// Package wm keeps the window tree, stacking order and redraw queue of a
// reparenting window manager consistent under the event stream the display
// server delivers, and turns pointer interaction into geometry changes.
//
// A Manager is not safe for concurrent use. The daemon loop owns it and
// serialises every call.
package wm

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/tree"
)

// ErrCapacity is re-exported so callers need not import tree to detect the
// fatal path.
var ErrCapacity = tree.ErrCapacity

// IsFatal reports whether err must stop the window manager.
func IsFatal(err error) bool {
	return errors.Is(err, tree.ErrCapacity)
}

// Manager owns the node registry and every structure derived from it.
type Manager struct {
	backend  platform.Backend
	renderer platform.Renderer
	logger   *slog.Logger

	opts   Options
	screen platform.Rect
	atoms  platform.Atoms

	reg      *tree.Registry
	stacking *tree.List
	redraw   *tree.List

	session session
	spawn   spawnCursor

	// released holds windows this process destroyed itself; their destroy
	// notifications are expected and not worth a warning.
	released map[platform.WindowID]struct{}
	// unannounced holds frames created here whose creation notification
	// has not been seen yet.
	unannounced map[platform.WindowID]struct{}

	stackingChanged bool
}

// NewManager builds a manager for the backend's root window.
func NewManager(backend platform.Backend, renderer platform.Renderer, opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	screen := backend.Screen()
	m := &Manager{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		opts:     opts,
		screen:   screen,
		atoms:    backend.Atoms(),
		reg:      tree.NewRegistry(backend.Root(), screen, opts.MaxChildren),
		stacking: tree.NewList(opts.MaxStacked),
		redraw:   tree.NewList(0),
		released: make(map[platform.WindowID]struct{}),

		unannounced: make(map[platform.WindowID]struct{}),
	}
	m.spawn = newSpawnCursor(opts)
	return m
}

// Options returns the settings currently in effect.
func (m *Manager) Options() Options {
	return m.opts
}

// SetOptions replaces the live settings. Border insets are fixed for the
// lifetime of existing frames, so a change to them is ignored and reported.
func (m *Manager) SetOptions(opts Options) bool {
	insetsKept := opts.Insets == m.opts.Insets
	if !insetsKept {
		m.logger.Warn("border insets cannot change while running; keeping current values",
			"left", m.opts.Insets.Left, "right", m.opts.Insets.Right,
			"top", m.opts.Insets.Top, "bottom", m.opts.Insets.Bottom)
		opts.Insets = m.opts.Insets
	}
	m.opts = opts
	return insetsKept
}

// SetScreen follows a change of the root size. Existing windows keep their
// geometry until they are next configured.
func (m *Manager) SetScreen(screen platform.Rect) {
	m.screen = screen
	m.reg.Root().Geom = screen
	m.logger.Info("screen size changed", "width", screen.Width, "height", screen.Height)
}

// Screen returns the screen bounds used for clamping and placement.
func (m *Manager) Screen() platform.Rect {
	return m.screen
}

// Registry exposes the node registry for read-only inspection.
func (m *Manager) Registry() *tree.Registry {
	return m.reg
}

// Stacking returns the stacking order, topmost first.
func (m *Manager) Stacking() []platform.WindowID {
	return m.stacking.Items()
}

// Lookup resolves a window handle.
func (m *Manager) Lookup(id platform.WindowID) (*tree.Node, bool) {
	return m.reg.Lookup(id)
}

// Check verifies the tree and the structures derived from it.
func (m *Manager) Check() error {
	if err := m.reg.Check(); err != nil {
		return err
	}
	return m.checkQueues()
}

// ignore logs a boundary failure at debug level. Such failures are expected
// when a window vanished and its destroy notification is still in flight.
func (m *Manager) ignore(op string, id platform.WindowID, err error) {
	if err != nil {
		m.logger.Debug("display call failed", "op", op, "window", id, "error", err)
	}
}

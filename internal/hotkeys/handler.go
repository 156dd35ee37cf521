package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Action is a window manager command bound to a key.
type Action int

const (
	ActionClose Action = iota + 1
	ActionCycle
	ActionReload
)

func (a Action) String() string {
	switch a {
	case ActionClose:
		return "close"
	case ActionCycle:
		return "cycle"
	case ActionReload:
		return "reload"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Spec maps each action to a key sequence such as "Mod4-q". Empty
// sequences are left unbound.
type Spec map[Action]string

type binding struct {
	action Action
	mods   uint16
	code   xproto.Keycode
}

// Handler grabs global keys on the root window and resolves key presses to
// actions. Key events are read by the daemon loop, not by xevent callbacks.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	bindings []binding
	ignored  uint16
}

var ignoreModsOnce sync.Once

// NewHandler creates a handler for the root window of xu.
func NewHandler(xu *xgbutil.XUtil, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	var ignored uint16
	for _, m := range xevent.IgnoreMods {
		ignored |= m
	}
	return &Handler{
		xu:      xu,
		root:    xu.RootWin(),
		logger:  logger,
		ignored: ignored,
	}
}

// Bind replaces every grab with the given spec. Sequences that fail to
// parse or grab are skipped and reported together.
func (h *Handler) Bind(spec Spec) error {
	h.Unbind()

	var errs []error
	for _, action := range []Action{ActionClose, ActionCycle, ActionReload} {
		seq := strings.TrimSpace(spec[action])
		if seq == "" {
			continue
		}
		mods, codes, err := keybind.ParseString(h.xu, seq)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s hotkey %q: %w", action, seq, err))
			continue
		}
		for _, code := range codes {
			if err := keybind.GrabChecked(h.xu, h.root, mods, code); err != nil {
				errs = append(errs, fmt.Errorf("%s hotkey %q: grab failed (already taken?): %w", action, seq, err))
				continue
			}
			h.bindings = append(h.bindings, binding{action: action, mods: mods, code: code})
		}
		h.logger.Debug("hotkey bound", "action", action.String(), "keys", seq)
	}
	return errors.Join(errs...)
}

// Unbind releases every grab held by the handler.
func (h *Handler) Unbind() {
	for _, b := range h.bindings {
		keybind.Ungrab(h.xu, h.root, b.mods, b.code)
	}
	h.bindings = nil
}

// Match resolves a key press to a bound action.
func (h *Handler) Match(ev xproto.KeyPressEvent) (Action, bool) {
	return h.match(ev.State, ev.Detail)
}

func (h *Handler) match(state uint16, code xproto.Keycode) (Action, bool) {
	const modifiers = xproto.ModMaskShift | xproto.ModMaskControl |
		xproto.ModMask1 | xproto.ModMask2 | xproto.ModMask3 | xproto.ModMask4 | xproto.ModMask5
	state = state & modifiers &^ h.ignored
	for _, b := range h.bindings {
		if b.code == code && b.mods == state {
			return b.action, true
		}
	}
	return 0, false
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	// Every combination of the lock modifiers, including none.
	ignore := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

package daemon

import (
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/casement/internal/hotkeys"
	"github.com/1broseidon/casement/internal/platform/platformtest"
	"github.com/1broseidon/casement/internal/wm"
	"github.com/BurntSushi/xgb/xproto"
)

const (
	testNameAtom   xproto.Atom = 201
	testReloadAtom xproto.Atom = 202
	testActiveAtom xproto.Atom = 203
	testCloseAtom  xproto.Atom = 204
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T) (*wm.Manager, *platformtest.Backend) {
	t.Helper()
	backend := platformtest.New()
	return wm.NewManager(backend, backend, wm.DefaultOptions(), discardLogger()), backend
}

type fakeKeys map[xproto.Keycode]hotkeys.Action

func (k fakeKeys) Match(ev xproto.KeyPressEvent) (hotkeys.Action, bool) {
	a, ok := k[ev.Detail]
	return a, ok
}

func createOnRoot(win xproto.Window, x, y, w, h int) xproto.CreateNotifyEvent {
	return xproto.CreateNotifyEvent{
		Parent: xproto.Window(platformtest.Root),
		Window: win,
		X:      int16(x),
		Y:      int16(y),
		Width:  uint16(w),
		Height: uint16(h),
	}
}

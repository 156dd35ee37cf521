package daemon

import (
	"errors"
	"testing"

	"github.com/1broseidon/casement/internal/hotkeys"
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/platform/platformtest"
	"github.com/1broseidon/casement/internal/tree"
	"github.com/1broseidon/casement/internal/wm"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

type dispatchFixture struct {
	m       *wm.Manager
	backend *platformtest.Backend
	d       *Dispatcher
	reloads int
}

func newDispatchFixture(t *testing.T, reloadErr error) *dispatchFixture {
	t.Helper()
	m, backend := newTestManager(t)
	f := &dispatchFixture{m: m, backend: backend}
	f.d = NewDispatcher(DispatcherConfig{
		Manager: m,
		Display: backend,
		Keys: fakeKeys{
			24: hotkeys.ActionClose,
			23: hotkeys.ActionCycle,
			27: hotkeys.ActionReload,
		},
		NameAtoms:  []xproto.Atom{testNameAtom},
		ReloadAtom: testReloadAtom,
		ActiveAtom: testActiveAtom,
		CloseAtom:  testCloseAtom,
		Reload: func(*wm.Manager) error {
			f.reloads++
			return reloadErr
		},
		Ignore: []platform.WindowID{0x99},
		Logger: discardLogger(),
	})
	return f
}

func (f *dispatchFixture) handle(t *testing.T, ev xgb.Event) {
	t.Helper()
	if err := f.d.HandleEvent(ev); err != nil {
		t.Fatalf("HandleEvent(%T): unexpected error: %v", ev, err)
	}
}

func TestDispatch_CreateNotifyAdoptsAndNames(t *testing.T) {
	f := newDispatchFixture(t, nil)
	f.backend.Titles[0x20] = "editor"

	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))

	client, ok := f.m.Lookup(0x20)
	if !ok {
		t.Fatal("expected window to be tracked")
	}
	if client.Title != "editor" {
		t.Fatalf("expected title editor, got %q", client.Title)
	}
	frame, ok := f.m.Lookup(client.Parent)
	if !ok || frame.Kind != tree.KindFrame {
		t.Fatalf("expected client to be framed, got parent %#x", client.Parent)
	}
	if len(f.backend.Created) != 1 {
		t.Fatalf("expected 1 frame created, got %d", len(f.backend.Created))
	}
}

func TestDispatch_CreateNotifyForOwnFrameIsIgnored(t *testing.T) {
	f := newDispatchFixture(t, nil)
	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))
	nodes := f.m.Registry().Len()

	frame := f.backend.Created[0]
	f.handle(t, createOnRoot(xproto.Window(frame), 10, 10, 103, 71))

	if f.m.Registry().Len() != nodes {
		t.Fatalf("expected %d nodes, got %d", nodes, f.m.Registry().Len())
	}
}

func TestDispatch_ShortLivedClientDoesNotLoopOnItsFrame(t *testing.T) {
	f := newDispatchFixture(t, nil)

	// One batch: create and destroy the client, then the frame's own
	// notifications arrive.
	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))
	f.handle(t, xproto.DestroyNotifyEvent{Event: xproto.Window(platformtest.Root), Window: 0x20})
	frame := xproto.Window(f.backend.Created[0])
	f.handle(t, createOnRoot(frame, 10, 10, 103, 71))
	f.handle(t, xproto.DestroyNotifyEvent{Event: xproto.Window(platformtest.Root), Window: frame})

	if len(f.backend.Created) != 1 {
		t.Fatalf("expected 1 frame created, got %d", len(f.backend.Created))
	}
	if f.m.Registry().Len() != 1 {
		t.Fatalf("expected only root left, got %d nodes", f.m.Registry().Len())
	}
}

func TestDispatch_IgnoredWindowIsNotAdopted(t *testing.T) {
	f := newDispatchFixture(t, nil)

	ev := createOnRoot(0x99, -1, -1, 1, 1)
	ev.OverrideRedirect = true
	f.handle(t, ev)

	if _, ok := f.m.Lookup(0x99); ok {
		t.Fatal("expected ignored window to stay untracked")
	}
}

func TestDispatch_DestroyNotifyRemovesWindow(t *testing.T) {
	f := newDispatchFixture(t, nil)
	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))

	f.handle(t, xproto.DestroyNotifyEvent{Event: 0x20, Window: 0x20})

	if _, ok := f.m.Lookup(0x20); ok {
		t.Fatal("expected window to be forgotten")
	}
	if len(f.m.Stacking()) != 0 {
		t.Fatalf("expected empty stacking, got %v", f.m.Stacking())
	}
	if err := f.m.Check(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestDispatch_PropertyNotifyRenames(t *testing.T) {
	f := newDispatchFixture(t, nil)
	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))

	f.backend.Titles[0x20] = "renamed"
	f.handle(t, xproto.PropertyNotifyEvent{Window: 0x20, Atom: testNameAtom, State: xproto.PropertyNewValue})
	if client, _ := f.m.Lookup(0x20); client.Title != "renamed" {
		t.Fatalf("expected title renamed, got %q", client.Title)
	}

	f.backend.Titles[0x20] = "other atom"
	f.handle(t, xproto.PropertyNotifyEvent{Window: 0x20, Atom: 999, State: xproto.PropertyNewValue})
	if client, _ := f.m.Lookup(0x20); client.Title != "renamed" {
		t.Fatalf("expected unrelated property to be ignored, got %q", client.Title)
	}
}

func TestDispatch_CloseHotkeyTargetsFocusedClient(t *testing.T) {
	f := newDispatchFixture(t, nil)
	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))
	f.handle(t, createOnRoot(0x30, 40, 40, 100, 50))

	f.handle(t, xproto.KeyPressEvent{Detail: 24})

	msgs := f.backend.MessagesTo(0x30)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 close request to the focused client, got %d", len(msgs))
	}
	atoms := f.backend.Atoms()
	if msgs[0].Type != atoms.Protocols || msgs[0].Data[0] != atoms.DeleteWindow {
		t.Fatalf("expected WM_DELETE_WINDOW request, got %+v", msgs[0])
	}
	if len(f.backend.MessagesTo(0x20)) != 0 {
		t.Fatal("expected no close request to the unfocused client")
	}
}

func TestDispatch_UnboundKeyIsIgnored(t *testing.T) {
	f := newDispatchFixture(t, nil)
	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))

	f.handle(t, xproto.KeyPressEvent{Detail: 99})

	if len(f.backend.Messages) != 0 {
		t.Fatalf("expected no messages, got %v", f.backend.Messages)
	}
}

func TestDispatch_ReloadTriggers(t *testing.T) {
	f := newDispatchFixture(t, nil)

	f.handle(t, xproto.ClientMessageEvent{Window: xproto.Window(platformtest.Root), Type: testReloadAtom, Format: 32})
	f.handle(t, xproto.ClientMessageEvent{Window: xproto.Window(platformtest.Root), Type: 555, Format: 32})
	f.handle(t, xproto.KeyPressEvent{Detail: 27})

	if f.reloads != 2 {
		t.Fatalf("expected 2 reloads, got %d", f.reloads)
	}
}

func TestDispatch_FailedReloadIsNotFatal(t *testing.T) {
	f := newDispatchFixture(t, errors.New("bad config"))

	if err := f.d.HandleEvent(xproto.KeyPressEvent{Detail: 27}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestDispatch_ScreenChangeUpdatesScreen(t *testing.T) {
	f := newDispatchFixture(t, nil)

	f.handle(t, randr.ScreenChangeNotifyEvent{Width: 1024, Height: 768, Rotation: randr.RotationRotate90})

	want := platform.Rect{Width: 768, Height: 1024}
	if got := f.m.Screen(); got != want {
		t.Fatalf("expected screen %+v, got %+v", want, got)
	}
	if got := f.backend.Screen(); got != want {
		t.Fatalf("expected backend screen %+v, got %+v", want, got)
	}
}

func TestConfigureRequest_MapsValueMask(t *testing.T) {
	req := configureRequest(xproto.ConfigureRequestEvent{
		Window:    0x20,
		X:         5,
		Y:         6,
		Width:     70,
		Height:    80,
		ValueMask: xproto.ConfigWindowX | xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth,
	})

	if req.Mask != platform.ConfigX|platform.ConfigHeight {
		t.Fatalf("expected mask X|Height, got %b", req.Mask)
	}
	if req.Window != 0x20 || req.X != 5 || req.Y != 6 || req.Width != 70 || req.Height != 80 {
		t.Fatalf("expected fields copied, got %+v", req)
	}
}

func TestDispatch_ActiveWindowMessageRaises(t *testing.T) {
	f := newDispatchFixture(t, nil)
	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))
	f.handle(t, createOnRoot(0x30, 10, 10, 100, 50))

	f.handle(t, xproto.ClientMessageEvent{Window: 0x20, Type: testActiveAtom, Format: 32})

	if got := f.m.Focused(); got != 0x20 {
		t.Fatalf("expected 0x20 focused, got %#x", got)
	}
}

func TestDispatch_CloseWindowMessageRequestsClose(t *testing.T) {
	f := newDispatchFixture(t, nil)
	f.handle(t, createOnRoot(0x20, 10, 10, 100, 50))
	f.handle(t, createOnRoot(0x30, 10, 10, 100, 50))

	f.handle(t, xproto.ClientMessageEvent{Window: 0x20, Type: testCloseAtom, Format: 32})

	if len(f.backend.MessagesTo(0x20)) != 1 {
		t.Fatalf("expected 1 close request to 0x20, got %d", len(f.backend.MessagesTo(0x20)))
	}
	if len(f.backend.MessagesTo(0x30)) != 0 {
		t.Fatal("expected no close request to 0x30")
	}
}

func TestDispatch_PagerRequestForUnknownWindowIsIgnored(t *testing.T) {
	f := newDispatchFixture(t, nil)

	f.handle(t, xproto.ClientMessageEvent{Window: 0x77, Type: testActiveAtom, Format: 32})
	f.handle(t, xproto.ClientMessageEvent{Window: 0x77, Type: testCloseAtom, Format: 32})

	if len(f.backend.Messages) != 0 {
		t.Fatalf("expected no messages, got %v", f.backend.Messages)
	}
}

package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/platform/platformtest"
	"github.com/1broseidon/casement/internal/wm"
)

// lockedExecutor serialises commands with a mutex instead of an event loop.
type lockedExecutor struct {
	mu sync.Mutex
	m  *wm.Manager
}

func (e *lockedExecutor) Do(ctx context.Context, fn func(*wm.Manager) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.m)
}

type ipcFixture struct {
	backend *platformtest.Backend
	exec    *lockedExecutor
	client  *Client
	reloads atomic.Int32
}

func newIPCFixture(t *testing.T, reloadErr error) *ipcFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := platformtest.New()
	m := wm.NewManager(backend, backend, wm.DefaultOptions(), logger)
	f := &ipcFixture{backend: backend, exec: &lockedExecutor{m: m}}

	socket := filepath.Join(t.TempDir(), "casement.sock")
	srv, err := NewServer(ServerConfig{
		SocketPath: socket,
		Executor:   f.exec,
		Reload: func(*wm.Manager) error {
			f.reloads.Add(1)
			return reloadErr
		},
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	f.client = NewClientAt(socket)
	return f
}

func (f *ipcFixture) adopt(t *testing.T, id platform.WindowID, geom platform.Rect) {
	t.Helper()
	err := f.exec.Do(context.Background(), func(m *wm.Manager) error {
		return m.Adopt(wm.AdoptRequest{Window: id, Parent: platformtest.Root, Geom: geom})
	})
	if err != nil {
		t.Fatalf("Adopt(%#x): %v", id, err)
	}
}

func TestServer_GetStatus(t *testing.T) {
	f := newIPCFixture(t, nil)
	f.adopt(t, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})

	st, err := f.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.Stacked != 1 || st.Frames != 1 {
		t.Fatalf("expected 1 stacked frame, got stacked=%d frames=%d", st.Stacked, st.Frames)
	}
	if st.Focused != 0x20 {
		t.Fatalf("expected focused 0x20, got %#x", st.Focused)
	}
	if st.ScreenWidth != 800 || st.ScreenHeight != 600 {
		t.Fatalf("expected 800x600, got %dx%d", st.ScreenWidth, st.ScreenHeight)
	}
	if st.Interaction != "idle" {
		t.Fatalf("expected idle, got %q", st.Interaction)
	}
}

func TestServer_ListWindowsTopmostFirst(t *testing.T) {
	f := newIPCFixture(t, nil)
	f.adopt(t, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})
	f.adopt(t, 0x30, platform.Rect{X: 40, Y: 40, Width: 100, Height: 50})

	data, err := f.client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(data.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(data.Windows))
	}
	if data.Windows[0].Client != 0x30 || !data.Windows[0].Focused {
		t.Fatalf("expected focused 0x30 first, got %+v", data.Windows[0])
	}
	if data.Windows[1].Client != 0x20 || data.Windows[1].Focused {
		t.Fatalf("expected unfocused 0x20 second, got %+v", data.Windows[1])
	}
	if data.Windows[0].Frame == 0 {
		t.Fatal("expected frame id to be reported")
	}
}

func TestServer_RaiseWindow(t *testing.T) {
	f := newIPCFixture(t, nil)
	f.adopt(t, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})
	f.adopt(t, 0x30, platform.Rect{X: 40, Y: 40, Width: 100, Height: 50})

	if err := f.client.Raise(0x20); err != nil {
		t.Fatalf("Raise: %v", err)
	}
	data, err := f.client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if data.Windows[0].Client != 0x20 {
		t.Fatalf("expected 0x20 on top, got %#x", data.Windows[0].Client)
	}
}

func TestServer_CloseWindowSendsDeleteRequest(t *testing.T) {
	f := newIPCFixture(t, nil)
	f.adopt(t, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})

	if err := f.client.Close(0x20); err != nil {
		t.Fatalf("Close: %v", err)
	}
	msgs := f.backend.MessagesTo(0x20)
	if len(msgs) != 1 || msgs[0].Data[0] != f.backend.Atoms().DeleteWindow {
		t.Fatalf("expected one WM_DELETE_WINDOW message, got %+v", msgs)
	}
}

func TestServer_UnknownWindowIsAnError(t *testing.T) {
	f := newIPCFixture(t, nil)

	err := f.client.Raise(0x77)
	if err == nil || !strings.Contains(err.Error(), wm.ErrUnknownWindow.Error()) {
		t.Fatalf("expected unknown window error, got %v", err)
	}
}

func TestServer_Reload(t *testing.T) {
	f := newIPCFixture(t, nil)
	if err := f.client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if n := f.reloads.Load(); n != 1 {
		t.Fatalf("expected 1 reload, got %d", n)
	}

	bad := newIPCFixture(t, errors.New("theme.close_hover: bad color"))
	err := bad.client.Reload()
	if err == nil || !strings.Contains(err.Error(), "theme.close_hover") {
		t.Fatalf("expected reload error to be reported, got %v", err)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	f := newIPCFixture(t, nil)
	_, err := f.client.sendRequest(&Request{Command: "NOPE"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestServer_MissingWindowPayload(t *testing.T) {
	f := newIPCFixture(t, nil)
	_, err := f.client.sendRequest(&Request{Command: CommandRaise, Payload: []byte(`{}`)})
	if err == nil || !strings.Contains(err.Error(), "window is required") {
		t.Fatalf("expected missing window error, got %v", err)
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); !errors.Is(err, ErrNoDaemon) {
		t.Fatalf("expected ErrNoDaemon, got %v", err)
	}
}

package wm

import (
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/casement/internal/platform"
)

const (
	testRoot         platform.WindowID = 1
	testProtocols    uint32            = 101
	testDeleteWindow uint32            = 102
)

type configureCall struct {
	id   platform.WindowID
	mask platform.ConfigMask
	rect platform.Rect
}

type reparentCall struct {
	id, parent platform.WindowID
	x, y       int
}

// fakeBackend records every call the manager makes at the boundary.
type fakeBackend struct {
	screen    platform.Rect
	nextFrame platform.WindowID

	created    []platform.Rect
	destroyed  []platform.WindowID
	mapped     []platform.WindowID
	unmapped   []platform.WindowID
	reparents  []reparentCall
	configures []configureCall
	raised     []platform.WindowID
	focused    []platform.WindowID
	messages   []platform.ClientMessage
	wmStates   map[platform.WindowID]uint32
	published  [][]platform.WindowID
	existing   []platform.ExistingWindow
	flushes    int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		screen:    platform.Rect{Width: 800, Height: 600},
		nextFrame: 0x1000,
		wmStates:  make(map[platform.WindowID]uint32),
	}
}

func (f *fakeBackend) Root() platform.WindowID { return testRoot }
func (f *fakeBackend) Screen() platform.Rect   { return f.screen }
func (f *fakeBackend) Atoms() platform.Atoms {
	return platform.Atoms{Protocols: testProtocols, DeleteWindow: testDeleteWindow}
}

func (f *fakeBackend) CreateFrame(bounds platform.Rect) (platform.WindowID, error) {
	f.nextFrame++
	f.created = append(f.created, bounds)
	return f.nextFrame, nil
}

func (f *fakeBackend) Destroy(id platform.WindowID) error {
	f.destroyed = append(f.destroyed, id)
	return nil
}

func (f *fakeBackend) Map(id platform.WindowID) error {
	f.mapped = append(f.mapped, id)
	return nil
}

func (f *fakeBackend) Unmap(id platform.WindowID) error {
	f.unmapped = append(f.unmapped, id)
	return nil
}

func (f *fakeBackend) Reparent(id, parent platform.WindowID, x, y int) error {
	f.reparents = append(f.reparents, reparentCall{id: id, parent: parent, x: x, y: y})
	return nil
}

func (f *fakeBackend) Configure(id platform.WindowID, mask platform.ConfigMask, bounds platform.Rect) error {
	f.configures = append(f.configures, configureCall{id: id, mask: mask, rect: bounds})
	return nil
}

func (f *fakeBackend) Raise(id platform.WindowID) error {
	f.raised = append(f.raised, id)
	return nil
}

func (f *fakeBackend) SelectInput(platform.WindowID, platform.Interest) error { return nil }

func (f *fakeBackend) Focus(id platform.WindowID) error {
	f.focused = append(f.focused, id)
	return nil
}

func (f *fakeBackend) SendMessage(msg platform.ClientMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeBackend) SetWMState(id platform.WindowID, state uint32) error {
	f.wmStates[id] = state
	return nil
}

func (f *fakeBackend) PublishClients(stacking []platform.WindowID) error {
	f.published = append(f.published, stacking)
	return nil
}

func (f *fakeBackend) QueryTree() ([]platform.ExistingWindow, error) {
	return f.existing, nil
}

func (f *fakeBackend) Flush() error {
	f.flushes++
	return nil
}

// lastConfigure returns the most recent configure call for id.
func (f *fakeBackend) lastConfigure(id platform.WindowID) (configureCall, bool) {
	for i := len(f.configures) - 1; i >= 0; i-- {
		if f.configures[i].id == id {
			return f.configures[i], true
		}
	}
	return configureCall{}, false
}

type fakeRenderer struct {
	painted []platform.FrameView
}

func (r *fakeRenderer) PaintFrame(view platform.FrameView) error {
	r.painted = append(r.painted, view)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeBackend, *fakeRenderer) {
	t.Helper()
	backend := newFakeBackend()
	renderer := &fakeRenderer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(backend, renderer, DefaultOptions(), logger), backend, renderer
}

// adoptTop adopts a decorated top-level and returns its frame handle.
func adoptTop(t *testing.T, m *Manager, id platform.WindowID, geom platform.Rect) platform.WindowID {
	t.Helper()
	if err := m.Adopt(AdoptRequest{Window: id, Parent: testRoot, Geom: geom}); err != nil {
		t.Fatalf("Adopt(%#x): %v", id, err)
	}
	n, ok := m.Lookup(id)
	if !ok {
		t.Fatalf("expected %#x to be tracked", id)
	}
	return n.Parent
}

func mustCheck(t *testing.T, m *Manager) {
	t.Helper()
	if err := m.Check(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

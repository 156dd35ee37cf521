// Package platformtest provides an in-memory Backend for tests of code that
// drives a window manager without a display server.
package platformtest

import (
	"sync"

	"github.com/1broseidon/casement/internal/platform"
)

// Root is the root window handle used by Backend.
const Root platform.WindowID = 1

// Backend records the calls made against it. Frames are allocated from
// 0x1000 upwards. It is safe for concurrent use.
type Backend struct {
	mu sync.Mutex

	ScreenRect platform.Rect
	Existing   []platform.ExistingWindow
	Gone       map[platform.WindowID]bool
	Titles     map[platform.WindowID]string

	nextFrame platform.WindowID
	Created   []platform.WindowID
	Destroyed []platform.WindowID
	Raised    []platform.WindowID
	Focused   []platform.WindowID
	Messages  []platform.ClientMessage
	Published [][]platform.WindowID
	Painted   []platform.FrameView
	Flushes   int
}

var (
	_ platform.Backend  = (*Backend)(nil)
	_ platform.Renderer = (*Backend)(nil)
)

// New returns a backend with an 800x600 screen.
func New() *Backend {
	return &Backend{
		ScreenRect: platform.Rect{Width: 800, Height: 600},
		Gone:       make(map[platform.WindowID]bool),
		Titles:     make(map[platform.WindowID]string),
		nextFrame:  0x1000,
	}
}

func (b *Backend) Root() platform.WindowID { return Root }

func (b *Backend) Screen() platform.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ScreenRect
}

func (b *Backend) Atoms() platform.Atoms {
	return platform.Atoms{Protocols: 101, DeleteWindow: 102}
}

func (b *Backend) CreateFrame(platform.Rect) (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextFrame++
	b.Created = append(b.Created, b.nextFrame)
	return b.nextFrame, nil
}

func (b *Backend) Destroy(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Destroyed = append(b.Destroyed, id)
	return nil
}

func (b *Backend) Map(platform.WindowID) error                                   { return nil }
func (b *Backend) Unmap(platform.WindowID) error                                 { return nil }
func (b *Backend) Reparent(platform.WindowID, platform.WindowID, int, int) error { return nil }
func (b *Backend) SelectInput(platform.WindowID, platform.Interest) error        { return nil }
func (b *Backend) SetWMState(platform.WindowID, uint32) error                    { return nil }

func (b *Backend) Configure(platform.WindowID, platform.ConfigMask, platform.Rect) error {
	return nil
}

func (b *Backend) Raise(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Raised = append(b.Raised, id)
	return nil
}

func (b *Backend) Focus(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Focused = append(b.Focused, id)
	return nil
}

func (b *Backend) SendMessage(msg platform.ClientMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, msg)
	return nil
}

func (b *Backend) PublishClients(stacking []platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Published = append(b.Published, append([]platform.WindowID(nil), stacking...))
	return nil
}

func (b *Backend) QueryTree() ([]platform.ExistingWindow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.ExistingWindow(nil), b.Existing...), nil
}

func (b *Backend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Flushes++
	return nil
}

func (b *Backend) PaintFrame(view platform.FrameView) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Painted = append(b.Painted, view)
	return nil
}

// Alive reports whether id has not been marked gone.
func (b *Backend) Alive(id platform.WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.Gone[id]
}

// Title returns the title registered for id.
func (b *Backend) Title(id platform.WindowID) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Titles[id]
}

// SetScreenSize changes the reported screen.
func (b *Backend) SetScreenSize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ScreenRect = platform.Rect{Width: width, Height: height}
}

// Kill marks id as no longer known to the server.
func (b *Backend) Kill(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Gone[id] = true
}

// MessagesTo returns the client messages addressed to id.
func (b *Backend) MessagesTo(id platform.WindowID) []platform.ClientMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []platform.ClientMessage
	for _, m := range b.Messages {
		if m.Window == id {
			out = append(out, m)
		}
	}
	return out
}

package tree

import (
	"strings"
	"testing"

	"github.com/1broseidon/casement/internal/platform"
)

const rootID platform.WindowID = 1

func newTestRegistry() *Registry {
	return NewRegistry(rootID, platform.Rect{Width: 800, Height: 600}, 0)
}

func attach(t *testing.T, r *Registry, parent *Node, kind Kind, id platform.WindowID, geom platform.Rect) *Node {
	t.Helper()
	n := r.NewNode(kind, id, geom)
	if err := r.Insert(n); err != nil {
		t.Fatalf("Insert(%#x): %v", id, err)
	}
	if err := r.AddChild(parent, n); err != nil {
		t.Fatalf("AddChild(%#x): %v", id, err)
	}
	return n
}

func TestRegistryLookupResolvesEveryKind(t *testing.T) {
	r := newTestRegistry()
	frame := attach(t, r, r.Root(), KindFrame, 10, platform.Rect{X: 5, Y: 5, Width: 50, Height: 50})
	attach(t, r, frame, KindClient, 11, platform.Rect{X: 1, Y: 19, Width: 40, Height: 20})
	attach(t, r, r.Root(), KindClient, 20, platform.Rect{Width: 10, Height: 10})

	for _, id := range []platform.WindowID{rootID, 10, 11, 20} {
		if _, ok := r.Lookup(id); !ok {
			t.Fatalf("Lookup(%#x) missed", id)
		}
	}
	if _, ok := r.Lookup(platform.None); ok {
		t.Fatal("Lookup(None) hit")
	}
	if err := r.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestRegistryContainerOf(t *testing.T) {
	r := newTestRegistry()
	frame := attach(t, r, r.Root(), KindFrame, 10, platform.Rect{})
	client := attach(t, r, frame, KindClient, 11, platform.Rect{})
	embedded := attach(t, r, client, KindClient, 12, platform.Rect{})
	bare := attach(t, r, r.Root(), KindClient, 20, platform.Rect{})
	bareChild := attach(t, r, bare, KindClient, 21, platform.Rect{})

	tests := []struct {
		name string
		node *Node
		want platform.WindowID
	}{
		{"frame is its own container", frame, 10},
		{"framed client", client, 10},
		{"child of framed client", embedded, 10},
		{"bare top-level", bare, 20},
		{"child of bare top-level", bareChild, 20},
		{"root", r.Root(), rootID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ContainerOf(tt.node)
			if got == nil || got.Window != tt.want {
				t.Fatalf("ContainerOf(%#x) = %v, want %#x", tt.node.Window, got, tt.want)
			}
		})
	}
	if r.FrameOf(bare) != nil {
		t.Fatal("FrameOf(bare) should be nil")
	}
}

func TestRegistryAddChildMovesMembership(t *testing.T) {
	r := newTestRegistry()
	a := attach(t, r, r.Root(), KindGroup, 10, platform.Rect{})
	b := attach(t, r, r.Root(), KindGroup, 20, platform.Rect{})
	c := attach(t, r, a, KindClient, 30, platform.Rect{})

	if err := r.AddChild(b, c); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if a.Children.Contains(30) {
		t.Fatal("old parent still lists child")
	}
	if c.Parent != 20 {
		t.Fatalf("Parent = %#x, want 0x14", c.Parent)
	}
	if err := r.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestRegistryInsertDuplicateFails(t *testing.T) {
	r := newTestRegistry()
	attach(t, r, r.Root(), KindClient, 10, platform.Rect{})
	if err := r.Insert(r.NewNode(KindClient, 10, platform.Rect{})); err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
}

func TestRegistryAbsolutePosition(t *testing.T) {
	r := newTestRegistry()
	frame := attach(t, r, r.Root(), KindFrame, 10, platform.Rect{X: 100, Y: 50})
	client := attach(t, r, frame, KindClient, 11, platform.Rect{X: 1, Y: 19})
	inner := attach(t, r, client, KindClient, 12, platform.Rect{X: 5, Y: 6})

	x, y := r.AbsolutePosition(inner)
	if x != 106 || y != 75 {
		t.Fatalf("AbsolutePosition = (%d,%d), want (106,75)", x, y)
	}
}

func TestRegistryCheckDetectsDanglingChild(t *testing.T) {
	r := newTestRegistry()
	frame := attach(t, r, r.Root(), KindFrame, 10, platform.Rect{})
	frame.Children.Add(99)
	err := r.Check()
	if err == nil || !strings.Contains(err.Error(), "untracked child") {
		t.Fatalf("Check() = %v, want untracked child error", err)
	}
}

func TestNodeTitleAndManagement(t *testing.T) {
	n := NewNode(KindClient, 5, platform.Rect{}, 0)
	if n.Title != DefaultTitle {
		t.Fatalf("Title = %q, want %q", n.Title, DefaultTitle)
	}

	long := strings.Repeat("a", 254) + "é"
	n.SetTitle(long)
	if len(n.Title) != 254 {
		t.Fatalf("len(Title) = %d, want 254 (rune boundary)", len(n.Title))
	}
	n.SetTitle("short")
	if n.Title != "short" {
		t.Fatalf("Title = %q, want overwritten", n.Title)
	}

	if !n.SetManagement(ManagementReparented) {
		t.Fatal("SetManagement(Reparented) refused")
	}
	if n.SetManagement(ManagementInit) {
		t.Fatal("SetManagement(Init) accepted after leaving Init")
	}
	if n.Management != ManagementReparented {
		t.Fatalf("Management = %v, want reparented", n.Management)
	}
}

package wm

import (
	"testing"

	"github.com/1broseidon/casement/internal/platform"
)

func TestInteraction_CloseReleaseWhileHovering(t *testing.T) {
	m, backend, renderer := newTestManager(t)
	frameID := adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})
	m.EndBatch()
	renderer.painted = nil

	m.ButtonPress(Pointer{Window: frameID, X: 12, Y: 8, RootX: 22, RootY: 18})
	if m.State() != StateClose {
		t.Fatalf("expected close state, got %s", m.State())
	}
	m.EndBatch()
	if len(renderer.painted) == 0 || !renderer.painted[0].CloseHover {
		t.Fatalf("expected frame repainted with close hover, got %v", renderer.painted)
	}

	m.ButtonRelease(Pointer{Window: frameID, X: 12, Y: 8, RootX: 22, RootY: 18})
	if m.State() != StateIdle {
		t.Fatalf("expected idle, got %s", m.State())
	}
	if len(backend.messages) != 1 {
		t.Fatalf("expected one close message, got %d", len(backend.messages))
	}
	msg := backend.messages[0]
	if msg.Window != 0x20 || msg.Type != testProtocols {
		t.Fatalf("expected WM_PROTOCOLS to 0x20, got %+v", msg)
	}
	if msg.Data[0] != testDeleteWindow || msg.Data[1] != platform.CurrentTime {
		t.Fatalf("expected delete-window with current time, got %v", msg.Data)
	}
	if _, ok := m.Lookup(0x20); !ok {
		t.Fatalf("close request must not destroy the client")
	}
}

func TestInteraction_CloseReleaseElsewhereSendsNothing(t *testing.T) {
	m, backend, _ := newTestManager(t)
	frameID := adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})

	m.ButtonPress(Pointer{Window: frameID, X: 12, Y: 8})
	m.Motion(Pointer{Window: frameID, X: 60, Y: 8})
	m.ButtonRelease(Pointer{Window: frameID, X: 60, Y: 8})

	if len(backend.messages) != 0 {
		t.Fatalf("expected no close message, got %v", backend.messages)
	}
	if m.State() != StateIdle {
		t.Fatalf("expected idle, got %s", m.State())
	}
}

func TestInteraction_CloseHoverChangeMarksDirty(t *testing.T) {
	m, _, _ := newTestManager(t)
	frameID := adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})
	m.ButtonPress(Pointer{Window: frameID, X: 12, Y: 8})
	m.EndBatch()

	m.Motion(Pointer{Window: frameID, X: 13, Y: 9})
	if m.Pending() != 0 {
		t.Fatalf("expected no repaint while hover unchanged")
	}
	m.Motion(Pointer{Window: frameID, X: 40, Y: 9})
	if m.Pending() != 1 {
		t.Fatalf("expected repaint after leaving close zone, got %d", m.Pending())
	}
	view, _ := m.FrameView(frameID)
	if view.CloseHover {
		t.Fatalf("expected hover cleared")
	}
}

func TestInteraction_DragCoalescesMotion(t *testing.T) {
	m, backend, _ := newTestManager(t)
	frameID := adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})
	m.EndBatch()

	m.ButtonPress(Pointer{Window: frameID, X: 50, Y: 10, RootX: 60, RootY: 20})
	if m.State() != StateDrag {
		t.Fatalf("expected drag, got %s", m.State())
	}
	calls := len(backend.configures)
	m.Motion(Pointer{Window: frameID, RootX: 70, RootY: 30})
	m.Motion(Pointer{Window: frameID, RootX: 80, RootY: 40})
	m.Motion(Pointer{Window: frameID, RootX: 160, RootY: 120})
	if len(backend.configures) != calls {
		t.Fatalf("motion must not configure before the batch ends")
	}

	m.EndBatch()
	frameCalls := 0
	for _, c := range backend.configures[calls:] {
		if c.id == frameID {
			frameCalls++
		}
	}
	if frameCalls != 1 {
		t.Fatalf("expected one frame configure per batch, got %d", frameCalls)
	}
	frame, _ := m.Lookup(frameID)
	if frame.Geom.X != 110 || frame.Geom.Y != 110 {
		t.Fatalf("expected frame at (110,110), got (%d,%d)", frame.Geom.X, frame.Geom.Y)
	}

	m.EndBatch()
	if len(backend.configures) != calls+2 {
		t.Fatalf("expected no reapply without new motion")
	}

	m.Motion(Pointer{Window: frameID, RootX: 170, RootY: 130})
	m.ButtonRelease(Pointer{Window: frameID, RootX: 170, RootY: 130})
	if m.State() != StateIdle {
		t.Fatalf("expected idle, got %s", m.State())
	}
	if frame.Geom.X != 120 || frame.Geom.Y != 120 {
		t.Fatalf("expected release to flush pending geometry, got (%d,%d)", frame.Geom.X, frame.Geom.Y)
	}
}

func TestInteraction_ResizeFromBottomRight(t *testing.T) {
	m, _, _ := newTestManager(t)
	frameID := adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})

	// Frame is 103x71; both margins hit.
	m.ButtonPress(Pointer{Window: frameID, X: 100, Y: 68, RootX: 110, RootY: 78})
	if m.State() != StateResize {
		t.Fatalf("expected resize, got %s", m.State())
	}
	m.Motion(Pointer{Window: frameID, RootX: 140, RootY: 98})
	m.EndBatch()

	client, _ := m.Lookup(0x20)
	frame, _ := m.Lookup(frameID)
	if client.Geom.Width != 130 || client.Geom.Height != 70 {
		t.Fatalf("expected client 130x70, got %dx%d", client.Geom.Width, client.Geom.Height)
	}
	if frame.Geom.X != 10 || frame.Geom.Y != 10 {
		t.Fatalf("expected top-left to stay at (10,10), got (%d,%d)", frame.Geom.X, frame.Geom.Y)
	}

	m.Motion(Pointer{Window: frameID, RootX: -500, RootY: -500})
	m.ButtonRelease(Pointer{Window: frameID, RootX: -500, RootY: -500})
	if client.Geom.Width != 16 || client.Geom.Height != 16 {
		t.Fatalf("expected minimum 16x16, got %dx%d", client.Geom.Width, client.Geom.Height)
	}
}

func TestInteraction_ResizeRightEdgeOnlyKeepsHeight(t *testing.T) {
	m, _, _ := newTestManager(t)
	frameID := adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})

	m.ButtonPress(Pointer{Window: frameID, X: 100, Y: 30, RootX: 110, RootY: 40})
	m.Motion(Pointer{Window: frameID, RootX: 150, RootY: 300})
	m.ButtonRelease(Pointer{Window: frameID, RootX: 150, RootY: 300})

	client, _ := m.Lookup(0x20)
	if client.Geom.Width != 140 || client.Geom.Height != 50 {
		t.Fatalf("expected 140x50, got %dx%d", client.Geom.Width, client.Geom.Height)
	}
}

func TestInteraction_ResizeStartsFromFrameBounds(t *testing.T) {
	m, _, _ := newTestManager(t)
	frameID := adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})
	m.Configure(0x20, 10, 10, 200, 80)

	// Frame is now 203x101.
	m.ButtonPress(Pointer{Window: frameID, X: 200, Y: 98, RootX: 210, RootY: 108})
	m.Motion(Pointer{Window: frameID, RootX: 220, RootY: 118})
	m.ButtonRelease(Pointer{Window: frameID, RootX: 220, RootY: 118})

	client, _ := m.Lookup(0x20)
	if client.Geom.Width != 210 || client.Geom.Height != 90 {
		t.Fatalf("expected 210x90, got %dx%d", client.Geom.Width, client.Geom.Height)
	}
}

func TestInteraction_PressOnBareClientOnlyRaises(t *testing.T) {
	m, backend, _ := newTestManager(t)
	adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})
	if err := m.Adopt(AdoptRequest{Window: 0x40, Parent: testRoot, Geom: platform.Rect{X: 5, Y: 5, Width: 30, Height: 30}, OverrideRedirect: true}); err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	m.Raise(0x20)

	m.ButtonPress(Pointer{Window: 0x40, X: 3, Y: 3})
	if m.State() != StateIdle {
		t.Fatalf("expected idle, got %s", m.State())
	}
	if m.Stacking()[0] != 0x40 {
		t.Fatalf("expected bare client raised, got %v", m.Stacking())
	}
	if last := backend.raised[len(backend.raised)-1]; last != 0x40 {
		t.Fatalf("expected raise of 0x40, got %#x", last)
	}
}

func TestInteraction_PressDuringSessionResets(t *testing.T) {
	m, backend, _ := newTestManager(t)
	frameID := adoptTop(t, m, 0x20, platform.Rect{X: 10, Y: 10, Width: 100, Height: 50})

	m.ButtonPress(Pointer{Window: frameID, X: 50, Y: 10, RootX: 60, RootY: 20})
	m.Motion(Pointer{Window: frameID, RootX: 90, RootY: 90})
	calls := len(backend.configures)

	m.ButtonPress(Pointer{Window: 0x999})
	if m.State() != StateIdle {
		t.Fatalf("expected reset to idle, got %s", m.State())
	}
	m.EndBatch()
	if len(backend.configures) != calls {
		t.Fatalf("expected pending geometry to be dropped on reset")
	}
}

func TestInteraction_ReleaseWhenIdleIsHarmless(t *testing.T) {
	m, backend, _ := newTestManager(t)
	m.ButtonRelease(Pointer{Window: 0x20})
	m.Motion(Pointer{Window: 0x20})
	if m.State() != StateIdle || len(backend.messages) != 0 {
		t.Fatalf("expected nothing to happen")
	}
}

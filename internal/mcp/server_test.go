package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/casement/internal/ipc"
)

type fakeClient struct {
	status  ipc.StatusData
	windows []ipc.WindowData
	raised  []uint32
	closed  []uint32
	reloads int
	err     error
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.status, nil
}

func (f *fakeClient) ListWindows() (*ipc.WindowsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.WindowsData{Windows: f.windows}, nil
}

func (f *fakeClient) Raise(id uint32) error {
	f.raised = append(f.raised, id)
	return f.err
}

func (f *fakeClient) Close(id uint32) error {
	f.closed = append(f.closed, id)
	return f.err
}

func (f *fakeClient) Reload() error {
	f.reloads++
	return f.err
}

func newTestServer(c *fakeClient) *Server {
	return NewServer(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		input   string
		want    uint32
		wantErr bool
	}{
		{"0x1a00007", 0x1a00007, false},
		{"0X20", 0x20, false},
		{"32", 32, false},
		{" 0x20 ", 0x20, false},
		{"", 0, true},
		{"0", 0, true},
		{"window", 0, true},
		{"0x1ffffffff", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseWindow(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Fatalf("expected %#x, got %#x", tt.want, got)
			}
		})
	}
}

func TestHandleListWindows_FiltersByTitle(t *testing.T) {
	c := &fakeClient{windows: []ipc.WindowData{
		{Client: 0x20, Frame: 0x1001, Title: "Editor - main.go", Kind: "frame", Focused: true},
		{Client: 0x30, Title: "tooltip", Kind: "client"},
		{Client: 0x40, Frame: 0x1002, Title: "xterm", Kind: "frame"},
	}}
	s := newTestServer(c)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{Title: "EDIT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(out.Windows))
	}
	w := out.Windows[0]
	if w.Window != "0x20" || w.Frame != "0x1001" || !w.Focused {
		t.Fatalf("expected focused 0x20 in frame 0x1001, got %+v", w)
	}

	_, all, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all.Windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(all.Windows))
	}
	if all.Windows[1].Frame != "" {
		t.Fatalf("expected bare window without frame, got %q", all.Windows[1].Frame)
	}
}

func TestHandleRaiseAndClose_ForwardParsedID(t *testing.T) {
	c := &fakeClient{}
	s := newTestServer(c)

	if _, out, err := s.handleRaiseWindow(context.Background(), nil, WindowInput{Window: "0x20"}); err != nil || !out.Done {
		t.Fatalf("expected raise to succeed, got %+v, %v", out, err)
	}
	if _, _, err := s.handleCloseWindow(context.Background(), nil, WindowInput{Window: "48"}); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}
	if len(c.raised) != 1 || c.raised[0] != 0x20 {
		t.Fatalf("expected raise of 0x20, got %v", c.raised)
	}
	if len(c.closed) != 1 || c.closed[0] != 48 {
		t.Fatalf("expected close of 48, got %v", c.closed)
	}

	if _, _, err := s.handleRaiseWindow(context.Background(), nil, WindowInput{Window: "nope"}); err == nil {
		t.Fatal("expected invalid id to fail")
	}
	if len(c.raised) != 1 {
		t.Fatalf("expected no call for an invalid id, got %v", c.raised)
	}
}

func TestHandleStatus_FormatsFields(t *testing.T) {
	c := &fakeClient{status: ipc.StatusData{
		PID: 42, ScreenWidth: 1920, ScreenHeight: 1080,
		Stacked: 3, Frames: 2, Focused: 0x20, Interaction: "idle",
	}}
	s := newTestServer(c)

	_, out, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Screen != "1920x1080" || out.Focused != "0x20" || out.Windows != 3 {
		t.Fatalf("expected 1920x1080 focused 0x20 with 3 windows, got %+v", out)
	}
}

func TestHandlers_PropagateClientErrors(t *testing.T) {
	want := errors.New("daemon error: window is not managed")
	c := &fakeClient{err: want}
	s := newTestServer(c)

	if _, _, err := s.handleStatus(context.Background(), nil, StatusInput{}); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if _, _, err := s.handleReload(context.Background(), nil, ReloadInput{}); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if c.reloads != 1 {
		t.Fatalf("expected 1 reload call, got %d", c.reloads)
	}
}

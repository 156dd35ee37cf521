package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/1broseidon/casement/internal/ipc"
	"github.com/1broseidon/casement/internal/wm"
	"github.com/1broseidon/casement/internal/x11"
)

func TestParseWindowArg(t *testing.T) {
	tests := []struct {
		input   string
		want    uint32
		wantErr bool
	}{
		{"0x1a00007", 0x1a00007, false},
		{"4096", 4096, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseWindowArg(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Fatalf("expected %#x, got %#x", tt.want, got)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"capacity", fmt.Errorf("window manager stopped: %w", fmt.Errorf("adopt: %w", wm.ErrCapacity)), exitFatal},
		{"other wm", x11.ErrOtherWM, exitError},
		{"generic", errors.New("boom"), exitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWriteWindowTable(t *testing.T) {
	var buf bytes.Buffer
	writeWindowTable(&buf, []ipc.WindowData{
		{Client: 0x20, Frame: 0x1001, Title: "xterm", Kind: "frame", State: "normal", X: 40, Y: 40, Width: 483, Height: 316, Focused: true},
		{Client: 0x30, Title: "menu", Kind: "client", State: "normal", Width: 10, Height: 10},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "0x1001") || !strings.Contains(lines[1], "483x316+40+40") || !strings.Contains(lines[1], "* xterm") {
		t.Fatalf("expected focused framed row, got %q", lines[1])
	}
	if !strings.Contains(lines[2], " - ") {
		t.Fatalf("expected bare window without frame, got %q", lines[2])
	}
}

func TestStyleWindowTable_KeepsRowsAligned(t *testing.T) {
	windows := []ipc.WindowData{
		{Client: 0x20, Frame: 0x1001, Title: "xterm", Kind: "frame", State: "normal", Focused: true},
		{Client: 0x30, Frame: 0x1002, Title: "editor", Kind: "frame", State: "normal"},
	}
	out := styleWindowTable(windows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "xterm") || !strings.Contains(lines[2], "editor") {
		t.Fatalf("expected rows in input order, got %q", out)
	}
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Border is the decoration inset on each side of a framed client, in pixels.
type Border struct {
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
}

// Spawn configures the placement cursor for windows that request no position.
type Spawn struct {
	X     int `yaml:"x"`
	Y     int `yaml:"y"`
	StepX int `yaml:"step_x"`
	StepY int `yaml:"step_y"`
	MinY  int `yaml:"min_y"`
}

// CloseButton is the square hit zone of the close glyph inside a frame.
type CloseButton struct {
	X    int `yaml:"x"`
	Y    int `yaml:"y"`
	Size int `yaml:"size"`
}

// Limits caps the window lists. Zero means unbounded. Exceeding a limit is
// treated as resource exhaustion and stops the window manager.
type Limits struct {
	MaxChildren int `yaml:"max_children"`
	MaxStacked  int `yaml:"max_stacked"`
}

// Theme holds frame colors as #rrggbb strings plus the core font name.
type Theme struct {
	ActiveBackground   string `yaml:"active_background"`
	ActiveText         string `yaml:"active_text"`
	InactiveBackground string `yaml:"inactive_background"`
	InactiveText       string `yaml:"inactive_text"`
	CloseButton        string `yaml:"close_button"`
	CloseHover         string `yaml:"close_hover"`
	Font               string `yaml:"font"`
	CharWidth          int    `yaml:"char_width"`
}

// Hotkeys binds window manager actions to key sequences in keybind syntax,
// for example "Mod4-q". An empty binding is disabled.
type Hotkeys struct {
	Close  string `yaml:"close"`
	Cycle  string `yaml:"cycle"`
	Reload string `yaml:"reload"`
}

// Config is the effective configuration after defaults, includes and the
// main file have been merged.
type Config struct {
	Display                  string      `yaml:"display"`
	LogLevel                 string      `yaml:"log_level"`
	Border                   Border      `yaml:"border"`
	Spawn                    Spawn       `yaml:"spawn"`
	ResizeMargin             int         `yaml:"resize_margin"`
	MinWidth                 int         `yaml:"min_width"`
	MinHeight                int         `yaml:"min_height"`
	CloseButton              CloseButton `yaml:"close_button"`
	Limits                   Limits      `yaml:"limits"`
	Theme                    Theme       `yaml:"theme"`
	Hotkeys                  Hotkeys     `yaml:"hotkeys"`
	ReconcileIntervalSeconds int         `yaml:"reconcile_interval_seconds"`
	WatchConfig              bool        `yaml:"watch_config"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		Border:       Border{Left: 1, Right: 1, Top: 19, Bottom: 1},
		Spawn:        Spawn{X: 40, Y: 40, StepX: 20, StepY: 20, MinY: 40},
		ResizeMargin: 8,
		MinWidth:     16,
		MinHeight:    16,
		CloseButton:  CloseButton{X: 9, Y: 4, Size: 12},
		Theme: Theme{
			ActiveBackground:   "#3b4252",
			ActiveText:         "#eceff4",
			InactiveBackground: "#2e3440",
			InactiveText:       "#7b8394",
			CloseButton:        "#bf616a",
			CloseHover:         "#ff7b86",
			Font:               "fixed",
			CharWidth:          6,
		},
		Hotkeys: Hotkeys{
			Close:  "Mod4-q",
			Cycle:  "Mod1-Tab",
			Reload: "Mod4-Shift-r",
		},
		ReconcileIntervalSeconds: 30,
		WatchConfig:              true,
	}
}

// DefaultConfigPath returns ~/.config/casement/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "casement", "config.yaml"), nil
}

// ReconcileInterval returns the sweep period; zero disables the sweep.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	sides := map[string]int{
		"border.left":   c.Border.Left,
		"border.right":  c.Border.Right,
		"border.top":    c.Border.Top,
		"border.bottom": c.Border.Bottom,
	}
	for _, path := range []string{"border.left", "border.right", "border.top", "border.bottom"} {
		if sides[path] < 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("border insets must be >= 0")}
		}
	}

	if c.Spawn.X < 0 || c.Spawn.Y < 0 {
		return &ValidationError{Path: "spawn", Err: fmt.Errorf("spawn start must not be negative")}
	}
	if c.Spawn.StepX == 0 && c.Spawn.StepY == 0 {
		return &ValidationError{Path: "spawn", Err: fmt.Errorf("spawn step_x and step_y must not both be 0")}
	}
	if c.Spawn.MinY < 0 {
		return &ValidationError{Path: "spawn.min_y", Err: fmt.Errorf("min_y must be >= 0")}
	}

	if c.ResizeMargin < 1 {
		return &ValidationError{Path: "resize_margin", Err: fmt.Errorf("resize_margin must be >= 1")}
	}
	if c.MinWidth < 1 {
		return &ValidationError{Path: "min_width", Err: fmt.Errorf("min_width must be >= 1")}
	}
	if c.MinHeight < 1 {
		return &ValidationError{Path: "min_height", Err: fmt.Errorf("min_height must be >= 1")}
	}

	if c.CloseButton.Size < 1 {
		return &ValidationError{Path: "close_button.size", Err: fmt.Errorf("close_button size must be >= 1")}
	}
	if c.CloseButton.X < 0 || c.CloseButton.Y < 0 {
		return &ValidationError{Path: "close_button", Err: fmt.Errorf("close_button position must not be negative")}
	}
	if c.CloseButton.Y+c.CloseButton.Size > c.Border.Top {
		return &ValidationError{Path: "close_button", Err: fmt.Errorf("close_button must fit inside the top border (%d px)", c.Border.Top)}
	}

	if c.Limits.MaxChildren < 0 {
		return &ValidationError{Path: "limits.max_children", Err: fmt.Errorf("max_children must be >= 0")}
	}
	if c.Limits.MaxStacked < 0 {
		return &ValidationError{Path: "limits.max_stacked", Err: fmt.Errorf("max_stacked must be >= 0")}
	}

	colors := []struct {
		path  string
		value string
	}{
		{"theme.active_background", c.Theme.ActiveBackground},
		{"theme.active_text", c.Theme.ActiveText},
		{"theme.inactive_background", c.Theme.InactiveBackground},
		{"theme.inactive_text", c.Theme.InactiveText},
		{"theme.close_button", c.Theme.CloseButton},
		{"theme.close_hover", c.Theme.CloseHover},
	}
	for _, col := range colors {
		if _, err := ParseColor(col.value); err != nil {
			return &ValidationError{Path: col.path, Err: err}
		}
	}
	if strings.TrimSpace(c.Theme.Font) == "" {
		return &ValidationError{Path: "theme.font", Err: fmt.Errorf("font must not be empty")}
	}
	if c.Theme.CharWidth < 1 {
		return &ValidationError{Path: "theme.char_width", Err: fmt.Errorf("char_width must be >= 1")}
	}

	if c.ReconcileIntervalSeconds < 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 0")}
	}
	return nil
}

// ParseColor parses #rrggbb into a 24-bit TrueColor pixel value.
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 || !strings.HasPrefix(strings.TrimSpace(s), "#") {
		return 0, fmt.Errorf("color %q must be in #rrggbb form", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q must be in #rrggbb form", s)
	}
	return uint32(v), nil
}

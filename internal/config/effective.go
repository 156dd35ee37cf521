package config

import "fmt"

// ValidationError reports an invalid key, with the file position of the
// value that set it when it came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	set(&cfg.Display, raw.Display)
	set(&cfg.LogLevel, raw.LogLevel)
	set(&cfg.ResizeMargin, raw.ResizeMargin)
	set(&cfg.MinWidth, raw.MinWidth)
	set(&cfg.MinHeight, raw.MinHeight)
	set(&cfg.ReconcileIntervalSeconds, raw.ReconcileIntervalSeconds)
	set(&cfg.WatchConfig, raw.WatchConfig)

	if b := raw.Border; b != nil {
		set(&cfg.Border.Left, b.Left)
		set(&cfg.Border.Right, b.Right)
		set(&cfg.Border.Top, b.Top)
		set(&cfg.Border.Bottom, b.Bottom)
	}
	if s := raw.Spawn; s != nil {
		set(&cfg.Spawn.X, s.X)
		set(&cfg.Spawn.Y, s.Y)
		set(&cfg.Spawn.StepX, s.StepX)
		set(&cfg.Spawn.StepY, s.StepY)
		set(&cfg.Spawn.MinY, s.MinY)
	}
	if cb := raw.CloseButton; cb != nil {
		set(&cfg.CloseButton.X, cb.X)
		set(&cfg.CloseButton.Y, cb.Y)
		set(&cfg.CloseButton.Size, cb.Size)
	}
	if l := raw.Limits; l != nil {
		set(&cfg.Limits.MaxChildren, l.MaxChildren)
		set(&cfg.Limits.MaxStacked, l.MaxStacked)
	}
	if t := raw.Theme; t != nil {
		set(&cfg.Theme.ActiveBackground, t.ActiveBackground)
		set(&cfg.Theme.ActiveText, t.ActiveText)
		set(&cfg.Theme.InactiveBackground, t.InactiveBackground)
		set(&cfg.Theme.InactiveText, t.InactiveText)
		set(&cfg.Theme.CloseButton, t.CloseButton)
		set(&cfg.Theme.CloseHover, t.CloseHover)
		set(&cfg.Theme.Font, t.Font)
		set(&cfg.Theme.CharWidth, t.CharWidth)
	}
	if h := raw.Hotkeys; h != nil {
		set(&cfg.Hotkeys.Close, h.Close)
		set(&cfg.Hotkeys.Cycle, h.Cycle)
		set(&cfg.Hotkeys.Reload, h.Reload)
	}
	return cfg
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

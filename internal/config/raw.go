package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList accepts a single path or a list of paths:
//
//	include: "~/.config/casement/theme.yaml"
//
//	include:
//	  - theme.yaml
//	  - conf.d
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = IncludeList{value.Value}
		return nil
	case yaml.SequenceNode:
		paths := make(IncludeList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			paths = append(paths, item.Value)
		}
		*l = paths
		return nil
	}
	return fmt.Errorf("include must be a string or list of strings")
}

// Raw* types mirror Config with pointer fields so a file can set any subset
// of keys and later files override only what they name.

type RawBorder struct {
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
}

type RawSpawn struct {
	X     *int `yaml:"x"`
	Y     *int `yaml:"y"`
	StepX *int `yaml:"step_x"`
	StepY *int `yaml:"step_y"`
	MinY  *int `yaml:"min_y"`
}

type RawCloseButton struct {
	X    *int `yaml:"x"`
	Y    *int `yaml:"y"`
	Size *int `yaml:"size"`
}

type RawLimits struct {
	MaxChildren *int `yaml:"max_children"`
	MaxStacked  *int `yaml:"max_stacked"`
}

type RawTheme struct {
	ActiveBackground   *string `yaml:"active_background"`
	ActiveText         *string `yaml:"active_text"`
	InactiveBackground *string `yaml:"inactive_background"`
	InactiveText       *string `yaml:"inactive_text"`
	CloseButton        *string `yaml:"close_button"`
	CloseHover         *string `yaml:"close_hover"`
	Font               *string `yaml:"font"`
	CharWidth          *int    `yaml:"char_width"`
}

type RawHotkeys struct {
	Close  *string `yaml:"close"`
	Cycle  *string `yaml:"cycle"`
	Reload *string `yaml:"reload"`
}

type RawConfig struct {
	Include                  IncludeList     `yaml:"include"`
	Display                  *string         `yaml:"display"`
	LogLevel                 *string         `yaml:"log_level"`
	Border                   *RawBorder      `yaml:"border"`
	Spawn                    *RawSpawn       `yaml:"spawn"`
	ResizeMargin             *int            `yaml:"resize_margin"`
	MinWidth                 *int            `yaml:"min_width"`
	MinHeight                *int            `yaml:"min_height"`
	CloseButton              *RawCloseButton `yaml:"close_button"`
	Limits                   *RawLimits      `yaml:"limits"`
	Theme                    *RawTheme       `yaml:"theme"`
	Hotkeys                  *RawHotkeys     `yaml:"hotkeys"`
	ReconcileIntervalSeconds *int            `yaml:"reconcile_interval_seconds"`
	WatchConfig              *bool           `yaml:"watch_config"`
}

// over returns overlay when it is set, otherwise base.
func over[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

// merge returns c with every key set in overlay replaced.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Display = over(c.Display, overlay.Display)
	out.LogLevel = over(c.LogLevel, overlay.LogLevel)
	out.ResizeMargin = over(c.ResizeMargin, overlay.ResizeMargin)
	out.MinWidth = over(c.MinWidth, overlay.MinWidth)
	out.MinHeight = over(c.MinHeight, overlay.MinHeight)
	out.ReconcileIntervalSeconds = over(c.ReconcileIntervalSeconds, overlay.ReconcileIntervalSeconds)
	out.WatchConfig = over(c.WatchConfig, overlay.WatchConfig)

	if overlay.Border != nil {
		b := RawBorder{}
		if c.Border != nil {
			b = *c.Border
		}
		b.Left = over(b.Left, overlay.Border.Left)
		b.Right = over(b.Right, overlay.Border.Right)
		b.Top = over(b.Top, overlay.Border.Top)
		b.Bottom = over(b.Bottom, overlay.Border.Bottom)
		out.Border = &b
	}
	if overlay.Spawn != nil {
		s := RawSpawn{}
		if c.Spawn != nil {
			s = *c.Spawn
		}
		s.X = over(s.X, overlay.Spawn.X)
		s.Y = over(s.Y, overlay.Spawn.Y)
		s.StepX = over(s.StepX, overlay.Spawn.StepX)
		s.StepY = over(s.StepY, overlay.Spawn.StepY)
		s.MinY = over(s.MinY, overlay.Spawn.MinY)
		out.Spawn = &s
	}
	if overlay.CloseButton != nil {
		cb := RawCloseButton{}
		if c.CloseButton != nil {
			cb = *c.CloseButton
		}
		cb.X = over(cb.X, overlay.CloseButton.X)
		cb.Y = over(cb.Y, overlay.CloseButton.Y)
		cb.Size = over(cb.Size, overlay.CloseButton.Size)
		out.CloseButton = &cb
	}
	if overlay.Limits != nil {
		l := RawLimits{}
		if c.Limits != nil {
			l = *c.Limits
		}
		l.MaxChildren = over(l.MaxChildren, overlay.Limits.MaxChildren)
		l.MaxStacked = over(l.MaxStacked, overlay.Limits.MaxStacked)
		out.Limits = &l
	}
	if overlay.Theme != nil {
		t := RawTheme{}
		if c.Theme != nil {
			t = *c.Theme
		}
		t.ActiveBackground = over(t.ActiveBackground, overlay.Theme.ActiveBackground)
		t.ActiveText = over(t.ActiveText, overlay.Theme.ActiveText)
		t.InactiveBackground = over(t.InactiveBackground, overlay.Theme.InactiveBackground)
		t.InactiveText = over(t.InactiveText, overlay.Theme.InactiveText)
		t.CloseButton = over(t.CloseButton, overlay.Theme.CloseButton)
		t.CloseHover = over(t.CloseHover, overlay.Theme.CloseHover)
		t.Font = over(t.Font, overlay.Theme.Font)
		t.CharWidth = over(t.CharWidth, overlay.Theme.CharWidth)
		out.Theme = &t
	}
	if overlay.Hotkeys != nil {
		h := RawHotkeys{}
		if c.Hotkeys != nil {
			h = *c.Hotkeys
		}
		h.Close = over(h.Close, overlay.Hotkeys.Close)
		h.Cycle = over(h.Cycle, overlay.Hotkeys.Cycle)
		h.Reload = over(h.Reload, overlay.Hotkeys.Reload)
		out.Hotkeys = &h
	}
	return out
}

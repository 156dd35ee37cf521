package daemon

import (
	"github.com/1broseidon/casement/internal/config"
	"github.com/1broseidon/casement/internal/hotkeys"
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/wm"
	"github.com/1broseidon/casement/internal/x11"
)

// OptionsFromConfig converts the effective configuration into manager
// settings.
func OptionsFromConfig(cfg *config.Config) wm.Options {
	return wm.Options{
		Insets: wm.Insets{
			Left:   cfg.Border.Left,
			Right:  cfg.Border.Right,
			Top:    cfg.Border.Top,
			Bottom: cfg.Border.Bottom,
		},
		SpawnX:       cfg.Spawn.X,
		SpawnY:       cfg.Spawn.Y,
		SpawnStepX:   cfg.Spawn.StepX,
		SpawnStepY:   cfg.Spawn.StepY,
		SpawnMinY:    cfg.Spawn.MinY,
		ResizeMargin: cfg.ResizeMargin,
		MinWidth:     cfg.MinWidth,
		MinHeight:    cfg.MinHeight,
		CloseButton: platform.Rect{
			X:      cfg.CloseButton.X,
			Y:      cfg.CloseButton.Y,
			Width:  cfg.CloseButton.Size,
			Height: cfg.CloseButton.Size,
		},
		MaxChildren: cfg.Limits.MaxChildren,
		MaxStacked:  cfg.Limits.MaxStacked,
	}
}

// ThemeFromConfig resolves theme colors to pixel values. The config has
// already been validated, so parse failures fall back to black.
func ThemeFromConfig(cfg *config.Config) x11.Theme {
	pixel := func(s string) uint32 {
		v, _ := config.ParseColor(s)
		return v
	}
	return x11.Theme{
		ActiveBackground:   pixel(cfg.Theme.ActiveBackground),
		ActiveText:         pixel(cfg.Theme.ActiveText),
		InactiveBackground: pixel(cfg.Theme.InactiveBackground),
		InactiveText:       pixel(cfg.Theme.InactiveText),
		CloseButton:        pixel(cfg.Theme.CloseButton),
		CloseHover:         pixel(cfg.Theme.CloseHover),
		Font:               cfg.Theme.Font,
		CharWidth:          cfg.Theme.CharWidth,
	}
}

// DecorFor lays out the title bar from the settings in effect.
func DecorFor(opts wm.Options) platform.Decor {
	return platform.Decor{
		TitleBar:    opts.Insets.Top,
		CloseButton: opts.CloseButton,
	}
}

// HotkeySpec maps the configured key sequences onto actions.
func HotkeySpec(cfg *config.Config) hotkeys.Spec {
	return hotkeys.Spec{
		hotkeys.ActionClose:  cfg.Hotkeys.Close,
		hotkeys.ActionCycle:  cfg.Hotkeys.Cycle,
		hotkeys.ActionReload: cfg.Hotkeys.Reload,
	}
}

package daemon

import (
	"reflect"
	"testing"

	"github.com/1broseidon/casement/internal/config"
	"github.com/1broseidon/casement/internal/hotkeys"
	"github.com/1broseidon/casement/internal/platform"
	"github.com/1broseidon/casement/internal/wm"
)

func TestOptionsFromConfig_DefaultsMatchManagerDefaults(t *testing.T) {
	got := OptionsFromConfig(config.DefaultConfig())
	want := wm.DefaultOptions()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("expected default options to validate, got %v", err)
	}
}

func TestOptionsFromConfig_CopiesLimits(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Limits = config.Limits{MaxChildren: 64, MaxStacked: 128}
	cfg.CloseButton = config.CloseButton{X: 2, Y: 3, Size: 10}

	got := OptionsFromConfig(cfg)
	if got.MaxChildren != 64 || got.MaxStacked != 128 {
		t.Fatalf("expected limits 64/128, got %d/%d", got.MaxChildren, got.MaxStacked)
	}
	if want := (platform.Rect{X: 2, Y: 3, Width: 10, Height: 10}); got.CloseButton != want {
		t.Fatalf("expected close button %+v, got %+v", want, got.CloseButton)
	}
}

func TestThemeFromConfig_ResolvesPixels(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Theme.ActiveBackground = "#102030"
	cfg.Theme.CloseHover = "#ff0000"

	theme := ThemeFromConfig(cfg)
	if theme.ActiveBackground != 0x102030 {
		t.Fatalf("expected 0x102030, got %#x", theme.ActiveBackground)
	}
	if theme.CloseHover != 0xff0000 {
		t.Fatalf("expected 0xff0000, got %#x", theme.CloseHover)
	}
	if theme.Font != cfg.Theme.Font || theme.CharWidth != cfg.Theme.CharWidth {
		t.Fatalf("expected font %q/%d, got %q/%d", cfg.Theme.Font, cfg.Theme.CharWidth, theme.Font, theme.CharWidth)
	}
}

func TestDecorFor_UsesTopInset(t *testing.T) {
	opts := wm.DefaultOptions()
	decor := DecorFor(opts)
	if decor.TitleBar != opts.Insets.Top {
		t.Fatalf("expected title bar %d, got %d", opts.Insets.Top, decor.TitleBar)
	}
	if decor.CloseButton != opts.CloseButton {
		t.Fatalf("expected close button %+v, got %+v", opts.CloseButton, decor.CloseButton)
	}
}

func TestHotkeySpec_MapsActions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Hotkeys.Cycle = ""

	spec := HotkeySpec(cfg)
	if spec[hotkeys.ActionClose] != cfg.Hotkeys.Close {
		t.Fatalf("expected close %q, got %q", cfg.Hotkeys.Close, spec[hotkeys.ActionClose])
	}
	if spec[hotkeys.ActionCycle] != "" {
		t.Fatalf("expected disabled cycle binding, got %q", spec[hotkeys.ActionCycle])
	}
}

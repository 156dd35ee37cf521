package wm

import (
	"fmt"

	"github.com/1broseidon/casement/internal/platform"
)

// Insets are the decoration border widths around a framed client.
type Insets struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Options holds the tunables the manager reads on every operation.
type Options struct {
	Insets Insets

	// Spawn cursor start, step and the lowest y the cursor may bounce at.
	SpawnX     int
	SpawnY     int
	SpawnStepX int
	SpawnStepY int
	SpawnMinY  int

	// ResizeMargin is the width of the bottom/right grab strip on a frame.
	ResizeMargin int
	MinWidth     int
	MinHeight    int

	// CloseButton is the hover zone of the close glyph, in frame coordinates.
	CloseButton platform.Rect

	// Zero means unbounded.
	MaxChildren int
	MaxStacked  int
}

// DefaultOptions returns the built-in decoration and placement settings.
func DefaultOptions() Options {
	return Options{
		Insets:       Insets{Left: 1, Right: 1, Top: 19, Bottom: 1},
		SpawnX:       40,
		SpawnY:       40,
		SpawnStepX:   20,
		SpawnStepY:   20,
		SpawnMinY:    40,
		ResizeMargin: 8,
		MinWidth:     16,
		MinHeight:    16,
		CloseButton:  platform.Rect{X: 9, Y: 4, Width: 12, Height: 12},
	}
}

// Validate rejects settings the geometry engine cannot work with.
func (o Options) Validate() error {
	if o.Insets.Left < 0 || o.Insets.Right < 0 || o.Insets.Top < 0 || o.Insets.Bottom < 0 {
		return fmt.Errorf("border insets must be non-negative")
	}
	if o.ResizeMargin < 1 {
		return fmt.Errorf("resize margin must be at least 1")
	}
	if o.MinWidth < 1 || o.MinHeight < 1 {
		return fmt.Errorf("minimum size must be at least 1x1")
	}
	if o.MaxChildren < 0 || o.MaxStacked < 0 {
		return fmt.Errorf("limits must be non-negative")
	}
	return nil
}

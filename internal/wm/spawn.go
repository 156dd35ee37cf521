package wm

import "github.com/1broseidon/casement/internal/platform"

// spawnCursor places windows that asked for no position along a diagonal
// that bounces off the screen edges.
type spawnCursor struct {
	x, y  int
	stepX int
	stepY int
	minY  int
}

func newSpawnCursor(opts Options) spawnCursor {
	return spawnCursor{
		x:     opts.SpawnX,
		y:     opts.SpawnY,
		stepX: opts.SpawnStepX,
		stepY: opts.SpawnStepY,
		minY:  opts.SpawnMinY,
	}
}

// next returns the current position and advances the cursor.
func (c *spawnCursor) next(screen platform.Rect) (int, int) {
	x, y := c.x, c.y

	c.x += c.stepX
	if c.x > screen.Width || c.x < 0 {
		c.stepX = -c.stepX
		c.x += c.stepX * 2
	}
	c.y += c.stepY
	if c.y > screen.Height || c.y < c.minY {
		c.stepY = -c.stepY
		c.y += c.stepY * 2
	}
	return x, y
}

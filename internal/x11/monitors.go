package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// WatchScreen subscribes to RandR screen change notifications on the root
// so the manager can follow resolution changes. Servers without RandR
// return an error and keep their initial size.
func (c *Connection) WatchScreen() error {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}
	if err := randr.SelectInputChecked(conn, c.Root, randr.NotifyMaskScreenChange).Check(); err != nil {
		return fmt.Errorf("randr select input: %w", err)
	}
	return nil
}

// ScreenChange extracts the new root size from a RandR notification. ok is
// false for any other event.
func ScreenChange(ev any) (width, height int, ok bool) {
	sc, ok := ev.(randr.ScreenChangeNotifyEvent)
	if !ok {
		return 0, 0, false
	}
	w, h := int(sc.Width), int(sc.Height)
	// Width and height are swapped while rotated by 90 or 270 degrees.
	if sc.Rotation&(randr.RotationRotate90|randr.RotationRotate270) != 0 {
		w, h = h, w
	}
	return w, h, true
}

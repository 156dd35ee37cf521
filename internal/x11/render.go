package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

// Theme holds pixel values and the core font used to paint frames.
type Theme struct {
	ActiveBackground   uint32
	ActiveText         uint32
	InactiveBackground uint32
	InactiveText       uint32
	CloseButton        uint32
	CloseHover         uint32
	Font               string
	CharWidth          int
}

// FrameDecor is the state of one frame at paint time.
type FrameDecor struct {
	Window     xproto.Window
	Width      int
	Height     int
	TitleBar   int // height of the top border
	Title      string
	Active     bool
	CloseX     int
	CloseY     int
	CloseSize  int
	CloseHover bool
}

// Painter draws frame decorations with core X requests.
type Painter struct {
	conn    *Connection
	gc      xproto.Gcontext
	font    xproto.Font
	ascent  int
	descent int
	theme   Theme
	cursor  xproto.Cursor
}

// NewPainter opens the theme font and allocates a graphics context.
func NewPainter(c *Connection, theme Theme) (*Painter, error) {
	p := &Painter{conn: c}

	cursor, err := xcursor.CreateCursor(c.XUtil, xcursor.LeftPtr)
	if err != nil {
		return nil, fmt.Errorf("create cursor: %w", err)
	}
	p.cursor = cursor

	gc, err := xproto.NewGcontextId(c.XUtil.Conn())
	if err != nil {
		return nil, fmt.Errorf("allocate gc id: %w", err)
	}
	p.gc = gc

	if err := p.openFont(theme.Font); err != nil {
		return nil, err
	}
	err = xproto.CreateGCChecked(c.XUtil.Conn(), gc, xproto.Drawable(c.Root),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont,
		[]uint32{theme.ActiveText, theme.ActiveBackground, uint32(p.font)}).Check()
	if err != nil {
		return nil, fmt.Errorf("create gc: %w", err)
	}
	p.theme = theme
	return p, nil
}

// Cursor is the pointer shape shown over frames.
func (p *Painter) Cursor() xproto.Cursor {
	return p.cursor
}

// SetTheme swaps colors, reopening the font when its name changed.
func (p *Painter) SetTheme(theme Theme) error {
	if theme.Font != p.theme.Font {
		old := p.font
		if err := p.openFont(theme.Font); err != nil {
			return err
		}
		xproto.ChangeGC(p.conn.XUtil.Conn(), p.gc, xproto.GcFont, []uint32{uint32(p.font)})
		xproto.CloseFont(p.conn.XUtil.Conn(), old)
	}
	p.theme = theme
	return nil
}

func (p *Painter) openFont(name string) error {
	conn := p.conn.XUtil.Conn()
	font, err := xproto.NewFontId(conn)
	if err != nil {
		return fmt.Errorf("allocate font id: %w", err)
	}
	if err := xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check(); err != nil {
		return fmt.Errorf("open font %q: %w", name, err)
	}
	p.font = font
	p.ascent, p.descent = 10, 2
	if info, err := xproto.QueryFont(conn, xproto.Fontable(font)).Reply(); err == nil {
		p.ascent, p.descent = int(info.FontAscent), int(info.FontDescent)
	}
	return nil
}

// Paint fills the frame, draws the close square and the title.
func (p *Painter) Paint(d FrameDecor) error {
	conn := p.conn.XUtil.Conn()
	bg, fg := p.theme.InactiveBackground, p.theme.InactiveText
	if d.Active {
		bg, fg = p.theme.ActiveBackground, p.theme.ActiveText
	}

	xproto.ChangeGC(conn, p.gc, xproto.GcForeground, []uint32{bg})
	xproto.PolyFillRectangle(conn, xproto.Drawable(d.Window), p.gc, []xproto.Rectangle{
		{X: 0, Y: 0, Width: uint16(max(d.Width, 1)), Height: uint16(max(d.Height, 1))},
	})

	closeColor := p.theme.CloseButton
	if d.CloseHover {
		closeColor = p.theme.CloseHover
	}
	xproto.ChangeGC(conn, p.gc, xproto.GcForeground, []uint32{closeColor})
	xproto.PolyFillRectangle(conn, xproto.Drawable(d.Window), p.gc, []xproto.Rectangle{
		{X: int16(d.CloseX), Y: int16(d.CloseY), Width: uint16(d.CloseSize), Height: uint16(d.CloseSize)},
	})

	textX := d.CloseX + d.CloseSize + 6
	room := (d.Width - textX - 4) / max(p.theme.CharWidth, 1)
	text := latin1(d.Title, room)
	if text == "" {
		return nil
	}
	baseline := (d.TitleBar + p.ascent - p.descent) / 2
	xproto.ChangeGC(conn, p.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
	return xproto.ImageText8Checked(conn, byte(len(text)), xproto.Drawable(d.Window), p.gc,
		int16(textX), int16(baseline), text).Check()
}

// latin1 maps s onto the single-byte core font encoding, truncated to at
// most limit characters.
func latin1(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	limit = min(limit, 255)
	out := make([]byte, 0, min(len(s), limit))
	for _, r := range s {
		if len(out) == limit {
			break
		}
		if r > 0xff || r < 0x20 {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return string(out)
}

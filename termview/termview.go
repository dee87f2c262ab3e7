// seehuhn.de/go/roadview - a top-down viewer for traffic simulations
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package termview shows rendered frames in a terminal.  Each character
// cell displays two pixels, stacked vertically, using the upper half block
// character with separate foreground and background colors.
package termview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"seehuhn.de/go/roadview"
)

const (
	// DefaultColumns is the width of the output if no other width is
	// given.
	DefaultColumns = 80

	upperHalf = "▀"
	home      = "\x1b[H"
)

// Window writes frames to a terminal.  It implements [roadview.Window].
type Window struct {
	mu      sync.Mutex
	out     io.Writer
	columns int
	style   lipgloss.Style
	buf     strings.Builder
	closed  bool
}

// Factory returns a [roadview.WindowFactory] for windows writing to out.
// Frames are scaled down to at most columns characters per line.
func Factory(out io.Writer, columns int) roadview.WindowFactory {
	return func(width, height int) (roadview.Window, error) {
		return New(out, columns), nil
	}
}

// New returns a window writing to out.  If columns is not positive,
// [DefaultColumns] is used.
func New(out io.Writer, columns int) *Window {
	if columns <= 0 {
		columns = DefaultColumns
	}
	r := lipgloss.NewRenderer(out)
	return &Window{
		out:     out,
		columns: columns,
		style:   r.NewStyle(),
	}
}

// PollEvents implements [roadview.Window].  Terminal windows have no
// input.
func (w *Window) PollEvents() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return roadview.ErrWindowClosed
	}
	return nil
}

// Present implements [roadview.Window].  The cursor is moved to the top
// left corner first, so that consecutive frames overwrite each other.
func (w *Window) Present(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return roadview.ErrWindowClosed
	}

	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	cols := min(w.columns, b.Dx())
	step := float64(b.Dx()) / float64(cols)
	rows := int(float64(b.Dy())/(2*step) + 0.5)
	rows = max(rows, 1)

	sample := func(col int, y float64) color.Color {
		px := b.Min.X + min(int((float64(col)+0.5)*step), b.Dx()-1)
		py := b.Min.Y + min(int(y), b.Dy()-1)
		return img.At(px, py)
	}

	w.buf.Reset()
	w.buf.WriteString(home)
	for row := range rows {
		yTop := (2*float64(row) + 0.5) * step
		yBot := (2*float64(row) + 1.5) * step
		for col := range cols {
			cell := w.style.
				Foreground(lipgloss.Color(hexColor(sample(col, yTop)))).
				Background(lipgloss.Color(hexColor(sample(col, yBot))))
			w.buf.WriteString(cell.Render(upperHalf))
		}
		w.buf.WriteByte('\n')
	}
	_, err := io.WriteString(w.out, w.buf.String())
	return err
}

// Close implements [roadview.Window].
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return nil
}

// hexColor formats c as "#rrggbb".
func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

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

package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawLabel writes s in a small bitmap font.  The top left corner of the
// text box is placed at (x, y), measured from the top left corner of the
// picture, so that labels can be positioned like in any other image.
func (c *Canvas) DrawLabel(x, y int, s string, col color.RGBA) {
	face := basicfont.Face7x13
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	h := m.Height.Ceil()
	if w <= 0 || h <= 0 {
		return
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(s)

	coverage := make([]float32, w)
	paint := c.painter(col)
	for my := range h {
		devY := c.Height - 1 - (y + my)
		if devY < 0 || devY >= c.Height {
			continue
		}
		x0, x1 := max(x, 0), min(x+w, c.Width)
		if x0 >= x1 {
			continue
		}
		src := mask.Pix[my*mask.Stride:]
		cov := coverage[:x1-x0]
		for i := range cov {
			cov[i] = float32(src[x0-x+i]) / 255
		}
		paint(devY, x0, cov)
	}
}

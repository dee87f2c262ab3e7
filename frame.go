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

package roadview

import (
	"image"
	"image/color"
)

// Frame is a rendered picture, stored as tightly packed RGB triples with
// rows ordered top to bottom.  Frame implements [image.Image].
type Frame struct {
	Width, Height int
	Pix           []byte
}

// ColorModel implements [image.Image].
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements [image.Image].  The origin is the top left corner.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements [image.Image].
func (f *Frame) At(x, y int) color.Color {
	return f.RGBAAt(x, y)
}

// RGBAAt returns the opaque color of the pixel in column x and row y,
// with row 0 at the top.
func (f *Frame) RGBAAt(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	px := f.Pix[3*(y*f.Width+x):]
	return color.RGBA{R: px[0], G: px[1], B: px[2], A: 255}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Width: f.Width, Height: f.Height, Pix: pix}
}

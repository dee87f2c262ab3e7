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
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// LineStyle collects the stroke parameters used by [Canvas.StrokePolyline].
type LineStyle struct {
	Width      float64
	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64
}

// DefaultLineStyle is a one pixel wide line with butt caps and miter joins.
var DefaultLineStyle = LineStyle{
	Width:      1,
	Cap:        graphics.LineCapButt,
	Join:       graphics.LineJoinMiter,
	MiterLimit: defaultMiterLimit,
}

// Canvas is an RGBA pixel buffer.  Device coordinates have their origin in
// the lower left corner with y pointing up, and Pix stores rows in the same
// order: row 0 is the bottom row of the picture.  Use [Canvas.ReadRGB] or
// [Canvas.Image] to obtain the pixels in top-to-bottom order.
type Canvas struct {
	Width, Height int

	// Pix holds 4 bytes per pixel (R, G, B, A), bottom row first.
	Pix    []uint8
	Stride int

	// Aliased disables anti-aliasing: a pixel is painted with the full
	// color if at least half of it is covered, and left alone otherwise.
	Aliased bool

	r *Rasterizer
}

// NewCanvas allocates a canvas of the given size, cleared to transparent
// black.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid canvas size %dx%d", width, height)
	}
	clip := rect.Rect{URx: float64(width), URy: float64(height)}
	return &Canvas{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 4*width*height),
		Stride: 4 * width,
		r:      NewRasterizer(clip),
	}, nil
}

// Clear sets every pixel to col.
func (c *Canvas) Clear(col color.RGBA) {
	if len(c.Pix) == 0 {
		return
	}
	c.Pix[0], c.Pix[1], c.Pix[2], c.Pix[3] = col.R, col.G, col.B, col.A
	for filled := 4; filled < len(c.Pix); filled *= 2 {
		copy(c.Pix[filled:], c.Pix[:filled])
	}
}

// FillPolygon paints the interior of the polygon (nonzero rule) with col.
func (c *Canvas) FillPolygon(pts []vec.Vec2, col color.RGBA) {
	c.r.FillPolygon(pts, NonZero, c.painter(col))
}

// StrokePolyline paints the open polyline through pts.
func (c *Canvas) StrokePolyline(pts []vec.Vec2, style LineStyle, col color.RGBA) {
	c.r.Width = style.Width
	c.r.Cap = style.Cap
	c.r.Join = style.Join
	c.r.MiterLimit = style.MiterLimit
	c.r.StrokePolyline(pts, c.painter(col))
}

// painter returns an emit callback which composites col over the canvas,
// using the coverage as alpha.
func (c *Canvas) painter(col color.RGBA) EmitFunc {
	srcA := float32(col.A) / 255
	return func(y, xMin int, coverage []float32) {
		row := c.Pix[y*c.Stride+4*xMin:]
		for i, cov := range coverage {
			if c.Aliased {
				if cov < 0.5 {
					continue
				}
				cov = 1
			}
			c.blend(row[4*i:4*i+4], col, cov*srcA)
		}
	}
}

// blend composites col with opacity a in [0,1] over the pixel px.
func (c *Canvas) blend(px []uint8, col color.RGBA, a float32) {
	if a >= 1 {
		px[0], px[1], px[2], px[3] = col.R, col.G, col.B, 255
		return
	}
	if a <= 0 {
		return
	}
	mix := func(dst, src uint8) uint8 {
		return uint8(float32(dst) + (float32(src)-float32(dst))*a + 0.5)
	}
	px[0] = mix(px[0], col.R)
	px[1] = mix(px[1], col.G)
	px[2] = mix(px[2], col.B)
	px[3] = mix(px[3], 255)
}

// At returns the color of the pixel at device coordinates (x, y), where y
// counts from the bottom.
func (c *Canvas) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return color.RGBA{}
	}
	px := c.Pix[y*c.Stride+4*x:]
	return color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
}

// ReadRGB copies the canvas into dst as tightly packed RGB triples, rows
// top-to-bottom, dropping the alpha channel.  dst is grown if needed and
// the filled slice is returned.
func (c *Canvas) ReadRGB(dst []byte) []byte {
	n := 3 * c.Width * c.Height
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for row := range c.Height {
		src := c.Pix[(c.Height-1-row)*c.Stride:]
		out := dst[row*3*c.Width:]
		for x := range c.Width {
			copy(out[3*x:3*x+3], src[4*x:4*x+3])
		}
	}
	return dst
}

// Image returns a copy of the canvas as an image with the usual
// top-to-bottom row order.
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for row := range c.Height {
		copy(img.Pix[row*img.Stride:row*img.Stride+c.Stride], c.Pix[(c.Height-1-row)*c.Stride:])
	}
	return img
}

// WritePNG encodes the canvas as a PNG image.
func (c *Canvas) WritePNG(w io.Writer) error {
	return png.Encode(w, c.Image())
}

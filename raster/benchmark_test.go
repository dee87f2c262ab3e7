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
	"math"
	"testing"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// BenchmarkRasterizerRing fills an annulus, approximated by polygons, with
// the even-odd rule.
func BenchmarkRasterizerRing(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			clip := rect.Rect{URx: float64(size), URy: float64(size)}
			r := NewRasterizer(clip)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))

			c := float64(size) / 2
			ring := ringPolygon(c, c, float64(size)*0.45, float64(size)*0.30, 128)

			b.ReportAllocs()
			for b.Loop() {
				r.FillPolygon(ring, EvenOdd, func(y, xMin int, coverage []float32) {
					row := dst.Pix[y*dst.Stride+xMin:]
					for i, cov := range coverage {
						row[i] = uint8(cov * 255)
					}
				})
			}
		})
	}
}

// BenchmarkVectorRing draws the same annulus with x/image/vector.
func BenchmarkVectorRing(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			r := vector.NewRasterizer(size, size)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{255})

			c := float64(size) / 2
			ring := ringPolygon(c, c, float64(size)*0.45, float64(size)*0.30, 128)

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(size, size)
				addPolygonToVector(r, ring[:129])
				addPolygonToVector(r, ring[129:])
				r.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

// BenchmarkStrokeLanes strokes a grid of long lane polylines onto a canvas,
// which is what a frame of a large road network costs.
func BenchmarkStrokeLanes(b *testing.B) {
	const size = 1000
	canvas, err := NewCanvas(size, size)
	if err != nil {
		b.Fatal(err)
	}
	var lanes [][]vec.Vec2
	for i := 1; i < 20; i++ {
		p := float64(i) * size / 20
		lanes = append(lanes,
			[]vec.Vec2{{X: 0, Y: p}, {X: size / 2, Y: p + 3}, {X: size, Y: p}},
			[]vec.Vec2{{X: p, Y: 0}, {X: p + 3, Y: size / 2}, {X: p, Y: size}})
	}
	lane := color.RGBA{R: 250, G: 250, B: 210, A: 255}

	b.ReportAllocs()
	for b.Loop() {
		canvas.Clear(color.RGBA{A: 255})
		for _, l := range lanes {
			canvas.StrokePolyline(l, DefaultLineStyle, lane)
		}
	}
}

// ringPolygon returns the closed outer circle followed by the closed inner
// circle, each with n+1 vertices.  The two connecting edges cancel, so
// under the even-odd rule the single polygon is an annulus.
func ringPolygon(cx, cy, outerR, innerR float64, n int) []vec.Vec2 {
	pts := make([]vec.Vec2, 0, 2*n+2)
	for _, radius := range []float64{outerR, innerR} {
		for i := range n + 1 {
			s, c := math.Sincos(2 * math.Pi * float64(i%n) / float64(n))
			pts = append(pts, vec.Vec2{X: cx + radius*c, Y: cy + radius*s})
		}
	}
	return pts
}

func addPolygonToVector(r *vector.Rasterizer, pts []vec.Vec2) {
	r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()
}

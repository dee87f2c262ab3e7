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
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// coverageGrid rasterises into a dense w×h grid, for inspection in tests.
type coverageGrid struct {
	w, h int
	data []float32
}

func newCoverageGrid(w, h int) *coverageGrid {
	return &coverageGrid{w: w, h: h, data: make([]float32, w*h)}
}

func (g *coverageGrid) emit(y, xMin int, coverage []float32) {
	copy(g.data[y*g.w+xMin:], coverage)
}

func (g *coverageGrid) at(x, y int) float32 {
	return g.data[y*g.w+x]
}

func (g *coverageGrid) total() float64 {
	var sum float64
	for _, c := range g.data {
		sum += float64(c)
	}
	return sum
}

// TestTriangleCoverage checks exact coverage values for a thin triangle.
// The edge from (0,0) to (10,1) gives pixel X a coverage of (2X+1)/20.
func TestTriangleCoverage(t *testing.T) {
	tri := []vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 1}}
	r := NewRasterizer(rect.Rect{URx: 10, URy: 1})
	g := newCoverageGrid(10, 1)
	r.FillPolygon(tri, NonZero, g.emit)

	const epsilon = 1e-6
	for x := range 10 {
		want := float32(2*x+1) / 20
		if got := g.at(x, 0); math.Abs(float64(got-want)) > epsilon {
			t.Errorf("pixel %d: expected coverage %.4f, got %.4f", x, want, got)
		}
	}
}

func TestFillArea(t *testing.T) {
	cases := []struct {
		name string
		poly []vec.Vec2
		rule FillRule
		area float64
	}{
		{
			name: "square",
			poly: []vec.Vec2{{X: 2, Y: 2}, {X: 12, Y: 2}, {X: 12, Y: 12}, {X: 2, Y: 12}},
			area: 100,
		},
		{
			name: "square_reversed",
			poly: []vec.Vec2{{X: 2, Y: 12}, {X: 12, Y: 12}, {X: 12, Y: 2}, {X: 2, Y: 2}},
			area: 100,
		},
		{
			name: "triangle_fractional",
			poly: []vec.Vec2{{X: 1.5, Y: 1.25}, {X: 15.5, Y: 1.25}, {X: 8.5, Y: 11.25}},
			area: 70,
		},
		{
			name: "clipped",
			poly: []vec.Vec2{{X: -10, Y: -10}, {X: 30, Y: -10}, {X: 30, Y: 30}, {X: -10, Y: 30}},
			area: 16 * 16,
		},
		{
			// self-intersecting bowtie made of two triangles
			name: "bowtie_evenodd",
			poly: []vec.Vec2{{X: 2, Y: 2}, {X: 14, Y: 14}, {X: 14, Y: 2}, {X: 2, Y: 14}},
			rule: EvenOdd,
			area: 72,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 16, URy: 16})
			g := newCoverageGrid(16, 16)
			r.FillPolygon(tc.poly, tc.rule, g.emit)
			if got := g.total(); math.Abs(got-tc.area) > 1e-3 {
				t.Errorf("covered area %.4f, want %.4f", got, tc.area)
			}
		})
	}
}

func TestFillCTM(t *testing.T) {
	unit := []vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	r := NewRasterizer(rect.Rect{URx: 16, URy: 16})
	r.CTM = matrix.Matrix{4, 0, 0, 2, 3, 5}
	g := newCoverageGrid(16, 16)
	r.FillPolygon(unit, NonZero, g.emit)

	if got := g.total(); math.Abs(got-8) > 1e-4 {
		t.Fatalf("covered area %.4f, want 8", got)
	}
	if g.at(3, 5) != 1 || g.at(6, 6) != 1 {
		t.Error("pixels inside the transformed square are not fully covered")
	}
	if g.at(2, 5) != 0 || g.at(7, 5) != 0 || g.at(3, 7) != 0 {
		t.Error("pixels outside the transformed square are covered")
	}
}

func TestStrokeHorizontal(t *testing.T) {
	line := []vec.Vec2{{X: 0, Y: 2.5}, {X: 10, Y: 2.5}}
	r := NewRasterizer(rect.Rect{URx: 12, URy: 6})
	g := newCoverageGrid(12, 6)
	r.StrokePolyline(line, g.emit)

	for y := range 6 {
		for x := range 12 {
			want := float32(0)
			if y == 2 && x < 10 {
				want = 1
			}
			if got := g.at(x, y); math.Abs(float64(got-want)) > 1e-6 {
				t.Errorf("pixel (%d,%d): coverage %.4f, want %.1f", x, y, got, want)
			}
		}
	}
}

func TestStrokeCaps(t *testing.T) {
	line := []vec.Vec2{{X: 10, Y: 16}, {X: 22, Y: 16}}
	const width = 4.0

	cases := []struct {
		cap  graphics.LineCapStyle
		area float64
	}{
		{graphics.LineCapButt, 12 * width},
		{graphics.LineCapSquare, (12 + width) * width},
		{graphics.LineCapRound, 12*width + math.Pi*width*width/4},
	}
	for _, tc := range cases {
		t.Run(tc.cap.String(), func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 32, URy: 32})
			r.Width = width
			r.Cap = tc.cap
			r.Flatness = 0.001
			g := newCoverageGrid(32, 32)
			r.StrokePolyline(line, g.emit)
			if got := g.total(); math.Abs(got-tc.area) > 0.1 {
				t.Errorf("stroked area %.3f, want %.3f", got, tc.area)
			}
		})
	}
}

func TestStrokeCorner(t *testing.T) {
	// an L-shaped polyline: the miter fills the outer corner square
	corner := []vec.Vec2{{X: 4, Y: 4}, {X: 20, Y: 4}, {X: 20, Y: 20}}
	const width = 2.0

	joins := []struct {
		join graphics.LineJoinStyle
		area float64
	}{
		{graphics.LineJoinMiter, 2*16*width + 0},
		{graphics.LineJoinBevel, 2*16*width - width*width/8},
		{graphics.LineJoinRound, 2*16*width - width*width/4 + math.Pi*width*width/16},
	}
	for _, tc := range joins {
		t.Run(tc.join.String(), func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 24, URy: 24})
			r.Width = width
			r.Join = tc.join
			r.Flatness = 0.001
			g := newCoverageGrid(24, 24)
			r.StrokePolyline(corner, g.emit)
			if got := g.total(); math.Abs(got-tc.area) > 0.05 {
				t.Errorf("stroked area %.3f, want %.3f", got, tc.area)
			}
		})
	}
}

// TestStrokeReversal strokes a line which runs back along itself.  The
// result must look like a single pass.
func TestStrokeReversal(t *testing.T) {
	back := []vec.Vec2{{X: 10, Y: 50}, {X: 110, Y: 50}, {X: 10, Y: 50}}
	for _, style := range []graphics.LineCapStyle{graphics.LineCapButt, graphics.LineCapSquare} {
		t.Run(style.String(), func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 128, URy: 100})
			r.Width = 3
			r.Cap = style
			g := newCoverageGrid(128, 100)
			r.StrokePolyline(back, g.emit)

			want := 300.0
			if style == graphics.LineCapSquare {
				want += 2 * 1.5 * 3
			}
			if got := g.total(); math.Abs(got-want) > 1e-3 {
				t.Errorf("stroked area %.3f, want %.3f", got, want)
			}
			for y, w := range map[int]float32{47: 0, 48: 0.5, 49: 1, 50: 1, 51: 0.5, 52: 0} {
				if got := g.at(60, y); math.Abs(float64(got-w)) > 1e-6 {
					t.Errorf("row %d: coverage %.3f, want %.2f", y, got, w)
				}
			}
		})
	}
}

func TestStrokeDegenerate(t *testing.T) {
	dot := []vec.Vec2{{X: 8, Y: 8}, {X: 8, Y: 8}}

	r := NewRasterizer(rect.Rect{URx: 16, URy: 16})
	r.Width = 4
	r.Flatness = 0.001
	g := newCoverageGrid(16, 16)
	r.StrokePolyline(dot, g.emit)
	if got := g.total(); got != 0 {
		t.Errorf("butt-capped dot covers %.3f pixels, want 0", got)
	}

	r.Cap = graphics.LineCapRound
	r.StrokePolyline(dot, g.emit)
	if got, want := g.total(), math.Pi*4; math.Abs(got-want) > 0.1 {
		t.Errorf("round-capped dot covers %.3f pixels, want %.3f", got, want)
	}
}

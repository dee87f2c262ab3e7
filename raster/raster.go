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

// Package raster is the graphics backend of roadview.  It converts polygons
// and polylines into anti-aliased pixel coverage and composites solid colors
// into an RGBA canvas whose rows are stored bottom-to-top.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// EmitFunc receives coverage values for one scanline.  Coverage[i] belongs
// to pixel (xMin+i, y).  The slice is only valid during the call.
type EmitFunc func(y, xMin int, coverage []float32)

// FillRule selects how the interior of a self-intersecting polygon is
// determined.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// edge is a polygon edge in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0)
}

func (e *edge) yMin() float64 { return min(e.y0, e.y1) }
func (e *edge) yMax() float64 { return max(e.y0, e.y1) }

// Rasterizer converts polygons and polylines to pixel coverage, the
// fraction of each pixel covered by the shape.  Buffers grow as needed and
// are reused between calls.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// CTM maps user space to device space.  Must be non-singular.
	CTM matrix.Matrix

	// Clip bounds output to this integer-aligned device rectangle.
	Clip rect.Rect

	// Flatness is the tolerance, in device pixels, used when round caps
	// and joins are approximated by line segments.
	Flatness float64

	// Width is the stroke width in user space units.
	Width float64

	// Cap is the style used at both ends of a stroked polyline.
	Cap graphics.LineCapStyle

	// Join is the style used where two stroke segments meet.
	Join graphics.LineJoinStyle

	// MiterLimit converts miter joins to bevels for very sharp corners.
	MiterLimit float64

	cover     []float32
	area      []float32
	edges     []edge
	activeIdx []int

	stroke []vec.Vec2
	segs   []strokeSegment

	bboxFirst    bool
	bxMin, bxMax float64
	byMin, byMax float64
}

// NewRasterizer returns a Rasterizer for the given clip rectangle, with an
// identity CTM and one unit wide butt-capped, miter-joined strokes.
func NewRasterizer(clip rect.Rect) *Rasterizer {
	r := &Rasterizer{}
	r.Reset(clip)
	return r
}

// Reset restores the default parameters while keeping buffer capacity.
func (r *Rasterizer) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Width = 1
	r.Cap = graphics.LineCapButt
	r.Join = graphics.LineJoinMiter
	r.MiterLimit = defaultMiterLimit

	r.edges = r.edges[:0]
	r.activeIdx = r.activeIdx[:0]
	r.stroke = r.stroke[:0]
	r.segs = r.segs[:0]
}

// FillPolygon rasterises the closed polygon through pts.  The polygon is
// closed implicitly.
func (r *Rasterizer) FillPolygon(pts []vec.Vec2, rule FillRule, emit EmitFunc) {
	if len(pts) < 3 {
		return
	}
	r.beginEdges()
	r.addPolygonEdges(pts)
	r.fill(rule, emit)
}

// transformLinear applies the 2×2 part of the CTM.
func (r *Rasterizer) transformLinear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

func (r *Rasterizer) beginEdges() {
	r.edges = r.edges[:0]
	r.bboxFirst = true
}

func (r *Rasterizer) addPolygonEdges(poly []vec.Vec2) {
	if len(poly) < 2 {
		return
	}
	for i := 1; i < len(poly); i++ {
		r.addEdge(poly[i-1], poly[i])
	}
	r.addEdge(poly[len(poly)-1], poly[0])
}

// addEdge transforms a user space segment to device space and records it.
// Horizontal edges carry no coverage and are dropped.
func (r *Rasterizer) addEdge(p0, p1 vec.Vec2) {
	m := r.CTM
	x0 := m[0]*p0.X + m[2]*p0.Y + m[4]
	y0 := m[1]*p0.X + m[3]*p0.Y + m[5]
	x1 := m[0]*p1.X + m[2]*p1.Y + m[4]
	y1 := m[1]*p1.X + m[3]*p1.Y + m[5]

	dy := y1 - y0
	if math.Abs(dy) < horizontalEdgeThreshold {
		return
	}
	r.edges = append(r.edges, edge{x0: x0, y0: y0, x1: x1, y1: y1, dxdy: (x1 - x0) / dy})

	if r.bboxFirst {
		r.bxMin, r.bxMax = min(x0, x1), max(x0, x1)
		r.byMin, r.byMax = min(y0, y1), max(y0, y1)
		r.bboxFirst = false
		return
	}
	r.bxMin = min(r.bxMin, x0, x1)
	r.bxMax = max(r.bxMax, x0, x1)
	r.byMin = min(r.byMin, y0, y1)
	r.byMax = max(r.byMax, y0, y1)
}

// clippedBounds returns the integer pixel range touched by the collected
// edges, intersected with the clip rectangle.
func (r *Rasterizer) clippedBounds() (xMin, xMax, yMin, yMax int, ok bool) {
	if len(r.edges) == 0 {
		return 0, 0, 0, 0, false
	}
	xMin = max(int(math.Floor(r.bxMin)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(r.bxMax))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(r.byMin)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(r.byMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// Every pixel keeps two accumulators:
//
//	cover: signed vertical extent of the edges crossing the pixel
//	area:  cover weighted by how much of the pixel lies right of the crossing
//
// Integrating along a scanline, coverage = carried cover + area[i], where
// the carried cover is the running sum of cover[j] for j < i.

// fill scans the collected edges with an active edge list and emits one
// coverage row per scanline that has contributions.
func (r *Rasterizer) fill(rule FillRule, emit EmitFunc) {
	xMin, xMax, yMin, yMax, ok := r.clippedBounds()
	if !ok {
		return
	}
	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.yMin(), b.yMin())
	})

	r.activeIdx = r.activeIdx[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		yTop, yBot := float64(y), float64(y+1)

		for next < len(r.edges) && r.edges[next].yMin() < yBot {
			r.activeIdx = append(r.activeIdx, next)
			next++
		}
		if len(r.activeIdx) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.activeIdx); {
			e := &r.edges[r.activeIdx[i]]
			if e.yMax() <= yTop {
				last := len(r.activeIdx) - 1
				r.activeIdx[i] = r.activeIdx[last]
				r.activeIdx = r.activeIdx[:last]
				continue
			}
			if r.accumulate(e, y, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		if rule == EvenOdd {
			integrateEvenOdd(r.cover, r.area)
		} else {
			integrateNonZero(r.cover, r.area)
		}
		if trimmed, offset := trimZeros(r.cover); trimmed != nil {
			emit(y, xMin+offset, trimmed)
		}
	}
}

// accumulate adds the part of e inside scanline y to the cover and area
// buffers, which are indexed by x-xMin.  Contributions left of the buffer
// are folded into the first pixel so that they still carry across the row.
// It reports whether anything was added.
func (r *Rasterizer) accumulate(e *edge, y, xMin, xMax int) bool {
	yTop := max(float64(y), e.yMin())
	yBot := min(float64(y+1), e.yMax())
	if yBot <= yTop {
		return false
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xa := e.x0 + e.dxdy*(yTop-e.y0)
	xb := e.x0 + e.dxdy*(yBot-e.y0)
	pixLeft := int(math.Floor(min(xa, xb)))
	pixRight := int(math.Floor(max(xa, xb)))

	if pixLeft >= xMax {
		return false
	}
	if pixRight < xMin {
		c := sign * float32(yBot-yTop)
		r.cover[0] += c
		r.area[0] += c
		return true
	}

	if pixLeft == pixRight {
		r.addSpan(e, yTop, yBot, sign, pixLeft, xMin, xMax)
		return true
	}

	// the edge crosses several pixel columns: split at column boundaries
	dydx := 1 / e.dxdy
	for pix := pixLeft; pix <= pixRight; pix++ {
		ya := e.y0 + dydx*(float64(pix)-e.x0)
		yb := e.y0 + dydx*(float64(pix+1)-e.x0)
		segTop := max(min(ya, yb), yTop)
		segBot := min(max(ya, yb), yBot)
		if segBot <= segTop {
			continue
		}
		r.addSpan(e, segTop, segBot, sign, pix, xMin, xMax)
	}
	return true
}

// addSpan records the piece of e between yTop and yBot, which lies within
// pixel column pix.
func (r *Rasterizer) addSpan(e *edge, yTop, yBot float64, sign float32, pix, xMin, xMax int) {
	c := sign * float32(yBot-yTop)
	switch {
	case pix < xMin:
		r.cover[0] += c
		r.area[0] += c
	case pix < xMax:
		xMid := e.x0 + e.dxdy*((yTop+yBot)/2-e.y0)
		frac := xMid - float64(pix)
		idx := pix - xMin
		r.cover[idx] += c
		r.area[idx] += c * float32(1-frac)
	}
}

// integrateNonZero turns cover/area into coverage in place (nonzero rule).
func integrateNonZero(cover, area []float32) {
	var acc float32
	for i := range cover {
		raw := acc + area[i]
		acc += cover[i]
		cover[i] = min(abs32(raw), 1)
	}
}

// integrateEvenOdd turns cover/area into coverage in place (even-odd rule).
func integrateEvenOdd(cover, area []float32) {
	var acc float32
	for i := range cover {
		raw := abs32(acc + area[i])
		acc += cover[i]
		m := raw - 2*float32(int(raw/2))
		cover[i] = 1 - abs32(1-m)
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// trimZeros strips zero coverage from both ends of a row.
func trimZeros(coverage []float32) (trimmed []float32, offset int) {
	lo, hi := 0, len(coverage)
	for lo < hi && coverage[lo] == 0 {
		lo++
	}
	if lo == hi {
		return nil, 0
	}
	for coverage[hi-1] == 0 {
		hi--
	}
	return coverage[lo:hi], lo
}

const (
	// defaultFlatness is below the threshold of visual perception.
	defaultFlatness = 0.25

	// defaultMiterLimit matches PDF/PostScript: joins become bevels when
	// the interior angle is below about 11.5 degrees.
	defaultMiterLimit = 10.0

	horizontalEdgeThreshold = 1e-10
	zeroLengthThreshold     = 1e-10
	collinearityThreshold   = 1e-6

	// cos(179.43°), used to detect a polyline doubling back on itself
	cuspCosineThreshold = -0.9999
)

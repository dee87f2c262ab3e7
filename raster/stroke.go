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
	"maps"
	"math"
	"slices"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// strokeSegment is one non-degenerate piece of a polyline, in user space.
type strokeSegment struct {
	A, B vec.Vec2
	T    vec.Vec2 // unit tangent, A to B
	N    vec.Vec2 // unit normal, T rotated 90° counter-clockwise
}

// StrokePolyline renders the open polyline through pts using Width, Cap,
// Join and MiterLimit.  The outline is filled with the nonzero rule, so
// places where the line overlaps itself are painted only once.
//
// Where the polyline turns back on itself, it is split into pieces which
// end in caps.  The coverage of the pieces is combined by taking the
// maximum in each pixel.
func (r *Rasterizer) StrokePolyline(pts []vec.Vec2, emit EmitFunc) {
	if len(pts) == 0 || r.Width <= 0 {
		return
	}

	r.segs = r.segs[:0]
	for i := 1; i < len(pts); i++ {
		r.addStrokeSegment(pts[i-1], pts[i])
	}

	if len(r.segs) == 0 {
		// all points coincide: only a round cap leaves a mark
		if r.Cap != graphics.LineCapRound {
			return
		}
		r.stroke = r.stroke[:0]
		r.addArc(pts[0], r.Width/2, vec.Vec2{X: 1}, 2*math.Pi, true)
		r.fillStroke(emit)
		return
	}

	runs := splitAtCusps(r.segs)
	if len(runs) == 1 {
		r.strokeRun(runs[0], emit)
		return
	}
	u := newCoverageUnion(int(r.Clip.LLx), int(r.Clip.URx))
	for _, run := range runs {
		r.strokeRun(run, u.add)
	}
	u.emit(emit)
}

func (r *Rasterizer) strokeRun(segs []strokeSegment, emit EmitFunc) {
	r.stroke = r.stroke[:0]
	r.outlineOpen(segs, r.Width/2)
	r.fillStroke(emit)
}

func (r *Rasterizer) fillStroke(emit EmitFunc) {
	if len(r.stroke) < 3 {
		return
	}
	r.beginEdges()
	r.addPolygonEdges(r.stroke)
	r.fill(NonZero, emit)
}

// splitAtCusps cuts segs wherever the direction reverses.
func splitAtCusps(segs []strokeSegment) [][]strokeSegment {
	var runs [][]strokeSegment
	start := 0
	for i := 1; i < len(segs); i++ {
		if segs[i-1].T.Dot(segs[i].T) < cuspCosineThreshold {
			runs = append(runs, segs[start:i])
			start = i
		}
	}
	return append(runs, segs[start:])
}

// coverageUnion collects coverage rows and merges overlapping
// contributions by taking the maximum.
type coverageUnion struct {
	x0, width int
	rows      map[int][]float32
}

func newCoverageUnion(xMin, xMax int) *coverageUnion {
	return &coverageUnion{
		x0:    xMin,
		width: max(xMax-xMin, 0),
		rows:  make(map[int][]float32),
	}
}

func (u *coverageUnion) add(y, xMin int, coverage []float32) {
	row, ok := u.rows[y]
	if !ok {
		row = make([]float32, u.width)
		u.rows[y] = row
	}
	dst := row[xMin-u.x0:]
	for i, c := range coverage {
		dst[i] = max(dst[i], c)
	}
}

func (u *coverageUnion) emit(emit EmitFunc) {
	for _, y := range slices.Sorted(maps.Keys(u.rows)) {
		if trimmed, offset := trimZeros(u.rows[y]); trimmed != nil {
			emit(y, u.x0+offset, trimmed)
		}
	}
}

func (r *Rasterizer) addStrokeSegment(a, b vec.Vec2) {
	d := b.Sub(a)
	length := d.Length()
	if length < zeroLengthThreshold {
		return
	}
	t := d.Mul(1 / length)
	r.segs = append(r.segs, strokeSegment{A: a, B: b, T: t, N: vec.Vec2{X: -t.Y, Y: t.X}})
}

// outlineOpen appends the outline of an open polyline to r.stroke: the +N
// side forwards, the end cap, the -N side backwards, then the start cap.
// Joins are only added on the outer side of each corner; on the inner side
// the two offset lines are cut at their intersection.
func (r *Rasterizer) outlineOpen(segs []strokeSegment, d float64) {
	first := &segs[0]
	last := &segs[len(segs)-1]

	r.addCap(first.A, first.T.Mul(-1), d)

	skip := false
	for i := range segs {
		seg := &segs[i]
		if !skip {
			r.stroke = append(r.stroke, seg.A.Add(seg.N.Mul(d)))
		}
		skip = false
		if i == len(segs)-1 {
			r.stroke = append(r.stroke, seg.B.Add(seg.N.Mul(d)))
			break
		}
		next := &segs[i+1]
		sin := cross(seg.T, next.T)
		switch {
		case math.Abs(sin) < collinearityThreshold:
			r.stroke = append(r.stroke, seg.B.Add(seg.N.Mul(d)))
		case sin > 0:
			skip = r.addInnerCorner(seg.B, seg.T, next.T, seg.N, next.N, d, true)
		default:
			r.stroke = append(r.stroke, seg.B.Add(seg.N.Mul(d)))
			r.addJoin(seg.B, seg.T, next.T, d, true)
		}
	}

	r.addCap(last.B, last.T, d)

	skip = false
	for i := len(segs) - 1; i >= 0; i-- {
		seg := &segs[i]
		if !skip {
			r.stroke = append(r.stroke, seg.B.Sub(seg.N.Mul(d)))
		}
		skip = false
		if i == 0 {
			r.stroke = append(r.stroke, seg.A.Sub(seg.N.Mul(d)))
			break
		}
		prev := &segs[i-1]
		sin := cross(prev.T, seg.T)
		switch {
		case math.Abs(sin) < collinearityThreshold:
			r.stroke = append(r.stroke, seg.A.Sub(seg.N.Mul(d)))
		case sin > 0:
			r.stroke = append(r.stroke, seg.A.Sub(seg.N.Mul(d)))
			r.addJoin(seg.A, prev.T, seg.T, d, false)
		default:
			skip = r.addInnerCorner(seg.A, prev.T, seg.T, prev.N, seg.N, d, false)
		}
	}
}

// cross returns the z component of a×b.
func cross(a, b vec.Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// addCap adds the cap at P.  T points away from the line.
func (r *Rasterizer) addCap(P, T vec.Vec2, d float64) {
	N := vec.Vec2{X: -T.Y, Y: T.X}
	switch r.Cap {
	case graphics.LineCapSquare:
		ext := P.Add(T.Mul(d))
		r.stroke = append(r.stroke, ext.Add(N.Mul(d)), ext.Sub(N.Mul(d)))
	case graphics.LineCapRound:
		r.addArc(P, d, N, -math.Pi, true)
	}
	// butt caps need no extra points
}

// addInnerCorner handles the inner side of a corner.  If the two offset
// lines intersect, only the intersection is added and the function returns
// true to tell the caller to skip the next offset point.
func (r *Rasterizer) addInnerCorner(P, T1, T2, N1, N2 vec.Vec2, d float64, plusN bool) bool {
	cosTheta := T1.Dot(T2)
	if cosTheta <= 1-1e-9 {
		halfCos := math.Sqrt((1 + cosTheta) / 2)
		dir := N1.Add(N2)
		if !plusN {
			dir = dir.Mul(-1)
		}
		if l := dir.Length(); halfCos >= 1e-9 && l >= 1e-9 {
			r.stroke = append(r.stroke, P.Add(dir.Mul(d/(halfCos*l))))
			return true
		}
	}

	if plusN {
		r.stroke = append(r.stroke, P.Add(N1.Mul(d)), P.Add(N2.Mul(d)))
	} else {
		r.stroke = append(r.stroke, P.Sub(N1.Mul(d)), P.Sub(N2.Mul(d)))
	}
	return false
}

// addJoin adds join geometry on the outer side of the corner at P, where
// the tangent turns from T1 to T2.
func (r *Rasterizer) addJoin(P, T1, T2 vec.Vec2, d float64, plusN bool) {
	cosTheta := T1.Dot(T2)
	sinTheta := cross(T1, T2)
	if math.Abs(sinTheta) < collinearityThreshold {
		return
	}

	switch r.Join {
	case graphics.LineJoinMiter:
		// miter length is 1/sin(φ/2) for the interior angle φ = π-θ
		sinHalf := math.Sqrt((1 + cosTheta) / 2)
		if sinHalf > 0 && 1/sinHalf <= r.MiterLimit+1e-10 {
			bisector := vec.Vec2{X: -T1.Y - T2.Y, Y: T1.X + T2.X}
			if !plusN {
				bisector = bisector.Mul(-1)
			}
			if l := bisector.Length(); l > zeroLengthThreshold {
				r.stroke = append(r.stroke, P.Add(bisector.Mul(d/(sinHalf*l))))
			}
		}
		// beyond the miter limit this degrades to a bevel

	case graphics.LineJoinRound:
		angle := math.Acos(max(-1, min(1, cosTheta)))
		if plusN {
			start := vec.Vec2{X: -T1.Y, Y: T1.X}
			if sinTheta < 0 {
				angle = -angle
			}
			r.addArc(P, d, start, angle, false)
		} else {
			start := vec.Vec2{X: T2.Y, Y: -T2.X}
			if sinTheta > 0 {
				angle = -angle
			}
			r.addArc(P, d, start, angle, false)
		}
	}
}

// addArc appends points on the arc around center, starting in direction
// startDir and sweeping by sweep radians (positive is counter-clockwise).
// The number of points is chosen so that the chords stay within Flatness
// in device space.
func (r *Rasterizer) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64, includeStart bool) {
	devRadius := max(
		r.transformLinear(vec.Vec2{X: radius}).Length(),
		r.transformLinear(vec.Vec2{Y: radius}).Length())

	n := 1
	if devRadius >= r.Flatness {
		step := 2 * math.Acos(1-r.Flatness/devRadius)
		if step <= 0 || math.IsNaN(step) {
			step = math.Pi / 4
		}
		n = max(int(math.Ceil(math.Abs(sweep)/step)), 1)
	}

	i0 := 1
	if includeStart {
		i0 = 0
	}
	dt := sweep / float64(n)
	for i := i0; i <= n; i++ {
		s, c := math.Sincos(float64(i) * dt)
		dir := vec.Vec2{
			X: startDir.X*c - startDir.Y*s,
			Y: startDir.X*s + startDir.Y*c,
		}
		r.stroke = append(r.stroke, center.Add(dir.Mul(radius)))
	}
}

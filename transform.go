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
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Axis is the affine fit of one coordinate axis into the canvas.
// A coordinate v maps to (v - Shift) * Scale * PixelsPerMeter.
type Axis struct {
	Shift          float64
	Scale          float64
	PixelsPerMeter float64

	// Size is the extent of the lane network along this axis, rounded up
	// to whole simulation units.
	Size int
}

// Apply maps a simulation coordinate to a pixel coordinate.
func (a Axis) Apply(v float64) float64 {
	return (v - a.Shift) * a.Scale * a.PixelsPerMeter
}

// Pixels returns the canvas extent along this axis.
func (a Axis) Pixels() int {
	return int(math.Round(float64(a.Size) * a.PixelsPerMeter))
}

// fitAxis fits the interval [lo, hi] into the canvas, leaving margin
// simulation units free at both ends.
func fitAxis(name string, lo, hi, margin, pxpm float64) (Axis, error) {
	size := int(math.Ceil(hi - lo))
	if size <= 0 {
		return Axis{}, fmt.Errorf("%w: %s extent is zero", ErrDegenerateBounds, name)
	}
	scale := (float64(size) - 2*margin) / float64(size)
	if scale <= 0 {
		return Axis{}, fmt.Errorf("%w: %s extent %d does not exceed twice the margin %g",
			ErrDegenerateBounds, name, size, margin)
	}
	a := Axis{
		Shift:          lo - margin,
		Scale:          scale,
		PixelsPerMeter: pxpm,
		Size:           size,
	}
	if a.Pixels() <= 0 {
		return Axis{}, fmt.Errorf("%w: %s axis has no pixels", ErrDegenerateBounds, name)
	}
	return a, nil
}

// Transform maps simulation coordinates to canvas pixels, one [Axis] per
// direction.  The two scale factors are in general different.
type Transform struct {
	X, Y Axis
}

// FitTransform computes the transform from the bounding box of all lane
// points.  The x and y ranges are treated independently.
func FitTransform(lanes []Lane, margin, pixelsPerMeter float64) (Transform, error) {
	first := true
	var xMin, xMax, yMin, yMax float64
	for _, lane := range lanes {
		for _, p := range lane.Points {
			if first {
				xMin, xMax, yMin, yMax = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			xMin, xMax = min(xMin, p.X), max(xMax, p.X)
			yMin, yMax = min(yMin, p.Y), max(yMax, p.Y)
		}
	}
	if first {
		return Transform{}, ErrNoLanes
	}
	if math.IsNaN(xMin+xMax+yMin+yMax) || math.IsInf(xMin+xMax+yMin+yMax, 0) {
		return Transform{}, fmt.Errorf("%w: lane coordinates are not finite", ErrDegenerateBounds)
	}

	x, err := fitAxis("x", xMin, xMax, margin, pixelsPerMeter)
	if err != nil {
		return Transform{}, err
	}
	y, err := fitAxis("y", yMin, yMax, margin, pixelsPerMeter)
	if err != nil {
		return Transform{}, err
	}
	return Transform{X: x, Y: y}, nil
}

// Apply maps a point from simulation coordinates to pixel coordinates.
func (t Transform) Apply(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: t.X.Apply(p.X), Y: t.Y.Apply(p.Y)}
}

// CanvasSize returns the canvas width and height in pixels.
func (t Transform) CanvasSize() (width, height int) {
	return t.X.Pixels(), t.Y.Pixels()
}

// Matrix returns the transform as an affine matrix.
func (t Transform) Matrix() matrix.Matrix {
	sx := t.X.Scale * t.X.PixelsPerMeter
	sy := t.Y.Scale * t.Y.PixelsPerMeter
	return matrix.Matrix{sx, 0, 0, sy, -t.X.Shift * sx, -t.Y.Shift * sy}
}

// applyInPlace transforms all points of the lanes, overwriting them.
func (t Transform) applyInPlace(lanes []Lane) {
	for _, lane := range lanes {
		for i, p := range lane.Points {
			lane.Points[i] = t.Apply(p)
		}
	}
}

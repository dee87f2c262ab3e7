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
	"strings"

	"seehuhn.de/go/geom/vec"
)

// Orientation is the position and heading of a vehicle in simulation
// coordinates.  Angle is in degrees, clockwise, with 0 pointing in the
// direction of increasing y.
type Orientation struct {
	X, Y  float64
	Angle float64
}

// MarkerStyle selects the shape used to draw vehicles.
type MarkerStyle int

const (
	// MarkerTriangle is a narrow triangle whose tip sits at the vehicle
	// position and points along the heading.
	MarkerTriangle MarkerStyle = iota

	// MarkerCircle is a small disc, which ignores the heading.  It is a
	// 16-sided polygon with a radius of 3 simulation units, so that its
	// size in pixels grows with PixelsPerMeter.
	MarkerCircle
)

func (m MarkerStyle) String() string {
	switch m {
	case MarkerTriangle:
		return "triangle"
	case MarkerCircle:
		return "circle"
	default:
		return fmt.Sprintf("MarkerStyle(%d)", int(m))
	}
}

// ParseMarkerStyle converts the output of [MarkerStyle.String] back.
func ParseMarkerStyle(s string) (MarkerStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "triangle", "":
		return MarkerTriangle, nil
	case "circle":
		return MarkerCircle, nil
	}
	return 0, fmt.Errorf("roadview: unknown marker style %q", s)
}

const (
	// circleRadius is the radius of [MarkerCircle], in simulation units.
	circleRadius = 3

	circleVertices = 16
)

// triangle returns the marker polygon for a vehicle, in pixel
// coordinates.  size is the marker length in simulation units.
//
// The apex is the transformed vehicle position c.  The base center lies
// size units behind it, B = c - s*(sx*sin a, sy*cos a), and the two base
// corners are a quarter of that distance to either side.  The per-axis
// scale factors are applied to the offsets, so markers are distorted in
// the same way as the road network.
func (t Transform) triangle(o Orientation, size float64) [3]vec.Vec2 {
	c := t.Apply(vec.Vec2{X: o.X, Y: o.Y})
	sin, cos := math.Sincos(o.Angle * math.Pi / 180)
	sx := size * t.X.PixelsPerMeter * t.X.Scale
	sy := size * t.Y.PixelsPerMeter * t.Y.Scale

	base := vec.Vec2{X: c.X - sx*sin, Y: c.Y - sy*cos}
	side := vec.Vec2{X: 0.25 * sx * cos, Y: -0.25 * sy * sin}
	return [3]vec.Vec2{c, base.Add(side), base.Sub(side)}
}

// circle returns a polygon approximating a disc around the vehicle.
func (t Transform) circle(o Orientation) []vec.Vec2 {
	c := t.Apply(vec.Vec2{X: o.X, Y: o.Y})
	rx := circleRadius * t.X.PixelsPerMeter * t.X.Scale
	ry := circleRadius * t.Y.PixelsPerMeter * t.Y.Scale

	pts := make([]vec.Vec2, circleVertices)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / circleVertices)
		pts[i] = vec.Vec2{X: c.X + rx*cos, Y: c.Y + ry*sin}
	}
	return pts
}

// marker returns the polygon for one vehicle in the given style.
func (t Transform) marker(style MarkerStyle, o Orientation, size float64) []vec.Vec2 {
	if style == MarkerCircle {
		return t.circle(o)
	}
	tri := t.triangle(o, size)
	return tri[:]
}

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
	"image/color"
	"strings"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roadview/raster"
)

// LayerKind names one category of objects in a [Scene].
type LayerKind int

const (
	LayerLanes LayerKind = iota
	LayerHuman
	LayerMachine
)

// DefaultLayers is the default drawing order, back to front.
var DefaultLayers = []LayerKind{LayerLanes, LayerHuman, LayerMachine}

func (k LayerKind) String() string {
	switch k {
	case LayerLanes:
		return "lanes"
	case LayerHuman:
		return "human"
	case LayerMachine:
		return "machine"
	default:
		return fmt.Sprintf("LayerKind(%d)", int(k))
	}
}

// ParseLayerKind converts the output of [LayerKind.String] back.
func ParseLayerKind(s string) (LayerKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lanes":
		return LayerLanes, nil
	case "human":
		return LayerHuman, nil
	case "machine":
		return LayerMachine, nil
	}
	return 0, fmt.Errorf("roadview: unknown layer %q", s)
}

// PrimitiveKind says how the points of a [Primitive] are drawn.
type PrimitiveKind int

const (
	// LineStrip is an open polyline, stroked.
	LineStrip PrimitiveKind = iota

	// Polygon is a closed polygon, filled with the nonzero rule.
	Polygon
)

// Primitive is a single draw call.  Points are in pixel coordinates, with
// the origin in the lower left corner of the canvas.
type Primitive struct {
	Kind   PrimitiveKind
	Points []vec.Vec2
	Color  color.RGBA
}

// Path returns the primitive as a path, for use with vector back ends.
func (p Primitive) Path() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if len(p.Points) == 0 {
			return
		}
		if !yield(path.CmdMoveTo, p.Points[:1]) {
			return
		}
		for i := 1; i < len(p.Points); i++ {
			if !yield(path.CmdLineTo, p.Points[i:i+1]) {
				return
			}
		}
		if p.Kind == Polygon {
			yield(path.CmdClose, nil)
		}
	}
}

// Layer is a group of primitives of the same category.
type Layer struct {
	Kind       LayerKind
	Primitives []Primitive
}

// Scene is a complete description of one frame.  Layers are drawn in
// order, so later layers cover earlier ones.
type Scene struct {
	Width, Height int
	Background    color.RGBA
	Layers        []Layer

	// Label, if not empty, is printed in the top left corner.
	Label      string
	LabelColor color.RGBA
}

// Layer returns the first layer of the given kind, or nil.
func (s *Scene) Layer(kind LayerKind) *Layer {
	for i := range s.Layers {
		if s.Layers[i].Kind == kind {
			return &s.Layers[i]
		}
	}
	return nil
}

// Draw paints the layers and the label onto c.  The canvas is not
// cleared first; see [raster.Canvas.Clear].
func (s *Scene) Draw(c *raster.Canvas, style raster.LineStyle) {
	for _, layer := range s.Layers {
		for _, p := range layer.Primitives {
			switch p.Kind {
			case LineStrip:
				c.StrokePolyline(p.Points, style, p.Color)
			case Polygon:
				c.FillPolygon(p.Points, p.Color)
			}
		}
	}
	if s.Label != "" {
		c.DrawLabel(labelInset, labelInset, s.Label, s.LabelColor)
	}
}

const labelInset = 2

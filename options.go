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
	"errors"
	"fmt"
	"image/color"
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// Default colors.
var (
	DefaultLaneColor    = color.RGBA{R: 250, G: 250, B: 210, A: 255}
	DefaultHumanColor   = color.RGBA{R: 0, G: 139, B: 139, A: 255}
	DefaultMachineColor = color.RGBA{R: 255, G: 20, B: 147, A: 255}
	DefaultBackground   = color.RGBA{A: 255}
)

const (
	defaultMargin         = 2
	defaultPixelsPerMeter = 1
	defaultMarkerSize     = 5
	defaultLineWidth      = 1
)

// Options control a [Renderer].  The zero value of a field selects its
// default.
type Options struct {
	// SaveFrames enables writing every rendered frame to Store.
	SaveFrames bool

	// SaveDir is the output directory used when Store is nil.
	SaveDir string

	// Store receives the frames when SaveFrames is set.  If nil, a
	// [DirStore] for SaveDir is used.
	Store FrameStore

	// Margin is kept free around the lane network, in simulation units.
	// The default is 2.
	Margin float64

	// PixelsPerMeter sets the resolution.  The default is 1.
	PixelsPerMeter float64

	// MarkerSize is the length of a vehicle marker, in simulation units.
	// The default is 5.
	MarkerSize float64

	Marker MarkerStyle

	// LineWidth is the width of lane lines in pixels.  The default is 1.
	LineWidth float64

	// Antialias smooths the edges of lanes and markers.  By default every
	// pixel is painted either with the exact color of one category or not
	// at all, so that frames can be segmented by color.
	Antialias bool

	// Layers gives the drawing order, back to front.  Categories not
	// listed are not drawn.  The default is [DefaultLayers].
	Layers []LayerKind

	LaneColor    color.RGBA
	HumanColor   color.RGBA
	MachineColor color.RGBA
	Background   color.RGBA

	// ShowClock prints the simulation time onto every frame.
	ShowClock bool

	// OpenWindow creates the window frames are presented in.  The
	// default is [Headless].
	OpenWindow WindowFactory

	// Logger receives diagnostic messages.  If nil, nothing is logged.
	Logger *log.Logger
}

// resolveOptions returns a copy of opt with all unset fields filled in.
// opt may be nil.
func resolveOptions(opt *Options) Options {
	var o Options
	if opt != nil {
		o = *opt
	}
	if o.Margin == 0 {
		o.Margin = defaultMargin
	}
	if o.PixelsPerMeter == 0 {
		o.PixelsPerMeter = defaultPixelsPerMeter
	}
	if o.MarkerSize == 0 {
		o.MarkerSize = defaultMarkerSize
	}
	if o.LineWidth == 0 {
		o.LineWidth = defaultLineWidth
	}
	if o.Layers == nil {
		o.Layers = DefaultLayers
	}
	o.Layers = slices.Clone(o.Layers)
	o.LaneColor = orDefault(o.LaneColor, DefaultLaneColor)
	o.HumanColor = orDefault(o.HumanColor, DefaultHumanColor)
	o.MachineColor = orDefault(o.MachineColor, DefaultMachineColor)
	o.Background = orDefault(o.Background, DefaultBackground)
	if o.OpenWindow == nil {
		o.OpenWindow = Headless
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.SaveFrames && o.Store == nil && o.SaveDir != "" {
		o.Store = DirStore{Dir: o.SaveDir}
	}
	return o
}

func orDefault(c, def color.RGBA) color.RGBA {
	if c == (color.RGBA{}) {
		return def
	}
	return c
}

func (o *Options) validate() error {
	if o.SaveFrames && o.Store == nil {
		return errors.New("frame saving needs an output directory")
	}
	if o.Margin < 0 {
		return fmt.Errorf("negative margin %g", o.Margin)
	}
	if o.PixelsPerMeter < 0 {
		return fmt.Errorf("invalid resolution %g pixels per meter", o.PixelsPerMeter)
	}
	if o.MarkerSize < 0 || o.LineWidth < 0 {
		return errors.New("marker size and line width must be positive")
	}
	if o.Marker != MarkerTriangle && o.Marker != MarkerCircle {
		return fmt.Errorf("invalid marker style %d", int(o.Marker))
	}
	for _, k := range o.Layers {
		if k < LayerLanes || k > LayerMachine {
			return fmt.Errorf("invalid layer %d", int(k))
		}
	}
	return nil
}

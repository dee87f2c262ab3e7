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

// Package roadview draws a top-down view of a running traffic simulation.
//
// A [Renderer] reads the static lane network from a [Kernel] once, fits
// it into a canvas and then, for every simulation step, draws the lanes
// together with one marker per vehicle.  Vehicles come in two categories,
// human driven and automated, which are shown in different colors.  The
// result of each call to [Renderer.Render] is an RGB [Frame]; frames can
// also be written to disk as PNG files.
package roadview

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/charmbracelet/log"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roadview/raster"
)

// Renderer draws frames for one simulation run.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	kernel Kernel
	opt    Options
	log    *log.Logger

	tf     Transform
	lanes  []Lane
	canvas *raster.Canvas
	style  raster.LineStyle
	window Window

	frame  Frame
	closed bool
}

// New reads the lane network from k and prepares a canvas and window of
// matching size.  If opt is nil, the defaults are used.
//
// All errors are of type [*SetupError].
func New(k Kernel, opt *Options) (*Renderer, error) {
	o := resolveOptions(opt)
	if err := o.validate(); err != nil {
		return nil, &SetupError{Op: "options", Err: err}
	}
	if k == nil {
		return nil, &SetupError{Op: "kernel", Err: errNilKernel}
	}

	lanes, err := loadLanes(k)
	if err != nil {
		return nil, &SetupError{Op: "lanes", Err: err}
	}
	tf, err := FitTransform(lanes, o.Margin, o.PixelsPerMeter)
	if err != nil {
		return nil, &SetupError{Op: "transform", Err: err}
	}
	tf.applyInPlace(lanes)

	width, height := tf.CanvasSize()
	canvas, err := raster.NewCanvas(width, height)
	if err != nil {
		return nil, &SetupError{Op: "canvas", Err: err}
	}
	canvas.Aliased = !o.Antialias
	win, err := o.OpenWindow(width, height)
	if err != nil {
		return nil, &SetupError{Op: "window", Err: err}
	}

	style := raster.DefaultLineStyle
	style.Width = o.LineWidth

	r := &Renderer{
		kernel: k,
		opt:    o,
		log:    o.Logger,
		tf:     tf,
		lanes:  lanes,
		canvas: canvas,
		style:  style,
		window: win,
		frame:  Frame{Width: width, Height: height},
	}

	// the initial frame shows the empty canvas
	canvas.Clear(o.Background)
	r.frame.Pix = canvas.ReadRGB(r.frame.Pix)

	r.log.Info("rendering with frame", "width", width, "height", height, "lanes", len(lanes))
	r.log.Debug("transform",
		"xShift", tf.X.Shift, "xScale", tf.X.Scale,
		"yShift", tf.Y.Shift, "yScale", tf.Y.Scale)
	return r, nil
}

// Render draws one frame showing the given vehicles.
//
// The returned frame is owned by the renderer and is overwritten by the
// next call.  If frame saving is enabled, the frame is stored before
// Render returns; if this fails, the error is an [*IOError] and no frame
// is returned.
func (r *Renderer) Render(human, machine []Orientation) (*Frame, error) {
	if r.closed {
		return nil, ErrClosed
	}

	r.canvas.Clear(r.opt.Background)
	if err := r.window.PollEvents(); err != nil {
		return nil, err
	}

	scene := r.Scene(human, machine)
	var now int
	if r.opt.ShowClock || r.opt.SaveFrames {
		t, err := r.kernel.CurrentTime()
		if err != nil {
			return nil, fmt.Errorf("roadview: reading simulation time: %w", err)
		}
		now = t
	}
	if r.opt.ShowClock {
		scene.Label = fmt.Sprintf("t=%d", now)
		scene.LabelColor = r.opt.LaneColor
	}
	scene.Draw(r.canvas, r.style)

	if r.opt.SaveFrames {
		if err := r.opt.Store.SaveFrame(now, r.canvas.Image()); err != nil {
			return nil, asIOError(err)
		}
		r.log.Debug("saved frame", "time", now)
	}

	r.frame.Pix = r.canvas.ReadRGB(r.frame.Pix)

	if err := r.window.Present(&r.frame); err != nil {
		return nil, fmt.Errorf("roadview: presenting frame: %w", err)
	}
	return &r.frame, nil
}

// Scene builds the description of a frame without drawing it.  Lane
// primitives share their point slices with the renderer and must not be
// modified.
func (r *Renderer) Scene(human, machine []Orientation) Scene {
	s := Scene{
		Width:      r.frame.Width,
		Height:     r.frame.Height,
		Background: r.opt.Background,
		Layers:     make([]Layer, 0, len(r.opt.Layers)),
	}
	for _, kind := range r.opt.Layers {
		layer := Layer{Kind: kind}
		switch kind {
		case LayerLanes:
			layer.Primitives = make([]Primitive, 0, len(r.lanes))
			for _, lane := range r.lanes {
				layer.Primitives = append(layer.Primitives, Primitive{
					Kind:   LineStrip,
					Points: lane.Points,
					Color:  r.opt.LaneColor,
				})
			}
		case LayerHuman:
			layer.Primitives = r.vehicles(human, r.opt.HumanColor)
		case LayerMachine:
			layer.Primitives = r.vehicles(machine, r.opt.MachineColor)
		}
		s.Layers = append(s.Layers, layer)
	}
	return s
}

func (r *Renderer) vehicles(orientations []Orientation, col color.RGBA) []Primitive {
	res := make([]Primitive, len(orientations))
	for i, o := range orientations {
		res[i] = Primitive{
			Kind:   Polygon,
			Points: r.tf.marker(r.opt.Marker, o, r.opt.MarkerSize),
			Color:  col,
		}
	}
	return res
}

// Close releases the window.  A second call returns [ErrClosed].
func (r *Renderer) Close() error {
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	return r.window.Close()
}

// Size returns the canvas width and height in pixels.
func (r *Renderer) Size() (width, height int) {
	return r.frame.Width, r.frame.Height
}

// Transform returns the mapping from simulation to pixel coordinates.
func (r *Renderer) Transform() Transform {
	return r.tf
}

// Lanes returns a copy of the lane network, in pixel coordinates.
func (r *Renderer) Lanes() []Lane {
	res := make([]Lane, len(r.lanes))
	for i, lane := range r.lanes {
		res[i] = Lane{ID: lane.ID, Points: slices.Clone(lane.Points)}
	}
	return res
}

// PixelPosition maps a point in simulation coordinates to the canvas.
func (r *Renderer) PixelPosition(p vec.Vec2) vec.Vec2 {
	return r.tf.Apply(p)
}

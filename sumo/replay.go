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

package sumo

import (
	"fmt"
	"slices"
	"strings"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roadview"
)

// DefaultMachinePrefixes are the vehicle ID and type prefixes used for
// automated vehicles in common SUMO scenarios.
var DefaultMachinePrefixes = []string{"rl", "av"}

// Classifier splits vehicles into human driven and automated ones.  A
// vehicle is automated if its ID or its type starts with one of the
// prefixes.
type Classifier struct {
	MachinePrefixes []string
}

// IsMachine reports whether v is an automated vehicle.
func (c *Classifier) IsMachine(v *Vehicle) bool {
	prefixes := c.MachinePrefixes
	if prefixes == nil {
		prefixes = DefaultMachinePrefixes
	}
	for _, p := range prefixes {
		if strings.HasPrefix(v.ID, p) || strings.HasPrefix(v.Type, p) {
			return true
		}
	}
	return false
}

// Split converts the vehicles of a time step into renderer input.
func (c *Classifier) Split(vehicles []Vehicle) (human, machine []roadview.Orientation) {
	for i := range vehicles {
		v := &vehicles[i]
		o := roadview.Orientation{X: v.X, Y: v.Y, Angle: v.Angle}
		if c.IsMachine(v) {
			machine = append(machine, o)
		} else {
			human = append(human, o)
		}
	}
	return human, machine
}

// Replay plays back a recorded trace.  It implements [roadview.Kernel].
type Replay struct {
	net      *Network
	trace    *Trace
	classify Classifier
	pos      int
}

// NewReplay returns a replay positioned before the first time step.
func NewReplay(net *Network, trace *Trace, c Classifier) *Replay {
	return &Replay{net: net, trace: trace, classify: c, pos: -1}
}

// LaneIDs implements [roadview.Kernel].
func (r *Replay) LaneIDs() ([]string, error) {
	ids := make([]string, len(r.net.Lanes))
	for i, l := range r.net.Lanes {
		ids[i] = l.ID
	}
	return ids, nil
}

// LaneShape implements [roadview.Kernel].
func (r *Replay) LaneShape(id string) ([]vec.Vec2, error) {
	l, ok := r.net.Lane(id)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownLane, id)
	}
	return slices.Clone(l.Shape), nil
}

// CurrentTime implements [roadview.Kernel].  The time is given in
// milliseconds; before the first call to Next it is 0.
func (r *Replay) CurrentTime() (int, error) {
	if r.pos < 0 || r.pos >= len(r.trace.Steps) {
		return 0, nil
	}
	return r.trace.Steps[r.pos].Millis(), nil
}

// Next advances to the next time step and returns its vehicles.  At the
// end of the trace, ok is false.
func (r *Replay) Next() (human, machine []roadview.Orientation, ok bool) {
	if r.pos+1 >= len(r.trace.Steps) {
		return nil, nil, false
	}
	r.pos++
	human, machine = r.classify.Split(r.trace.Steps[r.pos].Vehicles)
	return human, machine, true
}

// Len returns the number of time steps in the trace.
func (r *Replay) Len() int {
	return len(r.trace.Steps)
}

// Rewind moves back to before the first time step.
func (r *Replay) Rewind() {
	r.pos = -1
}

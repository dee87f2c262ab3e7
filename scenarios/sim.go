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

// Package scenarios provides small synthetic traffic simulations.  They
// implement [roadview.Kernel] and are used for demonstrations and tests.
package scenarios

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/roadview"
)

// ErrUnknownLane is returned by [Sim.LaneShape] for lanes which do not
// exist.
var ErrUnknownLane = errors.New("scenarios: unknown lane")

// StepMillis is the simulated time per step.
const StepMillis = 100

// All lists the built-in scenarios by name.
var All = map[string]func() *Sim{
	"ring":  Ring,
	"grid":  Grid,
	"merge": Merge,
}

// Names returns the names of all scenarios in alphabetical order.
func Names() []string {
	return slices.Sorted(maps.Keys(All))
}

// New returns a fresh instance of the named scenario.
func New(name string) (*Sim, error) {
	mk, ok := All[name]
	if !ok {
		return nil, fmt.Errorf("scenarios: unknown scenario %q", name)
	}
	return mk(), nil
}

// lane is a polyline with precomputed arc lengths.
type lane struct {
	id  string
	pts []vec.Vec2
	cum []float64 // cum[i] is the distance from pts[0] to pts[i]
}

func newLane(id string, pts []vec.Vec2) *lane {
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + pts[i].Sub(pts[i-1]).Length()
	}
	return &lane{id: id, pts: pts, cum: cum}
}

func (l *lane) length() float64 {
	return l.cum[len(l.cum)-1]
}

// at returns the position and SUMO style heading at distance s along
// the lane.  s is clamped to the lane.
func (l *lane) at(s float64) (vec.Vec2, float64) {
	s = max(0, min(s, l.length()))
	i, _ := slices.BinarySearch(l.cum, s)
	i = max(1, min(i, len(l.pts)-1))
	a, b := l.pts[i-1], l.pts[i]
	d := b.Sub(a)
	segLen := l.cum[i] - l.cum[i-1]
	t := 0.0
	if segLen > 0 {
		t = (s - l.cum[i-1]) / segLen
	}
	return a.Add(d.Mul(t)), heading(d)
}

// heading converts a direction into degrees clockwise from north.
func heading(d vec.Vec2) float64 {
	deg := math.Atan2(d.X, d.Y) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Vehicle is a simulated vehicle moving along one lane at constant speed.
// When it reaches the end of the lane it starts again at the beginning.
type Vehicle struct {
	ID      string
	Machine bool
	Lane    int
	S       float64 // distance along the lane, in meters
	Speed   float64 // meters per second
}

// Sim is a running synthetic simulation.
type Sim struct {
	Name     string
	Vehicles []Vehicle

	lanes []*lane
	step  int
}

func (s *Sim) addLane(id string, pts ...vec.Vec2) int {
	s.lanes = append(s.lanes, newLane(id, pts))
	return len(s.lanes) - 1
}

// LaneIDs implements [roadview.Kernel].
func (s *Sim) LaneIDs() ([]string, error) {
	ids := make([]string, len(s.lanes))
	for i, l := range s.lanes {
		ids[i] = l.id
	}
	return ids, nil
}

// LaneShape implements [roadview.Kernel].
func (s *Sim) LaneShape(id string) ([]vec.Vec2, error) {
	for _, l := range s.lanes {
		if l.id == id {
			return slices.Clone(l.pts), nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownLane, id)
}

// CurrentTime implements [roadview.Kernel], in milliseconds.
func (s *Sim) CurrentTime() (int, error) {
	return s.step * StepMillis, nil
}

// Step advances the simulation by one time step and returns the new
// vehicle positions.
func (s *Sim) Step() (human, machine []roadview.Orientation) {
	s.step++
	dt := float64(StepMillis) / 1000
	for i := range s.Vehicles {
		v := &s.Vehicles[i]
		v.S += v.Speed * dt
		if length := s.lanes[v.Lane].length(); length > 0 {
			v.S = math.Mod(v.S, length)
		}
	}
	return s.Positions()
}

// Positions returns the current vehicle positions.
func (s *Sim) Positions() (human, machine []roadview.Orientation) {
	for _, v := range s.Vehicles {
		p, angle := s.lanes[v.Lane].at(v.S)
		o := roadview.Orientation{X: p.X, Y: p.Y, Angle: angle}
		if v.Machine {
			machine = append(machine, o)
		} else {
			human = append(human, o)
		}
	}
	return human, machine
}

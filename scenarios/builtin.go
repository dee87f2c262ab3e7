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

package scenarios

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"
)

// Ring is a single lane ring road with 22 vehicles, one of them
// automated.
func Ring() *Sim {
	const (
		radius   = 60
		segments = 64
		numCars  = 22
	)
	s := &Sim{Name: "ring"}

	pts := make([]vec.Vec2, segments+1)
	for i := range pts {
		// counter-clockwise, starting at the bottom
		a := 2*math.Pi*float64(i%segments)/segments - math.Pi/2
		pts[i] = vec.Vec2{X: 70 + radius*math.Cos(a), Y: 70 + radius*math.Sin(a)}
	}
	ring := s.addLane("ring_0", pts...)

	length := s.lanes[ring].length()
	for i := range numCars {
		v := Vehicle{
			ID:    fmt.Sprintf("human_%d", i),
			Lane:  ring,
			S:     length * float64(i) / numCars,
			Speed: 8,
		}
		if i == 0 {
			v.ID = "rl_0"
			v.Machine = true
		}
		s.Vehicles = append(s.Vehicles, v)
	}
	return s
}

// Grid is a three by three street grid with one lane per direction.
// Every lane carries two vehicles, and every third vehicle is automated.
func Grid() *Sim {
	const (
		size    = 3
		spacing = 50
		offset  = 1.6
		extent  = spacing * (size + 1)
	)
	s := &Sim{Name: "grid"}

	n := 0
	addVehicles := func(lane int) {
		length := s.lanes[lane].length()
		for k := range 2 {
			v := Vehicle{
				ID:    fmt.Sprintf("human_%d", n),
				Lane:  lane,
				S:     length * (float64(k) + 0.25*float64(lane%4)) / 2,
				Speed: 6 + float64(n%5),
			}
			if n%3 == 0 {
				v.ID = fmt.Sprintf("rl_%d", n)
				v.Machine = true
			}
			s.Vehicles = append(s.Vehicles, v)
			n++
		}
	}

	for i := 1; i <= size; i++ {
		p := float64(i * spacing)
		addVehicles(s.addLane(fmt.Sprintf("row%d_east", i),
			vec.Vec2{X: 0, Y: p - offset}, vec.Vec2{X: extent, Y: p - offset}))
		addVehicles(s.addLane(fmt.Sprintf("row%d_west", i),
			vec.Vec2{X: extent, Y: p + offset}, vec.Vec2{X: 0, Y: p + offset}))
		addVehicles(s.addLane(fmt.Sprintf("col%d_north", i),
			vec.Vec2{X: p + offset, Y: 0}, vec.Vec2{X: p + offset, Y: extent}))
		addVehicles(s.addLane(fmt.Sprintf("col%d_south", i),
			vec.Vec2{X: p - offset, Y: extent}, vec.Vec2{X: p - offset, Y: 0}))
	}
	return s
}

// Merge is a two lane highway with an on-ramp joining from the south.
func Merge() *Sim {
	s := &Sim{Name: "merge"}

	main0 := s.addLane("highway_0", vec.Vec2{X: 0, Y: 40}, vec.Vec2{X: 300, Y: 40})
	main1 := s.addLane("highway_1", vec.Vec2{X: 0, Y: 43.2}, vec.Vec2{X: 300, Y: 43.2})
	ramp := s.addLane("ramp_0",
		vec.Vec2{X: 60, Y: 0},
		vec.Vec2{X: 110, Y: 20},
		vec.Vec2{X: 150, Y: 34},
		vec.Vec2{X: 180, Y: 38.4},
		vec.Vec2{X: 300, Y: 38.4})

	for i := range 8 {
		s.Vehicles = append(s.Vehicles,
			Vehicle{ID: fmt.Sprintf("human_%d", 2*i), Lane: main0, S: 37.5 * float64(i), Speed: 12},
			Vehicle{ID: fmt.Sprintf("human_%d", 2*i+1), Lane: main1, S: 37.5*float64(i) + 18, Speed: 15})
	}
	for i := range 3 {
		s.Vehicles = append(s.Vehicles,
			Vehicle{ID: fmt.Sprintf("rl_%d", i), Machine: true, Lane: ramp, S: 90 * float64(i), Speed: 10})
	}
	return s
}

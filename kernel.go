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

	"seehuhn.de/go/geom/vec"
)

// Kernel is the part of a traffic simulation the renderer talks to.
//
// LaneIDs and LaneShape are only used while the renderer is constructed.
// CurrentTime is used to name saved frames and for the clock label.
type Kernel interface {
	// LaneIDs lists the lanes of the road network.
	LaneIDs() ([]string, error)

	// LaneShape returns the polyline of a lane, in simulation coordinates.
	LaneShape(id string) ([]vec.Vec2, error)

	// CurrentTime returns the simulation time, in whole time steps.
	CurrentTime() (int, error)
}

// Lane is the geometry of one lane.  After construction of a [Renderer]
// the points are in pixel coordinates.
type Lane struct {
	ID     string
	Points []vec.Vec2
}

// loadLanes queries the static road network from the kernel.  Each point
// slice is a private copy, so that transforming it in place does not
// touch the kernel's data.
func loadLanes(k Kernel) ([]Lane, error) {
	ids, err := k.LaneIDs()
	if err != nil {
		return nil, fmt.Errorf("listing lanes: %w", err)
	}

	lanes := make([]Lane, 0, len(ids))
	numPoints := 0
	for _, id := range ids {
		shape, err := k.LaneShape(id)
		if err != nil {
			return nil, fmt.Errorf("lane %q: %w", id, err)
		}
		pts := make([]vec.Vec2, len(shape))
		copy(pts, shape)
		lanes = append(lanes, Lane{ID: id, Points: pts})
		numPoints += len(pts)
	}
	if numPoints == 0 {
		return nil, ErrNoLanes
	}
	return lanes, nil
}

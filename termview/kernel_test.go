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

package termview

import "seehuhn.de/go/geom/vec"

// lineKernel is a road network consisting of one diagonal lane.
type lineKernel struct{}

func (lineKernel) LaneIDs() ([]string, error) { return []string{"diag"}, nil }

func (lineKernel) LaneShape(string) ([]vec.Vec2, error) {
	return []vec.Vec2{{X: 0, Y: 0}, {X: 60, Y: 40}}, nil
}

func (lineKernel) CurrentTime() (int, error) { return 0, nil }

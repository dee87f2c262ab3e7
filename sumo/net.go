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

// Package sumo reads road networks and vehicle traces written by the SUMO
// traffic simulator, so that recorded runs can be replayed through a
// [roadview.Renderer].
package sumo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/vec"
)

// Lane is one lane of a SUMO network.
type Lane struct {
	ID    string
	Edge  string
	Shape []vec.Vec2

	// Internal lanes connect the lanes of different edges inside a
	// junction.
	Internal bool
}

// Network is the static part of a SUMO network file.
type Network struct {
	Lanes []Lane
	index map[string]int
}

// NetOptions control [ReadNet].
type NetOptions struct {
	// SkipInternal drops the lanes inside junctions.
	SkipInternal bool
}

type xmlNet struct {
	Edges []xmlEdge `xml:"edge"`
}

type xmlEdge struct {
	ID       string    `xml:"id,attr"`
	Function string    `xml:"function,attr"`
	Lanes    []xmlLane `xml:"lane"`
}

type xmlLane struct {
	ID    string `xml:"id,attr"`
	Shape string `xml:"shape,attr"`
}

// ReadNet reads the lanes of a ".net.xml" file.  If opt is nil, the
// defaults are used.
func ReadNet(r io.Reader, opt *NetOptions) (*Network, error) {
	if opt == nil {
		opt = &NetOptions{}
	}

	var doc xmlNet
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("sumo: reading network: %w", err)
	}

	net := &Network{index: make(map[string]int)}
	for _, e := range doc.Edges {
		internal := e.Function == "internal"
		if internal && opt.SkipInternal {
			continue
		}
		for _, l := range e.Lanes {
			shape, err := ParseShape(l.Shape)
			if err != nil {
				return nil, fmt.Errorf("sumo: lane %q: %w", l.ID, err)
			}
			if _, dup := net.index[l.ID]; dup {
				return nil, fmt.Errorf("sumo: duplicate lane %q", l.ID)
			}
			net.index[l.ID] = len(net.Lanes)
			net.Lanes = append(net.Lanes, Lane{
				ID:       l.ID,
				Edge:     e.ID,
				Shape:    shape,
				Internal: internal,
			})
		}
	}
	if len(net.Lanes) == 0 {
		return nil, ErrEmptyNetwork
	}
	return net, nil
}

// Lane returns the lane with the given ID.
func (n *Network) Lane(id string) (*Lane, bool) {
	i, ok := n.index[id]
	if !ok {
		return nil, false
	}
	return &n.Lanes[i], true
}

// ParseShape decodes a SUMO shape attribute, a space separated list of
// "x,y" or "x,y,z" positions.  The z coordinate is ignored.
func ParseShape(s string) ([]vec.Vec2, error) {
	fields := strings.Fields(s)
	pts := make([]vec.Vec2, 0, len(fields))
	for _, f := range fields {
		coords := strings.Split(f, ",")
		if len(coords) < 2 || len(coords) > 3 {
			return nil, fmt.Errorf("malformed position %q", f)
		}
		x, err := strconv.ParseFloat(coords[0], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed position %q", f)
		}
		y, err := strconv.ParseFloat(coords[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed position %q", f)
		}
		pts = append(pts, vec.Vec2{X: x, Y: y})
	}
	return pts, nil
}

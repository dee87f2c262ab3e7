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
	"slices"
	"testing"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

func TestSceneLayerOrder(t *testing.T) {
	cases := []struct {
		layers []LayerKind
		want   []LayerKind
	}{
		{nil, []LayerKind{LayerLanes, LayerHuman, LayerMachine}},
		{[]LayerKind{LayerMachine, LayerLanes}, []LayerKind{LayerMachine, LayerLanes}},
		{[]LayerKind{}, []LayerKind{}},
	}
	for _, tc := range cases {
		r := newTestRenderer(t, newFixtureKernel(), &Options{Layers: tc.layers})
		s := r.Scene([]Orientation{{X: 1, Y: 2}}, []Orientation{{X: 3, Y: 4}, {X: 5, Y: 6}})

		var got []LayerKind
		for _, l := range s.Layers {
			got = append(got, l.Kind)
		}
		if !slices.Equal(got, tc.want) {
			t.Errorf("layers %v, want %v", got, tc.want)
		}
	}
}

func TestSceneContents(t *testing.T) {
	r := newTestRenderer(t, newFixtureKernel(), nil)
	human := []Orientation{{X: 1, Y: 2}}
	machine := []Orientation{{X: 3, Y: 4}, {X: 5, Y: 6}}
	s := r.Scene(human, machine)

	if s.Width != 100 || s.Height != 50 {
		t.Errorf("scene is %dx%d", s.Width, s.Height)
	}
	lanes := s.Layer(LayerLanes)
	if lanes == nil || len(lanes.Primitives) != 2 {
		t.Fatal("wrong number of lane primitives")
	}
	for _, p := range lanes.Primitives {
		if p.Kind != LineStrip || p.Color != DefaultLaneColor {
			t.Errorf("unexpected lane primitive %+v", p)
		}
	}
	if l := s.Layer(LayerHuman); l == nil || len(l.Primitives) != 1 || l.Primitives[0].Color != DefaultHumanColor {
		t.Error("wrong human layer")
	}
	if l := s.Layer(LayerMachine); l == nil || len(l.Primitives) != 2 || l.Primitives[1].Color != DefaultMachineColor {
		t.Error("wrong machine layer")
	}

	// a fresh scene is built for every call
	s2 := r.Scene(nil, nil)
	if len(s2.Layer(LayerHuman).Primitives) != 0 || len(s2.Layer(LayerMachine).Primitives) != 0 {
		t.Error("vehicles carried over between scenes")
	}
}

func TestPrimitivePath(t *testing.T) {
	pts := []vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}

	var cmds []path.Command
	for cmd := range (Primitive{Kind: Polygon, Points: pts}).Path() {
		cmds = append(cmds, cmd)
	}
	want := []path.Command{path.CmdMoveTo, path.CmdLineTo, path.CmdLineTo, path.CmdClose}
	if !slices.Equal(cmds, want) {
		t.Errorf("polygon path %v, want %v", cmds, want)
	}

	cmds = cmds[:0]
	for cmd := range (Primitive{Kind: LineStrip, Points: pts}).Path() {
		cmds = append(cmds, cmd)
	}
	if !slices.Equal(cmds, want[:3]) {
		t.Errorf("line strip path %v, want %v", cmds, want[:3])
	}
}

func TestParseLayerKind(t *testing.T) {
	for _, k := range DefaultLayers {
		got, err := ParseLayerKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseLayerKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseLayerKind("trucks"); err == nil {
		t.Error("unknown layer accepted")
	}
}

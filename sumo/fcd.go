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
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrEmptyNetwork is returned by [ReadNet] for files without lanes.
	ErrEmptyNetwork = errors.New("sumo: network has no lanes")

	// ErrUnknownLane is returned for lane IDs not in the network.
	ErrUnknownLane = errors.New("sumo: unknown lane")
)

// Vehicle is the state of one vehicle in one time step of a trace.
type Vehicle struct {
	ID    string  `xml:"id,attr"`
	Type  string  `xml:"type,attr"`
	X     float64 `xml:"x,attr"`
	Y     float64 `xml:"y,attr"`
	Angle float64 `xml:"angle,attr"`
	Speed float64 `xml:"speed,attr"`
	Lane  string  `xml:"lane,attr"`
}

// Step is one time step of a trace.
type Step struct {
	// Time is the simulation time in seconds.
	Time     float64   `xml:"time,attr"`
	Vehicles []Vehicle `xml:"vehicle"`
}

// Millis returns the time of the step in whole milliseconds.
func (s *Step) Millis() int {
	return int(math.Round(s.Time * 1000))
}

// Trace is the contents of a floating car data (FCD) export.
type Trace struct {
	Steps []Step
}

// ReadFCD reads a trace written by "sumo --fcd-output".  The file is read
// as a stream, one time step at a time.
func ReadFCD(r io.Reader) (*Trace, error) {
	dec := xml.NewDecoder(r)
	trace := &Trace{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("sumo: reading trace: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "timestep" {
			continue
		}
		var step Step
		if err := dec.DecodeElement(&step, &start); err != nil {
			return nil, fmt.Errorf("sumo: reading trace: %w", err)
		}
		if n := len(trace.Steps); n > 0 && step.Time < trace.Steps[n-1].Time {
			return nil, fmt.Errorf("sumo: time step %g after %g", step.Time, trace.Steps[n-1].Time)
		}
		trace.Steps = append(trace.Steps, step)
	}
	return trace, nil
}

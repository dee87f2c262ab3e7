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
)

var (
	// ErrClosed is returned by every method called after Close.
	ErrClosed = errors.New("roadview: renderer is closed")

	// ErrWindowClosed is returned by Render once the viewer has closed the
	// window.
	ErrWindowClosed = errors.New("roadview: window closed")

	// ErrNoLanes means the kernel reported no lane geometry.
	ErrNoLanes = errors.New("roadview: no lane geometry")

	// ErrDegenerateBounds means the lane bounding box is too small in one
	// direction to fit into a canvas.
	ErrDegenerateBounds = errors.New("roadview: degenerate bounding box")

	errNilKernel = errors.New("no simulation kernel")
)

// SetupError is returned by [New] when the renderer cannot be constructed.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("roadview: setup (%s): %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// IOError reports a failure to persist a rendered frame.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("roadview: saving frame: %v", e.Err)
	}
	return fmt.Sprintf("roadview: saving frame %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

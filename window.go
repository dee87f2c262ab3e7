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

import "image"

// Window shows rendered frames to a viewer.
type Window interface {
	// PollEvents processes pending input.  Once the viewer has closed
	// the window it returns [ErrWindowClosed].
	PollEvents() error

	// Present shows the most recent frame.  img is only valid during the
	// call.
	Present(img image.Image) error

	// Close releases the resources held by the window.
	Close() error
}

// WindowFactory opens a window for frames of the given size.
type WindowFactory func(width, height int) (Window, error)

// Headless is a [WindowFactory] for windows which display nothing.
func Headless(width, height int) (Window, error) {
	return headless{}, nil
}

type headless struct{}

func (headless) PollEvents() error         { return nil }
func (headless) Present(image.Image) error { return nil }
func (headless) Close() error              { return nil }

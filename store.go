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
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// FrameStore persists rendered frames.
type FrameStore interface {
	// SaveFrame stores img under the simulation time t.  Saving a second
	// frame for the same time replaces the first.
	SaveFrame(t int, img image.Image) error
}

// DirStore writes every frame as a PNG file into a directory.  Frames are
// named after the simulation time, zero padded to six digits.
type DirStore struct {
	Dir string
}

// Path returns the file name used for time t.
func (s DirStore) Path(t int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("frame%06d.png", t))
}

// SaveFrame implements [FrameStore].  The directory must exist.
func (s DirStore) SaveFrame(t int, img image.Image) (err error) {
	name := s.Path(t)
	f, err := os.Create(name)
	if err != nil {
		return &IOError{Path: name, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Path: name, Err: cerr}
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return &IOError{Path: name, Err: err}
	}
	return nil
}

// asIOError makes sure that store errors reach the caller as *IOError.
func asIOError(err error) error {
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Err: err}
}

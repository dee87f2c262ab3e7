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
	"encoding/hex"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the contents of a roadview configuration file.
//
// Example:
//
//	[render]
//	pixels_per_meter = 2
//	layers = ["lanes", "machine", "human"]
//	show_clock = true
//
//	[colors]
//	background = "#101010"
//
//	[output]
//	save_frames = true
//	dir = "frames"
//
//	[classify]
//	machine_prefixes = ["rl", "av"]
type Config struct {
	Render   RenderConfig   `toml:"render"`
	Colors   ColorConfig    `toml:"colors"`
	Output   OutputConfig   `toml:"output"`
	Classify ClassifyConfig `toml:"classify"`
}

// RenderConfig holds the drawing parameters.  Zero values select the
// defaults of [Options].
type RenderConfig struct {
	Margin         float64  `toml:"margin"`
	PixelsPerMeter float64  `toml:"pixels_per_meter"`
	MarkerSize     float64  `toml:"marker_size"`
	LineWidth      float64  `toml:"line_width"`
	Marker         string   `toml:"marker"`
	Layers         []string `toml:"layers"`
	ShowClock      bool     `toml:"show_clock"`
	Antialias      bool     `toml:"antialias"`
}

// ColorConfig holds colors in hexadecimal notation, "#rrggbb" or "#rgb".
type ColorConfig struct {
	Lane       string `toml:"lane"`
	Human      string `toml:"human"`
	Machine    string `toml:"machine"`
	Background string `toml:"background"`
}

// OutputConfig controls frame saving.
type OutputConfig struct {
	SaveFrames bool   `toml:"save_frames"`
	Dir        string `toml:"dir"`
}

// ClassifyConfig tells apart automated from human driven vehicles, for
// kernels which do not do this themselves.
type ClassifyConfig struct {
	MachinePrefixes []string `toml:"machine_prefixes"`
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a configuration in TOML format.  Unknown keys are
// an error.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("roadview: unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// Options converts the configuration into renderer options.
func (c *Config) Options() (*Options, error) {
	opt := &Options{
		SaveFrames:     c.Output.SaveFrames,
		SaveDir:        c.Output.Dir,
		Margin:         c.Render.Margin,
		PixelsPerMeter: c.Render.PixelsPerMeter,
		MarkerSize:     c.Render.MarkerSize,
		LineWidth:      c.Render.LineWidth,
		ShowClock:      c.Render.ShowClock,
		Antialias:      c.Render.Antialias,
	}

	var err error
	opt.Marker, err = ParseMarkerStyle(c.Render.Marker)
	if err != nil {
		return nil, err
	}
	if c.Render.Layers != nil {
		opt.Layers = make([]LayerKind, len(c.Render.Layers))
		for i, name := range c.Render.Layers {
			opt.Layers[i], err = ParseLayerKind(name)
			if err != nil {
				return nil, err
			}
		}
	}

	colors := []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"lane", c.Colors.Lane, &opt.LaneColor},
		{"human", c.Colors.Human, &opt.HumanColor},
		{"machine", c.Colors.Machine, &opt.MachineColor},
		{"background", c.Colors.Background, &opt.Background},
	}
	for _, col := range colors {
		if col.hex == "" {
			continue
		}
		*col.dst, err = ParseColor(col.hex)
		if err != nil {
			return nil, fmt.Errorf("%s color: %w", col.name, err)
		}
	}
	return opt, nil
}

// ParseColor decodes an opaque color given as "#rrggbb" or "#rgb".  The
// leading hash is optional.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("roadview: invalid color %q", s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("roadview: invalid color %q", s)
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 255}, nil
}

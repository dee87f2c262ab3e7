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
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"testing"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
)

// fakeKernel serves a fixed road network.
type fakeKernel struct {
	ids    []string
	shapes map[string][]vec.Vec2
	time   int
	err    error
}

func newFixtureKernel() *fakeKernel {
	k := &fakeKernel{shapes: map[string][]vec.Vec2{}}
	for _, lane := range fixtureLanes() {
		k.ids = append(k.ids, lane.ID)
		k.shapes[lane.ID] = lane.Points
	}
	return k
}

func (k *fakeKernel) LaneIDs() ([]string, error) {
	if k.err != nil {
		return nil, k.err
	}
	return k.ids, nil
}

func (k *fakeKernel) LaneShape(id string) ([]vec.Vec2, error) {
	shape, ok := k.shapes[id]
	if !ok {
		return nil, errors.New("no such lane")
	}
	return shape, nil
}

func (k *fakeKernel) CurrentTime() (int, error) {
	return k.time, nil
}

// countingStore records the times of all saved frames.
type countingStore struct {
	times []int
	err   error
}

func (s *countingStore) SaveFrame(t int, img image.Image) error {
	s.times = append(s.times, t)
	return s.err
}

// fakeWindow counts presented frames and can simulate the viewer closing
// the window.
type fakeWindow struct {
	userClosed bool
	presented  int
	closed     int
}

func (w *fakeWindow) PollEvents() error {
	if w.userClosed {
		return ErrWindowClosed
	}
	return nil
}

func (w *fakeWindow) Present(img image.Image) error {
	w.presented++
	return nil
}

func (w *fakeWindow) Close() error {
	w.closed++
	return nil
}

func newTestRenderer(t *testing.T, k Kernel, opt *Options) *Renderer {
	t.Helper()
	r, err := New(k, opt)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestFrameShape(t *testing.T) {
	r := newTestRenderer(t, newFixtureKernel(), nil)

	if w, h := r.Size(); w != 100 || h != 50 {
		t.Fatalf("canvas is %dx%d, want 100x50", w, h)
	}

	many := make([]Orientation, 50)
	for i := range many {
		many[i] = Orientation{X: float64(2 * i), Y: 25, Angle: float64(7 * i)}
	}
	cases := []struct {
		name           string
		human, machine []Orientation
	}{
		{"empty", nil, nil},
		{"human", many, nil},
		{"machine", nil, many[:3]},
		{"both", many, many},
		{"outside", []Orientation{{X: -500, Y: 900}}, nil},
	}
	for _, tc := range cases {
		frame, err := r.Render(tc.human, tc.machine)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if frame.Width != 100 || frame.Height != 50 || len(frame.Pix) != 100*50*3 {
			t.Errorf("%s: frame is %dx%d with %d bytes",
				tc.name, frame.Width, frame.Height, len(frame.Pix))
		}
	}
}

func TestLanesTransformedOnce(t *testing.T) {
	k := newFixtureKernel()
	orig := slices.Clone(k.shapes["south"])
	r := newTestRenderer(t, k, nil)

	before := r.Lanes()
	tf := r.Transform()
	if got, want := before[0].Points[0], tf.Apply(orig[0]); got != want {
		t.Errorf("first lane point is %v, want %v", got, want)
	}

	for range 3 {
		if _, err := r.Render(nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	after := r.Lanes()
	for i := range before {
		if !slices.Equal(before[i].Points, after[i].Points) {
			t.Errorf("lane %q changed from %v to %v", before[i].ID, before[i].Points, after[i].Points)
		}
	}
	if !slices.Equal(k.shapes["south"], orig) {
		t.Error("kernel data was modified")
	}
}

func TestSetupErrors(t *testing.T) {
	empty := &fakeKernel{}
	pointless := &fakeKernel{ids: []string{"a"}, shapes: map[string][]vec.Vec2{"a": nil}}
	flat := &fakeKernel{ids: []string{"a"}, shapes: map[string][]vec.Vec2{"a": {{X: 0, Y: 7}, {X: 40, Y: 7}}}}
	broken := &fakeKernel{err: errors.New("connection lost")}
	failWindow := func(w, h int) (Window, error) { return nil, errors.New("no display") }

	cases := []struct {
		name string
		k    Kernel
		opt  *Options
		want error
	}{
		{"no lanes", empty, nil, ErrNoLanes},
		{"no points", pointless, nil, ErrNoLanes},
		{"flat", flat, nil, ErrDegenerateBounds},
		{"kernel", broken, nil, broken.err},
		{"window", newFixtureKernel(), &Options{OpenWindow: failWindow}, nil},
		{"save without dir", newFixtureKernel(), &Options{SaveFrames: true}, nil},
		{"nil kernel", nil, nil, errNilKernel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := New(tc.k, tc.opt)
			if err == nil {
				r.Close()
				t.Fatal("New succeeded")
			}
			var setupErr *SetupError
			if !errors.As(err, &setupErr) {
				t.Errorf("error %v is not a SetupError", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("error %v does not wrap %v", err, tc.want)
			}
		})
	}
}

func TestClose(t *testing.T) {
	win := &fakeWindow{}
	r, err := New(newFixtureKernel(), &Options{
		OpenWindow: func(w, h int) (Window, error) { return win, nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if win.presented != 1 {
		t.Errorf("%d frames presented, want 1", win.presented)
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if win.closed != 1 {
		t.Errorf("window closed %d times", win.closed)
	}
	if _, err := r.Render(nil, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Render after Close returned %v", err)
	}
	if err := r.WritePDF(filepath.Join(t.TempDir(), "x.pdf"), nil, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("WritePDF after Close returned %v", err)
	}
	if err := r.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close returned %v", err)
	}
	if win.closed != 1 {
		t.Errorf("window closed %d times", win.closed)
	}
}

func TestWindowClosedByViewer(t *testing.T) {
	win := &fakeWindow{}
	r := newTestRenderer(t, newFixtureKernel(), &Options{
		OpenWindow: func(w, h int) (Window, error) { return win, nil },
	})
	win.userClosed = true
	if _, err := r.Render(nil, nil); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("got %v, want ErrWindowClosed", err)
	}
	if win.presented != 0 {
		t.Error("frame presented to a closed window")
	}
}

func TestNoWritesWhenSavingDisabled(t *testing.T) {
	dir := t.TempDir()
	store := &countingStore{}
	r := newTestRenderer(t, newFixtureKernel(), &Options{SaveDir: dir, Store: store})
	for range 5 {
		if _, err := r.Render([]Orientation{{X: 10, Y: 10}}, nil); err != nil {
			t.Fatal(err)
		}
	}
	if len(store.times) != 0 {
		t.Errorf("store called %d times", len(store.times))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("%d files written", len(entries))
	}
}

func TestSaveFramesKeyedByTime(t *testing.T) {
	dir := t.TempDir()
	k := newFixtureKernel()
	r := newTestRenderer(t, k, &Options{SaveFrames: true, SaveDir: dir})

	for _, now := range []int{7, 7, 12} {
		k.time = now
		if _, err := r.Render(nil, []Orientation{{X: 50, Y: 25}}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"frame000007.png", "frame000012.png"}
	if !slices.Equal(names, want) {
		t.Fatalf("files %v, want %v", names, want)
	}

	f, err := os.Open(filepath.Join(dir, want[1]))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("saved image is %dx%d", b.Dx(), b.Dy())
	}
}

func TestSaveFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")
	r := newTestRenderer(t, newFixtureKernel(), &Options{SaveFrames: true, SaveDir: missing})

	frame, err := r.Render(nil, nil)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("got error %v, want an IOError", err)
	}
	if frame != nil {
		t.Error("frame returned despite the failure")
	}
	if filepath.Dir(ioErr.Path) != missing {
		t.Errorf("error names %q", ioErr.Path)
	}

	store := &countingStore{err: errors.New("disk full")}
	r = newTestRenderer(t, newFixtureKernel(), &Options{SaveFrames: true, Store: store})
	if _, err := r.Render(nil, nil); !errors.As(err, &ioErr) || !errors.Is(err, store.err) {
		t.Errorf("got error %v, want an IOError wrapping %v", err, store.err)
	}
}

// TestVehicleColors renders large markers and inspects the pixel at the
// centroid of the triangle.
func TestVehicleColors(t *testing.T) {
	here := []Orientation{{X: 50, Y: 25}}

	cases := []struct {
		name           string
		layers         []LayerKind
		human, machine []Orientation
		want           [3]byte
	}{
		{"human", nil, here, nil, [3]byte{0, 139, 139}},
		{"machine", nil, nil, here, [3]byte{255, 20, 147}},
		{"machine on top", nil, here, here, [3]byte{255, 20, 147}},
		{"human on top", []LayerKind{LayerLanes, LayerMachine, LayerHuman}, here, here, [3]byte{0, 139, 139}},
		{"hidden", []LayerKind{LayerLanes}, here, here, [3]byte{0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRenderer(t, newFixtureKernel(), &Options{MarkerSize: 20, Layers: tc.layers})
			frame, err := r.Render(tc.human, tc.machine)
			if err != nil {
				t.Fatal(err)
			}
			// the centroid is at device pixel (49, 12)
			c := frame.RGBAAt(49, frame.Height-1-12)
			if got := [3]byte{c.R, c.G, c.B}; got != tc.want {
				t.Errorf("pixel color %v, want %v", got, tc.want)
			}
			if c := frame.RGBAAt(0, 0); c.R != 0 || c.G != 0 || c.B != 0 {
				t.Errorf("corner pixel is %v, want black", c)
			}
		})
	}
}

func TestShowClock(t *testing.T) {
	k := newFixtureKernel()
	k.time = 42
	r := newTestRenderer(t, k, &Options{ShowClock: true})
	frame, err := r.Render(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	lit := 0
	for y := 2; y < 15; y++ {
		for x := 2; x < 40; x++ {
			if c := frame.RGBAAt(x, y); c.R != 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("no clock label visible")
	}
}

func TestWritePDF(t *testing.T) {
	r := newTestRenderer(t, newFixtureKernel(), nil)
	fname := filepath.Join(t.TempDir(), "network.pdf")
	err := r.WritePDF(fname, []Orientation{{X: 20, Y: 20, Angle: 45}}, []Orientation{{X: 80, Y: 30}})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		t.Error("output is not a PDF file")
	}
}

// TestExactCategoryColors checks that default-size markers and lanes are
// drawn in the exact configured colors, so that frames can be segmented
// by color.
func TestExactCategoryColors(t *testing.T) {
	human := []Orientation{{X: 30, Y: 25}}
	machine := []Orientation{{X: 70, Y: 25, Angle: 90}}

	count := func(frame *Frame) map[color.RGBA]int {
		res := map[color.RGBA]int{}
		for y := range frame.Height {
			for x := range frame.Width {
				res[frame.RGBAAt(x, y)]++
			}
		}
		return res
	}

	r := newTestRenderer(t, newFixtureKernel(), nil)
	frame, err := r.Render(human, machine)
	if err != nil {
		t.Fatal(err)
	}
	colors := count(frame)
	for _, c := range []color.RGBA{DefaultLaneColor, DefaultHumanColor, DefaultMachineColor} {
		if colors[c] == 0 {
			t.Errorf("no pixel has color %v", c)
		}
	}
	if len(colors) != 4 {
		t.Errorf("%d distinct colors in an aliased frame, want 4", len(colors))
	}

	r = newTestRenderer(t, newFixtureKernel(), &Options{Antialias: true})
	frame, err = r.Render(human, machine)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(count(frame)); n <= 4 {
		t.Errorf("%d distinct colors in an anti-aliased frame", n)
	}
}

// TestPDFColors checks that the vehicle categories keep their colors in
// the vector output.
func TestPDFColors(t *testing.T) {
	r := newTestRenderer(t, newFixtureKernel(), nil)
	scene := r.Scene([]Orientation{{X: 20, Y: 20}}, []Orientation{{X: 80, Y: 30}})

	var buf bytes.Buffer
	err := scene.WritePDFTo(&buf, r.style, &pdf.WriterOptions{HumanReadable: true})
	if err != nil {
		t.Fatal(err)
	}

	var fills [][3]float64
	rg := regexp.MustCompile(`([0-9.]+) ([0-9.]+) ([0-9.]+) rg`)
	for _, m := range rg.FindAllStringSubmatch(buf.String(), -1) {
		var c [3]float64
		for i := range c {
			c[i], err = strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				t.Fatal(err)
			}
		}
		fills = append(fills, c)
	}

	found := func(want color.RGBA) bool {
		for _, c := range fills {
			if math.Abs(c[0]-float64(want.R)/255) < 1e-3 &&
				math.Abs(c[1]-float64(want.G)/255) < 1e-3 &&
				math.Abs(c[2]-float64(want.B)/255) < 1e-3 {
				return true
			}
		}
		return false
	}
	for _, c := range []color.RGBA{DefaultBackground, DefaultHumanColor, DefaultMachineColor} {
		if !found(c) {
			t.Errorf("fill color %v not used, fills are %v", c, fills)
		}
	}
}

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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/roadview"
	"seehuhn.de/go/roadview/termview"
	"seehuhn.de/go/roadview/wsview"
)

// viewOpts holds the flags shared by the commands which render a
// sequence of frames.
type viewOpts struct {
	config  string        // TOML configuration file
	out     string        // directory for PNG frames
	serve   string        // address of the web viewer
	term    bool          // show frames in the terminal
	columns int           // terminal width in characters
	delay   time.Duration // minimum time between frames

	stdout io.Writer
}

func (v *viewOpts) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&v.config, "config", "c", "", "configuration file (TOML)")
	f.StringVarP(&v.out, "out", "o", "", "write frames as PNG files to this directory")
	f.StringVar(&v.serve, "serve", "", "serve frames to web browsers on this address, e.g. :8080")
	f.BoolVar(&v.term, "term", false, "show frames in the terminal")
	f.IntVar(&v.columns, "columns", termview.DefaultColumns, "terminal width used by --term")
	f.DurationVar(&v.delay, "delay", 0, "minimum time between frames")
}

func (v *viewOpts) validate() error {
	if v.serve != "" && v.term {
		return errors.New("--serve and --term cannot be combined")
	}
	return nil
}

// loadConfig reads the configuration file, if one was given.
func loadConfig(path string) (*roadview.Config, error) {
	if path == "" {
		return &roadview.Config{}, nil
	}
	return roadview.LoadConfig(path)
}

// rendererOptions converts the configuration and the command line flags
// into renderer options.
func rendererOptions(ctx context.Context, cfg *roadview.Config, out string) (*roadview.Options, error) {
	opt, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if out != "" {
		opt.SaveFrames = true
		opt.SaveDir = out
	}
	if opt.SaveFrames && opt.SaveDir != "" {
		if err := os.MkdirAll(opt.SaveDir, 0o755); err != nil {
			return nil, err
		}
	}
	opt.Logger = loggerFromContext(ctx)
	return opt, nil
}

// stepFunc returns the vehicles of the next time step, or ok == false
// when there are no more steps.
type stepFunc func() (human, machine []roadview.Orientation, ok bool)

// runView renders the frames produced by next.  If a web viewer was
// requested, the HTTP server runs alongside the render loop and is shut
// down once rendering ends.
func runView(ctx context.Context, k roadview.Kernel, opt *roadview.Options, v *viewOpts, next stepFunc) error {
	logger := loggerFromContext(ctx)
	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServing := context.WithCancel(gctx)
	defer stopServing()

	switch {
	case v.serve != "":
		srv := wsview.New(logger)
		opt.OpenWindow = srv.Factory()
		g.Go(func() error {
			err := srv.ListenAndServe(serveCtx, v.serve)
			if errors.Is(err, context.Canceled) && ctx.Err() == nil {
				return nil
			}
			return err
		})
	case v.term:
		opt.OpenWindow = termview.Factory(v.stdout, v.columns)
	}

	g.Go(func() error {
		defer stopServing()
		return renderLoop(gctx, k, opt, v.delay, next)
	})
	return g.Wait()
}

func renderLoop(ctx context.Context, k roadview.Kernel, opt *roadview.Options, delay time.Duration, next stepFunc) (err error) {
	logger := loggerFromContext(ctx)

	r, err := roadview.New(k, opt)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); err == nil {
			err = cerr
		}
	}()

	var tick <-chan time.Time
	if delay > 0 {
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		tick = ticker.C
	}

	p := newProgress(logger)
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		human, machine, ok := next()
		if !ok {
			break
		}
		if _, err := r.Render(human, machine); errors.Is(err, roadview.ErrWindowClosed) {
			logger.Info("window closed by the viewer")
			break
		} else if err != nil {
			return err
		}
		frames++
		logger.Debug("frame", "n", frames, "human", len(human), "machine", len(machine))

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
	p.done(fmt.Sprintf("Rendered %d frames", frames))
	return nil
}

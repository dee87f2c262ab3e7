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
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"seehuhn.de/go/roadview"
	"seehuhn.de/go/roadview/sumo"
)

// snapshotOpts holds the command-line flags for the snapshot command.
type snapshotOpts struct {
	config       string // TOML configuration file
	net          string // SUMO network file
	fcd          string // optional FCD trace
	step         int    // time step of the trace to show
	png          string // PNG output file
	pdf          string // PDF output file
	skipInternal bool
}

func newSnapshotCmd() *cobra.Command {
	var opts snapshotOpts

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a single picture of a network",
		Long: `Snapshot draws the lanes of a SUMO network, optionally together with
the vehicles of one time step of an FCD trace, and writes the picture as
PNG or PDF.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.png == "" && opts.pdf == "" {
				return errors.New("at least one of --png and --pdf is required")
			}
			if opts.step < 0 {
				return fmt.Errorf("invalid time step %d", opts.step)
			}
			return runSnapshot(cmd.Context(), &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.config, "config", "c", "", "configuration file (TOML)")
	f.StringVar(&opts.net, "net", "", "SUMO network file (required)")
	f.StringVar(&opts.fcd, "fcd", "", "SUMO FCD trace to take vehicles from")
	f.IntVar(&opts.step, "step", 0, "index of the time step taken from --fcd")
	f.StringVar(&opts.png, "png", "", "write the picture as PNG to this file")
	f.StringVar(&opts.pdf, "pdf", "", "write the picture as PDF to this file")
	f.BoolVar(&opts.skipInternal, "skip-internal", false, "do not draw lanes inside junctions")
	cmd.MarkFlagRequired("net")
	return cmd
}

func runSnapshot(ctx context.Context, opts *snapshotOpts) (err error) {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	opt, err := rendererOptions(ctx, cfg, "")
	if err != nil {
		return err
	}
	opt.SaveFrames = false

	net, err := readNet(opts.net, opts.skipInternal)
	if err != nil {
		return err
	}
	trace := &sumo.Trace{}
	if opts.fcd != "" {
		trace, err = readFCD(opts.fcd)
		if err != nil {
			return err
		}
	}
	replay := sumo.NewReplay(net, trace, sumo.Classifier{MachinePrefixes: cfg.Classify.MachinePrefixes})

	var human, machine []roadview.Orientation
	if opts.fcd != "" {
		if opts.step >= replay.Len() {
			return fmt.Errorf("%s: time step %d out of range, the trace has %d steps",
				opts.fcd, opts.step, replay.Len())
		}
		for range opts.step + 1 {
			human, machine, _ = replay.Next()
		}
	}

	r, err := roadview.New(replay, opt)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()

	if opts.png != "" {
		frame, err := r.Render(human, machine)
		if err != nil {
			return err
		}
		if err := writePNG(opts.png, frame); err != nil {
			return err
		}
		logger.Info("wrote PNG", "file", opts.png, "width", frame.Width, "height", frame.Height)
	}
	if opts.pdf != "" {
		if err := r.WritePDF(opts.pdf, human, machine); err != nil {
			return err
		}
		logger.Info("wrote PDF", "file", opts.pdf)
	}
	return nil
}

func writePNG(fname string, frame *roadview.Frame) (err error) {
	fd, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, fd.Close())
	}()
	return png.Encode(fd, frame)
}

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
	"os"

	"github.com/spf13/cobra"

	"seehuhn.de/go/roadview/sumo"
)

// replayOpts holds the command-line flags for the replay command.
type replayOpts struct {
	viewOpts
	net          string // SUMO network file
	fcd          string // SUMO floating car data file
	skipInternal bool   // leave out junction-internal lanes
}

func newReplayCmd() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Render a recorded SUMO simulation",
		Long: `Replay reads the lanes of a SUMO network (.net.xml) and the vehicle
positions of a floating car data trace (fcd-output), and renders one
frame per time step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			opts.stdout = cmd.OutOrStdout()
			return runReplay(cmd.Context(), &opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.net, "net", "", "SUMO network file (required)")
	cmd.Flags().StringVar(&opts.fcd, "fcd", "", "SUMO FCD trace (required)")
	cmd.Flags().BoolVar(&opts.skipInternal, "skip-internal", false, "do not draw lanes inside junctions")
	cmd.MarkFlagRequired("net")
	cmd.MarkFlagRequired("fcd")
	return cmd
}

func runReplay(ctx context.Context, opts *replayOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	opt, err := rendererOptions(ctx, cfg, opts.out)
	if err != nil {
		return err
	}

	p := newProgress(logger)
	net, err := readNet(opts.net, opts.skipInternal)
	if err != nil {
		return err
	}
	trace, err := readFCD(opts.fcd)
	if err != nil {
		return err
	}
	p.done("Loaded simulation data")
	logger.Debug("replay input", "lanes", len(net.Lanes), "steps", len(trace.Steps))

	replay := sumo.NewReplay(net, trace, sumo.Classifier{MachinePrefixes: cfg.Classify.MachinePrefixes})
	return runView(ctx, replay, opt, &opts.viewOpts, replay.Next)
}

func readNet(fname string, skipInternal bool) (_ *sumo.Network, err error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, fd.Close())
	}()
	return sumo.ReadNet(fd, &sumo.NetOptions{SkipInternal: skipInternal})
}

func readFCD(fname string) (_ *sumo.Trace, err error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, fd.Close())
	}()
	return sumo.ReadFCD(fd)
}

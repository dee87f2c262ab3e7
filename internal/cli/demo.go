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
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"seehuhn.de/go/roadview"
	"seehuhn.de/go/roadview/scenarios"
)

const (
	defaultScenario = "ring"
	defaultSteps    = 200
)

// demoOpts holds the command-line flags for the demo command.
type demoOpts struct {
	viewOpts
	scenario string // name of a built-in scenario
	steps    int    // number of frames, 0 for no limit
}

func newDemoCmd() *cobra.Command {
	opts := demoOpts{
		scenario: defaultScenario,
		steps:    defaultSteps,
	}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render a built-in scenario",
		Long: fmt.Sprintf(`Demo runs a small built-in traffic scenario and renders it.
Available scenarios: %s.`, strings.Join(scenarios.Names(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if opts.steps < 0 {
				return fmt.Errorf("invalid number of steps %d", opts.steps)
			}
			if (opts.serve != "" || opts.term) && !cmd.Flags().Changed("delay") {
				opts.delay = scenarios.StepMillis * time.Millisecond
			}
			opts.stdout = cmd.OutOrStdout()
			return runDemo(cmd.Context(), &opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.scenario, "scenario", "s", opts.scenario, "scenario to run")
	cmd.Flags().IntVarP(&opts.steps, "steps", "n", opts.steps, "number of time steps to render, 0 to run until interrupted")
	return cmd
}

func runDemo(ctx context.Context, opts *demoOpts) error {
	sim, err := scenarios.New(opts.scenario)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	opt, err := rendererOptions(ctx, cfg, opts.out)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Info("starting scenario", "name", sim.Name, "vehicles", len(sim.Vehicles))

	step := 0
	next := func() (human, machine []roadview.Orientation, ok bool) {
		if opts.steps > 0 && step >= opts.steps {
			return nil, nil, false
		}
		step++
		human, machine = sim.Step()
		return human, machine, true
	}
	return runView(ctx, sim, opt, &opts.viewOpts, next)
}

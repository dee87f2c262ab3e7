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

// Package cli implements the roadview command-line interface.
//
// # Commands
//
//   - replay: render a recorded SUMO run (network plus FCD trace)
//   - demo: render one of the built-in scenarios
//   - snapshot: write a single picture of a network as PNG or PDF
//   - version: print version information
//
// Frames can be written to a directory, shown in the terminal, or served
// to web browsers.  All commands support --verbose (-v) for debug-level
// logging; the logger is passed to the commands through their context.
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // semantic version
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version and the
// version command.  The values are normally injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the roadview CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "roadview",
		Short:         "roadview draws traffic simulations from above",
		Long:          `roadview renders the lanes and vehicles of a traffic simulation as a top-down picture, one frame per time step.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(versionString())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newReplayCmd())
	root.AddCommand(newDemoCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func versionString() string {
	return fmt.Sprintf("roadview %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionString())
		},
	}
}

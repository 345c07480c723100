// Package check implements the one-shot filesystem check command.
package check

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"diskwatch/internal/conf"
	"diskwatch/internal/fsstat"
)

// samplePause is how long the command waits between the two refresh cycles
// it needs to report rates instead of unknowns.
const samplePause = 1100 * time.Millisecond

// Command creates the check command.
func Command(settings *conf.Settings) *cobra.Command {
	var withRates bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Probe filesystems once and print the result as JSON",
		Long: "Resolve each path to its filesystem, probe usage and activity and print " +
			"the snapshots to stdout. Without arguments the configured checks are probed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				for _, cs := range settings.Monitor.Checks {
					paths = append(paths, cs.Path)
				}
			}
			return run(cmd, paths, withRates)
		},
	}

	cmd.Flags().BoolVar(&withRates, "rates", false,
		"Sample twice with a pause so I/O rates are known")
	return cmd
}

func run(cmd *cobra.Command, paths []string, withRates bool) error {
	cache := fsstat.NewActivityCache()
	checks := make([]*fsstat.Check, 0, len(paths))
	for _, path := range paths {
		checks = append(checks, fsstat.NewCheck(path, cache))
	}

	var failures int
	refresh := func() {
		for _, check := range checks {
			if _, err := check.Refresh(); err != nil {
				failures++
				fmt.Fprintf(cmd.ErrOrStderr(), "check %s: %v\n", check.Path(), err)
			}
		}
	}

	refresh()
	if withRates {
		// A second sample outside the counter cache window turns the
		// cumulative counters into rates.
		time.Sleep(samplePause)
		failures = 0
		refresh()
	}

	snapshots := make([]fsstat.FilesystemInfo, 0, len(checks))
	for _, check := range checks {
		snapshots = append(snapshots, check.Info())
	}

	out, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if failures > 0 {
		return fmt.Errorf("%d of %d checks failed", failures, len(checks))
	}
	return nil
}

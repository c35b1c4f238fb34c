// SPDX-License-Identifier: MIT
package syncer

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncer/internal/cliio"
	"github.com/skaphos/syncer/internal/config"
	"github.com/skaphos/syncer/internal/engine"
	"github.com/skaphos/syncer/internal/termstyle"
)

var (
	flagFix bool
	flagYes bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Audit the configuration against disk and remotes",
	Long: "doctor reports moved, missing and untracked repositories, origins that disagree with the configured " +
		"owner and host, and default branches still named master. With --fix it updates the configuration " +
		"and renames master to main where that is safe.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		setColorOutputMode(cmd, flagFormat)
		eng := newEngine(loaded.cfg)
		opts := engine.DoctorOptions{Concurrency: flagConcurrency}

		report, err := eng.Doctor(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if flagFix && hasFixable(report) {
			confirmed := flagYes
			if !confirmed {
				if err := writeDoctor(cmd, report); err != nil {
					return err
				}
				confirmed, err = cliio.Confirm(cmd.ErrOrStderr(), cmd.InOrStdin(), fmt.Sprintf("Apply %d fix(es)?", countFixable(report)))
				if err != nil {
					return err
				}
				if !confirmed {
					infof(cmd, "doctor fixes cancelled")
					raiseExitCode(1)
					return nil
				}
			}
			opts.Fix = true
			if report, err = eng.Doctor(cmd.Context(), opts); err != nil {
				return err
			}
			if err := applyMutations(cmd, loaded, report.Mutations); err != nil {
				return err
			}
		}

		if err := writeDoctor(cmd, report); err != nil {
			return err
		}
		if n := report.Unresolved(); n > 0 {
			infof(cmd, "doctor found %d problem(s)", n)
			raiseExitCode(1)
		} else {
			infof(cmd, "doctor found no unresolved problems")
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&flagFix, "fix", false, "update the config and rename master branches")
	doctorCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "apply fixes without confirmation")
	rootCmd.AddCommand(doctorCmd)
}

func hasFixable(report *engine.DoctorReport) bool {
	return countFixable(report) > 0
}

func countFixable(report *engine.DoctorReport) int {
	n := 0
	for _, f := range report.Findings {
		if f.Fixable && f.Skipped == "" && !f.Fixed {
			n++
		}
	}
	return n
}

// applyMutations rewrites the configuration document once with every
// proposed change.
func applyMutations(cmd *cobra.Command, loaded *loadedConfig, muts []config.Mutation) error {
	changed, err := config.Update(loaded.path, muts)
	if err != nil {
		return fmt.Errorf("update config %s: %w", loaded.path, err)
	}
	if !changed {
		return nil
	}
	config.Apply(loaded.cfg, muts)
	infof(cmd, "updated %s (%d change(s))", config.ContractHome(loaded.path), len(muts))
	return nil
}

func writeDoctor(cmd *cobra.Command, report *engine.DoctorReport) error {
	if !isTabularFormat(flagFormat) {
		return writeStructured(cmd, flagFormat, report)
	}
	if len(report.Findings) == 0 {
		return nil
	}
	err := writeDoctorTable(cmd.OutOrStdout(), report)
	logOutputWriteFailure(cmd, "doctor table", err)
	return nil
}

func writeDoctorTable(out io.Writer, report *engine.DoctorReport) error {
	rows := make([][]string, 0, len(report.Findings))
	for _, f := range report.Findings {
		rows = append(rows, []string{
			termstyle.Colorize(colorOutputEnabled, string(f.Kind), findingColor(f)),
			f.Name,
			config.ContractHome(f.Path),
			f.Detail,
			findingOutcome(f),
		})
	}
	return cliio.WriteTable(out, cliio.TableOptions{}, []string{"KIND", "NAME", "PATH", "DETAIL", "RESULT"}, rows)
}

func findingColor(f engine.Finding) string {
	switch {
	case f.Fixed:
		return termstyle.Healthy
	case f.Skipped != "":
		return termstyle.Info
	default:
		return termstyle.Warn
	}
}

func findingOutcome(f engine.Finding) string {
	switch {
	case f.Fixed && f.Rename != nil:
		if len(f.Rename.Steps) == 0 {
			return "already renamed"
		}
		return "renamed: " + strings.Join(f.Rename.Steps, ", ")
	case f.Fixed:
		return "fixed"
	case f.Rename != nil:
		return "failed: " + strings.Join(f.Rename.Steps, ", ")
	case f.Skipped != "":
		return "skipped: " + f.Skipped
	case f.Fixable:
		return "fixable with --fix"
	default:
		return ""
	}
}

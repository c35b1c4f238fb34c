// SPDX-License-Identifier: MIT
package syncer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skaphos/syncer/internal/config"
	"github.com/skaphos/syncer/internal/engine"
	"github.com/skaphos/syncer/internal/history"
	"github.com/skaphos/syncer/internal/strutil"
	"github.com/skaphos/syncer/internal/tableutil"
	"github.com/skaphos/syncer/internal/termstyle"
)

const (
	detailCellLimit    = 60
	historyLockTimeout = 5 * time.Second
)

var (
	flagDryRun bool
	flagRepos  string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Check every repository and pull or push when it is safe",
	Long: "sync fetches each configured repository, pulls when it is only behind, pushes when it is only ahead, " +
		"clones repositories that are missing, and reports everything else. Runs are appended to the history log.",
	RunE: runSync,
}

func init() {
	addSyncFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "report what would be done without pulling, pushing or cloning")
	cmd.Flags().StringVar(&flagRepos, "repos", "", "comma-separated repository names to restrict the run to")
}

func runSync(cmd *cobra.Command, _ []string) error {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setColorOutputMode(cmd, flagFormat)

	eng := newEngine(loaded.cfg)
	report, syncErr := eng.Sync(cmd.Context(), engine.SyncOptions{
		ConfigName:  loaded.name,
		DryRun:      flagDryRun,
		Concurrency: flagConcurrency,
		Repos:       strutil.SplitCSV(flagRepos),
		Detail:      flagVerbose > 0 || !isTabularFormat(flagFormat),
	})
	if report == nil {
		return syncErr
	}
	if syncErr != nil {
		// Interrupted runs still report and record what finished.
		raiseExitCode(2)
		infof(cmd, "%v", syncErr)
	}

	recordRun(cmd, report)

	if isTabularFormat(flagFormat) {
		if err := writeSyncTable(cmd.OutOrStdout(), report, flagVerbose > 0); err != nil {
			logOutputWriteFailure(cmd, "sync table", err)
		}
	} else if err := writeStructured(cmd, flagFormat, report); err != nil {
		return err
	}
	writeSyncMutations(cmd, report.Mutations)
	infof(cmd, "%s", describeSummary(report))
	if report.HasIssues() {
		raiseExitCode(1)
	}
	return nil
}

// recordRun appends the run event. A history failure never fails the run.
func recordRun(cmd *cobra.Command, report *engine.Report) {
	dir, err := history.DefaultDir()
	if err != nil {
		logger.Warn("history disabled", zap.Error(err))
		return
	}
	store := history.NewStore(dir, logger)
	// Interrupted runs are recorded too, with a short budget for the lock.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), historyLockTimeout)
	defer cancel()
	if err := store.Append(ctx, report.Event()); err != nil {
		logger.Warn("failed to record run", zap.String("path", store.Path()), zap.Error(err))
		return
	}
	debugf(cmd, "recorded run in %s", store.Path())
}

func writeSyncTable(out io.Writer, report *engine.Report, verbose bool) error {
	w := tableutil.New(out, true)
	if err := tableutil.PrintHeaders(w, false, "NAME", "STATUS", "BRANCH", "DETAIL", "PATH"); err != nil {
		return err
	}
	for _, res := range report.Results {
		detail := res.Detail
		if res.Error != "" && res.ErrorClass != "" {
			detail = fmt.Sprintf("%s [%s]", detail, res.ErrorClass)
		}
		if !verbose {
			detail = tableutil.Truncate(detail, detailCellLimit)
		}
		if err := tableutil.PrintRow(w,
			res.Name,
			termstyle.State(colorOutputEnabled, res.State),
			res.Status.DefaultBranch,
			detail,
			config.ContractHome(res.Path),
		); err != nil {
			return err
		}
		if verbose {
			if err := writeResultDetail(w, res); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// writeResultDetail lists change lines and commit summaries under a row.
func writeResultDetail(w io.Writer, res engine.Result) error {
	sections := []struct {
		label string
		lines []string
	}{
		{"changed", res.Status.Changes},
		{"unpushed", res.Status.UnpushedCommits},
		{"behind", res.Status.BehindCommits},
	}
	for _, s := range sections {
		for _, line := range s.lines {
			cell := termstyle.Colorize(colorOutputEnabled, s.label+": "+line, termstyle.Dim)
			if _, err := fmt.Fprintf(w, "\t\t\t%s\t\n", cell); err != nil {
				return err
			}
		}
	}
	if res.Error != "" {
		cell := termstyle.Colorize(colorOutputEnabled, "error: "+res.Error, termstyle.Error)
		if _, err := fmt.Fprintf(w, "\t\t\t%s\t\n", cell); err != nil {
			return err
		}
	}
	return nil
}

func writeSyncMutations(cmd *cobra.Command, muts []config.Mutation) {
	for _, m := range muts {
		infof(cmd, "%s was found at %s; run `syncer doctor --fix` to update the config", m.Name, config.ContractHome(m.Path))
	}
}

func describeSummary(report *engine.Report) string {
	s := report.Summary
	msg := fmt.Sprintf("%d repos: %d synced, %d pulled, %d pushed, %d issues",
		s.Total, s.Synced, s.Pulled, s.Pushed, s.Issues)
	if report.DryRun {
		msg += fmt.Sprintf(" (dry run: %d pullable, %d pushable)", s.Pullable, s.Pushable)
	}
	return msg + fmt.Sprintf(" in %s", (time.Duration(s.DurationMs)*time.Millisecond).Round(10*time.Millisecond))
}

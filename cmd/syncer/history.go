// SPDX-License-Identifier: MIT
package syncer

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncer/internal/cliio"
	"github.com/skaphos/syncer/internal/config"
	"github.com/skaphos/syncer/internal/history"
	"github.com/skaphos/syncer/internal/model"
	"github.com/skaphos/syncer/internal/termstyle"
)

var (
	flagStaleDays int
	flagLimit     int
	// now is overridable in tests.
	now = time.Now
)

// historyView is the structured output of `syncer history`.
type historyView struct {
	Log             string               `json:"log" yaml:"log"`
	Summary         history.Summary      `json:"summary" yaml:"summary"`
	Stale           []history.StaleRepo  `json:"stale" yaml:"stale"`
	FrequentlyDirty []history.DirtyRepo  `json:"frequently_dirty" yaml:"frequently_dirty"`
	Recent          []model.SyncRunEvent `json:"recent" yaml:"recent"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Summarize recorded runs and repositories left dirty",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flagStaleDays < 0 || flagLimit < 0 {
			return fmt.Errorf("--stale-days and --limit must not be negative")
		}
		dir, err := history.DefaultDir()
		if err != nil {
			return err
		}
		store := history.NewStore(dir, logger)
		events, err := store.Read()
		if err != nil {
			return err
		}
		setColorOutputMode(cmd, flagFormat)

		at := now()
		view := historyView{
			Log:             store.Path(),
			Summary:         history.Summarize(events, at, history.DefaultWindow),
			Stale:           history.FindStale(events, at, flagStaleDays),
			FrequentlyDirty: history.FrequentlyDirty(events, at, history.DefaultWindow),
			Recent:          history.Recent(events, flagLimit),
		}
		if !isTabularFormat(flagFormat) {
			return writeStructured(cmd, flagFormat, view)
		}
		if len(events) == 0 {
			infof(cmd, "no runs recorded in %s", store.Path())
			return nil
		}
		logOutputWriteFailure(cmd, "history", writeHistory(cmd.OutOrStdout(), view, at))
		if len(view.Stale) > 0 {
			raiseExitCode(1)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagStaleDays, "stale-days", history.DefaultStaleDays, "days of uncommitted changes before a repository is stale")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "number of recent runs to list")
	rootCmd.AddCommand(historyCmd)
}

func writeHistory(out io.Writer, view historyView, at time.Time) error {
	s := view.Summary
	last := "never"
	if !s.LastRun.IsZero() {
		last = history.Ago(s.LastRun, at)
	}
	if _, err := fmt.Fprintf(out, "Last 30 days: %d run(s), last %s, %.1f issue(s) per run\n\n", s.Runs, last, s.AvgIssues); err != nil {
		return err
	}

	if len(view.Stale) > 0 {
		if _, err := fmt.Fprintln(out, "Stale uncommitted changes:"); err != nil {
			return err
		}
		rows := make([][]string, 0, len(view.Stale))
		for _, r := range view.Stale {
			rows = append(rows, []string{
				config.ContractHome(r.Path),
				termstyle.Colorize(colorOutputEnabled, fmt.Sprintf("%dd", r.Days), termstyle.Warn),
				r.DirtySince.Local().Format(time.DateOnly),
			})
		}
		if err := cliio.WriteTable(out, cliio.TableOptions{}, []string{"PATH", "DIRTY", "SINCE"}, rows); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}

	if len(view.FrequentlyDirty) > 0 {
		if _, err := fmt.Fprintln(out, "Frequently dirty:"); err != nil {
			return err
		}
		rows := make([][]string, 0, len(view.FrequentlyDirty))
		for _, r := range view.FrequentlyDirty {
			rows = append(rows, []string{config.ContractHome(r.Path), fmt.Sprintf("%d/%d runs", r.Count, r.Runs)})
		}
		if err := cliio.WriteTable(out, cliio.TableOptions{}, []string{"PATH", "DIRTY"}, rows); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(view.Recent))
	for _, ev := range view.Recent {
		mode := ""
		if ev.DryRun {
			mode = "dry-run"
		}
		issues := fmt.Sprintf("%d", ev.Summary.Issues)
		if ev.Summary.Issues > 0 {
			issues = termstyle.Colorize(colorOutputEnabled, issues, termstyle.Error)
		}
		rows = append(rows, []string{
			history.Ago(ev.Timestamp, at),
			ev.ConfigName,
			mode,
			fmt.Sprintf("%d", ev.Summary.Total),
			fmt.Sprintf("%d", ev.Summary.Pulled+ev.Summary.Pushed),
			issues,
		})
	}
	return cliio.WriteTable(out, cliio.TableOptions{}, []string{"WHEN", "CONFIG", "MODE", "REPOS", "CHANGED", "ISSUES"}, rows)
}

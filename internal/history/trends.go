// SPDX-License-Identifier: MIT
package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/skaphos/syncer/internal/model"
)

const (
	// DefaultStaleDays is the default threshold for FindStale.
	DefaultStaleDays = 3
	// DefaultWindow bounds Summarize and FrequentlyDirty.
	DefaultWindow = 30 * 24 * time.Hour

	day = 24 * time.Hour
)

// Summary aggregates the runs inside a window.
type Summary struct {
	Runs      int       `json:"runs" yaml:"runs"`
	LastRun   time.Time `json:"last_run,omitzero" yaml:"last_run,omitempty"`
	AvgIssues float64   `json:"avg_issues" yaml:"avg_issues"`
}

// StaleRepo is a working copy whose uncommitted changes survived every run
// since DirtySince.
type StaleRepo struct {
	Path       string    `json:"path" yaml:"path"`
	DirtySince time.Time `json:"dirty_since" yaml:"dirty_since"`
	Days       int       `json:"days" yaml:"days"`
}

// DirtyRepo counts how often a path had local work pending.
type DirtyRepo struct {
	Path  string `json:"path" yaml:"path"`
	Count int    `json:"count" yaml:"count"`
	Runs  int    `json:"runs" yaml:"runs"`
}

// Summarize reports run count, last run and mean issues for events within
// window of now.
func Summarize(events []model.SyncRunEvent, now time.Time, window time.Duration) Summary {
	var out Summary
	issues := 0
	for _, ev := range recent(events, now, window) {
		out.Runs++
		issues += ev.Summary.Issues
		if ev.Timestamp.After(out.LastRun) {
			out.LastRun = ev.Timestamp
		}
	}
	if out.Runs > 0 {
		out.AvgIssues = float64(issues) / float64(out.Runs)
	}
	return out
}

// FindStale walks events oldest first, tracking for each path the first
// run of its current uncommitted streak; a clean run resets the streak.
// Paths dirty for at least thresholdDays whole days are returned, longest
// first.
func FindStale(events []model.SyncRunEvent, now time.Time, thresholdDays int) []StaleRepo {
	if len(events) == 0 {
		return nil
	}
	sorted := sortedByTime(events)
	since := make(map[string]time.Time)
	var order []string
	listed := make(map[string]struct{})
	for _, ev := range sorted {
		for _, snap := range ev.Repos {
			if snap.Uncommitted > 0 {
				if _, ok := since[snap.Path]; !ok {
					since[snap.Path] = ev.Timestamp
				}
				if _, ok := listed[snap.Path]; !ok {
					listed[snap.Path] = struct{}{}
					order = append(order, snap.Path)
				}
				continue
			}
			delete(since, snap.Path)
		}
	}

	var out []StaleRepo
	for _, path := range order {
		start, ok := since[path]
		if !ok {
			continue
		}
		days := int(now.Sub(start) / day)
		if days >= thresholdDays {
			out = append(out, StaleRepo{Path: path, DirtySince: start, Days: days})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Days > out[j].Days })
	return out
}

// FrequentlyDirty lists paths with uncommitted or unpushed work in at least
// a quarter of the recent runs (and at least two), most frequent first.
func FrequentlyDirty(events []model.SyncRunEvent, now time.Time, window time.Duration) []DirtyRepo {
	runs := recent(events, now, window)
	if len(runs) == 0 {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	for _, ev := range runs {
		for _, snap := range ev.Repos {
			if snap.Uncommitted == 0 && snap.Unpushed == 0 {
				continue
			}
			if _, ok := counts[snap.Path]; !ok {
				order = append(order, snap.Path)
			}
			counts[snap.Path]++
		}
	}
	threshold := max(2, len(runs)/4)
	var out []DirtyRepo
	for _, path := range order {
		if counts[path] >= threshold {
			out = append(out, DirtyRepo{Path: path, Count: counts[path], Runs: len(runs)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Recent returns up to limit events, newest first.
func Recent(events []model.SyncRunEvent, limit int) []model.SyncRunEvent {
	sorted := sortedByTime(events)
	out := make([]model.SyncRunEvent, 0, min(limit, len(sorted)))
	for i := len(sorted) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, sorted[i])
	}
	return out
}

// Ago renders the distance from t to now in a compact form such as "3h ago".
func Ago(t, now time.Time) string {
	minutes := int(now.Sub(t).Minutes())
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%dd ago", days)
	}
	if months := days / 30; months < 12 {
		return fmt.Sprintf("%dmo ago", months)
	}
	return fmt.Sprintf("%dy ago", days/365)
}

func recent(events []model.SyncRunEvent, now time.Time, window time.Duration) []model.SyncRunEvent {
	var out []model.SyncRunEvent
	for _, ev := range events {
		if now.Sub(ev.Timestamp) <= window {
			out = append(out, ev)
		}
	}
	return out
}

func sortedByTime(events []model.SyncRunEvent) []model.SyncRunEvent {
	sorted := make([]model.SyncRunEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })
	return sorted
}

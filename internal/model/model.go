// SPDX-License-Identifier: MIT
// Package model defines the core data types used throughout syncer.
package model

import "time"

// RepoState enumerates the per-repository outcome recorded for a run.
type RepoState string

const (
	StateSynced       RepoState = "synced"
	StateIssues       RepoState = "issues"
	StatePulled       RepoState = "pulled"
	StatePushed       RepoState = "pushed"
	StateCloned       RepoState = "cloned"
	StateMissing      RepoState = "missing"
	StateNotGit       RepoState = "not_git"
	StateNoRemote     RepoState = "no_remote"
	StatePathMismatch RepoState = "path_mismatch"
)

// States lists every RepoState in display order.
func States() []RepoState {
	return []RepoState{
		StateSynced,
		StateIssues,
		StatePulled,
		StatePushed,
		StateCloned,
		StateMissing,
		StateNotGit,
		StateNoRemote,
		StatePathMismatch,
	}
}

// Valid reports whether s is one of the known states.
func (s RepoState) Valid() bool {
	for _, known := range States() {
		if s == known {
			return true
		}
	}
	return false
}

// NeedsAttention reports whether the state counts toward the run's issues.
func (s RepoState) NeedsAttention() bool {
	switch s {
	case StateIssues, StateNotGit, StateNoRemote, StatePathMismatch:
		return true
	default:
		return false
	}
}

// RepoStatus is the observed state of one working copy.
type RepoStatus struct {
	// Exists reports whether the configured path is present on disk.
	Exists bool `json:"exists" yaml:"exists"`
	// IsRepo reports whether the path holds git metadata.
	IsRepo bool `json:"is_repo" yaml:"is_repo"`
	// HasRemote reports whether at least one remote is configured.
	HasRemote bool `json:"has_remote" yaml:"has_remote"`
	// DefaultBranch is empty when neither the remote HEAD nor main/master resolve.
	DefaultBranch string `json:"default_branch,omitempty" yaml:"default_branch,omitempty"`
	// Uncommitted is the number of modified, staged, or untracked paths.
	Uncommitted int `json:"uncommitted" yaml:"uncommitted"`
	// Ahead is the number of local default-branch commits missing from the remote.
	Ahead int `json:"ahead" yaml:"ahead"`
	// Behind is the number of remote default-branch commits missing locally.
	Behind int `json:"behind" yaml:"behind"`
	// Stashes is the number of stash entries.
	Stashes int `json:"stashes" yaml:"stashes"`

	Changes         []string `json:"changes,omitempty" yaml:"changes,omitempty"`
	UnpushedCommits []string `json:"unpushed_commits,omitempty" yaml:"unpushed_commits,omitempty"`
	BehindCommits   []string `json:"behind_commits,omitempty" yaml:"behind_commits,omitempty"`
}

// Clean reports whether nothing is pending in either direction.
func (s RepoStatus) Clean() bool {
	return s.Uncommitted == 0 && s.Ahead == 0 && s.Behind == 0 && s.Stashes == 0
}

// RepoSnapshot is the persisted per-repository record of a run.
type RepoSnapshot struct {
	Name        string    `json:"name" yaml:"name"`
	Path        string    `json:"path" yaml:"path"`
	Status      RepoState `json:"status" yaml:"status"`
	Branch      string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	Uncommitted int       `json:"uncommitted" yaml:"uncommitted"`
	Unpushed    int       `json:"unpushed" yaml:"unpushed"`
	Behind      int       `json:"behind" yaml:"behind"`
	Stashes     int       `json:"stashes" yaml:"stashes"`
}

// RunSummary holds the aggregate counts of a run.
type RunSummary struct {
	Total      int   `json:"total" yaml:"total"`
	Synced     int   `json:"synced" yaml:"synced"`
	Pulled     int   `json:"pulled" yaml:"pulled"`
	Pushed     int   `json:"pushed" yaml:"pushed"`
	Issues     int   `json:"issues" yaml:"issues"`
	DurationMs int64 `json:"duration_ms" yaml:"duration_ms"`
	// Pullable and Pushable are only populated by dry runs.
	Pullable int `json:"pullable,omitempty" yaml:"pullable,omitempty"`
	Pushable int `json:"pushable,omitempty" yaml:"pushable,omitempty"`
}

// SyncRunEvent is one line of the append-only events log.
type SyncRunEvent struct {
	Timestamp  time.Time      `json:"timestamp" yaml:"timestamp"`
	ConfigName string         `json:"config_name" yaml:"config_name"`
	DryRun     bool           `json:"dry_run" yaml:"dry_run"`
	Repos      []RepoSnapshot `json:"repos" yaml:"repos"`
	Summary    RunSummary     `json:"summary" yaml:"summary"`
}

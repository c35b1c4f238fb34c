// SPDX-License-Identifier: MIT
// Package termstyle renders ANSI colors that stay aligned inside
// liggitt/tabwriter tables.
package termstyle

import (
	"github.com/liggitt/tabwriter"

	"github.com/skaphos/syncer/internal/model"
)

const (
	Reset = "\x1b[0m"
	Green = "\x1b[32m"
	Brown = "\x1b[33m"
	Red   = "\x1b[31m"
	Blue  = "\x1b[34m"
	Dim   = "\x1b[2m"

	Healthy = Green
	Warn    = Brown
	Error   = Red
	Info    = Blue
)

// Colorize wraps a value in ANSI escapes when color output is enabled.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	// Escaped spans are zero-width for the tabwriter.
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}

// ForState picks the color of a repository state.
func ForState(state model.RepoState) string {
	switch state {
	case model.StateSynced:
		return Healthy
	case model.StatePulled, model.StatePushed, model.StateCloned:
		return Info
	case model.StateMissing, model.StatePathMismatch:
		return Warn
	case model.StateIssues, model.StateNotGit, model.StateNoRemote:
		return Error
	default:
		return ""
	}
}

// State renders state in its color.
func State(enabled bool, state model.RepoState) string {
	return Colorize(enabled, string(state), ForState(state))
}

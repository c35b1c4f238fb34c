// SPDX-License-Identifier: MIT
package engine

import (
	"time"

	"github.com/skaphos/syncer/internal/model"
)

// Summarize aggregates per-repository results. Issues counts every
// issues-equivalent state once; pullable and pushable are dry-run only.
func Summarize(results []Result, elapsed time.Duration) model.RunSummary {
	s := model.RunSummary{Total: len(results), DurationMs: elapsed.Milliseconds()}
	for _, r := range results {
		switch r.State {
		case model.StateSynced:
			s.Synced++
		case model.StatePulled:
			s.Pulled++
		case model.StatePushed:
			s.Pushed++
		}
		if r.State.NeedsAttention() {
			s.Issues++
		}
		if r.Pullable {
			s.Pullable++
		}
		if r.Pushable {
			s.Pushable++
		}
	}
	return s
}

// SPDX-License-Identifier: MIT
package vcs

import (
	"context"

	"go.uber.org/zap"

	"github.com/skaphos/syncer/internal/model"
)

// ProbeOptions controls how much Probe collects.
type ProbeOptions struct {
	// Fetch refreshes remote-tracking refs first. Fetch errors are ignored.
	Fetch bool
	// Detail collects porcelain lines and one-line commit summaries.
	Detail bool
	// Logger receives fetch failures. Nil discards them.
	Logger *zap.Logger
}

// Probe gathers a RepoStatus for dir. It stops at the first structural gap
// (missing path, no git metadata, no remote) and leaves the counts at zero.
func Probe(ctx context.Context, a Adapter, dir string, opts ProbeOptions) model.RepoStatus {
	var st model.RepoStatus
	if st.Exists = a.Exists(dir); !st.Exists {
		return st
	}
	if st.IsRepo = a.IsRepo(ctx, dir); !st.IsRepo {
		return st
	}
	if st.HasRemote = a.HasRemote(ctx, dir); !st.HasRemote {
		return st
	}
	if opts.Fetch {
		if err := a.Fetch(ctx, dir); err != nil && opts.Logger != nil {
			opts.Logger.Debug("fetch failed, using cached remote refs", zap.String("path", dir), zap.Error(err))
		}
	}

	changes := a.UncommittedChanges(ctx, dir)
	st.Uncommitted = len(changes)
	st.Stashes = a.StashCount(ctx, dir)
	st.DefaultBranch = a.DefaultBranch(ctx, dir)
	if st.DefaultBranch != "" {
		st.Ahead = a.UnpushedCount(ctx, dir, st.DefaultBranch)
		st.Behind = a.BehindCount(ctx, dir, st.DefaultBranch)
	}
	if opts.Detail {
		st.Changes = changes
		if st.Ahead > 0 {
			st.UnpushedCommits = a.UnpushedCommits(ctx, dir, st.DefaultBranch)
		}
		if st.Behind > 0 {
			st.BehindCommits = a.BehindCommits(ctx, dir, st.DefaultBranch)
		}
	}
	return st
}

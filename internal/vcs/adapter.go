// SPDX-License-Identifier: MIT
package vcs

import (
	"context"
	"os"

	"github.com/skaphos/syncer/internal/gitx"
)

// Adapter defines the version-control operations syncer relies on.
//
// Queries never fail: a git error reads as "no data" (false, 0, "" or nil).
// Mutations return the underlying error so callers can attribute it to the
// repository.
type Adapter interface {
	Exists(dir string) bool
	IsRepo(ctx context.Context, dir string) bool
	HasRemote(ctx context.Context, dir string) bool
	RemoteURL(ctx context.Context, dir string) string
	CurrentBranch(ctx context.Context, dir string) string
	DefaultBranch(ctx context.Context, dir string) string
	UncommittedChanges(ctx context.Context, dir string) []string
	UnpushedCount(ctx context.Context, dir, branch string) int
	BehindCount(ctx context.Context, dir, branch string) int
	UnpushedCommits(ctx context.Context, dir, branch string) []string
	BehindCommits(ctx context.Context, dir, branch string) []string
	StashCount(ctx context.Context, dir string) int

	LocalBranchExists(ctx context.Context, dir, branch string) bool
	// RemoteBranchExists asks origin and reports lookup failures.
	RemoteBranchExists(ctx context.Context, dir, branch string) (bool, error)
	Upstream(ctx context.Context, dir, branch string) string
	OriginHead(ctx context.Context, dir string) string

	Fetch(ctx context.Context, dir string) error
	Pull(ctx context.Context, dir, branch string) error
	Push(ctx context.Context, dir, branch string) error
	Clone(ctx context.Context, remoteURL, dir string) error
	RenameBranch(ctx context.Context, dir, oldName, newName string) error
	PushBranch(ctx context.Context, dir, branch string) error
	DeleteRemoteBranch(ctx context.Context, dir, branch string) error
	SetOriginHead(ctx context.Context, dir, branch string) error
}

// GitAdapter implements Adapter using the git CLI via gitx.
type GitAdapter struct {
	Runner gitx.Runner
}

func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitAdapter{Runner: runner}
}

func (g *GitAdapter) Exists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func (g *GitAdapter) IsRepo(_ context.Context, dir string) bool {
	return gitx.HasGitDir(dir)
}

func (g *GitAdapter) HasRemote(ctx context.Context, dir string) bool {
	return gitx.HasRemote(ctx, g.Runner, dir)
}

func (g *GitAdapter) RemoteURL(ctx context.Context, dir string) string {
	return gitx.RemoteURL(ctx, g.Runner, dir, "origin")
}

func (g *GitAdapter) CurrentBranch(ctx context.Context, dir string) string {
	return gitx.CurrentBranch(ctx, g.Runner, dir)
}

func (g *GitAdapter) DefaultBranch(ctx context.Context, dir string) string {
	return gitx.DefaultBranch(ctx, g.Runner, dir)
}

func (g *GitAdapter) UncommittedChanges(ctx context.Context, dir string) []string {
	return gitx.StatusLines(ctx, g.Runner, dir)
}

func (g *GitAdapter) UnpushedCount(ctx context.Context, dir, branch string) int {
	return gitx.AheadCount(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) BehindCount(ctx context.Context, dir, branch string) int {
	return gitx.BehindCount(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) UnpushedCommits(ctx context.Context, dir, branch string) []string {
	return gitx.AheadLog(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) BehindCommits(ctx context.Context, dir, branch string) []string {
	return gitx.BehindLog(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) StashCount(ctx context.Context, dir string) int {
	return gitx.StashCount(ctx, g.Runner, dir)
}

func (g *GitAdapter) LocalBranchExists(ctx context.Context, dir, branch string) bool {
	return gitx.LocalBranchExists(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) RemoteBranchExists(ctx context.Context, dir, branch string) (bool, error) {
	return gitx.RemoteBranchExists(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) Upstream(ctx context.Context, dir, branch string) string {
	return gitx.Upstream(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) OriginHead(ctx context.Context, dir string) string {
	return gitx.OriginHead(ctx, g.Runner, dir)
}

func (g *GitAdapter) Fetch(ctx context.Context, dir string) error {
	return gitx.Fetch(ctx, g.Runner, dir)
}

func (g *GitAdapter) Pull(ctx context.Context, dir, branch string) error {
	return gitx.Pull(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) Push(ctx context.Context, dir, branch string) error {
	return gitx.Push(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) Clone(ctx context.Context, remoteURL, dir string) error {
	return gitx.Clone(ctx, g.Runner, remoteURL, dir)
}

func (g *GitAdapter) RenameBranch(ctx context.Context, dir, oldName, newName string) error {
	return gitx.RenameBranch(ctx, g.Runner, dir, oldName, newName)
}

func (g *GitAdapter) PushBranch(ctx context.Context, dir, branch string) error {
	return gitx.PushBranch(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) DeleteRemoteBranch(ctx context.Context, dir, branch string) error {
	return gitx.DeleteRemoteBranch(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) SetOriginHead(ctx context.Context, dir, branch string) error {
	return gitx.SetOriginHead(ctx, g.Runner, dir, branch)
}

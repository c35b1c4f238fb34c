// SPDX-License-Identifier: MIT
// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns its
	// stdout. The error carries git's stderr when the command fails.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
	// Timeout bounds every invocation. Zero leaves only ctx in control.
	Timeout time.Duration
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	// Never block on a credential prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), ctxErr)
		}
		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), errText, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimRight(stdout.String(), "\r\n"), nil
}

// HasGitDir reports whether dir holds a .git directory or gitdir file.
func HasGitDir(dir string) bool {
	if dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// RefExists reports whether ref resolves to a commit.
func RefExists(ctx context.Context, r Runner, dir, ref string) bool {
	_, err := r.Run(ctx, dir, "rev-parse", "--verify", "--quiet", ref)
	return err == nil
}

// HasRemote reports whether any remote is configured.
func HasRemote(ctx context.Context, r Runner, dir string) bool {
	out, err := r.Run(ctx, dir, "remote")
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) != ""
}

// RemoteURL returns the fetch URL of the named remote, or "".
func RemoteURL(ctx context.Context, r Runner, dir, remote string) string {
	out, err := r.Run(ctx, dir, "remote", "get-url", remote)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// CurrentBranch returns the checked-out branch, "HEAD" when detached, or "".
func CurrentBranch(ctx context.Context, r Runner, dir string) string {
	out, err := r.Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// OriginHead returns the branch origin/HEAD points at, without checking
// that the target still exists.
func OriginHead(ctx context.Context, r Runner, dir string) string {
	out, err := r.Run(ctx, dir, "symbolic-ref", "--quiet", "refs/remotes/origin/HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(out), "refs/remotes/origin/")
}

// DefaultBranch resolves the default branch. origin/HEAD wins when it points
// at a ref that still resolves; otherwise local main, then master.
func DefaultBranch(ctx context.Context, r Runner, dir string) string {
	if head := OriginHead(ctx, r, dir); head != "" {
		if RefExists(ctx, r, dir, "refs/remotes/origin/"+head) {
			return head
		}
	}
	for _, branch := range []string{"main", "master"} {
		if LocalBranchExists(ctx, r, dir, branch) {
			return branch
		}
	}
	return ""
}

// LocalBranchExists reports whether refs/heads/<branch> exists.
func LocalBranchExists(ctx context.Context, r Runner, dir, branch string) bool {
	if branch == "" {
		return false
	}
	return RefExists(ctx, r, dir, "refs/heads/"+branch)
}

// RemoteBranchExists asks origin whether it has the branch. Unlike the other
// queries it returns the lookup error: callers must not read a failed
// network call as "absent".
func RemoteBranchExists(ctx context.Context, r Runner, dir, branch string) (bool, error) {
	if branch == "" {
		return false, nil
	}
	out, err := r.Run(ctx, dir, "ls-remote", "--heads", "origin", "refs/heads/"+branch)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Upstream returns the upstream of branch (for example "origin/main"), or "".
func Upstream(ctx context.Context, r Runner, dir, branch string) string {
	out, err := r.Run(ctx, dir, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// StatusLines returns one porcelain line per changed path.
func StatusLines(ctx context.Context, r Runner, dir string) []string {
	out, err := r.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return nil
	}
	return ParsePorcelainLines(out)
}

// AheadCount counts commits on branch that origin/<branch> lacks.
func AheadCount(ctx context.Context, r Runner, dir, branch string) int {
	revRange, ok := trackingRange(ctx, r, dir, branch, false)
	if !ok {
		return 0
	}
	return revCount(ctx, r, dir, revRange)
}

// BehindCount counts commits on origin/<branch> that branch lacks.
func BehindCount(ctx context.Context, r Runner, dir, branch string) int {
	revRange, ok := trackingRange(ctx, r, dir, branch, true)
	if !ok {
		return 0
	}
	return revCount(ctx, r, dir, revRange)
}

// AheadLog returns one-line summaries of unpushed commits, newest first.
func AheadLog(ctx context.Context, r Runner, dir, branch string) []string {
	revRange, ok := trackingRange(ctx, r, dir, branch, false)
	if !ok {
		return nil
	}
	return oneline(ctx, r, dir, revRange)
}

// BehindLog returns one-line summaries of commits only on the remote, newest first.
func BehindLog(ctx context.Context, r Runner, dir, branch string) []string {
	revRange, ok := trackingRange(ctx, r, dir, branch, true)
	if !ok {
		return nil
	}
	return oneline(ctx, r, dir, revRange)
}

func trackingRange(ctx context.Context, r Runner, dir, branch string, behind bool) (string, bool) {
	if branch == "" {
		return "", false
	}
	local := "refs/heads/" + branch
	remote := "refs/remotes/origin/" + branch
	if !RefExists(ctx, r, dir, remote) {
		return "", false
	}
	if behind {
		return local + ".." + remote, true
	}
	return remote + ".." + local, true
}

func revCount(ctx context.Context, r Runner, dir, revRange string) int {
	out, err := r.Run(ctx, dir, "rev-list", "--count", revRange)
	if err != nil {
		return 0
	}
	return ParseCount(out)
}

func oneline(ctx context.Context, r Runner, dir, revRange string) []string {
	out, err := r.Run(ctx, dir, "log", "--oneline", revRange)
	if err != nil {
		return nil
	}
	return SplitLines(out)
}

// StashCount returns the number of stash entries.
func StashCount(ctx context.Context, r Runner, dir string) int {
	out, err := r.Run(ctx, dir, "stash", "list")
	if err != nil {
		return 0
	}
	return len(SplitLines(out))
}

// Fetch runs a quiet fetch with submodule recursion disabled.
func Fetch(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "-c", "fetch.recurseSubmodules=false", "fetch", "--quiet", "--prune")
	return err
}

// Pull fast-forwards branch from origin. A checked-out branch is pulled with
// --ff-only; any other branch is advanced through a non-forced refspec fetch,
// which git also refuses when histories diverged.
func Pull(ctx context.Context, r Runner, dir, branch string) error {
	if CurrentBranch(ctx, r, dir) == branch {
		_, err := r.Run(ctx, dir, "pull", "--ff-only", "--quiet", "origin", branch)
		return err
	}
	_, err := r.Run(ctx, dir, "fetch", "--quiet", "origin", branch+":"+branch)
	return err
}

// Push pushes branch to origin.
func Push(ctx context.Context, r Runner, dir, branch string) error {
	_, err := r.Run(ctx, dir, "push", "--quiet", "origin", branch)
	return err
}

// Clone clones remoteURL into target, creating parent directories.
func Clone(ctx context.Context, r Runner, remoteURL, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	_, err := r.Run(ctx, "", "clone", "--quiet", remoteURL, target)
	return err
}

// RenameBranch renames a local branch.
func RenameBranch(ctx context.Context, r Runner, dir, oldName, newName string) error {
	_, err := r.Run(ctx, dir, "branch", "-m", oldName, newName)
	return err
}

// PushBranch pushes branch to origin and sets it as upstream.
func PushBranch(ctx context.Context, r Runner, dir, branch string) error {
	_, err := r.Run(ctx, dir, "push", "--quiet", "-u", "origin", branch)
	return err
}

// DeleteRemoteBranch deletes branch on origin.
func DeleteRemoteBranch(ctx context.Context, r Runner, dir, branch string) error {
	_, err := r.Run(ctx, dir, "push", "--quiet", "origin", "--delete", branch)
	return err
}

// SetOriginHead points refs/remotes/origin/HEAD at branch.
func SetOriginHead(ctx context.Context, r Runner, dir, branch string) error {
	_, err := r.Run(ctx, dir, "remote", "set-head", "origin", branch)
	return err
}

// SPDX-License-Identifier: MIT
// Package engine orchestrates the core operations: sync, doctor, and the
// default-branch rename. It coordinates between config, discovery, vcs and
// hosting.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skaphos/syncer/internal/config"
	"github.com/skaphos/syncer/internal/discovery"
	"github.com/skaphos/syncer/internal/gitx"
	"github.com/skaphos/syncer/internal/hosting"
	"github.com/skaphos/syncer/internal/model"
	"github.com/skaphos/syncer/internal/vcs"
)

// Engine is the core orchestrator for syncer operations.
type Engine struct {
	cfg     *config.Config
	adapter vcs.Adapter
	hosting hosting.Client
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a new Engine. A nil adapter uses git; a nil hosting client
// uses gh for the configured host.
func New(cfg *config.Config, adapter vcs.Adapter, host hosting.Client, logger *zap.Logger) *Engine {
	if adapter == nil {
		adapter = vcs.NewGitAdapter(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if host == nil {
		hostURL := ""
		if cfg != nil {
			hostURL = cfg.Host
		}
		host = hosting.NewGHClient(nil, hostURL, logger)
	}
	return &Engine{cfg: cfg, adapter: adapter, hosting: host, logger: logger, now: time.Now}
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	// ConfigName is recorded on the run event.
	ConfigName string
	DryRun     bool
	// Concurrency bounds the worker pool. Zero uses the config value.
	Concurrency int
	// Repos restricts the run to these names. Empty means all.
	Repos []string
	// Detail collects change lines and commit summaries for display.
	Detail bool
}

// Result records the outcome for a single repository.
type Result struct {
	Name  string          `json:"name" yaml:"name"`
	Path  string          `json:"path" yaml:"path"`
	State model.RepoState `json:"status" yaml:"status"`
	// Verdict is the decision-table outcome; empty for path mismatches and
	// repositories that were never reached.
	Verdict Verdict          `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Status  model.RepoStatus `json:"repo" yaml:"repo"`
	// Detail is the human-readable explanation shown next to the state.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	// FoundPath is where a missing repository was located.
	FoundPath string `json:"found_path,omitempty" yaml:"found_path,omitempty"`
	// Action is a shell-like description of the executed or planned action.
	Action   string `json:"action,omitempty" yaml:"action,omitempty"`
	Pullable bool   `json:"pullable,omitempty" yaml:"pullable,omitempty"`
	Pushable bool   `json:"pushable,omitempty" yaml:"pushable,omitempty"`
	// Error contains the raw error text of a failed action.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// ErrorClass is a coarse error class suitable for summary/exit handling.
	ErrorClass gitx.ErrorClass `json:"error_class,omitempty" yaml:"error_class,omitempty"`
}

// Report is the outcome of a sync run.
type Report struct {
	ConfigName string           `json:"config_name" yaml:"config_name"`
	DryRun     bool             `json:"dry_run" yaml:"dry_run"`
	StartedAt  time.Time        `json:"started_at" yaml:"started_at"`
	Results    []Result         `json:"results" yaml:"results"`
	Summary    model.RunSummary `json:"summary" yaml:"summary"`
	// Mutations are proposed configuration changes. Sync never applies them.
	Mutations []config.Mutation `json:"mutations,omitempty" yaml:"mutations,omitempty"`
}

// Sync classifies every selected repository and, outside dry-run, performs
// the safe automatic action. Path resolution runs first, sequentially and
// in configuration order; network work then runs on a bounded worker pool.
// Results keep configuration order. A nil or empty configuration yields an
// empty report.
func (e *Engine) Sync(ctx context.Context, opts SyncOptions) (*Report, error) {
	start := e.now()
	report := &Report{ConfigName: opts.ConfigName, DryRun: opts.DryRun, StartedAt: start}
	if e.cfg == nil || len(e.cfg.Repos) == 0 {
		report.Results = []Result{}
		report.Summary = Summarize(report.Results, 0)
		return report, nil
	}
	selected, err := e.cfg.Select(opts.Repos)
	if err != nil {
		return nil, err
	}

	handles := e.handles(selected)
	results := make([]Result, len(handles))
	pending := e.resolvePaths(handles, results, report)

	concurrency := e.concurrency(opts.Concurrency)
	sem := make(chan struct{}, concurrency)
	type indexed struct {
		i   int
		res Result
	}
	out := make(chan indexed, workerChannelBufferSize(len(pending)))
	spawned := 0
	launched := make(map[int]struct{}, len(pending))

launch:
	for _, i := range pending {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break launch
		}
		if ctx.Err() != nil {
			<-sem
			break
		}
		spawned++
		launched[i] = struct{}{}
		go func(i int) {
			defer func() { <-sem }()
			out <- indexed{i: i, res: e.syncRepo(ctx, handles[i], results[i], opts)}
		}(i)
	}
	for n := 0; n < spawned; n++ {
		item := <-out
		results[item.i] = item.res
	}

	cancelErr := ctx.Err()
	if cancelErr != nil {
		for _, i := range pending {
			if _, ok := launched[i]; ok {
				continue
			}
			results[i] = notProcessed(results[i], cancelErr)
		}
	}

	report.Results = results
	report.Summary = Summarize(results, e.now().Sub(start))
	if cancelErr != nil {
		return report, fmt.Errorf("sync interrupted: %w", cancelErr)
	}
	return report, nil
}

// Event converts the report into the persisted run event.
func (r *Report) Event() model.SyncRunEvent {
	ev := model.SyncRunEvent{
		Timestamp:  r.StartedAt.UTC(),
		ConfigName: r.ConfigName,
		DryRun:     r.DryRun,
		Repos:      make([]model.RepoSnapshot, 0, len(r.Results)),
		Summary:    r.Summary,
	}
	for _, res := range r.Results {
		ev.Repos = append(ev.Repos, res.Snapshot())
	}
	return ev
}

// HasIssues reports whether any repository ended in an issues-equivalent state.
func (r *Report) HasIssues() bool {
	return r != nil && r.Summary.Issues > 0
}

// Snapshot returns the persisted form of the result.
func (r Result) Snapshot() model.RepoSnapshot {
	return model.RepoSnapshot{
		Name:        r.Name,
		Path:        r.Path,
		Status:      r.State,
		Branch:      r.Status.DefaultBranch,
		Uncommitted: r.Status.Uncommitted,
		Unpushed:    r.Status.Ahead,
		Behind:      r.Status.Behind,
		Stashes:     r.Status.Stashes,
	}
}

func (e *Engine) handles(repos []config.Repo) []vcs.Repo {
	out := make([]vcs.Repo, 0, len(repos))
	for _, r := range repos {
		out = append(out, vcs.Repo{
			Name:  r.Name,
			Path:  config.ExpandHome(r.Path),
			Owner: e.cfg.Owner,
			Host:  e.cfg.Host,
		})
	}
	return out
}

// resolvePaths runs the sequential existence/locate phase. It fills results
// for path mismatches and returns the indexes that still need work. The
// claimed set starts with every configured path so no repository is matched
// to another one's directory.
func (e *Engine) resolvePaths(handles []vcs.Repo, results []Result, report *Report) []int {
	claimed := discovery.NewClaimed()
	for _, r := range e.cfg.Repos {
		claimed.Add(config.ExpandHome(r.Path))
	}
	searchPaths := e.cfg.ExpandedSearchPaths()

	pending := make([]int, 0, len(handles))
	for i, h := range handles {
		results[i] = Result{Name: h.Name, Path: h.Path}
		if e.adapter.Exists(h.Path) {
			pending = append(pending, i)
			continue
		}
		if found, ok := discovery.Locate(h.Name, searchPaths, claimed); ok {
			claimed.Add(found)
			results[i].State = model.StatePathMismatch
			results[i].FoundPath = found
			results[i].Detail = "found at " + found
			report.Mutations = append(report.Mutations, config.Mutation{Kind: config.MutationSetPath, Name: h.Name, Path: found})
			e.logger.Info("repository moved", zap.String("repo", h.Name), zap.String("path", h.Path), zap.String("found", found))
			continue
		}
		results[i].Verdict = VerdictMissing
		pending = append(pending, i)
	}
	return pending
}

func (e *Engine) syncRepo(ctx context.Context, h vcs.Repo, res Result, opts SyncOptions) Result {
	if res.Verdict == VerdictMissing {
		return e.cloneRepo(ctx, h, res, opts.DryRun)
	}

	st := vcs.Probe(ctx, e.adapter, h.Path, vcs.ProbeOptions{Fetch: true, Detail: opts.Detail, Logger: e.logger})
	if err := ctx.Err(); err != nil {
		// Queries cut short by cancellation read as empty; the status is unusable.
		return notProcessed(res, err)
	}
	res.Status = st
	decision := Decide(st)
	res.Verdict = decision.Verdict
	res.Detail = decision.Detail

	switch decision.Verdict {
	case VerdictMissing:
		return e.cloneRepo(ctx, h, res, opts.DryRun)
	case VerdictNotGit:
		res.State = model.StateNotGit
		res.Detail = "not a git repository"
	case VerdictNoRemote:
		res.State = model.StateNoRemote
		res.Detail = "no remote configured"
	case VerdictSynced:
		res.State = model.StateSynced
	case VerdictPull:
		res.Action = "git pull --ff-only origin " + st.DefaultBranch
		if opts.DryRun {
			res.State = model.StateIssues
			res.Pullable = true
			return res
		}
		if err := e.adapter.Pull(context.WithoutCancel(ctx), h.Path, st.DefaultBranch); err != nil {
			return e.actionFailed(h, res, "pull", err)
		}
		res.State = model.StatePulled
		res.Status.Behind = e.adapter.BehindCount(ctx, h.Path, st.DefaultBranch)
		res.Status.BehindCommits = nil
		res.Detail = fmt.Sprintf("pulled %d commit(s)", st.Behind)
		e.logger.Info("pulled", zap.String("repo", h.Name), zap.String("path", h.Path), zap.String("branch", st.DefaultBranch))
	case VerdictPush:
		res.Action = "git push origin " + st.DefaultBranch
		if opts.DryRun {
			res.State = model.StateIssues
			res.Pushable = true
			return res
		}
		if err := e.adapter.Push(context.WithoutCancel(ctx), h.Path, st.DefaultBranch); err != nil {
			return e.actionFailed(h, res, "push", err)
		}
		res.State = model.StatePushed
		res.Status.Ahead = e.adapter.UnpushedCount(ctx, h.Path, st.DefaultBranch)
		res.Status.UnpushedCommits = nil
		res.Detail = fmt.Sprintf("pushed %d commit(s)", st.Ahead)
		e.logger.Info("pushed", zap.String("repo", h.Name), zap.String("path", h.Path), zap.String("branch", st.DefaultBranch))
	default:
		res.State = model.StateIssues
	}
	return res
}

func (e *Engine) cloneRepo(ctx context.Context, h vcs.Repo, res Result, dryRun bool) Result {
	url := h.RemoteURL()
	res.Verdict = VerdictMissing
	res.Action = fmt.Sprintf("git clone %s %s", url, h.Path)
	if dryRun {
		res.State = model.StateMissing
		res.Detail = "would clone from " + url
		return res
	}
	if err := e.adapter.Clone(context.WithoutCancel(ctx), url, h.Path); err != nil {
		res.State = model.StateIssues
		res.Detail = "clone failed"
		res.Error = err.Error()
		res.ErrorClass = gitx.ClassifyError(err)
		e.logger.Warn("clone failed", zap.String("repo", h.Name), zap.String("path", h.Path), zap.Error(err))
		return res
	}
	res.State = model.StateCloned
	res.Status.Exists = true
	res.Status.IsRepo = true
	res.Status.HasRemote = true
	res.Detail = "cloned from " + url
	e.logger.Info("cloned", zap.String("repo", h.Name), zap.String("path", h.Path))
	return res
}

// actionFailed reports a failed pull or push as an ordinary issue; the
// repository is counted once.
func (e *Engine) actionFailed(h vcs.Repo, res Result, action string, err error) Result {
	res.State = model.StateIssues
	res.Error = err.Error()
	res.ErrorClass = gitx.ClassifyError(err)
	res.Detail = fmt.Sprintf("%s failed; %s", action, res.Detail)
	e.logger.Warn(action+" failed", zap.String("repo", h.Name), zap.String("path", h.Path), zap.Error(err))
	return res
}

func notProcessed(res Result, err error) Result {
	res.State = model.StateIssues
	res.Detail = "not processed"
	res.Error = err.Error()
	res.ErrorClass = gitx.ClassifyError(err)
	return res
}

func (e *Engine) concurrency(requested int) int {
	if requested > 0 {
		return requested
	}
	if e.cfg != nil && e.cfg.Concurrency > 0 {
		return e.cfg.Concurrency
	}
	return config.DefaultConcurrency
}

// workerChannelBufferSize gives every job a slot; results are drained only
// after the launch loop.
func workerChannelBufferSize(entryCount int) int {
	if entryCount <= 0 {
		return 1
	}
	return entryCount
}

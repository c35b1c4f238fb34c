// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skaphos/syncer/internal/config"
	"github.com/skaphos/syncer/internal/discovery"
	"github.com/skaphos/syncer/internal/gitx"
	"github.com/skaphos/syncer/internal/vcs"
)

// FindingKind categorizes a doctor finding.
type FindingKind string

const (
	FindingPathMismatch   FindingKind = "path_mismatch"
	FindingMissing        FindingKind = "missing"
	FindingUntracked      FindingKind = "untracked"
	FindingLegacyBranch   FindingKind = "legacy_branch"
	FindingRemoteMismatch FindingKind = "remote_mismatch"
)

// Finding is one problem reported by Doctor.
type Finding struct {
	Kind   FindingKind `json:"kind" yaml:"kind"`
	Name   string      `json:"name" yaml:"name"`
	Path   string      `json:"path" yaml:"path"`
	Detail string      `json:"detail" yaml:"detail"`
	// Fixable findings are resolved by --fix.
	Fixable bool `json:"fixable" yaml:"fixable"`
	// Fixed is set when the fix was performed or proposed as a mutation
	// for the caller to apply.
	Fixed bool `json:"fixed" yaml:"fixed"`
	// Skipped explains why a fixable-looking finding was left alone.
	Skipped string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Fork marks a legacy branch left alone because upstream owns the
	// naming. It is informational and does not count as unresolved.
	Fork   bool          `json:"fork,omitempty" yaml:"fork,omitempty"`
	Rename *RenameResult `json:"rename,omitempty" yaml:"rename,omitempty"`
}

// DoctorOptions configures a doctor pass.
type DoctorOptions struct {
	Fix         bool
	Concurrency int
}

// DoctorReport is the outcome of Doctor.
type DoctorReport struct {
	Findings []Finding `json:"findings" yaml:"findings"`
	// Mutations are the configuration changes backing path and untracked
	// findings. The caller applies them with config.Apply when fixing.
	Mutations []config.Mutation `json:"mutations,omitempty" yaml:"mutations,omitempty"`
}

// Unresolved counts findings that remain after the pass.
func (r *DoctorReport) Unresolved() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, f := range r.Findings {
		if !f.Fixed && !f.Fork {
			n++
		}
	}
	return n
}

// Doctor audits the configuration against the filesystem and remotes:
// moved and missing repositories, untracked working copies in the search
// paths, origin URLs that disagree with host/owner/name, and default
// branches still named master. With Fix set, legacy branches are renamed
// in place; configuration changes are only proposed.
func (e *Engine) Doctor(ctx context.Context, opts DoctorOptions) (*DoctorReport, error) {
	report := &DoctorReport{Findings: []Finding{}}
	if e.cfg == nil || (len(e.cfg.Repos) == 0 && len(e.cfg.SearchPaths) == 0) {
		return report, nil
	}

	handles := e.handles(e.cfg.Repos)
	claimed := discovery.NewClaimed()
	for _, h := range handles {
		claimed.Add(h.Path)
	}
	searchPaths := e.cfg.ExpandedSearchPaths()

	var present []int
	for i, h := range handles {
		if e.adapter.Exists(h.Path) {
			present = append(present, i)
			continue
		}
		if found, ok := discovery.Locate(h.Name, searchPaths, claimed); ok {
			claimed.Add(found)
			report.Findings = append(report.Findings, Finding{
				Kind:    FindingPathMismatch,
				Name:    h.Name,
				Path:    h.Path,
				Detail:  "found at " + found,
				Fixable: true,
				Fixed:   opts.Fix,
			})
			report.Mutations = append(report.Mutations, config.Mutation{Kind: config.MutationSetPath, Name: h.Name, Path: found})
			continue
		}
		report.Findings = append(report.Findings, Finding{
			Kind:   FindingMissing,
			Name:   h.Name,
			Path:   h.Path,
			Detail: "not found; sync will clone " + h.RemoteURL(),
		})
	}

	proposed := make(map[string]string)
	for _, c := range discovery.Untracked(searchPaths, e.cfg.RepoNames(), e.cfg.Exclude) {
		if claimed.Has(c.Path) {
			continue
		}
		if first, ok := proposed[c.Name]; ok {
			report.Findings = append(report.Findings, Finding{
				Kind:    FindingUntracked,
				Name:    c.Name,
				Path:    c.Path,
				Detail:  "git repository not in config",
				Fixable: true,
				Skipped: "name already proposed for " + first,
			})
			continue
		}
		proposed[c.Name] = c.Path
		report.Findings = append(report.Findings, Finding{
			Kind:    FindingUntracked,
			Name:    c.Name,
			Path:    c.Path,
			Detail:  "git repository not in config",
			Fixable: true,
			Fixed:   opts.Fix,
		})
		report.Mutations = append(report.Mutations, config.Mutation{Kind: config.MutationAddRepo, Name: c.Name, Path: c.Path})
	}

	audits := make([][]Finding, len(handles))
	sem := make(chan struct{}, e.concurrency(opts.Concurrency))
	type indexed struct {
		i        int
		findings []Finding
	}
	out := make(chan indexed, workerChannelBufferSize(len(present)))
	spawned := 0
audit:
	for _, i := range present {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break audit
		}
		if ctx.Err() != nil {
			<-sem
			break
		}
		spawned++
		go func(i int) {
			defer func() { <-sem }()
			out <- indexed{i: i, findings: e.auditRepo(ctx, handles[i], opts.Fix)}
		}(i)
	}
	for n := 0; n < spawned; n++ {
		item := <-out
		audits[item.i] = item.findings
	}
	for _, findings := range audits {
		report.Findings = append(report.Findings, findings...)
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("doctor interrupted: %w", err)
	}
	return report, nil
}

func (e *Engine) auditRepo(ctx context.Context, h vcs.Repo, fix bool) []Finding {
	if !e.adapter.IsRepo(ctx, h.Path) || !e.adapter.HasRemote(ctx, h.Path) {
		return nil
	}
	var findings []Finding

	if origin := e.adapter.RemoteURL(ctx, h.Path); origin != "" && e.cfg.Owner != "" {
		if want := h.RemoteURL(); !gitx.SameRepository(origin, want) {
			findings = append(findings, Finding{
				Kind:   FindingRemoteMismatch,
				Name:   h.Name,
				Path:   h.Path,
				Detail: fmt.Sprintf("origin is %s, expected %s", origin, gitx.NormalizeURL(want)),
			})
		}
	}

	if e.adapter.DefaultBranch(ctx, h.Path) != LegacyBranch {
		return findings
	}
	f := Finding{
		Kind:    FindingLegacyBranch,
		Name:    h.Name,
		Path:    h.Path,
		Detail:  "default branch is " + LegacyBranch,
		Fixable: true,
	}
	fork, err := e.hosting.IsFork(ctx, h.Owner, h.Name)
	if err != nil {
		e.logger.Debug("fork lookup failed, assuming not a fork", zap.String("repo", h.Name), zap.Error(err))
		fork = false
	}
	uncommitted := len(e.adapter.UncommittedChanges(ctx, h.Path))
	unpushed := e.adapter.UnpushedCount(ctx, h.Path, LegacyBranch)
	switch {
	case fork:
		f.Fork = true
		f.Skipped = "fork; upstream may still use " + LegacyBranch
	case uncommitted > 0 || unpushed > 0:
		f.Skipped = fmt.Sprintf("%d uncommitted, %d unpushed; commit and push first", uncommitted, unpushed)
	case fix:
		res := RenameDefaultBranch(ctx, e.adapter, e.hosting, h, e.logger)
		f.Rename = &res
		f.Fixed = res.OK
		if !res.OK {
			f.Detail = "rename failed: " + res.Reason
		}
	}
	return append(findings, f)
}

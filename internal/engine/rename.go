// SPDX-License-Identifier: MIT
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/skaphos/syncer/internal/hosting"
	"github.com/skaphos/syncer/internal/vcs"
)

const (
	LegacyBranch = "master"
	ModernBranch = "main"
)

// Step labels recorded by RenameDefaultBranch.
const (
	StepRenamedLocal             = "renamed local"
	StepRenameLocalFailed        = "rename local failed"
	StepPushedMain               = "pushed main"
	StepPushMainFailed           = "push main failed"
	StepSetHostedDefault         = "set GitHub default"
	StepSetHostedDefaultFailed   = "set GitHub default failed"
	StepDeletedRemoteMaster      = "deleted remote master"
	StepDeleteRemoteMasterFailed = "delete remote master failed"
	StepSetOriginHead            = "set origin HEAD"
	StepSetOriginHeadFailed      = "set origin HEAD failed"
)

// ReasonNoBranch is reported when neither master nor main exists locally.
const ReasonNoBranch = "no master or main branch found"

// RenameResult is the outcome of RenameDefaultBranch. Steps lists the
// mutating steps attempted, in order; a failed step appears with its
// failure label and ends the list.
type RenameResult struct {
	OK     bool     `json:"ok" yaml:"ok"`
	Steps  []string `json:"steps" yaml:"steps"`
	Reason string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// renameStep is one guarded step of the protocol. done inspects live state;
// apply performs the mutation when done is false.
type renameStep struct {
	label  string
	failed string
	done   func(ctx context.Context) bool
	apply  func(ctx context.Context) error
}

// RenameDefaultBranch moves repo from master to main across the local
// branch, the remote branch, the hosted default and origin/HEAD. It keeps no
// state between calls: every step checks whether its effect is already in
// place, so a repeated call resumes at the first unfinished step and a call
// after full success performs nothing.
func RenameDefaultBranch(ctx context.Context, a vcs.Adapter, h hosting.Client, repo vcs.Repo, logger *zap.Logger) RenameResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := repo.Path
	result := RenameResult{Steps: []string{}}

	hasMaster := a.LocalBranchExists(ctx, dir, LegacyBranch)
	hasMain := a.LocalBranchExists(ctx, dir, ModernBranch)
	if !hasMaster && !hasMain {
		result.Reason = ReasonNoBranch
		return result
	}

	steps := []renameStep{
		{
			label:  StepRenamedLocal,
			failed: StepRenameLocalFailed,
			done: func(ctx context.Context) bool {
				return !a.LocalBranchExists(ctx, dir, LegacyBranch) && a.LocalBranchExists(ctx, dir, ModernBranch)
			},
			apply: func(ctx context.Context) error {
				return a.RenameBranch(ctx, dir, LegacyBranch, ModernBranch)
			},
		},
		{
			label:  StepPushedMain,
			failed: StepPushMainFailed,
			done: func(ctx context.Context) bool {
				pushed, err := a.RemoteBranchExists(ctx, dir, ModernBranch)
				return err == nil && pushed && a.Upstream(ctx, dir, ModernBranch) == "origin/"+ModernBranch
			},
			apply: func(ctx context.Context) error {
				return a.PushBranch(ctx, dir, ModernBranch)
			},
		},
		{
			label:  StepSetHostedDefault,
			failed: StepSetHostedDefaultFailed,
			done: func(ctx context.Context) bool {
				current, err := h.DefaultBranch(ctx, repo.Owner, repo.Name)
				return err == nil && current == ModernBranch
			},
			apply: func(ctx context.Context) error {
				return h.SetDefaultBranch(ctx, repo.Owner, repo.Name, ModernBranch)
			},
		},
		{
			label:  StepDeletedRemoteMaster,
			failed: StepDeleteRemoteMasterFailed,
			// An unanswered lookup is not proof of deletion; the delete is
			// attempted and reports its own failure.
			done: func(ctx context.Context) bool {
				present, err := a.RemoteBranchExists(ctx, dir, LegacyBranch)
				if err != nil {
					logger.Debug("remote branch lookup failed", zap.String("repo", repo.Name), zap.String("branch", LegacyBranch), zap.Error(err))
					return false
				}
				return !present
			},
			apply: func(ctx context.Context) error {
				return a.DeleteRemoteBranch(ctx, dir, LegacyBranch)
			},
		},
		{
			label:  StepSetOriginHead,
			failed: StepSetOriginHeadFailed,
			done: func(ctx context.Context) bool {
				return a.OriginHead(ctx, dir) == ModernBranch
			},
			apply: func(ctx context.Context) error {
				return a.SetOriginHead(ctx, dir, ModernBranch)
			},
		},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			result.Reason = err.Error()
			return result
		}
		if step.done(ctx) {
			continue
		}
		// A started step finishes even if the caller is interrupted.
		if err := step.apply(context.WithoutCancel(ctx)); err != nil {
			result.Steps = append(result.Steps, step.failed)
			result.Reason = err.Error()
			logger.Warn("rename step failed", zap.String("repo", repo.Name), zap.String("path", dir), zap.String("step", step.label), zap.Error(err))
			return result
		}
		result.Steps = append(result.Steps, step.label)
		logger.Info("rename step", zap.String("repo", repo.Name), zap.String("step", step.label))
	}
	result.OK = true
	return result
}

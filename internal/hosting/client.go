// SPDX-License-Identifier: MIT
// Package hosting talks to the code-hosting service through the gh CLI.
package hosting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Client is the hosting-service boundary used by the branch-rename protocol
// and the default-branch audit.
type Client interface {
	IsFork(ctx context.Context, owner, name string) (bool, error)
	DefaultBranch(ctx context.Context, owner, name string) (string, error)
	SetDefaultBranch(ctx context.Context, owner, name, branch string) error
}

// Operation names the gh workflow that failed.
type Operation string

const (
	OpIsFork           Operation = "IsFork"
	OpDefaultBranch    Operation = "DefaultBranch"
	OpSetDefaultBranch Operation = "SetDefaultBranch"
)

// ErrInvalidRepository is returned when owner or name is empty.
var ErrInvalidRepository = errors.New("owner and name are required")

// OperationError wraps a failed gh invocation.
type OperationError struct {
	Operation  Operation
	Repository string
	Cause      error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Repository, e.Cause)
}

func (e *OperationError) Unwrap() error { return e.Cause }

// GHClient implements Client over the gh CLI.
type GHClient struct {
	Runner Runner
	// Host is the configured hosting base URL. Non-github.com hosts are
	// addressed as HOST/OWNER/NAME.
	Host   string
	Logger *zap.Logger
}

// NewGHClient returns a client using runner, or the default gh runner when nil.
func NewGHClient(runner Runner, host string, logger *zap.Logger) *GHClient {
	if runner == nil {
		runner = &CLIRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GHClient{Runner: runner, Host: host, Logger: logger}
}

func (c *GHClient) IsFork(ctx context.Context, owner, name string) (bool, error) {
	var resp struct {
		IsFork bool `json:"isFork"`
	}
	if err := c.view(ctx, OpIsFork, owner, name, "isFork", &resp); err != nil {
		return false, err
	}
	return resp.IsFork, nil
}

func (c *GHClient) DefaultBranch(ctx context.Context, owner, name string) (string, error) {
	var resp struct {
		DefaultBranchRef struct {
			Name string `json:"name"`
		} `json:"defaultBranchRef"`
	}
	if err := c.view(ctx, OpDefaultBranch, owner, name, "defaultBranchRef", &resp); err != nil {
		return "", err
	}
	return resp.DefaultBranchRef.Name, nil
}

func (c *GHClient) SetDefaultBranch(ctx context.Context, owner, name, branch string) error {
	id, err := c.repoID(owner, name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(branch) == "" {
		return &OperationError{Operation: OpSetDefaultBranch, Repository: id, Cause: errors.New("branch is required")}
	}
	c.Logger.Debug("setting default branch", zap.String("repo", id), zap.String("branch", branch))
	if _, err := c.Runner.Run(ctx, "repo", "edit", id, "--default-branch", branch); err != nil {
		return &OperationError{Operation: OpSetDefaultBranch, Repository: id, Cause: err}
	}
	return nil
}

func (c *GHClient) view(ctx context.Context, op Operation, owner, name, fields string, into any) error {
	id, err := c.repoID(owner, name)
	if err != nil {
		return err
	}
	out, err := c.Runner.Run(ctx, "repo", "view", id, "--json", fields)
	if err != nil {
		c.Logger.Debug("gh repo view failed", zap.String("repo", id), zap.Error(err))
		return &OperationError{Operation: op, Repository: id, Cause: err}
	}
	if err := json.Unmarshal([]byte(out), into); err != nil {
		return &OperationError{Operation: op, Repository: id, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// repoID renders the gh repository argument.
func (c *GHClient) repoID(owner, name string) (string, error) {
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if owner == "" || name == "" {
		return "", ErrInvalidRepository
	}
	host := hostName(c.Host)
	if host == "" || host == "github.com" {
		return owner + "/" + name, nil
	}
	return host + "/" + owner + "/" + name, nil
}

func hostName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SPDX-License-Identifier: MIT
// Package discovery finds git working copies under the configured search paths.
package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/syncer/internal/gitx"
)

// Claimed is a set of paths that Locate must never return.
type Claimed map[string]struct{}

// NewClaimed returns a set seeded with paths.
func NewClaimed(paths ...string) Claimed {
	c := make(Claimed, len(paths))
	for _, p := range paths {
		c.Add(p)
	}
	return c
}

// Add marks path as claimed.
func (c Claimed) Add(path string) {
	if path == "" {
		return
	}
	c[filepath.Clean(path)] = struct{}{}
}

// Has reports whether path is claimed.
func (c Claimed) Has(path string) bool {
	_, ok := c[filepath.Clean(path)]
	return ok
}

// Locate searches for a working copy named name. For each search path in
// order it checks the immediate children first, then the children of every
// non-hidden child. Claimed paths and missing search paths are skipped.
func Locate(name string, searchPaths []string, claimed Claimed) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, root := range searchPaths {
		if !isDir(root) {
			continue
		}
		direct := filepath.Join(root, name)
		if isCandidate(direct, claimed) {
			return direct, true
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || isHidden(entry.Name()) {
				continue
			}
			nested := filepath.Join(root, entry.Name(), name)
			if isCandidate(nested, claimed) {
				return nested, true
			}
		}
	}
	return "", false
}

// Candidate is a working copy found in a search path but absent from the config.
type Candidate struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Untracked lists the immediate children of each search path that hold git
// metadata, are not hidden, match no exclude pattern, and whose name is not
// in tracked. Results follow search-path order, then directory order.
func Untracked(searchPaths []string, tracked map[string]struct{}, exclude []string) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})
	for _, root := range searchPaths {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !entry.IsDir() || isHidden(name) {
				continue
			}
			if _, ok := tracked[name]; ok {
				continue
			}
			path := filepath.Join(root, name)
			if _, ok := seen[path]; ok {
				continue
			}
			if MatchesExclude(path, exclude) || !gitx.HasGitDir(path) {
				continue
			}
			seen[path] = struct{}{}
			out = append(out, Candidate{Name: name, Path: path})
		}
	}
	return out
}

// MatchesExclude checks whether a path matches any of the given exclude
// glob patterns.
func MatchesExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		match, err := doublestar.Match(pattern, slashPath)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

func isCandidate(path string, claimed Claimed) bool {
	if claimed.Has(path) {
		return false
	}
	return isDir(path) && gitx.HasGitDir(path)
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

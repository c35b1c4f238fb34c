// SPDX-License-Identifier: MIT
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// MutationKind names a change proposed against a configuration.
type MutationKind string

const (
	// MutationSetPath rewrites the path of an existing repo.
	MutationSetPath MutationKind = "set_path"
	// MutationAddRepo appends a repo that is not yet tracked.
	MutationAddRepo MutationKind = "add_repo"
)

// Mutation is a configuration change collected during a scan. Workers only
// propose mutations; Apply performs them in one pass afterwards.
type Mutation struct {
	Kind MutationKind `json:"kind" yaml:"kind"`
	Name string       `json:"name" yaml:"name"`
	// Path is absolute; Apply stores it in ~ shorthand when under home.
	Path string `json:"path" yaml:"path"`
}

// Apply performs muts against cfg in order and reports whether anything
// changed. Mutations naming an unknown repo (set) or a tracked one (add) are
// skipped.
func Apply(cfg *Config, muts []Mutation) bool {
	if cfg == nil {
		return false
	}
	changed := false
	for _, m := range muts {
		switch m.Kind {
		case MutationSetPath:
			for i := range cfg.Repos {
				if cfg.Repos[i].Name != m.Name {
					continue
				}
				path := ContractHome(m.Path)
				if cfg.Repos[i].Path != path {
					cfg.Repos[i].Path = path
					changed = true
				}
				break
			}
		case MutationAddRepo:
			if _, ok := cfg.RepoNames()[m.Name]; ok || m.Name == "" {
				continue
			}
			cfg.Repos = append(cfg.Repos, Repo{Name: m.Name, Path: ContractHome(m.Path)})
			changed = true
		}
	}
	return changed
}

// Update applies muts to the document at path and saves it when anything
// changed. It works on the file as written, not on a Loaded config, so
// defaults and SYNCER_* overrides never leak into the document.
func Update(path string, muts []Mutation) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read configuration: %w", err)
	}
	var doc Config
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if !Apply(&doc, muts) {
		return false, nil
	}
	if err := Save(&doc, path); err != nil {
		return false, err
	}
	return true, nil
}

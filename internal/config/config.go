// SPDX-License-Identifier: MIT
// Package config handles loading, saving, and resolving named syncer
// configuration documents.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvConfigDir overrides the directory holding named configurations.
	EnvConfigDir = "SYNCER_CONFIG_DIR"
	// EnvPrefix prefixes environment overrides such as SYNCER_OWNER.
	EnvPrefix = "SYNCER"

	DefaultConcurrency    = 4
	DefaultTimeoutSeconds = 60
	DefaultHost           = "https://github.com"

	fileExt = ".json"
)

var (
	// ErrNoConfig is returned when the config directory has no documents.
	ErrNoConfig = errors.New("no configuration found; run `syncer init NAME` to create one")
	// ErrNotFound is returned when a named configuration does not exist.
	ErrNotFound = errors.New("configuration not found")
	// ErrExists is returned by Init when the target already exists.
	ErrExists = errors.New("configuration already exists")
)

// Repo is one tracked repository. Name is the unique key.
type Repo struct {
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	Path string `mapstructure:"path" json:"path" yaml:"path"`
}

// Config is a named syncer configuration document.
type Config struct {
	Owner          string   `mapstructure:"owner" json:"owner,omitempty" yaml:"owner,omitempty"`
	Host           string   `mapstructure:"host" json:"host,omitempty" yaml:"host,omitempty"`
	SearchPaths    []string `mapstructure:"search_paths" json:"search_paths,omitempty" yaml:"search_paths,omitempty"`
	Repos          []Repo   `mapstructure:"repos" json:"repos" yaml:"repos"`
	Exclude        []string `mapstructure:"exclude" json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Concurrency    int      `mapstructure:"concurrency" json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// AmbiguousError is returned by Resolve when several documents exist and no
// name was given.
type AmbiguousError struct {
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple configurations found, pick one with --config: %s", strings.Join(e.Candidates, ", "))
}

// ValidationError reports an invalid field of a configuration.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

// Template returns the document written by `syncer init`.
func Template() Config {
	return Config{
		Owner:       "",
		Host:        DefaultHost,
		SearchPaths: []string{"~/code", "~/tools"},
		Repos: []Repo{
			{Name: "example-repo", Path: "~/code/example-repo"},
		},
		Concurrency:    DefaultConcurrency,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// Dir returns the directory holding named configurations: $SYNCER_CONFIG_DIR
// when set, otherwise ~/.config/syncer.
func Dir() (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvConfigDir)); env != "" {
		return ExpandHome(env), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "syncer"), nil
}

// PathFor returns the document path for name inside dir.
func PathFor(dir, name string) string {
	return filepath.Join(dir, name+fileExt)
}

// List returns the configuration names in dir, sorted. A missing directory
// yields an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Resolve picks the configuration to use. An explicit name selects that
// document; otherwise the directory must hold exactly one.
func Resolve(dir, name string) (string, string, error) {
	if name = strings.TrimSpace(name); name != "" {
		path := PathFor(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", "", fmt.Errorf("%w: %s (%s)", ErrNotFound, name, path)
			}
			return "", "", err
		}
		return name, path, nil
	}
	names, err := List(dir)
	if err != nil {
		return "", "", err
	}
	switch len(names) {
	case 0:
		return "", "", ErrNoConfig
	case 1:
		return names[0], PathFor(dir, names[0]), nil
	default:
		return "", "", &AmbiguousError{Candidates: names}
	}
}

// Load reads the JSON document at path, applying defaults and SYNCER_*
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("owner", "")
	v.SetDefault("host", DefaultHost)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("timeout_seconds", DefaultTimeoutSeconds)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural invariants of cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return &ValidationError{Field: "config", Message: "is nil"}
	}
	seen := make(map[string]struct{}, len(cfg.Repos))
	for i, repo := range cfg.Repos {
		if strings.TrimSpace(repo.Name) == "" {
			return &ValidationError{Field: fmt.Sprintf("repos[%d].name", i), Message: "is empty"}
		}
		if strings.TrimSpace(repo.Path) == "" {
			return &ValidationError{Field: fmt.Sprintf("repos[%d].path", i), Message: "is empty"}
		}
		if _, dup := seen[repo.Name]; dup {
			return &ValidationError{Field: fmt.Sprintf("repos[%d].name", i), Message: fmt.Sprintf("duplicate name %q", repo.Name)}
		}
		seen[repo.Name] = struct{}{}
	}
	if cfg.Concurrency < 0 {
		return &ValidationError{Field: "concurrency", Message: "must not be negative"}
	}
	return nil
}

// Save writes cfg to path as indented JSON, replacing the file atomically.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Init writes the template document for name into dir. It refuses to
// overwrite an existing document unless force is set.
func Init(dir, name string, force bool) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", &ValidationError{Field: "name", Message: fmt.Sprintf("%q is not a valid configuration name", name)}
	}
	path := PathFor(dir, name)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	tmpl := Template()
	if err := Save(&tmpl, path); err != nil {
		return "", err
	}
	return path, nil
}

// Timeout returns the per-command timeout.
func (c *Config) Timeout() time.Duration {
	if c == nil || c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExpandedSearchPaths returns the search paths with ~ expanded.
func (c *Config) ExpandedSearchPaths() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.SearchPaths))
	for _, p := range c.SearchPaths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, ExpandHome(p))
	}
	return out
}

// RepoNames returns the set of tracked names.
func (c *Config) RepoNames() map[string]struct{} {
	names := make(map[string]struct{})
	if c == nil {
		return names
	}
	for _, repo := range c.Repos {
		names[repo.Name] = struct{}{}
	}
	return names
}

// Select returns the repos named in names, in configuration order. An empty
// names list selects everything; an unknown name is an error.
func (c *Config) Select(names []string) ([]Repo, error) {
	if c == nil {
		return nil, nil
	}
	if len(names) == 0 {
		return c.Repos, nil
	}
	want := make(map[string]struct{}, len(names))
	known := c.RepoNames()
	for _, name := range names {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown repository %q", name)
		}
		want[name] = struct{}{}
	}
	var out []Repo
	for _, repo := range c.Repos {
		if _, ok := want[repo.Name]; ok {
			out = append(out, repo)
		}
	}
	return out, nil
}

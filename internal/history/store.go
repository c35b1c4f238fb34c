// SPDX-License-Identifier: MIT
// Package history persists run summary events and derives trends from them.
package history

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/skaphos/syncer/internal/model"
)

const (
	// EnvDataDir overrides the directory holding events.jsonl.
	EnvDataDir = "SYNCER_DATA_DIR"

	eventsFile = "events.jsonl"
	lockSuffix = ".lock"
	lockRetry  = 50 * time.Millisecond
)

// DefaultDir returns $SYNCER_DATA_DIR, else $XDG_DATA_HOME/syncer, else
// ~/.local/share/syncer.
func DefaultDir() (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvDataDir)); env != "" {
		return env, nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "syncer"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "syncer"), nil
}

// Store is the append-only events log.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore returns a store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// Path returns the events log location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, eventsFile)
}

// Append writes ev as one JSON line. Concurrent syncer processes serialize
// on a lock file next to the log.
func (s *Store) Append(ctx context.Context, ev model.SyncRunEvent) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	lock := flock.New(s.Path() + lockSuffix)
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("acquiring events lock: %w", err)
	}
	if !locked {
		return errors.New("events log is locked by another process")
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(s.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open events log: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append event: %w", err)
	}
	return f.Close()
}

// Read returns every event in file order. A missing log is empty; malformed
// lines are skipped and logged.
func (s *Store) Read() ([]model.SyncRunEvent, error) {
	f, err := os.Open(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open events log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []model.SyncRunEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev model.SyncRunEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			s.logger.Warn("skipping malformed event", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if bad, ok := invalidState(ev); ok {
			s.logger.Warn("skipping event with unknown repository status", zap.Int("line", lineNo), zap.String("status", string(bad)))
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("read events log: %w", err)
	}
	return events, nil
}

func invalidState(ev model.SyncRunEvent) (model.RepoState, bool) {
	for _, repo := range ev.Repos {
		if !repo.Status.Valid() {
			return repo.Status, true
		}
	}
	return "", false
}

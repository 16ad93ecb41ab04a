// ABOUTME: File-backed store for daily records, baselines, briefs, raw
// ABOUTME: snapshots, and intervention logs under a single data directory.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a requested artifact does not exist.
var ErrNotFound = errors.New("not found")

const (
	metricsDir       = "metrics"
	rawDir           = "raw"
	briefsDir        = "briefs"
	interventionsDir = "interventions"
)

// Store reads and writes all per-day artifacts. Every artifact is a small
// standalone file keyed by calendar date, so independent jobs can touch
// different days without coordination.
type Store struct {
	dir string
	log *slog.Logger
}

// Open prepares the data directory layout and returns a store rooted there.
func Open(dir string) (*Store, error) {
	for _, sub := range []string{metricsDir, rawDir, briefsDir, interventionsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return &Store{dir: dir, log: slog.Default()}, nil
}

// Dir returns the store's root data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) metricsPath(date string) string {
	return filepath.Join(s.dir, metricsDir, date+".json")
}

func (s *Store) rawPath(date string) string {
	return filepath.Join(s.dir, rawDir, date+".json")
}

func (s *Store) briefPath(date string) string {
	return filepath.Join(s.dir, briefsDir, date+".md")
}

func (s *Store) interventionsPath(date string) string {
	return filepath.Join(s.dir, interventionsDir, date+".jsonl")
}

func (s *Store) legacyInterventionsPath(date string) string {
	return filepath.Join(s.dir, interventionsDir, date+".json")
}

func (s *Store) baselinesPath() string {
	return filepath.Join(s.dir, "baselines.json")
}

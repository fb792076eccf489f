// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive applies a run's actions: remove decisions move the file
// into the archive directory, and every action is appended to the CSV log.
//
// The move and its log append are sequential with no journal. A crash
// between the two leaves a moved-but-unlogged file; the log is the source
// of truth for what was decided, so that window is reconciled manually by
// diffing the archive directory against the log.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/paper-triage/internal/triagelog"
	"github.com/pdiddy/paper-triage/pkg/types"
)

// timeNow is replaceable in tests.
var timeNow = time.Now

// Engine holds the run's archival and logging destinations.
type Engine struct {
	ArchiveDir string
	LogPath    string
	DryRun     bool
	Warnings   io.Writer
}

// Apply processes actions in order. Remove decisions move the file (unless
// the run is a dry run); every action is logged regardless of decision or
// move outcome. A failed move is a warning, not a run failure; a failed log
// append is.
func (e *Engine) Apply(actions []types.Action) ([]types.LogEntry, error) {
	var entries []types.LogEntry
	for _, action := range actions {
		if action.Decision == types.DecisionRemove && !e.DryRun {
			if err := e.archive(action.Candidate.Path); err != nil {
				fmt.Fprintf(e.Warnings, "Warning: failed to archive %s: %v\n", action.Candidate.Path, err)
			}
		}

		entry := types.LogEntry{
			Timestamp: timeNow().UTC(),
			Title:     action.Candidate.Title,
			Path:      action.Candidate.Path,
			Summary:   action.Summary,
			Decision:  action.Decision,
			DryRun:    e.DryRun,
		}
		if err := triagelog.Append(e.LogPath, entry); err != nil {
			return entries, fmt.Errorf("appending log entry for %s: %w", action.Candidate.Path, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (e *Engine) archive(path string) error {
	if err := os.MkdirAll(e.ArchiveDir, 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	target, err := UniqueTarget(filepath.Join(e.ArchiveDir, filepath.Base(path)))
	if err != nil {
		return err
	}
	return move(path, target)
}

// UniqueTarget returns the first free variant of target: the name itself,
// then name-1, name-2, … inserted before the extension. It never selects an
// existing file.
func UniqueTarget(target string) (string, error) {
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return target, nil
	} else if err != nil {
		return "", fmt.Errorf("probing archive target %s: %w", target, err)
	}

	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("probing archive target %s: %w", candidate, err)
		}
	}
}

// move renames the file, falling back to copy-and-delete when source and
// target are on different filesystems.
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return os.Remove(src)
}

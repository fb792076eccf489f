// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package triagelog persists run results: an append-only CSV log and
// per-run Markdown digests.
package triagelog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-triage/pkg/types"
)

// logColumns is the fixed CSV header, written exactly once when the log
// file is first created. Column order is part of the log format.
var logColumns = []string{"timestamp", "title", "path", "summary", "decision", "dry_run"}

// timeNow is replaceable in tests.
var timeNow = time.Now

// Append writes one entry to the CSV log at logPath, creating the file and
// its parent directory (and writing the header) on first use.
func Append(logPath string, entry types.LogEntry) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	_, statErr := os.Stat(logPath)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log %s: %w", logPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(logColumns); err != nil {
			return fmt.Errorf("writing log header: %w", err)
		}
	}

	row := []string{
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.Title,
		entry.Path,
		entry.Summary,
		string(entry.Decision),
		strconv.FormatBool(entry.DryRun),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing log row: %w", err)
	}

	w.Flush()
	return w.Error()
}

// WriteDigest renders the run's entries as a Markdown digest and writes it
// to a timestamp-named file in digestDir. An existing file is never
// overwritten; a same-second collision gets a numeric suffix.
func WriteDigest(digestDir string, entries []types.LogEntry) (string, error) {
	if err := os.MkdirAll(digestDir, 0o755); err != nil {
		return "", fmt.Errorf("creating digest directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Weekly Paper Digest\n\n")
	for _, entry := range entries {
		fmt.Fprintf(&b, "## %s\n", entry.Title)
		fmt.Fprintf(&b, "- Decision: **%s**\n", entry.Decision)
		fmt.Fprintf(&b, "- File: `%s`\n", entry.Path)
		b.WriteString("\n")
		summary := entry.Summary
		if summary == "" {
			summary = "(no summary)"
		}
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	stamp := timeNow().UTC().Format("2006-01-02-150405")
	path, err := freeDigestPath(digestDir, stamp)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing digest %s: %w", path, err)
	}
	return path, nil
}

func freeDigestPath(dir, stamp string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("digest-%s.md", stamp))
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("probing digest path %s: %w", path, err)
		}
		path = filepath.Join(dir, fmt.Sprintf("digest-%s-%d.md", stamp, counter))
	}
}

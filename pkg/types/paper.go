// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// Decision is the triage outcome recorded for a candidate. Decisions are
// stored in single-letter form in the log and digest.
type Decision string

const (
	DecisionKeep   Decision = "k"
	DecisionRemove Decision = "r"
	DecisionSkip   Decision = "s"
)

// ParseDecision normalizes a decision string. It accepts the single-letter
// and full-word forms, case-insensitively.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "k", "keep":
		return DecisionKeep, nil
	case "r", "remove":
		return DecisionRemove, nil
	case "s", "skip":
		return DecisionSkip, nil
	}
	return "", fmt.Errorf("unsupported decision %q (want keep, remove, or skip)", s)
}

// MetadataSourceType identifies the format of a bibliographic export.
type MetadataSourceType string

const (
	SourceBookmarks MetadataSourceType = "bookmarks"
	SourceZotero    MetadataSourceType = "zotero"
	SourceMendeley  MetadataSourceType = "mendeley"
)

// MetadataRecord holds bibliographic fields parsed from one export source.
type MetadataRecord struct {
	// FileKey is the lowercased filename used to join the record against
	// discovered PDFs.
	FileKey string `json:"file_key" yaml:"file_key"`

	// Title is the paper title from the export.
	Title string `json:"title" yaml:"title"`

	// Authors is the author list as the export provides it, if any.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year as the export provides it, if any.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Source is the path of the export file the record came from.
	Source string `json:"source" yaml:"source"`
}

// PaperCandidate is a discovered PDF awaiting a triage decision. Identity is
// the resolved path; discovery guarantees uniqueness within one run.
type PaperCandidate struct {
	// Path is the absolute path of the PDF file.
	Path string `json:"path" yaml:"path"`

	// Title is the metadata title when available, else the filename stem.
	Title string `json:"title" yaml:"title"`

	// Metadata is the joined bibliographic record, nil when no source
	// mentioned this file.
	Metadata *MetadataRecord `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Action pairs a candidate with its summary and decision. One Action is
// produced per candidate, in discovery order.
type Action struct {
	Candidate PaperCandidate
	Summary   string
	Decision  Decision
}

// LogEntry is one row of the durable triage log.
type LogEntry struct {
	// Timestamp is the UTC time the action was recorded.
	Timestamp time.Time

	// Title is the candidate's resolved title.
	Title string

	// Path is the candidate's original path (before any archival move).
	Path string

	// Summary is the summarizer output for the candidate.
	Summary string

	// Decision is the recorded outcome in single-letter form.
	Decision Decision

	// DryRun marks entries from runs that did not move files.
	DryRun bool
}

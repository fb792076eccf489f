// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata builds a filename-keyed lookup of bibliographic records
// from heterogeneous export sources (bookmark lists, Zotero and Mendeley
// CSV exports).
package metadata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-triage/pkg/types"
)

// Lookup maps a file key (lowercased filename) to the metadata record that
// describes it. Built once per run, read-only afterward.
type Lookup map[string]types.MetadataRecord

// FileKey derives the lookup key for a file path: the lowercased base name.
func FileKey(path string) string {
	return strings.ToLower(filepath.Base(path))
}

// BuildLookup parses the given sources in order and merges their records
// into a single lookup. When two sources define the same file key, the
// later-processed source wins. A missing file, unknown source type, or
// parse failure skips that source with a warning on w; it never aborts
// the run.
func BuildLookup(sources []types.MetadataSource, w io.Writer) Lookup {
	lookup := make(Lookup)
	for _, src := range sources {
		srcType := src.Type
		if srcType == "" {
			srcType = types.SourceBookmarks
		}

		if _, err := os.Stat(src.Path); err != nil {
			fmt.Fprintf(w, "Warning: metadata source not found: %s\n", src.Path)
			continue
		}

		var records []types.MetadataRecord
		var err error
		switch srcType {
		case types.SourceBookmarks:
			records, err = parseBookmarks(src.Path)
		case types.SourceZotero, types.SourceMendeley:
			records, err = parseReferenceExport(src.Path)
		default:
			fmt.Fprintf(w, "Warning: unknown metadata source type %q\n", srcType)
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "Warning: failed to parse metadata source %s: %v\n", src.Path, err)
			continue
		}

		for _, rec := range records {
			if rec.FileKey == "" {
				continue
			}
			lookup[rec.FileKey] = rec
		}
	}
	return lookup
}

// bookmarkEntry is one item of a bookmarks export. The file path may appear
// under either "path" or "file".
type bookmarkEntry struct {
	Path  string `json:"path"`
	File  string `json:"file"`
	Title string `json:"title"`
}

// bookmarkDocument is the object form of a bookmarks export, with the entry
// list under a "bookmarks" field.
type bookmarkDocument struct {
	Bookmarks []bookmarkEntry `json:"bookmarks"`
}

// parseBookmarks reads a bookmarks JSON export. The document is either a
// bare list of entries or an object holding the list under "bookmarks".
// Entries without a resolvable file path are skipped.
func parseBookmarks(path string) ([]types.MetadataRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bookmarks %s: %w", path, err)
	}

	var entries []bookmarkEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		var doc bookmarkDocument
		if docErr := json.Unmarshal(data, &doc); docErr != nil {
			return nil, fmt.Errorf("parsing bookmarks %s: %w", path, err)
		}
		entries = doc.Bookmarks
	}

	var records []types.MetadataRecord
	for _, entry := range entries {
		filePath := entry.Path
		if filePath == "" {
			filePath = entry.File
		}
		if filePath == "" {
			continue
		}

		title := entry.Title
		if title == "" {
			title = stem(filePath)
		}
		records = append(records, types.MetadataRecord{
			FileKey: FileKey(filePath),
			Title:   title,
			Source:  path,
		})
	}
	return records, nil
}

// attachmentColumns lists the accepted file-path column names of reference
// exports, in priority order. Zotero writes "File Attachments"; Mendeley
// and hand-rolled exports use the others.
var attachmentColumns = []string{"File Attachments", "Attachments", "file", "path"}

// parseReferenceExport reads a Zotero or Mendeley CSV export. The file path
// is taken from the first populated attachment column; when it holds several
// semicolon-separated paths, only the first is used.
func parseReferenceExport(path string) ([]types.MetadataRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing export %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[name] = i
	}

	field := func(row []string, names ...string) string {
		for _, name := range names {
			if i, ok := header[name]; ok && i < len(row) && row[i] != "" {
				return row[i]
			}
		}
		return ""
	}

	var records []types.MetadataRecord
	for _, row := range rows[1:] {
		attachment := field(row, attachmentColumns...)
		if attachment == "" {
			continue
		}
		attachment = strings.TrimSpace(strings.SplitN(attachment, ";", 2)[0])
		if attachment == "" {
			continue
		}

		title := field(row, "Title", "title")
		if title == "" {
			title = stem(attachment)
		}
		records = append(records, types.MetadataRecord{
			FileKey: FileKey(attachment),
			Title:   title,
			Authors: field(row, "Author", "Authors"),
			Year:    field(row, "Year"),
			Source:  path,
		})
	}
	return records, nil
}

// stem returns the base name of a path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

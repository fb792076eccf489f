// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover walks configured folders for PDF files and joins each
// hit against the bibliographic metadata lookup.
package discover

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-triage/internal/metadata"
	"github.com/pdiddy/paper-triage/pkg/types"
)

// Discover scans folders in the order given, recursively, and returns one
// candidate per PDF in folder-order then lexicographic path order. A path
// that resolves to an already-emitted file is dropped, so the result holds
// no resolved-path duplicates; two distinct files sharing a name in
// different folders are both kept. A missing folder produces a warning on
// w and is skipped.
func Discover(folders []string, lookup metadata.Lookup, w io.Writer) []types.PaperCandidate {
	var candidates []types.PaperCandidate
	seen := make(map[string]bool)

	for _, folder := range folders {
		if _, err := os.Stat(folder); err != nil {
			fmt.Fprintf(w, "Warning: input folder does not exist: %s\n", folder)
			continue
		}

		// WalkDir visits entries in lexical order, which fixes the
		// per-folder ordering.
		err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				fmt.Fprintf(w, "Warning: skipping %s: %v\n", path, err)
				return nil
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
				return nil
			}

			resolved := resolve(path)
			if seen[resolved] {
				return nil
			}
			seen[resolved] = true

			candidates = append(candidates, newCandidate(resolved, lookup))
			return nil
		})
		if err != nil {
			fmt.Fprintf(w, "Warning: error walking %s: %v\n", folder, err)
		}
	}

	return candidates
}

// newCandidate joins a resolved PDF path against the lookup. The title is the
// metadata title when the file key matches, else the filename stem.
func newCandidate(path string, lookup metadata.Lookup) types.PaperCandidate {
	candidate := types.PaperCandidate{
		Path:  path,
		Title: stem(path),
	}
	if rec, ok := lookup[metadata.FileKey(path)]; ok {
		candidate.Metadata = &rec
		if rec.Title != "" {
			candidate.Title = rec.Title
		}
	}
	return candidate
}

// resolve normalizes a path to its absolute, symlink-free form so the
// duplicate guard compares file identity rather than spelling.
func resolve(path string) string {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

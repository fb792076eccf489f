// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     string
	}{
		{name: "under limit", text: "short", maxChars: 100, want: "short"},
		{name: "at limit", text: "exact", maxChars: 5, want: "exact"},
		{name: "over limit", text: "abcdefgh", maxChars: 3, want: "abc"},
		{name: "zero limit keeps text", text: "kept", maxChars: 0, want: "kept"},
		{name: "multibyte runes not split", text: "héllo wörld", maxChars: 4, want: "héll"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.maxChars); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.maxChars, tt.want, got)
			}
		})
	}
}

func TestExtract_RejectsNonPositivePageLimit(t *testing.T) {
	_, err := PdftotextExtractor{}.Extract("whatever.pdf", 0, 100)
	if err == nil {
		t.Fatal("Extract with maxPages=0 returned nil error")
	}
}

// stubPdftotext installs a shell script named pdftotext at the front of PATH
// so the extractor can run without poppler installed.
func stubPdftotext(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub script requires a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "pdftotext")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestExtract_PassesPageLimitAndTruncates(t *testing.T) {
	// The stub prints its -l argument and a long filler line.
	stubPdftotext(t, `printf 'pages=%s ' "$2"; printf 'xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx'`)

	extractor, err := NewPdftotextExtractor()
	if err != nil {
		t.Fatal(err)
	}

	got, err := extractor.Extract("paper.pdf", 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "pages=3") {
		t.Errorf("output %q does not show page limit 3 being passed", got)
	}
	if len([]rune(got)) != 10 {
		t.Errorf("output length = %d, want truncation to 10", len([]rune(got)))
	}
}

func TestExtract_ToolFailureReturnsError(t *testing.T) {
	stubPdftotext(t, `echo 'broken pdf' >&2; exit 1`)

	_, err := PdftotextExtractor{}.Extract("broken.pdf", 2, 100)
	if err == nil {
		t.Fatal("Extract on failing tool returned nil error")
	}
	if !strings.Contains(err.Error(), "broken pdf") {
		t.Errorf("error %q missing tool stderr", err)
	}
}

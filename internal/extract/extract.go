// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract reads bounded plain text out of PDF files for
// summarization. The production backend shells out to the pdftotext tool.
package extract

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Extractor produces plain text from a PDF, bounded by a page and a
// character limit.
type Extractor interface {
	Extract(pdfPath string, maxPages, maxChars int) (string, error)
}

// PdftotextExtractor extracts text by running the pdftotext tool with a
// last-page limit and writing to stdout.
type PdftotextExtractor struct{}

// NewPdftotextExtractor verifies that pdftotext is installed before
// returning an extractor.
func NewPdftotextExtractor() (PdftotextExtractor, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return PdftotextExtractor{}, fmt.Errorf("pdftotext not found in PATH: %w", err)
	}
	return PdftotextExtractor{}, nil
}

// Extract runs pdftotext over the first maxPages pages of the PDF and
// truncates the result to maxChars characters.
func (PdftotextExtractor) Extract(pdfPath string, maxPages, maxChars int) (string, error) {
	if maxPages <= 0 {
		return "", fmt.Errorf("max pages must be positive, got %d", maxPages)
	}

	cmd := exec.Command("pdftotext", "-l", strconv.Itoa(maxPages), pdfPath, "-")
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(errOut.String())
		if detail != "" {
			return "", fmt.Errorf("pdftotext on %s: %w: %s", pdfPath, err, detail)
		}
		return "", fmt.Errorf("pdftotext on %s: %w", pdfPath, err)
	}

	return Truncate(out.String(), maxChars), nil
}

// Truncate cuts text to at most maxChars characters. A non-positive limit
// leaves the text untouched.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}

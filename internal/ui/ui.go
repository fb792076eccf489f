// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ui implements the interactive per-paper decision prompt. It reads
// from and writes to injected streams so tests can drive it with canned
// input.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pdiddy/paper-triage/pkg/types"
)

// Prompter asks the operator for a decision per paper. The open-file side
// action does not consume a decision: the prompt loops until one of the
// three real decisions is chosen.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// openFile opens a paper in the system viewer. Replaceable in tests.
	openFile func(path string) error
}

// NewPrompter builds a Prompter over the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:       bufio.NewReader(in),
		out:      out,
		openFile: openWithSystemViewer,
	}
}

// Decide shows the candidate and its summary, then prompts until a decision
// is entered. It returns an error only when input is exhausted.
func (p *Prompter) Decide(candidate types.PaperCandidate, summary string, dryRun bool) (types.Decision, error) {
	fmt.Fprintf(p.out, "Title: %s\n", candidate.Title)
	fmt.Fprintf(p.out, "Path:  %s\n", candidate.Path)
	if m := candidate.Metadata; m != nil {
		if m.Authors != "" {
			fmt.Fprintf(p.out, "Authors: %s\n", m.Authors)
		}
		if m.Year != "" {
			fmt.Fprintf(p.out, "Year: %s\n", m.Year)
		}
		fmt.Fprintf(p.out, "Metadata from: %s\n", m.Source)
	}

	if summary == "" {
		summary = "No summary available."
	}
	fmt.Fprintf(p.out, "\nSummary:\n%s\n\n", summary)

	if dryRun {
		fmt.Fprintln(p.out, "Dry-run: files will not be moved or modified.")
	}

	for {
		fmt.Fprint(p.out, "Choose action [k]eep/[r]emove/[s]kip/[o]pen (default k): ")

		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading decision: %w", err)
		}

		choice := strings.ToLower(strings.TrimSpace(line))
		if choice == "" {
			choice = "k"
		}
		if choice == "o" {
			if err := p.openFile(candidate.Path); err != nil {
				fmt.Fprintf(p.out, "Failed to open %s: %v\n", candidate.Path, err)
			}
			continue
		}

		decision, err := types.ParseDecision(choice)
		if err != nil {
			fmt.Fprintln(p.out, "Invalid choice. Use k, r, s, or o.")
			continue
		}
		return decision, nil
	}
}

// openWithSystemViewer hands the path to the platform's opener.
func openWithSystemViewer(path string) error {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	return exec.Command(opener, path).Start()
}

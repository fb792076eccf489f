// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package triage drives the per-paper summarize-then-decide loop and
// resolves how decisions are made for a run.
package triage

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paper-triage/internal/extract"
	"github.com/pdiddy/paper-triage/internal/summarize"
	"github.com/pdiddy/paper-triage/pkg/types"
)

// Mode is the resolved decision mode for one run. When Auto is set every
// paper receives Decision without prompting; otherwise decisions come from
// the interactive collaborator.
type Mode struct {
	Auto     bool
	Decision types.Decision
}

// ResolveMode applies the decision precedence: an explicit per-run override
// beats the configured automatic mode, which beats interactive. An
// unrecognized decision value is a configuration error and must be fatal
// before any file is touched.
func ResolveMode(override string, cfg types.AutoDecisionConfig) (Mode, error) {
	if override != "" {
		d, err := types.ParseDecision(override)
		if err != nil {
			return Mode{}, fmt.Errorf("invalid decision override: %w", err)
		}
		return Mode{Auto: true, Decision: d}, nil
	}

	if cfg.Enabled {
		value := cfg.Default
		if value == "" {
			value = "keep"
		}
		d, err := types.ParseDecision(value)
		if err != nil {
			return Mode{}, fmt.Errorf("invalid auto_decision default: %w", err)
		}
		return Mode{Auto: true, Decision: d}, nil
	}

	return Mode{}, nil
}

// Decider is the interactive collaborator: it must return exactly one of
// the three decisions, looping internally on side actions and bad input.
type Decider interface {
	Decide(candidate types.PaperCandidate, summary string, dryRun bool) (types.Decision, error)
}

// SummaryFunc produces the summary for one candidate path.
type SummaryFunc func(ctx context.Context, path string) string

// NewSummaryFunc composes text extraction and summarization into a single
// step. An extraction failure is warned about and summarized as empty text,
// so the run continues with a degraded summary.
func NewSummaryFunc(ex extract.Extractor, s summarize.Summarizer, maxPages, maxChars int, warnings io.Writer) SummaryFunc {
	return func(ctx context.Context, path string) string {
		text, err := ex.Extract(path, maxPages, maxChars)
		if err != nil {
			fmt.Fprintf(warnings, "Warning: unable to read PDF %s: %v\n", path, err)
			text = ""
		}
		return s.Summarize(ctx, text)
	}
}

// Driver walks the candidate list in order, obtaining a summary and a
// decision per paper. Summaries are memoized per path for the run; the
// cache is a correctness backstop since discovery already deduplicates
// paths.
type Driver struct {
	Summary  SummaryFunc
	Decider  Decider
	Mode     Mode
	DryRun   bool
	Progress io.Writer

	cache map[string]string
}

// Run produces one Action per candidate, in input order. It stops only when
// the decider fails (for example, closed input).
func (d *Driver) Run(ctx context.Context, candidates []types.PaperCandidate) ([]types.Action, error) {
	if d.cache == nil {
		d.cache = make(map[string]string)
	}

	actions := make([]types.Action, 0, len(candidates))
	for i, candidate := range candidates {
		fmt.Fprintf(d.Progress, "--- Paper %d/%d ---\n", i+1, len(candidates))

		summary, ok := d.cache[candidate.Path]
		if !ok {
			summary = d.Summary(ctx, candidate.Path)
			d.cache[candidate.Path] = summary
		}

		var decision types.Decision
		if d.Mode.Auto {
			decision = d.Mode.Decision
		} else {
			var err error
			decision, err = d.Decider.Decide(candidate, summary, d.DryRun)
			if err != nil {
				return actions, fmt.Errorf("deciding on %s: %w", candidate.Path, err)
			}
		}

		actions = append(actions, types.Action{
			Candidate: candidate,
			Summary:   summary,
			Decision:  decision,
		})
	}
	return actions, nil
}

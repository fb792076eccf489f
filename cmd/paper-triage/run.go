// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-triage/internal/archive"
	"github.com/pdiddy/paper-triage/internal/discover"
	"github.com/pdiddy/paper-triage/internal/emailer"
	"github.com/pdiddy/paper-triage/internal/extract"
	"github.com/pdiddy/paper-triage/internal/metadata"
	"github.com/pdiddy/paper-triage/internal/schedule"
	"github.com/pdiddy/paper-triage/internal/summarize"
	"github.com/pdiddy/paper-triage/internal/triage"
	"github.com/pdiddy/paper-triage/internal/triagelog"
	"github.com/pdiddy/paper-triage/internal/ui"
	"github.com/pdiddy/paper-triage/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Triage the configured PDF folders",
	Long: `Run walks the configured input folders for PDFs, summarizes each paper
through the local Ollama model, and collects a keep/remove/skip decision per
paper. Removed papers are moved into the archive directory and every decision
is appended to the CSV triage log.

Decisions are interactive unless auto_decision is enabled in the config or
--decision is given. With --dry-run no file is moved; decisions are still
logged and flagged as dry runs.

When schedule.enabled is set (or --schedule is given), run stays resident and
triages on the configured weekly cron slot until interrupted. --once forces a
single immediate pass regardless of the schedule setting.`,
	RunE: runTriage,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "log decisions without moving any file")
	runCmd.Flags().String("decision", "", "apply one decision to every paper (keep, remove, or skip)")
	runCmd.Flags().Bool("auto", false, "skip the prompt and apply the configured default decision")
	runCmd.Flags().Bool("schedule", false, "stay resident and run on the configured weekly schedule")
	runCmd.Flags().Bool("once", false, "run a single pass even when scheduling is configured")
	runCmd.Flags().Int("max-pages", 0, "override pages extracted per PDF")
	runCmd.Flags().Int("max-chars", 0, "override characters sent to the summarizer")
	runCmd.Flags().String("archive", "", "override the archive directory")
	runCmd.Flags().String("log-path", "", "override the CSV triage log path")
	runCmd.Flags().String("digest-dir", "", "override the digest output directory")

	rootCmd.AddCommand(runCmd)
}

func runTriage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunOverrides(cmd, &cfg)

	if auto, _ := cmd.Flags().GetBool("auto"); auto {
		cfg.AutoDecision.Enabled = true
	}

	// An invalid decision value must abort before any paper is touched.
	override, _ := cmd.Flags().GetString("decision")
	mode, err := triage.ResolveMode(override, cfg.AutoDecision)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	job := func() {
		if err := triageOnce(cfg, mode, dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Error: triage run failed: %v\n", err)
		}
	}

	forceSchedule, _ := cmd.Flags().GetBool("schedule")
	once, _ := cmd.Flags().GetBool("once")
	if forceSchedule || (cfg.Schedule.Enabled && !once) {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		return schedule.Run(cfg.Schedule, job, os.Stderr, interrupt)
	}

	return triageOnce(cfg, mode, dryRun)
}

// applyRunOverrides folds per-run flags into the loaded configuration.
func applyRunOverrides(cmd *cobra.Command, cfg *types.Config) {
	if v, _ := cmd.Flags().GetInt("max-pages"); v > 0 {
		cfg.MaxPages = v
	}
	if v, _ := cmd.Flags().GetInt("max-chars"); v > 0 {
		cfg.MaxChars = v
	}
	if v, _ := cmd.Flags().GetString("archive"); v != "" {
		cfg.ArchiveDir = v
	}
	if v, _ := cmd.Flags().GetString("log-path"); v != "" {
		cfg.LogPath = v
	}
	if v, _ := cmd.Flags().GetString("digest-dir"); v != "" {
		cfg.DigestDir = v
	}
}

// triageOnce performs a single full pass: discover, summarize, decide,
// archive, log, digest, notify.
func triageOnce(cfg types.Config, mode triage.Mode, dryRun bool) error {
	lookup := metadata.BuildLookup(cfg.MetadataSources, os.Stderr)

	candidates := discover.Discover(cfg.InputFolders, lookup, os.Stderr)
	if len(candidates) == 0 {
		fmt.Println("No PDFs found in the configured folders.")
		return nil
	}

	extractor, err := extract.NewPdftotextExtractor()
	if err != nil {
		return err
	}
	client, err := summarize.NewOllamaClient(cfg.OllamaHost, cfg.Model)
	if err != nil {
		return err
	}
	client.Warnings = os.Stderr

	driver := &triage.Driver{
		Summary:  triage.NewSummaryFunc(extractor, client, cfg.MaxPages, cfg.MaxChars, os.Stderr),
		Decider:  ui.NewPrompter(os.Stdin, os.Stdout),
		Mode:     mode,
		DryRun:   dryRun,
		Progress: os.Stdout,
	}
	actions, err := driver.Run(context.Background(), candidates)
	if err != nil {
		return err
	}

	engine := &archive.Engine{
		ArchiveDir: cfg.ArchiveDir,
		LogPath:    cfg.LogPath,
		DryRun:     dryRun,
		Warnings:   os.Stderr,
	}
	entries, err := engine.Apply(actions)
	if err != nil {
		return err
	}
	fmt.Printf("Triage complete: %d paper(s) processed.\n", len(entries))

	digestPath := ""
	if cfg.Digest.Enabled && len(entries) > 0 {
		digestPath, err = triagelog.WriteDigest(cfg.DigestDir, entries)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write digest: %v\n", err)
			digestPath = ""
		} else {
			fmt.Printf("Digest written to %s\n", digestPath)
		}
	}

	emailer.NewDispatcher(cfg.Email, loadedSecrets, os.Stderr).Dispatch(entries, digestPath)
	return nil
}

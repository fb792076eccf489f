// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-triage/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query past triage decisions (index, search, export)",
	Long: `History manages a local SQLite index built from the CSV triage log.
Use subcommands to ingest new log rows, search past decisions, or export.`,
}

// --- index subcommand ---

var historyIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Ingest the CSV triage log into the history index",
	Long: `Index reads the triage log and inserts every row not yet present in
the SQLite index. Re-running is safe: already-indexed rows are skipped.`,
	RunE: runHistoryIndex,
}

func runHistoryIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.IngestCSV(context.Background(), cfg.LogPath, os.Stdout)
	return err
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed decisions with full-text search and filters",
	Long: `Search queries the history index using FTS5 full-text search over
titles and summaries, structured filters (decision, title substring), or a
combination of both. Free-text results are ranked by relevance; filtered
results are newest first.`,
	RunE: runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := historyOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --decision, or --title")
	}

	entries, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(entries, jsonOutput)
}

func formatSearchOutput(entries []history.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No matching decisions found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-8s  %-50s  %s\n",
		"Timestamp", "Decision", "Title", "Summary")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, e := range entries {
		title := e.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		summary := e.Summary
		if len(summary) > 40 {
			summary = summary[:37] + "..."
		}
		decision := e.Decision
		if e.DryRun {
			decision += " (dry)"
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-8s  %-50s  %s\n",
			e.Timestamp, decision, title, summary)
	}

	fmt.Fprintf(os.Stdout, "\n%d decision(s)\n", len(entries))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history index to YAML or JSON",
	Long: `Export writes the indexed decisions (or a filtered subset) to
export.yaml or export.json in the history directory. Supports the same
filter flags as search.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := historyOptsFromFlags(cmd, args)
	historyDir := historyDirFromFlags(cmd)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", historyDir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", historyDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func historyDirFromFlags(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("history-dir")
	if dir == "" {
		dir = viperHistoryDir()
	}
	return dir
}

func viperHistoryDir() string {
	cfg, err := loadConfig()
	if err != nil || cfg.History.Dir == "" {
		return "history"
	}
	return cfg.History.Dir
}

func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return history.NewStore(historyDirFromFlags(cmd), maxResults)
}

func historyOptsFromFlags(cmd *cobra.Command, args []string) history.QueryOptions {
	decision, _ := cmd.Flags().GetString("decision")
	title, _ := cmd.Flags().GetString("title")
	limit, _ := cmd.Flags().GetInt("limit")

	return history.QueryOptions{
		Query:    strings.Join(args, " "),
		Decision: decision,
		Title:    title,
		Limit:    limit,
	}
}

func init() {
	for _, c := range []*cobra.Command{historyIndexCmd, historySearchCmd, historyExportCmd} {
		c.Flags().String("history-dir", "", "override the history index directory")
	}

	for _, c := range []*cobra.Command{historySearchCmd, historyExportCmd} {
		c.Flags().String("decision", "", "filter on a decision letter (k, r, or s)")
		c.Flags().String("title", "", "filter on a title substring")
		c.Flags().Int("limit", 0, "cap the number of results")
	}
	historySearchCmd.Flags().Bool("json", false, "emit results as JSON")
	historySearchCmd.Flags().Int("max-results", 50, "default result cap when --limit is unset")
	historyExportCmd.Flags().Int("max-results", 50, "default result cap when --limit is unset")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyIndexCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

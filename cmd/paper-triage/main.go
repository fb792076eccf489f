// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-triage CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-triage/internal/secrets"
	"github.com/pdiddy/paper-triage/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paper-triage CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-triage",
	Short: "Weekly triage assistant for a folder of research PDFs",
	Long: `paper-triage walks configured folders for PDF papers, enriches them with
bibliographic metadata, summarizes each one through a local Ollama model, and
records a keep/remove/skip decision per paper. Removals are archived, every
decision lands in a CSV log, and runs can produce Markdown digests and email
notifications.

Use "run" for a triage pass (interactive or automatic, once or on the
configured weekly schedule) and "history" to query past decisions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-triage.yaml or ~/.config/paper-triage/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-triage")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-triage"))
		}
	}

	viper.SetEnvPrefix("PAPER_TRIAGE")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(os.Stderr, "Warning: no config file found. Using defaults.")
	}
}

// setDefaults registers the complete built-in configuration, so a missing
// config file yields a fully usable Config.
func setDefaults() {
	viper.SetDefault("input_folders", []string{})
	viper.SetDefault("archive_dir", "archive")
	viper.SetDefault("model", "llama3.2:latest")
	viper.SetDefault("ollama_host", "http://localhost:11434")
	viper.SetDefault("max_pages", 3)
	viper.SetDefault("max_chars", 4000)
	viper.SetDefault("metadata_sources", []types.MetadataSource{})
	viper.SetDefault("log_path", "triage_log.csv")
	viper.SetDefault("digest_dir", "digests")
	viper.SetDefault("digest.enabled", false)
	viper.SetDefault("email.enabled", false)
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.use_tls", true)
	viper.SetDefault("email.username", "")
	viper.SetDefault("email.password_env", "")
	viper.SetDefault("email.sender", "paper-triage@example.com")
	viper.SetDefault("email.recipients", []string{})
	viper.SetDefault("email.subject", "Weekly paper triage digest")
	viper.SetDefault("schedule.enabled", false)
	viper.SetDefault("schedule.day_of_week", "sun")
	viper.SetDefault("schedule.hour", 9)
	viper.SetDefault("schedule.minute", 0)
	viper.SetDefault("auto_decision.enabled", false)
	viper.SetDefault("auto_decision.default", "keep")
	viper.SetDefault("history.dir", "history")
}

// loadConfig unmarshals the resolved viper state into a Config.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

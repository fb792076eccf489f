// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MetadataSource describes one bibliographic export to parse during a run.
type MetadataSource struct {
	// Type selects the parser: bookmarks, zotero, or mendeley.
	// An empty type defaults to bookmarks.
	Type MetadataSourceType `json:"type" yaml:"type" mapstructure:"type"`

	// Path is the export file location.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// DigestConfig controls Markdown digest generation.
type DigestConfig struct {
	// Enabled turns on per-run digest files.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// EmailConfig holds SMTP settings for the digest notification.
type EmailConfig struct {
	// Enabled gates the whole notification step.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// SMTPHost and SMTPPort identify the relay.
	SMTPHost string `json:"smtp_host" yaml:"smtp_host" mapstructure:"smtp_host"`
	SMTPPort int    `json:"smtp_port" yaml:"smtp_port" mapstructure:"smtp_port"`

	// UseTLS enables STARTTLS on the connection.
	UseTLS bool `json:"use_tls" yaml:"use_tls" mapstructure:"use_tls"`

	// Username authenticates against the relay when set.
	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`

	// PasswordEnv names the environment variable holding the SMTP password.
	// When set but unset in the environment, the send is aborted.
	PasswordEnv string `json:"password_env,omitempty" yaml:"password_env,omitempty" mapstructure:"password_env"`

	// Sender and Recipients are required for any send.
	Sender     string   `json:"sender" yaml:"sender" mapstructure:"sender"`
	Recipients []string `json:"recipients" yaml:"recipients" mapstructure:"recipients"`

	// Subject is the message subject line.
	Subject string `json:"subject" yaml:"subject" mapstructure:"subject"`
}

// ScheduleConfig describes the recurring-run slot.
type ScheduleConfig struct {
	// Enabled turns on scheduled runs when the CLI is not forced into
	// single-run mode.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// DayOfWeek is a cron day token (e.g. "sun", "mon").
	DayOfWeek string `json:"day_of_week" yaml:"day_of_week" mapstructure:"day_of_week"`

	// Hour and Minute are the local time of the run.
	Hour   int `json:"hour" yaml:"hour" mapstructure:"hour"`
	Minute int `json:"minute" yaml:"minute" mapstructure:"minute"`
}

// AutoDecisionConfig applies a fixed decision to every paper, bypassing the
// interactive prompt.
type AutoDecisionConfig struct {
	// Enabled turns on automatic decisions.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Default is the decision applied to every paper (keep, remove, or
	// skip; letter or word form). An unrecognized value is fatal to the
	// run before any file is touched.
	Default string `json:"default" yaml:"default" mapstructure:"default"`
}

// HistoryConfig locates the SQLite triage-history index.
type HistoryConfig struct {
	// Dir is the base directory for the index database.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// Config is the resolved configuration for one run. It is constructed once
// per invocation and read-only for the duration of the run.
type Config struct {
	// InputFolders are scanned recursively for PDFs, in order.
	InputFolders []string `json:"input_folders" yaml:"input_folders" mapstructure:"input_folders"`

	// ArchiveDir receives files with a remove decision.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir" mapstructure:"archive_dir"`

	// Model is the summarization model identifier (e.g. "llama3.2:latest").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// OllamaHost is the base URL of the local Ollama server.
	OllamaHost string `json:"ollama_host" yaml:"ollama_host" mapstructure:"ollama_host"`

	// MaxPages and MaxChars bound text extraction per paper.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`

	// MetadataSources enrich discovered PDFs with titles and authors.
	MetadataSources []MetadataSource `json:"metadata_sources" yaml:"metadata_sources" mapstructure:"metadata_sources"`

	// LogPath is the durable CSV triage log.
	LogPath string `json:"log_path" yaml:"log_path" mapstructure:"log_path"`

	// DigestDir receives per-run Markdown digests.
	DigestDir string `json:"digest_dir" yaml:"digest_dir" mapstructure:"digest_dir"`

	Digest       DigestConfig       `json:"digest" yaml:"digest" mapstructure:"digest"`
	Email        EmailConfig        `json:"email" yaml:"email" mapstructure:"email"`
	Schedule     ScheduleConfig     `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
	AutoDecision AutoDecisionConfig `json:"auto_decision" yaml:"auto_decision" mapstructure:"auto_decision"`
	History      HistoryConfig      `json:"history" yaml:"history" mapstructure:"history"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emailer best-effort relays the run's digest over SMTP. Every
// failure path logs and returns; a broken mail setup never fails a triage
// run.
package emailer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/pdiddy/paper-triage/pkg/types"
)

// secretPasswordKey is the secrets-directory fallback for the SMTP password,
// consulted only when no password environment variable is configured.
const secretPasswordKey = "smtp-password"

// Dispatcher sends the digest notification for one run.
type Dispatcher struct {
	Config types.EmailConfig

	// Secrets is the loaded secrets directory, used as a password
	// fallback when Config.PasswordEnv is empty.
	Secrets map[string]string

	// Log receives info and error lines.
	Log io.Writer

	// lookupEnv and send are replaceable in tests.
	lookupEnv func(string) (string, bool)
	send      func(cfg types.EmailConfig, password, body, attachment string) error
}

// NewDispatcher builds a Dispatcher with the real environment and SMTP
// transport.
func NewDispatcher(cfg types.EmailConfig, secrets map[string]string, log io.Writer) *Dispatcher {
	return &Dispatcher{
		Config:    cfg,
		Secrets:   secrets,
		Log:       log,
		lookupEnv: os.LookupEnv,
		send:      sendSMTP,
	}
}

// Dispatch sends one message summarizing the run's entries, attaching the
// digest file when one was produced and still exists. It is a no-op unless
// email is enabled and the run produced at least one entry.
func (d *Dispatcher) Dispatch(entries []types.LogEntry, digestPath string) {
	cfg := d.Config
	if !cfg.Enabled {
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(d.Log, "Email enabled but no triage actions were taken; skipping send.")
		return
	}
	if cfg.Sender == "" || len(cfg.Recipients) == 0 {
		fmt.Fprintln(d.Log, "Error: email sending requires sender and recipients in config.")
		return
	}

	password := ""
	if cfg.PasswordEnv != "" {
		value, ok := d.lookupEnv(cfg.PasswordEnv)
		if !ok || value == "" {
			fmt.Fprintf(d.Log, "Error: email password env var %s is not set; skipping email send.\n", cfg.PasswordEnv)
			return
		}
		password = value
	} else if value, ok := d.Secrets[secretPasswordKey]; ok {
		password = value
	}

	attachment := ""
	if digestPath != "" {
		if _, err := os.Stat(digestPath); err == nil {
			attachment = digestPath
		}
	}

	if err := d.send(cfg, password, buildBody(entries), attachment); err != nil {
		fmt.Fprintf(d.Log, "Error: failed to send email digest: %v\n", err)
		return
	}
	fmt.Fprintf(d.Log, "Email digest sent to %s\n", strings.Join(cfg.Recipients, ", "))
}

// buildBody renders one line per entry plus a fixed header and footer.
func buildBody(entries []types.LogEntry) string {
	lines := []string{"Weekly paper triage report", ""}
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("- %s — decision: %s — file: %s", entry.Title, entry.Decision, entry.Path))
	}
	lines = append(lines, "", "This email was generated automatically by the paper triage assistant.")
	return strings.Join(lines, "\n")
}

// sendSMTP delivers the message through the configured relay.
func sendSMTP(cfg types.EmailConfig, password, body, attachment string) error {
	msg := mail.NewMsg()
	if err := msg.From(cfg.Sender); err != nil {
		return fmt.Errorf("invalid sender %q: %w", cfg.Sender, err)
	}
	if err := msg.To(cfg.Recipients...); err != nil {
		return fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(cfg.Subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if attachment != "" {
		msg.AttachFile(attachment)
	}

	opts := []mail.Option{mail.WithPort(cfg.SMTPPort)}
	if cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if cfg.Username != "" && password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	return client.DialAndSend(msg)
}

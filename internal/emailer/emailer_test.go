// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emailer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paper-triage/pkg/types"
)

type sentMessage struct {
	cfg        types.EmailConfig
	password   string
	body       string
	attachment string
}

func testDispatcher(cfg types.EmailConfig, env map[string]string) (*Dispatcher, *[]sentMessage, *bytes.Buffer) {
	var sent []sentMessage
	var log bytes.Buffer
	d := &Dispatcher{
		Config: cfg,
		Log:    &log,
		lookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		send: func(cfg types.EmailConfig, password, body, attachment string) error {
			sent = append(sent, sentMessage{cfg, password, body, attachment})
			return nil
		},
	}
	return d, &sent, &log
}

func enabledConfig() types.EmailConfig {
	return types.EmailConfig{
		Enabled:    true,
		SMTPHost:   "smtp.example.com",
		SMTPPort:   587,
		UseTLS:     true,
		Sender:     "paper-triage@example.com",
		Recipients: []string{"alice@example.com"},
		Subject:    "Weekly paper triage digest",
	}
}

func someEntries() []types.LogEntry {
	return []types.LogEntry{{
		Timestamp: time.Now().UTC(),
		Title:     "Attention Is All You Need",
		Path:      "/papers/attention.pdf",
		Summary:   "transformers",
		Decision:  types.DecisionKeep,
	}}
}

func TestDispatch_Disabled(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false
	d, sent, log := testDispatcher(cfg, nil)

	d.Dispatch(someEntries(), "")
	if len(*sent) != 0 {
		t.Error("disabled dispatcher sent mail")
	}
	if log.Len() != 0 {
		t.Errorf("disabled dispatcher logged: %q", log.String())
	}
}

func TestDispatch_NoEntries(t *testing.T) {
	d, sent, log := testDispatcher(enabledConfig(), nil)

	d.Dispatch(nil, "")
	if len(*sent) != 0 {
		t.Error("dispatcher sent mail for empty run")
	}
	if !strings.Contains(log.String(), "no triage actions") {
		t.Errorf("log %q missing skip notice", log.String())
	}
}

func TestDispatch_MissingRecipients(t *testing.T) {
	cfg := enabledConfig()
	cfg.Recipients = nil
	d, sent, log := testDispatcher(cfg, nil)

	d.Dispatch(someEntries(), "")
	if len(*sent) != 0 {
		t.Error("dispatcher sent mail without recipients")
	}
	if !strings.Contains(log.String(), "Error") {
		t.Errorf("log %q missing error", log.String())
	}
}

func TestDispatch_PasswordEnvUnset(t *testing.T) {
	cfg := enabledConfig()
	cfg.PasswordEnv = "TRIAGE_SMTP_PASSWORD"
	d, sent, log := testDispatcher(cfg, map[string]string{})

	d.Dispatch(someEntries(), "")
	if len(*sent) != 0 {
		t.Error("dispatcher sent mail without credentials")
	}
	if !strings.Contains(log.String(), "TRIAGE_SMTP_PASSWORD") {
		t.Errorf("log %q does not name the missing env var", log.String())
	}
}

func TestDispatch_PasswordFromEnv(t *testing.T) {
	cfg := enabledConfig()
	cfg.PasswordEnv = "TRIAGE_SMTP_PASSWORD"
	d, sent, _ := testDispatcher(cfg, map[string]string{"TRIAGE_SMTP_PASSWORD": "hunter2"})

	d.Dispatch(someEntries(), "")
	if len(*sent) != 1 {
		t.Fatal("dispatcher did not send")
	}
	if (*sent)[0].password != "hunter2" {
		t.Errorf("password = %q, want env value", (*sent)[0].password)
	}
}

func TestDispatch_PasswordFromSecretsFallback(t *testing.T) {
	d, sent, _ := testDispatcher(enabledConfig(), nil)
	d.Secrets = map[string]string{"smtp-password": "from-secrets"}

	d.Dispatch(someEntries(), "")
	if len(*sent) != 1 {
		t.Fatal("dispatcher did not send")
	}
	if (*sent)[0].password != "from-secrets" {
		t.Errorf("password = %q, want secrets value", (*sent)[0].password)
	}
}

func TestDispatch_BodyAndAttachment(t *testing.T) {
	digest := filepath.Join(t.TempDir(), "digest-2026-08-30-090000.md")
	if err := os.WriteFile(digest, []byte("# Weekly Paper Digest"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, sent, log := testDispatcher(enabledConfig(), nil)
	d.Dispatch(someEntries(), digest)

	if len(*sent) != 1 {
		t.Fatal("dispatcher did not send")
	}
	msg := (*sent)[0]
	if msg.attachment != digest {
		t.Errorf("attachment = %q, want digest path", msg.attachment)
	}
	for _, want := range []string{
		"Weekly paper triage report",
		"Attention Is All You Need",
		"decision: k",
		"/papers/attention.pdf",
	} {
		if !strings.Contains(msg.body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if !strings.Contains(log.String(), "alice@example.com") {
		t.Errorf("log %q missing delivery notice", log.String())
	}
}

func TestDispatch_VanishedDigestSkipsAttachment(t *testing.T) {
	d, sent, _ := testDispatcher(enabledConfig(), nil)
	d.Dispatch(someEntries(), filepath.Join(t.TempDir(), "gone.md"))

	if len(*sent) != 1 {
		t.Fatal("dispatcher did not send")
	}
	if (*sent)[0].attachment != "" {
		t.Errorf("attachment = %q, want none for missing digest", (*sent)[0].attachment)
	}
}

func TestDispatch_TransportFailureNonFatal(t *testing.T) {
	d, _, log := testDispatcher(enabledConfig(), nil)
	d.send = func(types.EmailConfig, string, string, string) error {
		return errors.New("connection refused")
	}

	d.Dispatch(someEntries(), "")
	if !strings.Contains(log.String(), "connection refused") {
		t.Errorf("log %q missing transport error", log.String())
	}
}

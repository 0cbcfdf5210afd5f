package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAILBOX_PASSWORD", "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Account.Port != DefaultIMAPPort {
		t.Errorf("port = %d, want %d", cfg.Account.Port, DefaultIMAPPort)
	}
	if cfg.FetchLimit != DefaultFetchLimit {
		t.Errorf("fetch_limit = %d, want %d", cfg.FetchLimit, DefaultFetchLimit)
	}
	if cfg.Mailbox != "INBOX" {
		t.Errorf("mailbox = %q, want INBOX", cfg.Mailbox)
	}
	if cfg.Offline {
		t.Error("offline should default to false")
	}
	if cfg.Complete() {
		t.Error("empty account must not count as complete")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
host: imap.example.com
port: 1143
email: me@example.com
password: hunter2
insecure: true
mailbox: Archive
fetch_limit: 5
offline: true
cache_path: /tmp/mail.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Account.Host != "imap.example.com" {
		t.Errorf("host = %q", cfg.Account.Host)
	}
	if cfg.Account.Port != 1143 {
		t.Errorf("port = %d, want 1143", cfg.Account.Port)
	}
	if cfg.Account.Email != "me@example.com" {
		t.Errorf("email = %q", cfg.Account.Email)
	}
	if cfg.Account.Password != "hunter2" {
		t.Errorf("password = %q", cfg.Account.Password)
	}
	if !cfg.Account.Insecure {
		t.Error("insecure = false, want true")
	}
	if cfg.Mailbox != "Archive" {
		t.Errorf("mailbox = %q", cfg.Mailbox)
	}
	if cfg.FetchLimit != 5 {
		t.Errorf("fetch_limit = %d, want 5", cfg.FetchLimit)
	}
	if !cfg.Offline {
		t.Error("offline = false, want true")
	}
	if cfg.CachePath != "/tmp/mail.db" {
		t.Errorf("cache_path = %q", cfg.CachePath)
	}
	if got := cfg.Account.Addr(); got != "imap.example.com:1143" {
		t.Errorf("Addr() = %q", got)
	}
	if !cfg.Complete() {
		t.Error("configured account should be complete")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
host: file.example.com
email: file@example.com
password: from-file
fetch_limit: 5
`)

	t.Setenv("MAILBOX_HOST", "env.example.com")
	t.Setenv("MAILBOX_FETCH_LIMIT", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Account.Host != "env.example.com" {
		t.Errorf("host = %q, env must win over file", cfg.Account.Host)
	}
	if cfg.FetchLimit != 3 {
		t.Errorf("fetch_limit = %d, want env value 3", cfg.FetchLimit)
	}
	if cfg.Account.Email != "file@example.com" {
		t.Errorf("email = %q, file value must survive", cfg.Account.Email)
	}
}

func TestLoad_SanitizesBadValues(t *testing.T) {
	path := writeConfig(t, `
host: imap.example.com
email: me@example.com
password: x
port: 0
fetch_limit: -4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Account.Port != DefaultIMAPPort {
		t.Errorf("port = %d, want default for 0", cfg.Account.Port)
	}
	if cfg.FetchLimit != DefaultFetchLimit {
		t.Errorf("fetch_limit = %d, want default for negative", cfg.FetchLimit)
	}
}

func TestSave_ExcludesPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := &Config{
		Account: Account{
			Host:     "imap.example.com",
			Port:     993,
			Email:    "me@example.com",
			Password: "secret",
		},
		Mailbox:    "INBOX",
		FetchLimit: 20,
		CachePath:  "/tmp/mail.db",
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "secret") {
		t.Error("password must not be written to the config file")
	}

	t.Setenv("MAILBOX_PASSWORD", "env-secret")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save() error: %v", err)
	}
	if loaded.Account.Host != cfg.Account.Host || loaded.Account.Email != cfg.Account.Email {
		t.Errorf("round-trip lost account fields: %+v", loaded.Account)
	}
	if loaded.Account.Password != "env-secret" {
		t.Errorf("password = %q, want env fallback", loaded.Account.Password)
	}
}

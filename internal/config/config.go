package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/nhle/mailbox-tui/internal/credential"
)

// DefaultIMAPPort is used when no port is configured.
const DefaultIMAPPort = 993

// DefaultFetchLimit is the number of most recent messages loaded at startup.
const DefaultFetchLimit = 20

// Account holds the IMAP connection settings for a single account.
type Account struct {
	// Host is the IMAP server hostname, also used for certificate
	// validation.
	Host string

	// Port is the IMAP port, 993 unless configured otherwise.
	Port int

	// Email is the login identity.
	Email string

	// Password is the login secret. It is resolved from the config file,
	// the MAILBOX_PASSWORD environment variable, or the system keyring,
	// in that order; it is never written back to the config file.
	Password string

	// Insecure disables TLS entirely. Only useful against local test
	// servers.
	Insecure bool
}

// Addr returns the host:port dial address.
func (a Account) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Config is the top-level application configuration.
type Config struct {
	Account Account

	// Mailbox is the mailbox selected at startup.
	Mailbox string

	// FetchLimit caps how many of the newest messages the initial batch
	// load fetches.
	FetchLimit int

	// Offline skips the IMAP connection and browses the local cache.
	Offline bool

	// CachePath is the sqlite database holding the message cache and
	// saved drafts.
	CachePath string
}

// Complete reports whether the account carries enough information to
// attempt a connection.
func (c *Config) Complete() bool {
	return c.Account.Host != "" && c.Account.Email != ""
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailbox-tui/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailbox-tui", "config.yaml")
}

// defaultCachePath returns the default sqlite cache location next to the
// config file.
func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache.db")
	}
	return filepath.Join(home, ".config", "mailbox-tui", "cache.db")
}

// Load reads configuration from the given YAML file path using Viper.
// A missing file is not an error: environment variables (MAILBOX_HOST,
// MAILBOX_EMAIL, ...) and defaults may fully specify the account. The
// password additionally falls back to the system keyring.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("MAILBOX")
	v.AutomaticEnv()

	v.SetDefault("host", "")
	v.SetDefault("port", DefaultIMAPPort)
	v.SetDefault("email", "")
	v.SetDefault("password", "")
	v.SetDefault("insecure", false)
	v.SetDefault("mailbox", "INBOX")
	v.SetDefault("fetch_limit", DefaultFetchLimit)
	v.SetDefault("offline", false)
	v.SetDefault("cache_path", defaultCachePath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Account: Account{
			Host:     v.GetString("host"),
			Port:     v.GetInt("port"),
			Email:    v.GetString("email"),
			Password: v.GetString("password"),
			Insecure: v.GetBool("insecure"),
		},
		Mailbox:    v.GetString("mailbox"),
		FetchLimit: v.GetInt("fetch_limit"),
		Offline:    v.GetBool("offline"),
		CachePath:  v.GetString("cache_path"),
	}

	if cfg.Account.Port == 0 {
		cfg.Account.Port = DefaultIMAPPort
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}

	if cfg.Account.Password == "" {
		if secret, err := credential.Get(credential.PasswordKey); err == nil {
			cfg.Account.Password = secret
		}
	}

	return cfg, nil
}

// Save writes the given configuration to a YAML file at path, creating
// parent directories if needed. The password is deliberately excluded;
// it belongs in the keyring.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("host", cfg.Account.Host)
	v.Set("port", cfg.Account.Port)
	v.Set("email", cfg.Account.Email)
	v.Set("insecure", cfg.Account.Insecure)
	v.Set("mailbox", cfg.Mailbox)
	v.Set("fetch_limit", cfg.FetchLimit)
	v.Set("offline", cfg.Offline)
	v.Set("cache_path", cfg.CachePath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

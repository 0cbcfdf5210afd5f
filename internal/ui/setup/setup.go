// Package setup runs the first-start account form shown when no
// account is configured yet.
package setup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/nhle/mailbox-tui/internal/config"
)

// bindings holds the form field values on the heap so huh's Value()
// pointers stay valid.
type bindings struct {
	host     string
	port     string
	email    string
	password string
}

// Run collects the IMAP account settings interactively and returns the
// resulting account. The password is returned for the caller to store
// in the keyring; it must not end up in the YAML config.
func Run() (config.Account, error) {
	b := &bindings{port: strconv.Itoa(config.DefaultIMAPPort)}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP host").
				Description("e.g. imap.example.com").
				Value(&b.host).
				Validate(nonEmpty("host")),
			huh.NewInput().
				Title("IMAP port").
				Value(&b.port).
				Validate(validPort),
			huh.NewInput().
				Title("Email").
				Value(&b.email).
				Validate(nonEmpty("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&b.password).
				Validate(nonEmpty("password")),
		),
	)

	if err := form.Run(); err != nil {
		return config.Account{}, fmt.Errorf("account setup: %w", err)
	}

	port, err := strconv.Atoi(strings.TrimSpace(b.port))
	if err != nil {
		return config.Account{}, fmt.Errorf("account setup: invalid port %q", b.port)
	}

	return config.Account{
		Host:     strings.TrimSpace(b.host),
		Port:     port,
		Email:    strings.TrimSpace(b.email),
		Password: b.password,
	}, nil
}

func nonEmpty(name string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}

func validPort(value string) error {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || port < 1 || port > 65535 {
		return errors.New("port must be a number between 1 and 65535")
	}
	return nil
}

// Command mailbox-tui is a terminal client that fetches mail over IMAP
// and lets you browse it interactively.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailbox-tui/internal/app"
	"github.com/nhle/mailbox-tui/internal/config"
	"github.com/nhle/mailbox-tui/internal/credential"
	"github.com/nhle/mailbox-tui/internal/fetch"
	"github.com/nhle/mailbox-tui/internal/imapx"
	"github.com/nhle/mailbox-tui/internal/message"
	"github.com/nhle/mailbox-tui/internal/store"
	"github.com/nhle/mailbox-tui/internal/ui/setup"
)

func main() {
	if os.Getenv("MAILBOX_DEBUG") != "" {
		f, err := tea.LogToFile("mailbox-tui.log", "debug")
		if err == nil {
			defer f.Close()
		}
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mailbox-tui:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return err
	}

	// First start: no account configured anywhere. Ask for one, keep
	// the password in the keyring and the rest in the config file.
	if !cfg.Complete() {
		account, err := setup.Run()
		if err != nil {
			return err
		}
		cfg.Account = account
		if err := credential.Set(credential.PasswordKey, account.Password); err != nil {
			log.Printf("storing password in keyring: %v", err)
		}
		if err := config.Save(config.DefaultConfigPath(), cfg); err != nil {
			return err
		}
	}

	st, err := store.Open(cfg.CachePath)
	if err != nil {
		log.Printf("opening cache %s: %v", cfg.CachePath, err)
		st = nil
	} else {
		defer st.Close()
	}

	var msgs []*message.Message
	if cfg.Offline {
		if st == nil {
			return fmt.Errorf("offline mode requires a usable cache at %s", cfg.CachePath)
		}
		msgs, err = st.GetMessages(ctx, cfg.Mailbox)
		if err != nil {
			return err
		}
	} else {
		session, err := imapx.Dial(imapx.Options{
			Addr:     cfg.Account.Addr(),
			Email:    cfg.Account.Email,
			Password: cfg.Account.Password,
			Insecure: cfg.Account.Insecure,
		})
		if err != nil {
			return err
		}

		mbox, err := session.Select(cfg.Mailbox)
		if err != nil {
			session.Logout()
			return err
		}
		// Best-effort logout on any exit path, error or not.
		defer mbox.Logout()

		raws, err := fetch.LoadRecent(ctx, mbox, cfg.FetchLimit)
		if err != nil {
			return err
		}
		msgs, err = fetch.ParseBatch(raws)
		if err != nil {
			return err
		}

		if st != nil {
			if err := st.ReplaceMessages(ctx, cfg.Mailbox, msgs); err != nil {
				log.Printf("caching messages: %v", err)
			}
		}
	}

	var draft *store.Draft
	if st != nil {
		draft, err = st.LatestDraft(ctx)
		if err != nil {
			log.Printf("restoring draft: %v", err)
		}
	}

	program := tea.NewProgram(
		app.New(cfg, st, msgs, draft),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}

	return nil
}

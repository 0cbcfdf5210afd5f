package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nhle/mailbox-tui/internal/message"
)

// cachedMessage is the row shape of the messages table.
type cachedMessage struct {
	Mailbox  string    `db:"mailbox"`
	UID      uint32    `db:"uid"`
	Subject  string    `db:"subject"`
	Sender   string    `db:"sender"`
	Date     time.Time `db:"date"`
	Headers  string    `db:"headers"`
	TextBody string    `db:"text_body"`
	HTMLBody string    `db:"html_body"`
	CachedAt time.Time `db:"cached_at"`
}

// ReplaceMessages replaces the cached contents of a mailbox with the
// given batch. Messages evicted by the replace are gone; the cache
// always mirrors the latest successful load.
func (s *Store) ReplaceMessages(ctx context.Context, mailbox string, msgs []*message.Message) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cache transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE mailbox = ?", mailbox,
	); err != nil {
		return fmt.Errorf("evicting cached messages for %q: %w", mailbox, err)
	}

	now := time.Now()
	for _, msg := range msgs {
		headers, err := json.Marshal(msg.Headers())
		if err != nil {
			return fmt.Errorf("encoding headers for uid %d: %w", msg.UID(), err)
		}

		row := cachedMessage{
			Mailbox:  mailbox,
			UID:      msg.UID(),
			Subject:  msg.HeaderOr("Subject", ""),
			Sender:   msg.HeaderOr("From", ""),
			Date:     msg.Date(),
			Headers:  string(headers),
			TextBody: msg.Text(),
			HTMLBody: msg.HTML(),
			CachedAt: now,
		}

		if _, err := tx.NamedExecContext(ctx, `
INSERT INTO messages (mailbox, uid, subject, sender, date, headers, text_body, html_body, cached_at)
VALUES (:mailbox, :uid, :subject, :sender, :date, :headers, :text_body, :html_body, :cached_at)`,
			row,
		); err != nil {
			return fmt.Errorf("caching message uid %d: %w", msg.UID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache transaction: %w", err)
	}
	return nil
}

// GetMessages loads the cached messages of a mailbox, newest first.
func (s *Store) GetMessages(ctx context.Context, mailbox string) ([]*message.Message, error) {
	var rows []cachedMessage
	err := s.db.SelectContext(ctx, &rows, `
SELECT mailbox, uid, subject, sender, date, headers, text_body, html_body, cached_at
FROM messages
WHERE mailbox = ?
ORDER BY uid DESC`, mailbox)
	if err != nil {
		return nil, fmt.Errorf("loading cached messages for %q: %w", mailbox, err)
	}

	msgs := make([]*message.Message, 0, len(rows))
	for _, row := range rows {
		headers := make(map[string]string)
		if err := json.Unmarshal([]byte(row.Headers), &headers); err != nil {
			return nil, fmt.Errorf("decoding headers for uid %d: %w", row.UID, err)
		}
		msgs = append(msgs, message.New(row.UID, headers, row.Date, row.TextBody, row.HTMLBody))
	}

	return msgs, nil
}

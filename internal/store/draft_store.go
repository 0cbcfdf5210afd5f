package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Draft is an in-progress, unsent message.
type Draft struct {
	ID        string    `db:"id"`
	To        string    `db:"to_addrs"`
	Subject   string    `db:"subject"`
	Body      string    `db:"body"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Empty reports whether every editable field is blank.
func (d Draft) Empty() bool {
	return d.To == "" && d.Subject == "" && d.Body == ""
}

// SaveDraft upserts a draft, assigning an id when it has none, and
// returns the stored draft.
func (s *Store) SaveDraft(ctx context.Context, draft Draft) (Draft, error) {
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	draft.UpdatedAt = time.Now()

	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO drafts (id, to_addrs, subject, body, updated_at)
VALUES (:id, :to_addrs, :subject, :body, :updated_at)
ON CONFLICT(id) DO UPDATE SET
	to_addrs = excluded.to_addrs,
	subject = excluded.subject,
	body = excluded.body,
	updated_at = excluded.updated_at`,
		draft,
	)
	if err != nil {
		return Draft{}, fmt.Errorf("saving draft %s: %w", draft.ID, err)
	}

	return draft, nil
}

// LatestDraft returns the most recently updated draft, or nil when
// there is none.
func (s *Store) LatestDraft(ctx context.Context) (*Draft, error) {
	var draft Draft
	err := s.db.GetContext(ctx, &draft, `
SELECT id, to_addrs, subject, body, updated_at
FROM drafts
ORDER BY updated_at DESC
LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest draft: %w", err)
	}
	return &draft, nil
}

// DeleteDraft removes a draft by id.
func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	return nil
}

// Package fetch orchestrates the initial batch load: enumerate message
// ids, retrieve the newest ones in order, and parse them. The whole
// batch is fail-fast; callers see either a complete result or an error.
package fetch

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"

	"github.com/nhle/mailbox-tui/internal/message"
)

// DefaultLimit is the default number of most recent messages loaded at
// startup, overridable through the fetch_limit config key.
const DefaultLimit = 20

// Source is the selected-mailbox capability the pipeline needs.
// *imapx.Mailbox satisfies it.
type Source interface {
	SearchIDs() ([]imap.UID, error)
	FetchRaw(uid imap.UID) ([]byte, error)
}

// Raw pairs a message id with its raw fetched payload.
type Raw struct {
	UID  imap.UID
	Body []byte
}

// LoadRecent enumerates the mailbox ids (already newest-first), keeps
// at most limit of them, and fetches each sequentially in that order.
// The first fetch failure aborts the whole batch: no partial list is
// returned.
func LoadRecent(ctx context.Context, src Source, limit int) ([]Raw, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	uids, err := src.SearchIDs()
	if err != nil {
		return nil, err
	}
	if len(uids) > limit {
		uids = uids[:limit]
	}

	raws := make([]Raw, 0, len(uids))
	for _, uid := range uids {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("loading recent messages: %w", err)
		}
		body, err := src.FetchRaw(uid)
		if err != nil {
			return nil, err
		}
		raws = append(raws, Raw{UID: uid, Body: body})
	}

	return raws, nil
}

// ParseBatch parses each raw payload in order, preserving the input
// ordering. Fail-fast like LoadRecent.
func ParseBatch(raws []Raw) ([]*message.Message, error) {
	msgs := make([]*message.Message, 0, len(raws))
	for _, raw := range raws {
		msg, err := message.Parse(uint32(raw.UID), raw.Body)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

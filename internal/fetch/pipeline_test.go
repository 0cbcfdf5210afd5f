package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/emersion/go-imap/v2"
)

// fakeSource serves canned uids and bodies, recording fetch order.
type fakeSource struct {
	uids    []imap.UID
	bodies  map[imap.UID][]byte
	failOn  imap.UID
	fetched []imap.UID
}

var errFetchBoom = errors.New("fetch failed")

func (f *fakeSource) SearchIDs() ([]imap.UID, error) {
	return f.uids, nil
}

func (f *fakeSource) FetchRaw(uid imap.UID) ([]byte, error) {
	f.fetched = append(f.fetched, uid)
	if uid == f.failOn {
		return nil, errFetchBoom
	}
	body, ok := f.bodies[uid]
	if !ok {
		return nil, fmt.Errorf("no body for uid %d", uid)
	}
	return body, nil
}

func rawMail(subject string) []byte {
	return []byte("From: a@example.com\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"body of " + subject)
}

func TestLoadRecent_RespectsLimitAndOrder(t *testing.T) {
	src := &fakeSource{
		uids: []imap.UID{5, 3, 1},
		bodies: map[imap.UID][]byte{
			5: rawMail("five"),
			3: rawMail("three"),
			1: rawMail("one"),
		},
	}

	raws, err := LoadRecent(context.Background(), src, 2)
	if err != nil {
		t.Fatalf("LoadRecent() error: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 raws, got %d", len(raws))
	}
	if raws[0].UID != 5 || raws[1].UID != 3 {
		t.Errorf("expected uids [5 3], got [%d %d]", raws[0].UID, raws[1].UID)
	}
	if len(src.fetched) != 2 || src.fetched[0] != 5 || src.fetched[1] != 3 {
		t.Errorf("expected fetch order [5 3], got %v", src.fetched)
	}
}

func TestLoadRecent_DefaultLimit(t *testing.T) {
	uids := make([]imap.UID, 30)
	bodies := make(map[imap.UID][]byte, 30)
	for i := range uids {
		uid := imap.UID(30 - i)
		uids[i] = uid
		bodies[uid] = rawMail(fmt.Sprintf("mail %d", uid))
	}
	src := &fakeSource{uids: uids, bodies: bodies}

	raws, err := LoadRecent(context.Background(), src, 0)
	if err != nil {
		t.Fatalf("LoadRecent() error: %v", err)
	}
	if len(raws) != DefaultLimit {
		t.Fatalf("expected %d raws, got %d", DefaultLimit, len(raws))
	}
}

func TestLoadRecent_FailFast(t *testing.T) {
	src := &fakeSource{
		uids: []imap.UID{5, 4, 3, 2, 1},
		bodies: map[imap.UID][]byte{
			5: rawMail("five"),
			4: rawMail("four"),
			2: rawMail("two"),
			1: rawMail("one"),
		},
		failOn: 3,
	}

	raws, err := LoadRecent(context.Background(), src, 5)
	if !errors.Is(err, errFetchBoom) {
		t.Fatalf("expected errFetchBoom, got %v", err)
	}
	if raws != nil {
		t.Fatalf("expected no partial result, got %d raws", len(raws))
	}
	// Nothing after the failing fetch may be attempted.
	if len(src.fetched) != 3 {
		t.Errorf("expected 3 fetch attempts, got %v", src.fetched)
	}
}

func TestLoadRecent_CanceledContext(t *testing.T) {
	src := &fakeSource{
		uids:   []imap.UID{2, 1},
		bodies: map[imap.UID][]byte{2: rawMail("two"), 1: rawMail("one")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := LoadRecent(ctx, src, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(src.fetched) != 0 {
		t.Errorf("expected no fetches after cancel, got %v", src.fetched)
	}
}

func TestLoadRecent_EmptyMailbox(t *testing.T) {
	src := &fakeSource{}

	raws, err := LoadRecent(context.Background(), src, 20)
	if err != nil {
		t.Fatalf("LoadRecent() error: %v", err)
	}
	if len(raws) != 0 {
		t.Fatalf("expected no raws, got %d", len(raws))
	}
}

func TestParseBatch_PreservesOrder(t *testing.T) {
	raws := []Raw{
		{UID: 9, Body: rawMail("newest")},
		{UID: 4, Body: rawMail("middle")},
		{UID: 2, Body: rawMail("oldest")},
	}

	msgs, err := ParseBatch(raws)
	if err != nil {
		t.Fatalf("ParseBatch() error: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}

	wantUIDs := []uint32{9, 4, 2}
	wantSubjects := []string{"newest", "middle", "oldest"}
	for i, msg := range msgs {
		if msg.UID() != wantUIDs[i] {
			t.Errorf("message %d: uid = %d, want %d", i, msg.UID(), wantUIDs[i])
		}
		if got := msg.HeaderOr("Subject", ""); got != wantSubjects[i] {
			t.Errorf("message %d: subject = %q, want %q", i, got, wantSubjects[i])
		}
	}
}

func TestParseBatch_FailFast(t *testing.T) {
	raws := []Raw{
		{UID: 3, Body: rawMail("good")},
		{UID: 2, Body: []byte("not a mail message at all")},
		{UID: 1, Body: rawMail("never reached")},
	}

	msgs, err := ParseBatch(raws)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if msgs != nil {
		t.Fatalf("expected no partial result, got %d messages", len(msgs))
	}
}

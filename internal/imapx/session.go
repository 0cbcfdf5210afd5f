// Package imapx wraps go-imap v2 behind a two-phase session type:
// a Session can only select a mailbox, and the Mailbox returned by a
// successful select is the only type carrying search and fetch
// operations. Calling fetch before select is therefore unrepresentable.
package imapx

import (
	"errors"
	"log"
	"sort"
	"unicode/utf8"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Options holds the dial and login settings for one IMAP account.
type Options struct {
	// Addr is the host:port of the IMAP server. The hostname is also
	// used for certificate validation.
	Addr string

	Email    string
	Password string

	// Insecure dials without TLS. Only for local test servers.
	Insecure bool
}

// Session is an authenticated connection with no mailbox selected.
// Its only capabilities are Select and Logout. A successful Select
// consumes the Session; the returned Mailbox owns the connection from
// then on.
type Session struct {
	addr   string
	client *imapclient.Client
}

var errConsumed = errors.New("session already consumed by a select")

// Dial establishes the (TLS) connection and authenticates. Any
// transport, TLS, or login failure is returned as a *ConnectError and
// leaves no partial state behind.
func Dial(opts Options) (*Session, error) {
	var client *imapclient.Client
	var err error

	if opts.Insecure {
		client, err = imapclient.DialInsecure(opts.Addr, nil)
	} else {
		client, err = imapclient.DialTLS(opts.Addr, nil)
	}
	if err != nil {
		return nil, &ConnectError{Addr: opts.Addr, Err: err}
	}

	if err := client.Login(opts.Email, opts.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &ConnectError{Addr: opts.Addr, Err: err}
	}

	return &Session{addr: opts.Addr, client: client}, nil
}

// Select issues SELECT for the named mailbox. On success the Session is
// consumed and the returned Mailbox is the only way to reach search and
// fetch operations.
func (s *Session) Select(name string) (*Mailbox, error) {
	if s.client == nil {
		return nil, &SelectError{Mailbox: name, Err: errConsumed}
	}

	if _, err := s.client.Select(name, nil).Wait(); err != nil {
		return nil, &SelectError{Mailbox: name, Err: err}
	}

	mbox := &Mailbox{name: name, client: s.client}
	s.client = nil
	return mbox, nil
}

// Logout ends the session. Best-effort: a failed logout is logged and
// swallowed, never surfaced.
func (s *Session) Logout() {
	if s.client == nil {
		return
	}
	logout(s.client)
	s.client = nil
}

// Mailbox is an authenticated connection with a mailbox selected.
type Mailbox struct {
	name   string
	client *imapclient.Client
}

// Name returns the selected mailbox name.
func (m *Mailbox) Name() string { return m.name }

// SearchIDs returns the uids of every message in the mailbox, sorted
// strictly descending so the newest message comes first.
func (m *Mailbox) SearchIDs() ([]imap.UID, error) {
	data, err := m.client.UIDSearch(&imap.SearchCriteria{}, nil).Wait()
	if err != nil {
		return nil, &QueryError{Mailbox: m.name, Err: err}
	}

	uids := data.AllUIDs()
	sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })
	return uids, nil
}

// FetchRaw fetches the full raw RFC 5322 representation of one message
// by uid, headers included. BODY.PEEK is used so the message is not
// marked as read.
func (m *Mailbox) FetchRaw(uid imap.UID) ([]byte, error) {
	section := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{section},
	}

	msgs, err := m.client.Fetch(imap.UIDSetNum(uid), fetchOpts).Collect()
	if err != nil {
		return nil, &FetchError{UID: uint32(uid), Reason: FetchFailed, Err: err}
	}
	if len(msgs) == 0 {
		return nil, &FetchError{UID: uint32(uid), Reason: FetchNotFound}
	}

	body := msgs[0].FindBodySection(section)
	if len(body) == 0 {
		return nil, &FetchError{UID: uint32(uid), Reason: FetchEmpty}
	}
	if !utf8.Valid(body) {
		return nil, &FetchError{UID: uint32(uid), Reason: FetchMalformed}
	}

	return body, nil
}

// Reselect re-issues SELECT for the held mailbox. Selecting the same
// mailbox again on a live session is idempotent at the protocol level.
func (m *Mailbox) Reselect() error {
	if _, err := m.client.Select(m.name, nil).Wait(); err != nil {
		return &SelectError{Mailbox: m.name, Err: err}
	}
	return nil
}

// Logout ends the session. Best-effort, like Session.Logout.
func (m *Mailbox) Logout() {
	if m.client == nil {
		return
	}
	logout(m.client)
	m.client = nil
}

func logout(client *imapclient.Client) {
	if err := client.Logout().Wait(); err != nil {
		log.Printf("imap logout: %v", err)
	}
}

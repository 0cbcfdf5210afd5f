package imapx

import "fmt"

// ConnectError indicates the encrypted transport could not be
// established or the login was rejected. It is fatal: no session state
// is retained when it is returned.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// SelectError indicates the named mailbox could not be selected.
type SelectError struct {
	Mailbox string
	Err     error
}

func (e *SelectError) Error() string {
	return fmt.Sprintf("selecting mailbox %q: %v", e.Mailbox, e.Err)
}

func (e *SelectError) Unwrap() error { return e.Err }

// QueryError indicates a message id search failed.
type QueryError struct {
	Mailbox string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("searching mailbox %q: %v", e.Mailbox, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// FetchReason classifies a fetch failure.
type FetchReason int

const (
	// FetchFailed covers protocol-level fetch errors.
	FetchFailed FetchReason = iota

	// FetchNotFound means the uid yielded no message.
	FetchNotFound

	// FetchEmpty means a message exists but carries no body payload.
	FetchEmpty

	// FetchMalformed means the payload is not valid UTF-8 text.
	FetchMalformed
)

func (r FetchReason) String() string {
	switch r {
	case FetchNotFound:
		return "not found"
	case FetchEmpty:
		return "empty body"
	case FetchMalformed:
		return "malformed body"
	default:
		return "fetch failed"
	}
}

// FetchError indicates a single-message fetch failed.
type FetchError struct {
	UID    uint32
	Reason FetchReason
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching uid %d: %s: %v", e.UID, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetching uid %d: %s", e.UID, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

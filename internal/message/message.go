// Package message converts raw fetched payloads into structured,
// immutable messages. MIME decoding is delegated to go-message; this
// package only shapes the result.
package message

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	// Registers decoders for non-UTF-8 charsets.
	_ "github.com/emersion/go-message/charset"
)

var (
	// ErrNoStructure means the parser could not identify any message
	// structure in the payload.
	ErrNoStructure = errors.New("no message structure")

	// ErrNoHeaders means a structure was found but it carries zero
	// header fields.
	ErrNoHeaders = errors.New("message has no header fields")

	// ErrMissingHeader is returned by Header for absent header names.
	ErrMissingHeader = errors.New("missing header")
)

// Message is one parsed mail message. It is constructed once at fetch
// time and immutable afterwards.
type Message struct {
	uid     uint32
	headers map[string]string
	date    time.Time
	text    string
	html    string
}

// Parse builds a Message from the raw RFC 5322 payload fetched under
// the given uid. Header values are stored in decoded, human-readable
// form (encoded-word subjects come out as text); the Date header is
// parsed into a time.Time at this point so formatting stays a
// presentation concern.
func Parse(uid uint32, raw []byte) (*Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing message uid %d: %w", uid, ErrNoStructure)
	}
	defer mr.Close()

	headers := make(map[string]string)
	fields := mr.Header.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		// Fields iterates in message order, so a repeated name ends up
		// with its last parsed value.
		headers[textproto.CanonicalMIMEHeaderKey(fields.Key())] = value
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("parsing message uid %d: %w", uid, ErrNoHeaders)
	}

	date, err := mr.Header.Date()
	if err != nil {
		date = time.Time{}
	}

	msg := &Message{uid: uid, headers: headers, date: date}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := inline.ContentType()

		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && msg.text == "":
			msg.text = string(body)
		case strings.HasPrefix(contentType, "text/html") && msg.html == "":
			msg.html = string(body)
		}
	}

	return msg, nil
}

// New rebuilds a Message from already-decoded parts, e.g. when loading
// from the local cache.
func New(uid uint32, headers map[string]string, date time.Time, text, html string) *Message {
	canonical := make(map[string]string, len(headers))
	for k, v := range headers {
		canonical[textproto.CanonicalMIMEHeaderKey(k)] = v
	}
	return &Message{uid: uid, headers: canonical, date: date, text: text, html: html}
}

// UID returns the server-assigned message id the payload was fetched
// with.
func (m *Message) UID() uint32 { return m.uid }

// Header returns the decoded value of the named header. Lookup is
// case-insensitive; at most one value is retained per name, the last
// parsed occurrence winning over earlier ones.
func (m *Message) Header(name string) (string, error) {
	value, ok := m.headers[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok {
		return "", fmt.Errorf("header %q: %w", name, ErrMissingHeader)
	}
	return value, nil
}

// HeaderOr returns the named header, or fallback when it is absent or
// blank. Rendering code uses this to substitute placeholders instead of
// failing a frame.
func (m *Message) HeaderOr(name, fallback string) string {
	value, err := m.Header(name)
	if err != nil || strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Headers returns a copy of the header map.
func (m *Message) Headers() map[string]string {
	out := make(map[string]string, len(m.headers))
	for k, v := range m.headers {
		out[k] = v
	}
	return out
}

// Date returns the parsed Date header, zero when absent or invalid.
func (m *Message) Date() time.Time { return m.date }

// Text returns the plain-text body, empty when the message has none.
func (m *Message) Text() string { return m.text }

// HTML returns the HTML body, empty when the message has none.
func (m *Message) HTML() string { return m.html }

// PlainBody returns the best available plain-text rendering: the text
// body when present, otherwise the HTML body stripped to text.
func (m *Message) PlainBody() string {
	if m.text != "" {
		return m.text
	}
	return stripHTML(m.html)
}

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes HTML tags from a string and decodes common
// entities, providing a basic plain-text rendering.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}

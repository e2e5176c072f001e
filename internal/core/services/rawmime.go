package services

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// mimeBoundary is the fixed multipart boundary token. A constant boundary
// cannot collide with user-supplied attachment names because names only ever
// appear inside quoted header parameters and base64 payloads.
const mimeBoundary = "mailmirror_0000_boundary"

// rawHeader is one accumulated top-level header line.
type rawHeader struct {
	name  string
	value string
}

// rawPart is one accumulated MIME part, already encoded for transport.
type rawPart struct {
	headers []rawHeader
	content string
}

// RawMessageBuilder assembles a multipart/mixed MIME document from typed
// header and part records and serialises it exactly once. It performs no size
// enforcement; callers reject oversized attachment sets before building.
type RawMessageBuilder struct {
	headers []rawHeader
	parts   []rawPart
}

// NewRawMessage starts a message with the mandatory address headers.
func NewRawMessage(from, to string) *RawMessageBuilder {
	b := &RawMessageBuilder{}
	b.headers = append(b.headers,
		rawHeader{"From", from},
		rawHeader{"To", to},
	)
	return b
}

// Cc adds a carbon-copy recipient line when non-empty.
func (b *RawMessageBuilder) Cc(cc string) *RawMessageBuilder {
	if cc != "" {
		b.headers = append(b.headers, rawHeader{"Cc", cc})
	}
	return b
}

// Bcc adds a blind-copy recipient line when non-empty.
func (b *RawMessageBuilder) Bcc(bcc string) *RawMessageBuilder {
	if bcc != "" {
		b.headers = append(b.headers, rawHeader{"Bcc", bcc})
	}
	return b
}

// Subject sets the subject, RFC 2047 base64-encoded so any UTF-8 survives
// transport.
func (b *RawMessageBuilder) Subject(subject string) *RawMessageBuilder {
	encoded := base64.StdEncoding.EncodeToString([]byte(subject))
	b.headers = append(b.headers, rawHeader{"Subject", fmt.Sprintf("=?utf-8?B?%s?=", encoded)})
	return b
}

// Body adds the text/html body part.
func (b *RawMessageBuilder) Body(body string) *RawMessageBuilder {
	b.parts = append(b.parts, rawPart{
		headers: []rawHeader{
			{"Content-Type", `text/html; charset="UTF-8"`},
		},
		content: body,
	})
	return b
}

// Attach adds one attachment part, base64-encoding its payload.
func (b *RawMessageBuilder) Attach(filename, mimeType string, data []byte) *RawMessageBuilder {
	b.parts = append(b.parts, rawPart{
		headers: []rawHeader{
			{"Content-Type", fmt.Sprintf("%s; name=%q", mimeType, filename)},
			{"Content-Transfer-Encoding", "base64"},
			{"Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename)},
		},
		content: base64.StdEncoding.EncodeToString(data),
	})
	return b
}

// Encode serialises the accumulated document and returns it base64url-encoded
// for provider transmission: standard base64 with `+`→`-`, `/`→`_` and
// padding stripped.
func (b *RawMessageBuilder) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(b.serialize()))
}

// serialize writes the full RFC 2822 document with CRLF line endings.
func (b *RawMessageBuilder) serialize() string {
	var buf strings.Builder

	for _, h := range b.headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.name, h.value)
	}
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mimeBoundary)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("\r\n")

	for _, p := range b.parts {
		fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
		for _, h := range p.headers {
			fmt.Fprintf(&buf, "%s: %s\r\n", h.name, h.value)
		}
		buf.WriteString("\r\n")
		buf.WriteString(p.content)
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)

	return buf.String()
}

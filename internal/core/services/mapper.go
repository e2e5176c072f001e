package services

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
)

// attachmentURLFormat is the deterministic download location for a message
// attachment, parameterized by message id and attachment id. Bytes are never
// fetched at mapping time.
const attachmentURLFormat = "https://gmail.googleapis.com/gmail/v1/users/me/messages/%s/attachments/%s"

// dateLayouts are tried in order when parsing the Date header. Providers emit
// several RFC 5322 flavours in the wild.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
}

// ExtractThread deterministically maps a remote message into a local thread
// record owned by the given account. Header matching is case-sensitive and
// first-match-wins per name.
func ExtractThread(msg domain.RemoteMessage, accountID, threadID string) domain.Thread {
	record := domain.Thread{
		AccountID: accountID,
		ThreadID:  threadID,
		Labels:    domain.NewLabelSet(msg.Labels...),
	}
	if record.ThreadID == "" {
		record.ThreadID = msg.ThreadID
	}

	if msg.Payload != nil {
		var dateValue string
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "Subject":
				if record.Subject == "" {
					record.Subject = h.Value
				}
			case "From":
				if record.From == "" {
					record.From = h.Value
				}
			case "To":
				if record.To == "" {
					record.To = h.Value
				}
			case "Cc":
				if record.Cc == "" {
					record.Cc = h.Value
				}
			case "Bcc":
				if record.Bcc == "" {
					record.Bcc = h.Value
				}
			case "Date":
				if dateValue == "" {
					dateValue = h.Value
				}
			}
		}
		record.Date = parseMessageDate(dateValue)
		record.Body = extractBody(msg.Payload)
		record.Attachments = extractAttachments(msg.ID, msg.Payload)
	}

	return record
}

// parseMessageDate returns nil when the header is missing or not parseable;
// absence of a date means "unknown", never an error.
func parseMessageDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts
		}
	}
	return nil
}

// extractBody picks the first text/html part, falling back to the first
// text/plain part, falling back to the top-level body when the message has no
// parts at all.
func extractBody(payload *domain.RemotePart) string {
	if part := findPart(payload, "text/html"); part != nil {
		return DecodeBase64URL(part.Body.Data)
	}
	if part := findPart(payload, "text/plain"); part != nil {
		return DecodeBase64URL(part.Body.Data)
	}
	if len(payload.Parts) == 0 {
		return DecodeBase64URL(payload.Body.Data)
	}
	return ""
}

// findPart walks the part tree depth-first for the first part of the given
// MIME type that carries inline data. Attachment parts are never body
// candidates.
func findPart(part *domain.RemotePart, mimeType string) *domain.RemotePart {
	if part.MIMEType == mimeType && part.Filename == "" && part.Body.Data != "" {
		return part
	}
	for i := range part.Parts {
		if found := findPart(&part.Parts[i], mimeType); found != nil {
			return found
		}
	}
	return nil
}

// extractAttachments collects one entry per part with a non-empty filename.
func extractAttachments(messageID string, payload *domain.RemotePart) []domain.Attachment {
	var out []domain.Attachment
	walkParts(payload, func(part *domain.RemotePart) {
		if part.Filename == "" {
			return
		}
		out = append(out, domain.Attachment{
			Filename:     part.Filename,
			MIMEType:     part.MIMEType,
			URL:          fmt.Sprintf(attachmentURLFormat, messageID, part.Body.AttachmentID),
			AttachmentID: part.Body.AttachmentID,
		})
	})
	return out
}

// walkParts visits every node of the part tree, root included.
func walkParts(part *domain.RemotePart, visit func(*domain.RemotePart)) {
	visit(part)
	for i := range part.Parts {
		walkParts(&part.Parts[i], visit)
	}
}

// DecodeBase64URL decodes provider body data: base64url alphabet (`-`/`_`),
// padding optional. Empty input decodes to the empty string, never an error;
// undecodable input likewise degrades to empty rather than failing a whole
// sync pass.
func DecodeBase64URL(data string) string {
	if data == "" {
		return ""
	}
	normalized := strings.ReplaceAll(data, "-", "+")
	normalized = strings.ReplaceAll(normalized, "_", "/")
	if pad := len(normalized) % 4; pad != 0 {
		normalized += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return ""
	}
	return string(decoded)
}

package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
)

// gmailUser is the authenticated-user alias the Gmail API expects.
const gmailUser = "me"

// mailbox is a Gmail client bound to one account's token.
type mailbox struct {
	service *gmailapi.Service
	limiter *RateLimiter
}

var _ driven.Mailbox = (*mailbox)(nil)

// ListThreads returns one page of thread references matching the query.
// The after:/before: operators work at second granularity; callers apply
// their own strict filtering on message timestamps.
func (m *mailbox) ListThreads(ctx context.Context, q driven.ThreadQuery) (*domain.ThreadList, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := m.service.Users.Threads.List(gmailUser).Context(ctx)
	if query := buildSearchQuery(q); query != "" {
		call = call.Q(query)
	}
	if q.PageSize > 0 {
		call = call.MaxResults(q.PageSize)
	}
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", wrapError(err))
	}

	list := &domain.ThreadList{NextPageToken: resp.NextPageToken}
	for _, t := range resp.Threads {
		list.Threads = append(list.Threads, domain.ThreadRef{ID: t.Id})
	}
	return list, nil
}

// buildSearchQuery renders the cursor bounds as Gmail search operators.
// before: widens by one second so messages inside the cursor's second are not
// lost to truncation; the caller's strict comparison discards the overlap.
func buildSearchQuery(q driven.ThreadQuery) string {
	var parts []string
	if !q.After.IsZero() {
		parts = append(parts, fmt.Sprintf("after:%d", q.After.Unix()))
	}
	if !q.Before.IsZero() {
		parts = append(parts, fmt.Sprintf("before:%d", q.Before.Unix()+1))
	}
	return strings.Join(parts, " ")
}

// GetThread fetches a conversation with per-message metadata. Message bodies
// are fetched individually through GetMessage.
func (m *mailbox) GetThread(ctx context.Context, threadID string) (*domain.RemoteThread, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	thread, err := m.service.Users.Threads.Get(gmailUser, threadID).
		Format("minimal").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting thread %s: %w", threadID, wrapError(err))
	}

	out := &domain.RemoteThread{ID: thread.Id}
	for _, msg := range thread.Messages {
		out.Messages = append(out.Messages, domain.RemoteMessage{
			ID:           msg.Id,
			ThreadID:     msg.ThreadId,
			InternalDate: msg.InternalDate,
			Labels:       msg.LabelIds,
		})
	}
	return out, nil
}

// GetMessage fetches one full message including its MIME part tree.
func (m *mailbox) GetMessage(ctx context.Context, messageID string) (*domain.RemoteMessage, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg, err := m.service.Users.Messages.Get(gmailUser, messageID).
		Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting message %s: %w", messageID, wrapError(err))
	}
	return toRemoteMessage(msg), nil
}

// Send transmits a base64url-encoded raw MIME message.
func (m *mailbox) Send(ctx context.Context, raw string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}

	msg, err := m.service.Users.Messages.Send(gmailUser, &gmailapi.Message{Raw: raw}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sending message: %w", wrapError(err))
	}
	return msg.Id, nil
}

// ModifyThread applies label additions and removals to a conversation.
func (m *mailbox) ModifyThread(ctx context.Context, threadID string, add, remove []string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := m.service.Users.Threads.Modify(gmailUser, threadID, &gmailapi.ModifyThreadRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("modifying thread %s: %w", threadID, wrapError(err))
	}
	return nil
}

// TrashThread moves a conversation to the trash.
func (m *mailbox) TrashThread(ctx context.Context, threadID string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := m.service.Users.Threads.Trash(gmailUser, threadID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("trashing thread %s: %w", threadID, wrapError(err))
	}
	return nil
}

// UntrashThread restores a conversation from the trash.
func (m *mailbox) UntrashThread(ctx context.Context, threadID string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := m.service.Users.Threads.Untrash(gmailUser, threadID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("untrashing thread %s: %w", threadID, wrapError(err))
	}
	return nil
}

// Attachment fetches the decoded bytes of one attachment.
func (m *mailbox) Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := m.service.Users.Messages.Attachments.Get(gmailUser, messageID, attachmentID).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting attachment %s: %w", attachmentID, wrapError(err))
	}

	data, err := decodeBody(body.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding attachment %s: %w", attachmentID, err)
	}
	return data, nil
}

// decodeBody decodes Gmail body data, which is base64url with or without
// padding depending on the endpoint.
func decodeBody(data string) ([]byte, error) {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}

// toRemoteMessage converts a full-format Gmail message.
func toRemoteMessage(msg *gmailapi.Message) *domain.RemoteMessage {
	out := &domain.RemoteMessage{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		InternalDate: msg.InternalDate,
		Labels:       msg.LabelIds,
	}
	if msg.Payload != nil {
		part := toRemotePart(msg.Payload)
		out.Payload = &part
	}
	return out
}

// toRemotePart converts one node of the MIME part tree.
func toRemotePart(part *gmailapi.MessagePart) domain.RemotePart {
	out := domain.RemotePart{
		PartID:   part.PartId,
		MIMEType: part.MimeType,
		Filename: part.Filename,
	}
	for _, h := range part.Headers {
		out.Headers = append(out.Headers, domain.RemoteHeader{Name: h.Name, Value: h.Value})
	}
	if part.Body != nil {
		out.Body = domain.RemoteBody{
			AttachmentID: part.Body.AttachmentId,
			Data:         part.Body.Data,
			Size:         part.Body.Size,
		}
	}
	for _, child := range part.Parts {
		out.Parts = append(out.Parts, toRemotePart(child))
	}
	return out
}

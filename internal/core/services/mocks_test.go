package services

import (
	"context"
	"time"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
)

// mockProvider implements driven.Provider for testing.
type mockProvider struct {
	authURL    string
	exchanged  *domain.OAuthToken
	exchangeErr error
	refreshed  *domain.OAuthToken
	refreshErr error
	refreshCount int
	mailbox    driven.Mailbox
	mailboxErr error
}

var _ driven.Provider = (*mockProvider)(nil)

func (p *mockProvider) AuthURL(_ []string, state string) string {
	return p.authURL + "?state=" + state
}

func (p *mockProvider) Exchange(_ context.Context, _ string) (*domain.OAuthToken, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.exchanged, nil
}

func (p *mockProvider) Refresh(_ context.Context, _ string) (*domain.OAuthToken, error) {
	p.refreshCount++
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	return p.refreshed, nil
}

func (p *mockProvider) Mailbox(_ context.Context, _ *domain.OAuthToken) (driven.Mailbox, error) {
	if p.mailboxErr != nil {
		return nil, p.mailboxErr
	}
	return p.mailbox, nil
}

// mockMailbox implements driven.Mailbox for testing. Per-call hooks allow
// tests to inject failures; unset hooks use the canned fields.
type mockMailbox struct {
	list        *domain.ThreadList
	listErr     error
	lastQuery   driven.ThreadQuery
	listCalls   int
	threads     map[string]*domain.RemoteThread
	getThreadErr map[string]error
	messages    map[string]*domain.RemoteMessage
	getMessageErr map[string]error

	sentRaw    string
	sendID     string
	sendErr    error

	modifyCalls  int
	trashCalls   int
	untrashCalls int
	modifyErr    error
	trashErr     error
	untrashErr   error
	lastAdd      []string
	lastRemove   []string

	attachment    []byte
	attachmentErr error
	lastMessageID string
	lastAttachID  string
}

var _ driven.Mailbox = (*mockMailbox)(nil)

func (m *mockMailbox) ListThreads(_ context.Context, q driven.ThreadQuery) (*domain.ThreadList, error) {
	m.listCalls++
	m.lastQuery = q
	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.list == nil {
		return &domain.ThreadList{}, nil
	}
	return m.list, nil
}

func (m *mockMailbox) GetThread(_ context.Context, threadID string) (*domain.RemoteThread, error) {
	if err := m.getThreadErr[threadID]; err != nil {
		return nil, err
	}
	thread, ok := m.threads[threadID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return thread, nil
}

func (m *mockMailbox) GetMessage(_ context.Context, messageID string) (*domain.RemoteMessage, error) {
	if err := m.getMessageErr[messageID]; err != nil {
		return nil, err
	}
	msg, ok := m.messages[messageID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

func (m *mockMailbox) Send(_ context.Context, raw string) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sentRaw = raw
	return m.sendID, nil
}

func (m *mockMailbox) ModifyThread(_ context.Context, _ string, add, remove []string) error {
	m.modifyCalls++
	m.lastAdd = add
	m.lastRemove = remove
	return m.modifyErr
}

func (m *mockMailbox) TrashThread(_ context.Context, _ string) error {
	m.trashCalls++
	return m.trashErr
}

func (m *mockMailbox) UntrashThread(_ context.Context, _ string) error {
	m.untrashCalls++
	return m.untrashErr
}

func (m *mockMailbox) Attachment(_ context.Context, messageID, attachmentID string) ([]byte, error) {
	m.lastMessageID = messageID
	m.lastAttachID = attachmentID
	if m.attachmentErr != nil {
		return nil, m.attachmentErr
	}
	return m.attachment, nil
}

// remoteMessage builds a minimal remote message with an internal date.
func remoteMessage(id, threadID string, internalDate time.Time) domain.RemoteMessage {
	return domain.RemoteMessage{
		ID:           id,
		ThreadID:     threadID,
		InternalDate: internalDate.UnixMilli(),
	}
}

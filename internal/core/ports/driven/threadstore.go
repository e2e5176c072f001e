package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
)

// ThreadStore persists locally mirrored threads. Upserts are keyed on
// (account id, provider thread id): re-upserting the same thread overwrites
// message-derived fields without creating a second row.
type ThreadStore interface {
	// UpsertBatch inserts or overwrites the given records in one pass.
	// Records lacking an ID are assigned one by the store.
	UpsertBatch(ctx context.Context, threads []domain.Thread) error

	// GetByAccountAndThreadID retrieves one record by its provider thread id.
	// Returns domain.ErrNotFound when the thread is not mirrored locally.
	GetByAccountAndThreadID(ctx context.Context, accountID, threadID string) (*domain.Thread, error)

	// ListByAccountPage returns one page of an account's threads ordered by
	// date descending, offset (page-1)*pageSize. Page numbers start at 1.
	ListByAccountPage(ctx context.Context, accountID string, page, pageSize int) ([]domain.Thread, error)

	// LatestDate returns the timestamp of the most recently dated thread
	// stored for the account, or nil when none carries a date.
	LatestDate(ctx context.Context, accountID string) (*time.Time, error)

	// OldestDate returns the timestamp of the least recently dated thread
	// stored for the account, or nil when none carries a date.
	OldestDate(ctx context.Context, accountID string) (*time.Time, error)

	// UpdateLabels replaces the label set of one record.
	UpdateLabels(ctx context.Context, accountID, threadID string, labels domain.LabelSet) error
}

package driving

import (
	"context"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
)

// DefaultPageSize is the thread page size used when the caller passes none.
const DefaultPageSize = 50

// SyncService pulls remote threads into local storage and serves paginated
// reads from it.
type SyncService interface {
	// Sync runs one sync pass for the account and returns the requested page
	// of locally stored threads, ordered by date descending. Page 1 pulls
	// threads newer than local state; pages above 1 pull older ones.
	Sync(ctx context.Context, accountID string, page, pageSize int) ([]domain.Thread, error)
}

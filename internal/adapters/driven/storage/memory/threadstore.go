package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore is an in-memory implementation of driven.ThreadStore with the
// same upsert key as the SQLite store: (account id, provider thread id).
type ThreadStore struct {
	mu      sync.RWMutex
	threads map[threadKey]domain.Thread
}

type threadKey struct {
	accountID string
	threadID  string
}

// NewThreadStore creates a new in-memory thread store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{
		threads: make(map[threadKey]domain.Thread),
	}
}

// UpsertBatch inserts or overwrites the given records.
func (s *ThreadStore) UpsertBatch(_ context.Context, threads []domain.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range threads {
		key := threadKey{t.AccountID, t.ThreadID}
		if existing, ok := s.threads[key]; ok {
			t.ID = existing.ID
		} else if t.ID == "" {
			t.ID = uuid.New().String()
		}
		s.threads[key] = t
	}
	return nil
}

// GetByAccountAndThreadID retrieves one record by its provider thread id.
func (s *ThreadStore) GetByAccountAndThreadID(_ context.Context, accountID, threadID string) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[threadKey{accountID, threadID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneThread(t), nil
}

// ListByAccountPage returns one page ordered by date descending. Undated
// records sort last.
func (s *ThreadStore) ListByAccountPage(_ context.Context, accountID string, page, pageSize int) ([]domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []domain.Thread
	for key, t := range s.threads {
		if key.accountID == accountID {
			all = append(all, *cloneThread(t))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		di, dj := all[i].Date, all[j].Date
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})

	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// LatestDate returns the most recent thread date for the account.
func (s *ThreadStore) LatestDate(_ context.Context, accountID string) (*time.Time, error) {
	return s.boundaryDate(accountID, func(candidate, best time.Time) bool {
		return candidate.After(best)
	})
}

// OldestDate returns the least recent thread date for the account.
func (s *ThreadStore) OldestDate(_ context.Context, accountID string) (*time.Time, error) {
	return s.boundaryDate(accountID, func(candidate, best time.Time) bool {
		return candidate.Before(best)
	})
}

func (s *ThreadStore) boundaryDate(accountID string, better func(candidate, best time.Time) bool) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *time.Time
	for key, t := range s.threads {
		if key.accountID != accountID || t.Date == nil {
			continue
		}
		if best == nil || better(*t.Date, *best) {
			d := *t.Date
			best = &d
		}
	}
	return best, nil
}

// UpdateLabels replaces the label set of one record.
func (s *ThreadStore) UpdateLabels(_ context.Context, accountID, threadID string, labels domain.LabelSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := threadKey{accountID, threadID}
	t, ok := s.threads[key]
	if !ok {
		return domain.ErrNotFound
	}
	t.Labels = labels.Clone()
	s.threads[key] = t
	return nil
}

// cloneThread copies a record so callers cannot mutate stored state.
func cloneThread(t domain.Thread) *domain.Thread {
	out := t
	if t.Date != nil {
		d := *t.Date
		out.Date = &d
	}
	out.Labels = t.Labels.Clone()
	if t.Attachments != nil {
		out.Attachments = make([]domain.Attachment, len(t.Attachments))
		copy(out.Attachments, t.Attachments)
	}
	return &out
}

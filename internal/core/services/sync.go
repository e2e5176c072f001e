package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driving"
	"github.com/custodia-labs/mailmirror/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncService = (*SyncEngine)(nil)

// SyncEngine pulls remote threads into local storage. Page 1 runs in latest
// mode: the cursor is the most recently dated local thread and the remote
// query asks for strictly newer messages. Pages above 1 run in older mode
// against the oldest local date. Responses are always served from local
// storage after the pass, giving callers one pagination contract regardless
// of remote API quirks.
type SyncEngine struct {
	tokens  *TokenManager
	threads driven.ThreadStore
}

// NewSyncEngine creates a sync engine.
func NewSyncEngine(tokens *TokenManager, threads driven.ThreadStore) *SyncEngine {
	return &SyncEngine{
		tokens:  tokens,
		threads: threads,
	}
}

// Sync runs one sync pass for the account and returns the requested page of
// locally stored threads ordered by date descending. Individual thread fetch
// failures are logged and skipped; a partial pass is preferred over a failed
// one.
func (e *SyncEngine) Sync(ctx context.Context, accountID string, page, pageSize int) ([]domain.Thread, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = driving.DefaultPageSize
	}
	latest := page == 1

	mailbox, err := e.tokens.PrepareClient(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var cursor *time.Time
	if latest {
		cursor, err = e.threads.LatestDate(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("resolve latest cursor: %w", err)
		}
	} else {
		cursor, err = e.threads.OldestDate(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("resolve oldest cursor: %w", err)
		}
		if cursor == nil {
			// Nothing mirrored yet, so there is nothing older to pull.
			// Serve the page straight from local storage.
			return e.threads.ListByAccountPage(ctx, accountID, page, pageSize)
		}
	}

	query := driven.ThreadQuery{PageSize: int64(pageSize)}
	if cursor != nil {
		if latest {
			query.After = *cursor
		} else {
			query.Before = *cursor
		}
	}

	list, err := mailbox.ListThreads(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list remote threads: %w", err)
	}

	var records []domain.Thread
	for _, ref := range list.Threads {
		messages, err := e.fetchThread(ctx, mailbox, ref.ID, cursor, latest)
		if err != nil {
			logger.Warn("Skipping thread %s: %v", ref.ID, err)
			continue
		}
		for i := range messages {
			records = append(records, ExtractThread(messages[i], accountID, ref.ID))
		}
	}

	if len(records) > 0 {
		if err := e.threads.UpsertBatch(ctx, records); err != nil {
			return nil, fmt.Errorf("upsert threads: %w", err)
		}
		logger.Info("Synced %d messages across %d threads for account %s",
			len(records), len(list.Threads), accountID)
	}

	return e.threads.ListByAccountPage(ctx, accountID, page, pageSize)
}

// fetchThread loads one conversation, filters its messages against the
// cursor and fan-out fetches the surviving message details concurrently.
// The assembled order follows completion order; only the store's date
// ordering is guaranteed to callers.
func (e *SyncEngine) fetchThread(
	ctx context.Context,
	mailbox driven.Mailbox,
	threadID string,
	cursor *time.Time,
	latest bool,
) ([]domain.RemoteMessage, error) {
	thread, err := mailbox.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	var wanted []domain.RemoteMessage
	for _, msg := range thread.Messages {
		if matchesCursor(msg.InternalDate, cursor, latest) {
			wanted = append(wanted, msg)
		}
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out []domain.RemoteMessage
	)
	for _, msg := range wanted {
		wg.Add(1)
		go func(ref domain.RemoteMessage) {
			defer wg.Done()
			full, err := mailbox.GetMessage(ctx, ref.ID)
			if err != nil {
				logger.Warn("Skipping message %s in thread %s: %v", ref.ID, threadID, err)
				return
			}
			if full.ThreadID == "" {
				full.ThreadID = threadID
			}
			mu.Lock()
			out = append(out, *full)
			mu.Unlock()
		}(msg)
	}
	wg.Wait()

	return out, nil
}

// matchesCursor applies the strict cursor comparison: > in latest mode,
// < in older mode. A nil cursor disables filtering.
func matchesCursor(internalDate int64, cursor *time.Time, latest bool) bool {
	if cursor == nil {
		return true
	}
	ts := time.UnixMilli(internalDate)
	if latest {
		return ts.After(*cursor)
	}
	return ts.Before(*cursor)
}

package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/mailmirror/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.mailmirror/data/mailmirror.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".mailmirror", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "mailmirror.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// AccountStore returns an AccountStore interface backed by this store.
func (s *Store) AccountStore() driven.AccountStore {
	return &accountStore{store: s}
}

// ThreadStore returns a ThreadStore interface backed by this store.
func (s *Store) ThreadStore() driven.ThreadStore {
	return &threadStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Account Store ====================

// accountStore implements driven.AccountStore.
type accountStore struct {
	store *Store
}

var _ driven.AccountStore = (*accountStore)(nil)

// Save stores or updates an account.
func (s *accountStore) Save(ctx context.Context, account domain.Account) error {
	tokenJSON, err := marshalToken(account.Token)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO accounts (id, full_name, email, token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			token = excluded.token,
			updated_at = excluded.updated_at
	`, account.ID, account.FullName, account.Email, tokenJSON,
		account.CreatedAt, account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving account: %w", err)
	}
	return nil
}

// Get retrieves an account by ID.
func (s *accountStore) Get(ctx context.Context, id string) (*domain.Account, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, token, created_at, updated_at
		FROM accounts WHERE id = ?
	`, id)
	return scanAccount(row)
}

// GetByEmail retrieves an account by its email address.
func (s *accountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, token, created_at, updated_at
		FROM accounts WHERE email = ?
	`, email)
	return scanAccount(row)
}

// SaveToken persists the token record for an account, leaving the other
// account fields untouched.
func (s *accountStore) SaveToken(ctx context.Context, accountID string, token domain.OAuthToken) error {
	tokenJSON, err := marshalToken(&token)
	if err != nil {
		return err
	}

	result, err := s.store.db.ExecContext(ctx, `
		UPDATE accounts SET token = ?, updated_at = ? WHERE id = ?
	`, tokenJSON, time.Now().UTC(), accountID)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking token update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all registered accounts.
func (s *accountStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, full_name, email, token, created_at, updated_at
		FROM accounts ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account //nolint:prealloc // size unknown from query
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return accounts, nil
}

// Delete removes an account. Thread rows that reference it keep existing with
// their account relation cleared by the schema's ON DELETE SET NULL.
func (s *accountStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

// scanAccount scans one account row.
func scanAccount(row scanner) (*domain.Account, error) {
	var account domain.Account
	var tokenJSON sql.NullString
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&account.ID, &account.FullName, &account.Email,
		&tokenJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	if tokenJSON.Valid && tokenJSON.String != "" && tokenJSON.String != jsonNull {
		var token domain.OAuthToken
		if err := json.Unmarshal([]byte(tokenJSON.String), &token); err != nil {
			return nil, fmt.Errorf("unmarshaling token: %w", err)
		}
		account.Token = &token
	}
	if createdAt.Valid {
		account.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		account.UpdatedAt = updatedAt.Time
	}
	return &account, nil
}

// marshalToken serialises a token to its JSON column value, NULL when absent.
func marshalToken(token *domain.OAuthToken) (any, error) {
	if token == nil {
		return nil, nil
	}
	data, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("marshalling token: %w", err)
	}
	return string(data), nil
}

// ==================== Thread Store ====================

// threadStore implements driven.ThreadStore.
type threadStore struct {
	store *Store
}

var _ driven.ThreadStore = (*threadStore)(nil)

// UpsertBatch inserts or overwrites the given records in one transaction.
// The conflict target (account_id, thread_id) makes repeated sync passes
// overwrite rather than duplicate.
func (s *threadStore) UpsertBatch(ctx context.Context, threads []domain.Thread) error {
	if len(threads) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO threads (id, account_id, thread_id, subject, from_addr, to_addr,
			cc, bcc, date, body, attachments, labels)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, thread_id) DO UPDATE SET
			subject = excluded.subject,
			from_addr = excluded.from_addr,
			to_addr = excluded.to_addr,
			cc = excluded.cc,
			bcc = excluded.bcc,
			date = excluded.date,
			body = excluded.body,
			attachments = excluded.attachments,
			labels = excluded.labels
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, thread := range threads {
		if thread.ID == "" {
			thread.ID = uuid.New().String()
		}

		attachmentsJSON, err := json.Marshal(thread.Attachments)
		if err != nil {
			return fmt.Errorf("marshalling attachments: %w", err)
		}
		labelsJSON, err := json.Marshal(thread.Labels)
		if err != nil {
			return fmt.Errorf("marshalling labels: %w", err)
		}

		var date any
		if thread.Date != nil {
			date = thread.Date.UTC()
		}

		if _, err := stmt.ExecContext(ctx, thread.ID, thread.AccountID, thread.ThreadID,
			thread.Subject, thread.From, thread.To, thread.Cc, thread.Bcc,
			date, thread.Body, string(attachmentsJSON), string(labelsJSON)); err != nil {
			return fmt.Errorf("upserting thread %s: %w", thread.ThreadID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetByAccountAndThreadID retrieves one record by its provider thread id.
func (s *threadStore) GetByAccountAndThreadID(ctx context.Context, accountID, threadID string) (*domain.Thread, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, account_id, thread_id, subject, from_addr, to_addr, cc, bcc,
			date, body, attachments, labels
		FROM threads WHERE account_id = ? AND thread_id = ?
	`, accountID, threadID)
	return scanThread(row)
}

// ListByAccountPage returns one page of an account's threads ordered by date
// descending. Undated rows sort last.
func (s *threadStore) ListByAccountPage(ctx context.Context, accountID string, page, pageSize int) ([]domain.Thread, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, account_id, thread_id, subject, from_addr, to_addr, cc, bcc,
			date, body, attachments, labels
		FROM threads WHERE account_id = ?
		ORDER BY date IS NULL, date DESC
		LIMIT ? OFFSET ?
	`, accountID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("querying threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread //nolint:prealloc // size unknown from query
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, *thread)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating threads: %w", err)
	}
	return threads, nil
}

// LatestDate returns the most recent thread date for the account.
func (s *threadStore) LatestDate(ctx context.Context, accountID string) (*time.Time, error) {
	return s.boundaryDate(ctx, accountID, "MAX")
}

// OldestDate returns the least recent thread date for the account.
func (s *threadStore) OldestDate(ctx context.Context, accountID string) (*time.Time, error) {
	return s.boundaryDate(ctx, accountID, "MIN")
}

// boundaryDate runs one of the two aggregate cursor queries. The aggregate
// argument is a literal, never user input.
func (s *threadStore) boundaryDate(ctx context.Context, accountID, aggregate string) (*time.Time, error) {
	query := fmt.Sprintf(
		"SELECT %s(date) FROM threads WHERE account_id = ? AND date IS NOT NULL",
		aggregate)

	var date sql.NullTime
	if err := s.store.db.QueryRowContext(ctx, query, accountID).Scan(&date); err != nil {
		return nil, fmt.Errorf("querying boundary date: %w", err)
	}
	if !date.Valid {
		return nil, nil
	}
	d := date.Time
	return &d, nil
}

// UpdateLabels replaces the label set of one record.
func (s *threadStore) UpdateLabels(ctx context.Context, accountID, threadID string, labels domain.LabelSet) error {
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("marshalling labels: %w", err)
	}

	result, err := s.store.db.ExecContext(ctx, `
		UPDATE threads SET labels = ? WHERE account_id = ? AND thread_id = ?
	`, string(labelsJSON), accountID, threadID)
	if err != nil {
		return fmt.Errorf("updating labels: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking label update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanThread scans one thread row.
func scanThread(row scanner) (*domain.Thread, error) {
	var thread domain.Thread
	var accountID sql.NullString
	var date sql.NullTime
	var attachmentsJSON, labelsJSON string
	if err := row.Scan(&thread.ID, &accountID, &thread.ThreadID, &thread.Subject,
		&thread.From, &thread.To, &thread.Cc, &thread.Bcc,
		&date, &thread.Body, &attachmentsJSON, &labelsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning thread: %w", err)
	}

	thread.AccountID = accountID.String
	if date.Valid {
		d := date.Time
		thread.Date = &d
	}
	if attachmentsJSON != "" && attachmentsJSON != jsonNull {
		if err := json.Unmarshal([]byte(attachmentsJSON), &thread.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshaling attachments: %w", err)
		}
	}
	if labelsJSON != "" && labelsJSON != jsonNull {
		if err := json.Unmarshal([]byte(labelsJSON), &thread.Labels); err != nil {
			return nil, fmt.Errorf("unmarshaling labels: %w", err)
		}
	}
	return &thread, nil
}

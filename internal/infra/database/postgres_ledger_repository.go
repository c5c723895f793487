// internal/infra/database/postgres_ledger_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"reminder_notifier/internal/domain/ledger"
	"reminder_notifier/internal/domain/reminder"

	"github.com/lib/pq" // For pq.CopyIn
)

const postgresLedgerSchema = `CREATE TABLE IF NOT EXISTS sent_reminders (
	seq       BIGSERIAL PRIMARY KEY,
	dedup_key TEXT NOT NULL UNIQUE,
	sent_at   TIMESTAMPTZ NOT NULL
)`

// PostgresLedgerRepository keeps the ledger in the sent_reminders table.
// The seq column preserves insertion order for trimming.
type PostgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

// Migrate creates the ledger table if it does not exist.
func (r *PostgresLedgerRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, postgresLedgerSchema); err != nil {
		return fmt.Errorf("error creating sent_reminders table: %w", err)
	}
	return nil
}

func (r *PostgresLedgerRepository) Load(ctx context.Context) (*ledger.Ledger, error) {
	return loadLedger(ctx, r.db, `SELECT dedup_key, sent_at FROM sent_reminders ORDER BY seq`)
}

// Save replaces the table contents with the ledger in one transaction,
// bulk-loading rows with COPY.
func (r *PostgresLedgerRepository) Save(ctx context.Context, l *ledger.Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning ledger transaction: %w", err)
	}
	defer tx.Rollback() // No-op after Commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM sent_reminders`); err != nil {
		return fmt.Errorf("error clearing sent_reminders: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("sent_reminders", "dedup_key", "sent_at"))
	if err != nil {
		return fmt.Errorf("error preparing sent_reminders copy: %w", err)
	}
	for _, e := range l.Entries() {
		if _, err := stmt.ExecContext(ctx, string(e.Key), e.SentAt); err != nil {
			stmt.Close()
			return fmt.Errorf("error copying ledger entry %q: %w", e.Key, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil { // Flush COPY buffer
		stmt.Close()
		return fmt.Errorf("error flushing sent_reminders copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("error closing sent_reminders copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing ledger: %w", err)
	}
	return nil
}

func loadLedger(ctx context.Context, db *sql.DB, query string) (*ledger.Ledger, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying sent reminders: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var key string
		if err := rows.Scan(&key, &e.SentAt); err != nil {
			return nil, fmt.Errorf("error scanning sent reminder: %w", err)
		}
		e.Key = reminder.DedupKey(key)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sent reminders: %w", err)
	}
	return ledger.FromEntries(entries), nil
}

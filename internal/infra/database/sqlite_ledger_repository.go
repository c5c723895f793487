package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reminder_notifier/internal/domain/ledger"
	"reminder_notifier/internal/domain/reminder"
)

const sqliteLedgerSchema = `CREATE TABLE IF NOT EXISTS sent_reminders (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	dedup_key TEXT NOT NULL UNIQUE,
	sent_at   TEXT NOT NULL
)`

// SQLiteLedgerRepository is the single-file database variant of the ledger.
// Timestamps are stored as RFC 3339 text.
type SQLiteLedgerRepository struct {
	db *sql.DB
}

func NewSQLiteLedgerRepository(db *sql.DB) *SQLiteLedgerRepository {
	return &SQLiteLedgerRepository{db: db}
}

func (r *SQLiteLedgerRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteLedgerSchema); err != nil {
		return fmt.Errorf("error creating sent_reminders table: %w", err)
	}
	return nil
}

func (r *SQLiteLedgerRepository) Load(ctx context.Context) (*ledger.Ledger, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT dedup_key, sent_at FROM sent_reminders ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying sent reminders: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var key, sentAt string
		if err := rows.Scan(&key, &sentAt); err != nil {
			return nil, fmt.Errorf("error scanning sent reminder: %w", err)
		}
		ts, _ := time.Parse(time.RFC3339Nano, sentAt)
		entries = append(entries, ledger.Entry{Key: reminder.DedupKey(key), SentAt: ts})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sent reminders: %w", err)
	}
	return ledger.FromEntries(entries), nil
}

func (r *SQLiteLedgerRepository) Save(ctx context.Context, l *ledger.Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning ledger transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sent_reminders`); err != nil {
		return fmt.Errorf("error clearing sent_reminders: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sent_reminders (dedup_key, sent_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range l.Entries() {
		if _, err := stmt.ExecContext(ctx, string(e.Key), e.SentAt.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("error inserting ledger entry %q: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing ledger: %w", err)
	}
	return nil
}

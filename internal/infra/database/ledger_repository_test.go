package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reminder_notifier/internal/domain/ledger"
	"reminder_notifier/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type migratingRepository interface {
	ledger.Repository
	Migrate(ctx context.Context) error
}

func newSQLiteRepository(t *testing.T) migratingRepository {
	t.Helper()
	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "db", "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewSQLiteLedgerRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

// newPostgresRepository runs against TEST_DATABASE_URL when it is set.
func newPostgresRepository(t *testing.T) migratingRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := NewPostgresConnection(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewPostgresLedgerRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	_, err = db.Exec(`DELETE FROM sent_reminders`)
	require.NoError(t, err)
	return repo
}

func TestLedgerRepositories(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) migratingRepository
	}{
		{"sqlite", newSQLiteRepository},
		{"postgres", newPostgresRepository},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Run("empty", func(t *testing.T) {
				repo := b.open(t)
				l, err := repo.Load(context.Background())
				require.NoError(t, err)
				assert.Equal(t, 0, l.Len())
			})

			t.Run("round trip keeps order", func(t *testing.T) {
				repo := b.open(t)
				ctx := context.Background()
				t0 := time.Date(2025, time.March, 1, 14, 2, 0, 0, time.UTC)

				l := ledger.New()
				keys := []reminder.DedupKey{"zeta|2025-03-01|09:00", "alpha|2025-03-01|09:00"}
				for i, k := range keys {
					l.Record(k, t0.Add(time.Duration(i)*time.Second))
				}
				require.NoError(t, repo.Save(ctx, l))

				loaded, err := repo.Load(ctx)
				require.NoError(t, err)
				entries := loaded.Entries()
				require.Len(t, entries, 2)
				assert.Equal(t, keys[0], entries[0].Key)
				assert.Equal(t, keys[1], entries[1].Key)
				assert.True(t, t0.Equal(entries[0].SentAt))
			})

			t.Run("save replaces trimmed entries", func(t *testing.T) {
				repo := b.open(t)
				ctx := context.Background()

				l := ledger.New()
				for i := 1; i <= 1001; i++ {
					l.Record(reminder.DedupKey(fmt.Sprintf("k%d", i)), time.Unix(int64(i), 0).UTC())
				}
				require.NoError(t, repo.Save(ctx, l))

				require.True(t, l.TrimIfOversized())
				require.NoError(t, repo.Save(ctx, l))

				loaded, err := repo.Load(ctx)
				require.NoError(t, err)
				assert.Equal(t, 500, loaded.Len())
				assert.True(t, loaded.IsNew("k501"))
				assert.Equal(t, reminder.DedupKey("k502"), loaded.Entries()[0].Key)
			})
		})
	}
}

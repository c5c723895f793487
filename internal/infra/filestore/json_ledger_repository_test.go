package filestore

import (
	"context"
	"errors"
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

func TestLoadMissingFileIsEmpty(t *testing.T) {
	repo := NewJSONLedgerRepository(filepath.Join(t.TempDir(), "missing.json"))

	l, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestSaveThenLoadPreservesInsertionOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sent.json")
	repo := NewJSONLedgerRepository(path)
	ctx := context.Background()

	loc := time.FixedZone("COT", -5*3600)
	t0 := time.Date(2025, time.March, 1, 9, 2, 0, 0, loc)

	l := ledger.New()
	// Keys deliberately not in lexical order.
	keys := []reminder.DedupKey{"zeta|2025-03-01|09:00", "alpha|2025-03-01|09:00", "mid|2025-03-01|09:00"}
	for i, k := range keys {
		l.Record(k, t0.Add(time.Duration(i)*time.Minute))
	}
	require.NoError(t, repo.Save(ctx, l))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.Changed())

	entries := loaded.Entries()
	require.Len(t, entries, 3)
	for i, k := range keys {
		assert.Equal(t, k, entries[i].Key)
		assert.True(t, t0.Add(time.Duration(i)*time.Minute).Equal(entries[i].SentAt))
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files are cleaned up")
}

func TestLoadAcceptsNaiveTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent.json")
	doc := `{"Pagar Internet|2025-03-01|09:00": "2025-03-01T09:02:13.123456", "x|2025-03-02|10:00": "garbage"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	l, err := NewJSONLedgerRepository(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, l.Len())

	ts, ok := l.SentAt("Pagar Internet|2025-03-01|09:00")
	require.True(t, ok)
	assert.Equal(t, 13, ts.Second())
	assert.False(t, l.IsNew("x|2025-03-02|10:00"), "unreadable timestamps still dedup")
}

func TestLoadEmptyAndMalformed(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
	l, err := NewJSONLedgerRepository(empty).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())

	for i, doc := range []string{`[1,2]`, `{"a": 1}`, `{"a": "b"`, `not json`} {
		p := filepath.Join(dir, fmt.Sprintf("bad%d.json", i))
		require.NoError(t, os.WriteFile(p, []byte(doc), 0o600))
		_, err := NewJSONLedgerRepository(p).Load(context.Background())
		require.Error(t, err, doc)
		assert.True(t, errors.Is(err, ErrMalformedLedger), doc)
	}
}

func TestSaveLargeLedgerRoundTrip(t *testing.T) {
	repo := NewJSONLedgerRepository(filepath.Join(t.TempDir(), "sent.json"))
	ctx := context.Background()

	l := ledger.New()
	for i := 1; i <= 1001; i++ {
		l.Record(reminder.DedupKey(fmt.Sprintf("k%d", i)), time.Unix(int64(i), 0).UTC())
	}
	l.TrimIfOversized()
	require.NoError(t, repo.Save(ctx, l))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500, loaded.Len())
	assert.Equal(t, reminder.DedupKey("k502"), loaded.Entries()[0].Key)
}

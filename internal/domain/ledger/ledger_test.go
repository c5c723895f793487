package ledger

import (
	"fmt"
	"testing"
	"time"

	"reminder_notifier/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(i int) reminder.DedupKey { return reminder.DedupKey(fmt.Sprintf("k%d", i)) }

func TestRecordThenIsNew(t *testing.T) {
	l := New()
	k := reminder.DedupKey("Pagar Internet|2025-03-01|09:00")

	assert.True(t, l.IsNew(k))
	assert.False(t, l.Changed())

	ts := time.Date(2025, time.March, 1, 9, 2, 0, 0, time.UTC)
	l.Record(k, ts)

	assert.False(t, l.IsNew(k))
	assert.True(t, l.Changed())
	got, ok := l.SentAt(k)
	require.True(t, ok)
	assert.Equal(t, ts, got)
}

func TestRecordOverwriteKeepsPosition(t *testing.T) {
	t0 := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	l := New()
	l.Record("a", t0)
	l.Record("b", t0)
	l.Record("a", t0.Add(time.Hour))

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, reminder.DedupKey("a"), entries[0].Key)
	assert.Equal(t, t0.Add(time.Hour), entries[0].SentAt)
	assert.Equal(t, reminder.DedupKey("b"), entries[1].Key)
}

func TestFromEntriesIsUnchanged(t *testing.T) {
	l := FromEntries([]Entry{{Key: "a"}, {Key: "b"}})
	assert.Equal(t, 2, l.Len())
	assert.False(t, l.Changed())
	assert.False(t, l.IsNew("a"))
}

func TestTrimIfOversized(t *testing.T) {
	t0 := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	l := New()
	for i := 1; i <= 1001; i++ {
		// Timestamps run backwards to show the trim ignores them.
		l.Record(key(i), t0.Add(-time.Duration(i)*time.Minute))
	}

	require.True(t, l.TrimIfOversized())
	require.Equal(t, 500, l.Len())

	entries := l.Entries()
	assert.Equal(t, key(502), entries[0].Key)
	assert.Equal(t, key(1001), entries[len(entries)-1].Key)
	assert.True(t, l.IsNew(key(501)))
	assert.True(t, l.IsNew(key(1)))
	assert.False(t, l.IsNew(key(502)))
}

func TestTrimIfOversizedAtLimit(t *testing.T) {
	l := New()
	for i := 1; i <= MaxEntries; i++ {
		l.Record(key(i), time.Time{})
	}
	assert.False(t, l.TrimIfOversized())
	assert.Equal(t, MaxEntries, l.Len())
}

package ledger

import (
	"time"

	"reminder_notifier/internal/domain/reminder"
)

const (
	// MaxEntries is the size above which TrimIfOversized drops old keys.
	MaxEntries = 1000
	// KeepEntries is how many of the most recently inserted keys survive a trim.
	KeepEntries = 500
)

// Entry is one sent occurrence.
type Entry struct {
	Key    reminder.DedupKey
	SentAt time.Time
}

// Ledger maps dedup keys to the time they were sent, remembering insertion
// order. It is a bounded cache: trimmed keys are forgotten.
// Not safe for concurrent use; one cycle owns it at a time.
type Ledger struct {
	order   []reminder.DedupKey
	sentAt  map[reminder.DedupKey]time.Time
	changed bool
}

func New() *Ledger {
	return &Ledger{sentAt: make(map[reminder.DedupKey]time.Time)}
}

// FromEntries builds a ledger in the given insertion order. A repeated key
// keeps its first position and its last timestamp.
func FromEntries(entries []Entry) *Ledger {
	l := New()
	for _, e := range entries {
		l.put(e.Key, e.SentAt)
	}
	return l
}

// IsNew reports whether key has not been recorded.
func (l *Ledger) IsNew(key reminder.DedupKey) bool {
	_, found := l.sentAt[key]
	return !found
}

// Record marks key as sent at ts.
func (l *Ledger) Record(key reminder.DedupKey, ts time.Time) {
	l.put(key, ts)
	l.changed = true
}

func (l *Ledger) put(key reminder.DedupKey, ts time.Time) {
	if _, found := l.sentAt[key]; !found {
		l.order = append(l.order, key)
	}
	l.sentAt[key] = ts
}

// SentAt returns when key was recorded.
func (l *Ledger) SentAt(key reminder.DedupKey) (time.Time, bool) {
	ts, found := l.sentAt[key]
	return ts, found
}

// TrimIfOversized keeps only the KeepEntries most recently inserted keys once
// the ledger holds more than MaxEntries. It reports whether anything was dropped.
func (l *Ledger) TrimIfOversized() bool {
	if len(l.order) <= MaxEntries {
		return false
	}
	drop := l.order[:len(l.order)-KeepEntries]
	for _, key := range drop {
		delete(l.sentAt, key)
	}
	l.order = append([]reminder.DedupKey(nil), l.order[len(l.order)-KeepEntries:]...)
	return true
}

func (l *Ledger) Len() int { return len(l.order) }

// Changed reports whether Record was called since the ledger was built.
func (l *Ledger) Changed() bool { return l.changed }

// Entries returns all entries in insertion order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, Entry{Key: key, SentAt: l.sentAt[key]})
	}
	return out
}

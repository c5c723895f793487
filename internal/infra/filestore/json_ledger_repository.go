package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reminder_notifier/internal/domain/ledger"
	"reminder_notifier/internal/domain/reminder"
)

// timestampLayouts are accepted on load; the first is used on save.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // naive ISO-8601, no offset
}

var ErrMalformedLedger = errors.New("malformed ledger file")

// JSONLedgerRepository stores the ledger as a flat JSON object of
// key -> ISO-8601 timestamp, written in insertion order.
type JSONLedgerRepository struct {
	path string
}

func NewJSONLedgerRepository(path string) *JSONLedgerRepository {
	return &JSONLedgerRepository{path: path}
}

func (r *JSONLedgerRepository) Load(ctx context.Context) (*ledger.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return ledger.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading ledger file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ledger.New(), nil
	}

	entries, err := decodeOrdered(data)
	if err != nil {
		return nil, err
	}
	return ledger.FromEntries(entries), nil
}

// decodeOrdered walks the object token by token; encoding/json maps lose
// key order, which the size trim depends on.
func decodeOrdered(data []byte) ([]ledger.Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLedger, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected an object", ErrMalformedLedger)
	}

	var entries []ledger.Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLedger, err)
		}
		key, _ := keyTok.(string)

		var raw string
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: value of %q: %v", ErrMalformedLedger, key, err)
		}
		entries = append(entries, ledger.Entry{Key: reminder.DedupKey(key), SentAt: parseTimestamp(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: unterminated object: %v", ErrMalformedLedger, err)
	}
	return entries, nil
}

// parseTimestamp returns the zero time for unreadable values; only key
// presence matters for dedup.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Save writes the whole ledger to a temporary file and renames it over the
// previous one, so readers never see a partial document.
func (r *JSONLedgerRepository) Save(ctx context.Context, l *ledger.Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range l.Entries() {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		k, err := json.Marshal(string(e.Key))
		if err != nil {
			return fmt.Errorf("error encoding ledger key: %w", err)
		}
		v, _ := json.Marshal(e.SentAt.Format(timestampLayouts[0]))
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	if l.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp ledger file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error writing ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error closing ledger file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error replacing ledger file: %w", err)
	}
	return nil
}

package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"reminder_notifier/internal/domain/reminder"
)

var ErrUnexpectedStatus = errors.New("unexpected status fetching sheet")

// maxSheetBytes caps the download; a reminders sheet is a few kilobytes.
const maxSheetBytes = 4 << 20

// CSVSource downloads a CSV export (for example a published spreadsheet)
// on every Fetch.
type CSVSource struct {
	url    string
	client *http.Client
}

func NewCSVSource(url string, timeout time.Duration) *CSVSource {
	return &CSVSource{url: url, client: &http.Client{Timeout: timeout}}
}

func (s *CSVSource) Fetch(ctx context.Context) ([]reminder.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building sheet request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return ParseCSV(io.LimitReader(resp.Body, maxSheetBytes))
}

package source

import (
	"context"

	"reminder_notifier/internal/domain/reminder"
)

// Source supplies the current set of reminder rows. It is called once per
// evaluation cycle; nothing is cached between calls.
type Source interface {
	Fetch(ctx context.Context) ([]reminder.Record, error)
}

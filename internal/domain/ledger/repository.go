package ledger

import "context"

// Repository persists a Ledger as a whole. Load on a store that does not
// exist yet returns an empty ledger, not an error.
type Repository interface {
	Load(ctx context.Context) (*Ledger, error)
	Save(ctx context.Context, l *Ledger) error
}

package transaction

import (
	"context"
)

// Source supplies bounded lists of transaction records.
// Implementations: the sync-endpoint HTTP client and the legacy
// document-store repository.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]Record, error)
}

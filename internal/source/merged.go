package source

import (
	"context"
	"log/slog"

	"github.com/parkops/backoffice/internal/domain/transaction"
)

// Merged combines the live sync feed with the archive. When the same record
// ID appears in both, the live copy wins; archive order is preserved for the
// rest.
type Merged struct {
	live    transaction.Source
	archive transaction.Source
	logger  *slog.Logger
}

// NewMerged creates a merged source over a live feed and an archive
func NewMerged(logger *slog.Logger, live, archive transaction.Source) *Merged {
	return &Merged{
		live:    live,
		archive: archive,
		logger:  logger,
	}
}

// Fetch reads both feeds and returns live records followed by archive-only
// records. A failure in either feed fails the whole fetch; reports built on
// half the data would be worse than no report.
func (m *Merged) Fetch(ctx context.Context, limit int) ([]transaction.Record, error) {
	liveRecords, err := m.live.Fetch(ctx, limit)
	if err != nil {
		return nil, err
	}

	archiveRecords, err := m.archive.Fetch(ctx, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(liveRecords))
	merged := make([]transaction.Record, 0, len(liveRecords)+len(archiveRecords))
	for _, record := range liveRecords {
		seen[record.ID] = struct{}{}
		merged = append(merged, record)
	}

	duplicates := 0
	for _, record := range archiveRecords {
		if _, ok := seen[record.ID]; ok {
			duplicates++
			continue
		}
		merged = append(merged, record)
	}
	if duplicates > 0 {
		m.logger.Debug("Skipped duplicate archive records", "count", duplicates)
	}

	return merged, nil
}

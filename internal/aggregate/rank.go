package aggregate

import (
	"sort"

	"github.com/parkops/backoffice/internal/domain/report"
	"github.com/parkops/backoffice/internal/domain/transaction"
)

// TopCities ranks city buckets by count descending, then truncates to n.
// The sort is stable: cities with equal counts keep the order in which they
// first appeared in the record set, so rankings are deterministic.
func TopCities(records []transaction.Record, n int) []report.RankEntry {
	order := make([]string, 0)
	seen := make(map[string]int)

	for _, record := range records {
		key := cityKey(record.City)
		if _, ok := seen[key]; !ok {
			seen[key] = len(order)
			order = append(order, key)
		}
	}

	agg := Compute(records)
	entries := make([]report.RankEntry, 0, len(order))
	for _, key := range order {
		bucket := agg.TotalsByCity[key]
		entries = append(entries, report.RankEntry{Key: key, Count: bucket.Count, Sum: bucket.Sum})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	return truncate(entries, n)
}

// TopRecords returns the n highest-value records, stable on equal amounts
func TopRecords(records []transaction.Record, n int) []transaction.Record {
	ranked := make([]transaction.Record, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PreferredAmount().GreaterThan(ranked[j].PreferredAmount())
	})

	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func truncate(entries []report.RankEntry, n int) []report.RankEntry {
	if n >= 0 && n < len(entries) {
		return entries[:n]
	}
	return entries
}

// Package report defines the aggregate results produced by the aggregation
// engine. Aggregates are rebuilt from scratch on every filter change and
// never mutated in place.
package report

import (
	"github.com/shopspring/decimal"
)

// Bucket accumulates a count and a monetary sum for one group key
type Bucket struct {
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

// Summary holds the derived KPIs for a filtered record set
type Summary struct {
	TotalCount     int             `json:"total_count"`
	TotalValue     decimal.Decimal `json:"total_value"`
	AverageTicket  decimal.Decimal `json:"average_ticket"`
	ActiveCount    int             `json:"active_count"`
	CompletedCount int             `json:"completed_count"`
	CanceledCount  int             `json:"canceled_count"`
	GrowthRate     float64         `json:"growth_rate"`
}

// Aggregate is the full multi-dimensional breakdown of a filtered record set.
// Each bucket map partitions the whole set: bucket counts always sum to
// Summary.TotalCount.
type Aggregate struct {
	Summary        Summary           `json:"summary"`
	TotalsByMethod map[string]Bucket `json:"totals_by_method"`
	TotalsByStatus map[string]Bucket `json:"totals_by_status"`
	TotalsByCity   map[string]Bucket `json:"totals_by_city"`
	TotalsByDay    map[string]Bucket `json:"totals_by_day"`
	TotalsByHour   map[int]Bucket    `json:"totals_by_hour"`
}

// Empty returns a zero-valued aggregate with initialized bucket maps
func Empty() Aggregate {
	return Aggregate{
		Summary: Summary{
			TotalValue:    decimal.Zero,
			AverageTicket: decimal.Zero,
		},
		TotalsByMethod: make(map[string]Bucket),
		TotalsByStatus: make(map[string]Bucket),
		TotalsByCity:   make(map[string]Bucket),
		TotalsByDay:    make(map[string]Bucket),
		TotalsByHour:   make(map[int]Bucket),
	}
}

// RankEntry is one row of a top-N ranking
type RankEntry struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

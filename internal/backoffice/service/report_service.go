package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/parkops/backoffice/internal/aggregate"
	"github.com/parkops/backoffice/internal/domain/transaction"
	"github.com/parkops/backoffice/internal/filter"
)

// ErrStaleRequest indicates that a newer refresh superseded this one while
// it was being computed. Its result must not be rendered.
var ErrStaleRequest = errors.New("report request superseded by a newer one")

const (
	topCitiesLimit  = 5
	topRecordsLimit = 10
)

// dashboardPeriods are the tiles computed by Dashboard, in display order
var dashboardPeriods = []filter.Period{
	filter.PeriodToday,
	filter.PeriodWeek,
	filter.PeriodMonth,
	filter.PeriodYear,
}

// ReportServiceImpl implements the ReportService interface
type ReportServiceImpl struct {
	source     transaction.Source
	pool       *ants.Pool
	fetchLimit int
	logger     *slog.Logger
	generation atomic.Uint64
	nowFn      func() time.Time
}

// NewReportService creates a report service backed by a transaction source
// and a worker pool for dashboard fan-out
func NewReportService(logger *slog.Logger, source transaction.Source, pool *ants.Pool, fetchLimit int) *ReportServiceImpl {
	return &ReportServiceImpl{
		source:     source,
		pool:       pool,
		fetchLimit: fetchLimit,
		logger:     logger,
		nowFn:      time.Now,
	}
}

// Overview fetches, filters and aggregates the record set for one period.
// Each call takes a generation number; if another call starts before this
// one finishes, the older result is discarded with ErrStaleRequest so the
// caller never renders data for a filter the operator already left.
func (s *ReportServiceImpl) Overview(ctx context.Context, period filter.Period, customStart, customEnd time.Time, scope filter.Scope) (*Overview, error) {
	generation := s.generation.Add(1)
	now := s.nowFn()

	dateRange, err := filter.Resolve(period, now, customStart, customEnd)
	if err != nil {
		return nil, err
	}

	records, sourceError := s.fetch(ctx)

	scoped := filter.ByScope(filter.ByRange(records, dateRange), scope)
	agg := aggregate.Compute(scoped)

	prior := filter.ByScope(filter.ByRange(records, filter.PriorWindow(dateRange)), scope)
	agg.Summary.GrowthRate = aggregate.GrowthRate(agg.Summary.TotalCount, len(prior))

	if s.generation.Load() != generation {
		s.logger.Debug("Discarding stale overview result", "generation", generation)
		return nil, ErrStaleRequest
	}

	return &Overview{
		Period:      period,
		Range:       dateRange,
		Aggregate:   agg,
		TopCities:   aggregate.TopCities(scoped, topCitiesLimit),
		TopRecords:  aggregate.TopRecords(scoped, topRecordsLimit),
		SourceError: sourceError,
	}, nil
}

// Dashboard computes the summary KPIs for every dashboard period. The record
// set is fetched once and the per-period reductions run concurrently on the
// worker pool; the slice is shared read-only between workers.
func (s *ReportServiceImpl) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.nowFn()
	records, sourceError := s.fetch(ctx)

	snapshots := make([]PeriodSnapshot, len(dashboardPeriods))

	var wg sync.WaitGroup
	for i, period := range dashboardPeriods {
		i, period := i, period
		wg.Add(1)
		task := func() {
			defer wg.Done()
			snapshots[i] = s.snapshot(records, period, now)
		}
		if err := s.pool.Submit(task); err != nil {
			// Pool exhausted or released; compute on the caller's goroutine
			s.logger.Warn("Worker pool rejected dashboard task, computing inline", "period", string(period), "error", err)
			task()
		}
	}
	wg.Wait()

	return &Dashboard{
		Snapshots:   snapshots,
		SourceError: sourceError,
	}, nil
}

// snapshot reduces the shared record set to one period's summary
func (s *ReportServiceImpl) snapshot(records []transaction.Record, period filter.Period, now time.Time) PeriodSnapshot {
	dateRange, err := filter.Resolve(period, now, time.Time{}, time.Time{})
	if err != nil {
		// Unreachable for the fixed dashboard periods
		return PeriodSnapshot{Period: period}
	}

	current := filter.ByRange(records, dateRange)
	agg := aggregate.Compute(current)

	prior := filter.ByRange(records, filter.PriorWindow(dateRange))
	agg.Summary.GrowthRate = aggregate.GrowthRate(agg.Summary.TotalCount, len(prior))

	return PeriodSnapshot{
		Period:  period,
		Range:   dateRange,
		Summary: agg.Summary,
	}
}

// fetch pulls the bounded record set, degrading to an empty list with a
// reported reason on failure. Reports never hard-fail on a flaky source.
func (s *ReportServiceImpl) fetch(ctx context.Context) ([]transaction.Record, string) {
	records, err := s.source.Fetch(ctx, s.fetchLimit)
	if err != nil {
		s.logger.Error("Transaction source fetch failed, serving empty aggregates", "error", err)
		return nil, err.Error()
	}
	return records, ""
}

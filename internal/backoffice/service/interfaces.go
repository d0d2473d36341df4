package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/parkops/backoffice/internal/domain/cashsession"
	"github.com/parkops/backoffice/internal/domain/report"
	"github.com/parkops/backoffice/internal/domain/transaction"
	"github.com/parkops/backoffice/internal/filter"
)

// Overview is the filtered report for a single period
type Overview struct {
	Period      filter.Period
	Range       filter.Range
	Aggregate   report.Aggregate
	TopCities   []report.RankEntry
	TopRecords  []transaction.Record
	SourceError string
}

// PeriodSnapshot is one dashboard tile: the summary KPIs for a period
type PeriodSnapshot struct {
	Period  filter.Period
	Range   filter.Range
	Summary report.Summary
}

// Dashboard holds the concurrently computed period snapshots
type Dashboard struct {
	Snapshots   []PeriodSnapshot
	SourceError string
}

// ReportService builds filtered aggregated views over the transaction feeds
type ReportService interface {
	// Overview fetches, filters and aggregates records for one period.
	// Returns ErrStaleRequest when a newer refresh superseded this one and
	// filter.ErrInvalidRange for bad custom bounds.
	Overview(ctx context.Context, period filter.Period, customStart, customEnd time.Time, scope filter.Scope) (*Overview, error)

	// Dashboard computes today/week/month/year summaries concurrently
	Dashboard(ctx context.Context) (*Dashboard, error)
}

// SessionService manages the cash-session lifecycle
type SessionService interface {
	// Open creates a session seeded with today's expected per-method totals
	Open(ctx context.Context, operator, register string) (*cashsession.Session, error)

	// Get returns an open session from the registry or a persisted closed one
	Get(ctx context.Context, id uuid.UUID) (*cashsession.Session, error)

	// RecordCounted stores an operator-counted total for one payment method
	RecordCounted(ctx context.Context, id uuid.UUID, method transaction.PaymentMethod, amount decimal.Decimal) (*cashsession.Session, error)

	// Close finalizes the session and persists it together with its
	// closing-event outbox message in one database transaction
	Close(ctx context.Context, id uuid.UUID, notes string) (*cashsession.Session, error)

	// ListClosed returns persisted sessions newest-first with total count
	ListClosed(ctx context.Context, page, perPage int) ([]*cashsession.Session, error)
}

// ExportService streams filtered records as CSV
type ExportService interface {
	ExportCSV(ctx context.Context, w io.Writer, period filter.Period, customStart, customEnd time.Time, scope filter.Scope) (int, error)
}

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

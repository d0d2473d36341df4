// Package cashsession implements the cash-register closing lifecycle:
// a session opens with system-expected totals per payment method, collects
// operator-counted totals, and closes exactly once with a signed difference
// and a discrepancy flag.
package cashsession

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/parkops/backoffice/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrSessionClosed         = errors.New("cash session already closed")
	ErrNegativeAmount        = errors.New("counted amount must be non-negative")
	ErrEmptyOperator         = errors.New("operator cannot be empty")
	ErrJustificationRequired = errors.New("discrepancy beyond tolerance requires operator notes")
)

// Status of a cash session. Transitions once, open to closed.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// DefaultTolerance absorbs rounding drift when comparing counted against
// expected totals. One cent.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Session is one cash-register closing run. Expected totals come from the
// aggregation engine at open time; counted totals are operator input.
type Session struct {
	ID       uuid.UUID `json:"id"`
	Operator string    `json:"operator"`
	Register string    `json:"register"`

	Expected map[transaction.PaymentMethod]decimal.Decimal `json:"expected"`
	Counted  map[transaction.PaymentMethod]decimal.Decimal `json:"counted"`

	Status             Status          `json:"status"`
	Difference         decimal.Decimal `json:"difference"`
	DiscrepancyFlagged bool            `json:"discrepancy_flagged"`
	Notes              string          `json:"notes,omitempty"`

	Tolerance decimal.Decimal `json:"tolerance"`
	OpenedAt  time.Time       `json:"opened_at"`
	ClosedAt  *time.Time      `json:"closed_at,omitempty"`
}

// NewSession opens a session for one operator and register with the given
// expected totals. The expected map is copied so later aggregation runs
// cannot mutate an open session.
func NewSession(operator, register string, expected map[transaction.PaymentMethod]decimal.Decimal) (*Session, error) {
	if operator == "" {
		return nil, ErrEmptyOperator
	}

	expectedCopy := make(map[transaction.PaymentMethod]decimal.Decimal, len(expected))
	for method, amount := range expected {
		expectedCopy[method] = amount
	}

	return &Session{
		ID:        uuid.New(),
		Operator:  operator,
		Register:  register,
		Expected:  expectedCopy,
		Counted:   make(map[transaction.PaymentMethod]decimal.Decimal),
		Status:    StatusOpen,
		Tolerance: DefaultTolerance,
		OpenedAt:  time.Now(),
	}, nil
}

// RecordCounted stores the operator-counted total for one payment method.
// Re-entering a method overwrites the previous value. Rejected once closed.
func (s *Session) RecordCounted(method transaction.PaymentMethod, value decimal.Decimal) error {
	if s.Status == StatusClosed {
		return ErrSessionClosed
	}
	if value.IsNegative() {
		return ErrNegativeAmount
	}

	s.Counted[method] = value
	return nil
}

// TotalExpected sums the expected totals across all payment methods
func (s *Session) TotalExpected() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range s.Expected {
		total = total.Add(amount)
	}
	return total
}

// TotalCounted sums the operator-counted totals across all payment methods
func (s *Session) TotalCounted() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range s.Counted {
		total = total.Add(amount)
	}
	return total
}

// Discrepant reports whether the current counted totals deviate from the
// expected totals beyond the session tolerance.
func (s *Session) Discrepant() bool {
	diff := s.TotalCounted().Sub(s.TotalExpected())
	return diff.Abs().GreaterThan(s.Tolerance)
}

// Close finalizes the session: computes the signed difference, flags a
// discrepancy beyond tolerance, and makes the session immutable. A flagged
// discrepancy never blocks closing, but it must be acknowledged with
// non-empty operator notes. Calling Close on a closed session fails.
func (s *Session) Close(now time.Time, notes string) error {
	if s.Status == StatusClosed {
		return ErrSessionClosed
	}

	difference := s.TotalCounted().Sub(s.TotalExpected())
	flagged := difference.Abs().GreaterThan(s.Tolerance)

	if flagged && notes == "" {
		return ErrJustificationRequired
	}

	s.Difference = difference
	s.DiscrepancyFlagged = flagged
	s.Notes = notes
	s.Status = StatusClosed
	s.ClosedAt = &now
	return nil
}

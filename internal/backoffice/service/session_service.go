package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/parkops/backoffice/internal/aggregate"
	"github.com/parkops/backoffice/internal/domain/cashsession"
	"github.com/parkops/backoffice/internal/domain/outbox"
	"github.com/parkops/backoffice/internal/domain/transaction"
	"github.com/parkops/backoffice/internal/filter"
)

// SessionServiceImpl implements the SessionService interface. Open sessions
// live in an in-memory registry; closing moves the session to PostgreSQL
// together with its outbox message in one transaction.
type SessionServiceImpl struct {
	source      transaction.Source
	txRunner    TxRunner
	sessionRepo cashsession.Repository
	outboxRepo  outbox.Repository
	fetchLimit  int
	tolerance   decimal.Decimal
	logger      *slog.Logger
	nowFn       func() time.Time

	mu   sync.RWMutex
	open map[uuid.UUID]*cashsession.Session
}

// NewSessionService creates a cash-session service
func NewSessionService(
	logger *slog.Logger,
	source transaction.Source,
	txRunner TxRunner,
	sessionRepo cashsession.Repository,
	outboxRepo outbox.Repository,
	fetchLimit int,
	tolerance decimal.Decimal,
) *SessionServiceImpl {
	return &SessionServiceImpl{
		source:      source,
		txRunner:    txRunner,
		sessionRepo: sessionRepo,
		outboxRepo:  outboxRepo,
		fetchLimit:  fetchLimit,
		tolerance:   tolerance,
		logger:      logger,
		nowFn:       time.Now,
	}
}

// Open creates a session whose expected totals come from today's records.
// When the source is unavailable the session still opens, with zero expected
// totals for every method; counting must not be blocked by a flaky feed.
func (s *SessionServiceImpl) Open(ctx context.Context, operator, register string) (*cashsession.Session, error) {
	now := s.nowFn()

	records, err := s.source.Fetch(ctx, s.fetchLimit)
	if err != nil {
		s.logger.Error("Failed to fetch records for session opening, using zero expected totals", "error", err)
		records = nil
	}

	today, err := filter.Resolve(filter.PeriodToday, now, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve today's range: %w", err)
	}
	expected := aggregate.ExpectedByMethod(filter.ByRange(records, today))

	session, err := cashsession.NewSession(operator, register, expected)
	if err != nil {
		return nil, err
	}
	session.Tolerance = s.tolerance

	s.mu.Lock()
	if s.open == nil {
		s.open = make(map[uuid.UUID]*cashsession.Session)
	}
	s.open[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("Cash session opened",
		"session_id", session.ID.String(),
		"operator", operator,
		"register", register,
		"expected_total", session.TotalExpected().String(),
	)

	return session, nil
}

// Get returns an open session from the registry, falling back to the
// persisted store for closed ones
func (s *SessionServiceImpl) Get(ctx context.Context, id uuid.UUID) (*cashsession.Session, error) {
	if session, ok := s.fromRegistry(id); ok {
		return session, nil
	}
	return s.sessionRepo.GetByID(ctx, id)
}

// RecordCounted stores an operator-counted total for one payment method
func (s *SessionServiceImpl) RecordCounted(ctx context.Context, id uuid.UUID, method transaction.PaymentMethod, amount decimal.Decimal) (*cashsession.Session, error) {
	session, ok := s.fromRegistry(id)
	if !ok {
		return nil, cashsession.ErrSessionNotFound{SessionID: id}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := session.RecordCounted(method, amount); err != nil {
		return nil, err
	}
	return session, nil
}

// Close finalizes the session, persists it and enqueues its closing event.
// The session row and the outbox message commit or roll back together; the
// registry entry is removed only after the commit succeeds.
func (s *SessionServiceImpl) Close(ctx context.Context, id uuid.UUID, notes string) (*cashsession.Session, error) {
	session, ok := s.fromRegistry(id)
	if !ok {
		// A session that already made it to the store is terminally closed
		if persisted, err := s.sessionRepo.GetByID(ctx, id); err == nil && persisted != nil {
			return nil, cashsession.ErrSessionClosed
		}
		return nil, cashsession.ErrSessionNotFound{SessionID: id}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Skip the domain close on a persistence retry; the session state is
	// already final, only the store write is outstanding
	if session.Status != cashsession.StatusClosed {
		if err := session.Close(s.nowFn(), notes); err != nil {
			return nil, err
		}
	}

	message, err := outbox.NewMessage(session)
	if err != nil {
		return nil, fmt.Errorf("failed to build closing outbox message: %w", err)
	}

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.sessionRepo.WithTx(tx).Create(ctx, session); err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, message)
	})
	if err != nil {
		s.logger.Error("Failed to persist closed cash session", "session_id", id.String(), "error", err)
		return nil, err
	}

	delete(s.open, id)

	s.logger.Info("Cash session closed",
		"session_id", id.String(),
		"difference", session.Difference.String(),
		"discrepancy_flagged", session.DiscrepancyFlagged,
	)

	return session, nil
}

// ListClosed returns persisted sessions newest-first
func (s *SessionServiceImpl) ListClosed(ctx context.Context, page, perPage int) ([]*cashsession.Session, error) {
	offset := (page - 1) * perPage
	return s.sessionRepo.ListClosed(ctx, perPage, offset)
}

func (s *SessionServiceImpl) fromRegistry(id uuid.UUID) (*cashsession.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.open[id]
	return session, ok
}

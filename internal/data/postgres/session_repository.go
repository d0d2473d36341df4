// Package postgres provides PostgreSQL implementations of the domain
// repositories. Closed cash sessions and their outbox messages live here;
// both are written in one transaction at closing time.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/parkops/backoffice/internal/domain/cashsession"
	"github.com/parkops/backoffice/internal/domain/transaction"
	"github.com/parkops/backoffice/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

// SessionRepository implements the cashsession.Repository interface for PostgreSQL
type SessionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewSessionRepository creates a new PostgreSQL cash-session repository
func NewSessionRepository(logger *slog.Logger, db *persistence.PostgresDB) cashsession.Repository {
	return &SessionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing the session row
// and its outbox message to be written atomically.
func (r *SessionRepository) WithTx(tx pgx.Tx) cashsession.Repository {
	return &SessionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a closed cash session. The per-method total maps are stored
// as JSONB; monetary columns keep exact decimal values.
func (r *SessionRepository) Create(ctx context.Context, session *cashsession.Session) error {
	expected, err := json.Marshal(session.Expected)
	if err != nil {
		return fmt.Errorf("failed to marshal expected totals: %w", err)
	}
	counted, err := json.Marshal(session.Counted)
	if err != nil {
		return fmt.Errorf("failed to marshal counted totals: %w", err)
	}

	query := `
		INSERT INTO cash_sessions (id, operator, register, expected, counted, status, difference, discrepancy_flagged, notes, tolerance, opened_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.querier.Exec(ctx, query,
		session.ID,
		session.Operator,
		session.Register,
		expected,
		counted,
		string(session.Status),
		session.Difference,
		session.DiscrepancyFlagged,
		session.Notes,
		session.Tolerance,
		session.OpenedAt,
		session.ClosedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create cash session", "session_id", session.ID.String(), "error", err)
		return fmt.Errorf("failed to create cash session: %w", err)
	}

	return nil
}

// GetByID retrieves a persisted cash session by its ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*cashsession.Session, error) {
	query := `
		SELECT id, operator, register, expected, counted, status, difference, discrepancy_flagged, notes, tolerance, opened_at, closed_at
		FROM cash_sessions
		WHERE id = $1
	`

	session, err := r.scanSession(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cashsession.ErrSessionNotFound{SessionID: id}
		}
		r.logger.Error("Failed to get cash session", "session_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get cash session: %w", err)
	}

	return session, nil
}

// ListClosed retrieves persisted sessions newest-first
func (r *SessionRepository) ListClosed(ctx context.Context, limit, offset int) ([]*cashsession.Session, error) {
	query := `
		SELECT id, operator, register, expected, counted, status, difference, discrepancy_flagged, notes, tolerance, opened_at, closed_at
		FROM cash_sessions
		WHERE status = 'closed'
		ORDER BY closed_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list closed cash sessions", "error", err)
		return nil, fmt.Errorf("failed to list closed cash sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*cashsession.Session
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			r.logger.Error("Failed to scan cash session", "error", err)
			return nil, fmt.Errorf("failed to scan cash session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over cash sessions", "error", err)
		return nil, fmt.Errorf("error iterating over cash sessions: %w", err)
	}

	return sessions, nil
}

func (r *SessionRepository) scanSession(row pgx.Row) (*cashsession.Session, error) {
	var (
		session  cashsession.Session
		status   string
		expected []byte
		counted  []byte
	)

	err := row.Scan(
		&session.ID,
		&session.Operator,
		&session.Register,
		&expected,
		&counted,
		&status,
		&session.Difference,
		&session.DiscrepancyFlagged,
		&session.Notes,
		&session.Tolerance,
		&session.OpenedAt,
		&session.ClosedAt,
	)
	if err != nil {
		return nil, err
	}

	session.Status = cashsession.Status(status)
	session.Expected = make(map[transaction.PaymentMethod]decimal.Decimal)
	session.Counted = make(map[transaction.PaymentMethod]decimal.Decimal)
	if err := json.Unmarshal(expected, &session.Expected); err != nil {
		return nil, fmt.Errorf("failed to unmarshal expected totals: %w", err)
	}
	if err := json.Unmarshal(counted, &session.Counted); err != nil {
		return nil, fmt.Errorf("failed to unmarshal counted totals: %w", err)
	}

	return &session, nil
}

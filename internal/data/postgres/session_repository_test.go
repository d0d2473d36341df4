package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/parkops/backoffice/internal/domain/cashsession"
	"github.com/parkops/backoffice/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *cashsession.Session {
	t.Helper()
	session, err := cashsession.NewSession("ana", "register-1", map[transaction.PaymentMethod]decimal.Decimal{
		transaction.MethodCash: decimal.RequireFromString("100.00"),
		transaction.MethodCard: decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)
	require.NoError(t, session.RecordCounted(transaction.MethodCash, decimal.RequireFromString("100.00")))
	require.NoError(t, session.RecordCounted(transaction.MethodCard, decimal.RequireFromString("50.00")))
	require.NoError(t, session.Close(time.Now(), ""))
	return session
}

const insertSessionQuery = `
		INSERT INTO cash_sessions \(id, operator, register, expected, counted, status, difference, discrepancy_flagged, notes, tolerance, opened_at, closed_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11, \$12\)
	`

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &SessionRepository{querier: mock, logger: newTestLogger()}
	session := testSession(t)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(insertSessionQuery).
			WithArgs(session.ID, session.Operator, session.Register, pgxmock.AnyArg(), pgxmock.AnyArg(),
				string(session.Status), session.Difference, session.DiscrepancyFlagged, session.Notes,
				session.Tolerance, session.OpenedAt, session.ClosedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, session)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(insertSessionQuery).
			WithArgs(session.ID, session.Operator, session.Register, pgxmock.AnyArg(), pgxmock.AnyArg(),
				string(session.Status), session.Difference, session.DiscrepancyFlagged, session.Notes,
				session.Tolerance, session.OpenedAt, session.ClosedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, session)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create cash session")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &SessionRepository{querier: mock, logger: newTestLogger()}
	session := testSession(t)

	query := `
		SELECT id, operator, register, expected, counted, status, difference, discrepancy_flagged, notes, tolerance, opened_at, closed_at
		FROM cash_sessions
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		expected, err := json.Marshal(session.Expected)
		require.NoError(t, err)
		counted, err := json.Marshal(session.Counted)
		require.NoError(t, err)

		rows := pgxmock.NewRows([]string{"id", "operator", "register", "expected", "counted", "status",
			"difference", "discrepancy_flagged", "notes", "tolerance", "opened_at", "closed_at"}).
			AddRow(session.ID, session.Operator, session.Register, expected, counted, string(session.Status),
				session.Difference, session.DiscrepancyFlagged, session.Notes, session.Tolerance,
				session.OpenedAt, session.ClosedAt)

		mock.ExpectQuery(query).WithArgs(session.ID).WillReturnRows(rows)

		got, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, cashsession.StatusClosed, got.Status)
		assert.True(t, got.Expected[transaction.MethodCash].Equal(decimal.RequireFromString("100.00")))
		assert.True(t, got.Counted[transaction.MethodCard].Equal(decimal.RequireFromString("50.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not_found", func(t *testing.T) {
		missingID := uuid.New()
		mock.ExpectQuery(query).WithArgs(missingID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, missingID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, cashsession.ErrSessionNotFound{SessionID: missingID})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRepository_ListClosed(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &SessionRepository{querier: mock, logger: newTestLogger()}
	session := testSession(t)

	query := `
		SELECT id, operator, register, expected, counted, status, difference, discrepancy_flagged, notes, tolerance, opened_at, closed_at
		FROM cash_sessions
		WHERE status = 'closed'
		ORDER BY closed_at DESC
		LIMIT \$1 OFFSET \$2
	`

	t.Run("success", func(t *testing.T) {
		expected, err := json.Marshal(session.Expected)
		require.NoError(t, err)
		counted, err := json.Marshal(session.Counted)
		require.NoError(t, err)

		rows := pgxmock.NewRows([]string{"id", "operator", "register", "expected", "counted", "status",
			"difference", "discrepancy_flagged", "notes", "tolerance", "opened_at", "closed_at"}).
			AddRow(session.ID, session.Operator, session.Register, expected, counted, string(session.Status),
				session.Difference, session.DiscrepancyFlagged, session.Notes, session.Tolerance,
				session.OpenedAt, session.ClosedAt)

		mock.ExpectQuery(query).WithArgs(10, 0).WillReturnRows(rows)

		sessions, err := repo.ListClosed(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, session.ID, sessions[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(10, 0).
			WillReturnRows(pgxmock.NewRows([]string{"id", "operator", "register", "expected", "counted", "status",
				"difference", "discrepancy_flagged", "notes", "tolerance", "opened_at", "closed_at"}))

		sessions, err := repo.ListClosed(ctx, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, sessions)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRepository_WithTx(t *testing.T) {
	repo := &SessionRepository{querier: nil, logger: newTestLogger()}

	txRepo := repo.WithTx(nil)
	require.IsType(t, &SessionRepository{}, txRepo)
}

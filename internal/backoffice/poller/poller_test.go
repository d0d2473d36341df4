package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/parkops/backoffice/internal/config"
	"github.com/parkops/backoffice/internal/domain/cashsession"
	"github.com/parkops/backoffice/internal/domain/outbox"
	"github.com/parkops/backoffice/internal/domain/transaction"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status outbox.MessageStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func closedSessionMessage(t *testing.T, id int64, attempts int) *outbox.Message {
	t.Helper()
	session, err := cashsession.NewSession("ana", "register-1", map[transaction.PaymentMethod]decimal.Decimal{
		transaction.MethodCash: decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)
	require.NoError(t, session.RecordCounted(transaction.MethodCash, decimal.RequireFromString("50.00")))
	require.NoError(t, session.Close(time.Now(), ""))

	message, err := outbox.NewMessage(session)
	require.NoError(t, err)
	message.ID = id
	message.Attempts = attempts
	return message
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	ctx := context.Background()
	cfg := &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}

	t.Run("publishes_every_pending_message", func(t *testing.T) {
		mockRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		p := NewPoller(cfg, mockRepo, mockPublisher, newTestLogger())

		message1 := closedSessionMessage(t, 1, 0)
		message2 := closedSessionMessage(t, 2, 0)
		mockRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, message1).Return(nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, message2).Return(nil).Once()

		err := p.processPendingMessages(ctx)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("get_pending_failure", func(t *testing.T) {
		mockRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		p := NewPoller(cfg, mockRepo, mockPublisher, newTestLogger())

		mockRepo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error")).Once()

		err := p.processPendingMessages(ctx)
		assert.Error(t, err)
		mockPublisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
	})

	t.Run("no_pending_messages", func(t *testing.T) {
		mockRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		p := NewPoller(cfg, mockRepo, mockPublisher, newTestLogger())

		mockRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()

		assert.NoError(t, p.processPendingMessages(ctx))
	})

	t.Run("publish_failure_increments_attempts", func(t *testing.T) {
		mockRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		p := NewPoller(cfg, mockRepo, mockPublisher, newTestLogger())

		failing := closedSessionMessage(t, 1, 0)
		healthy := closedSessionMessage(t, 2, 0)
		mockRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{failing, healthy}, nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, failing).Return(errors.New("broker down")).Once()
		mockRepo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, healthy).Return(nil).Once()

		assert.NoError(t, p.processPendingMessages(ctx))
		mockRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("max_retry_attempts_parks_message", func(t *testing.T) {
		mockRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		p := NewPoller(cfg, mockRepo, mockPublisher, newTestLogger())

		exhausted := closedSessionMessage(t, 3, 2)
		mockRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{exhausted}, nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, exhausted).Return(errors.New("broker down")).Once()
		mockRepo.On("IncrementAttempts", mock.Anything, int64(3)).Return(nil).Once()
		mockRepo.On("UpdateStatus", mock.Anything, int64(3), outbox.StatusFailedToPublish).Return(nil).Once()

		assert.NoError(t, p.processPendingMessages(ctx))
		mockRepo.AssertExpectations(t)
	})
}

func TestEventPublisher_PublishEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes_and_marks_processed", func(t *testing.T) {
		mockRepo := new(MockOutboxRepo)
		mockProducer := new(MockMessagePublisher)
		publisher := NewEventPublisher(mockRepo, mockProducer, newTestLogger())

		message := closedSessionMessage(t, 1, 0)
		mockProducer.On("Publish", mock.Anything, message.SessionID.String(), mock.Anything).Return(nil).Once()
		mockRepo.On("UpdateStatus", mock.Anything, int64(1), outbox.StatusProcessed).Return(nil).Once()

		assert.NoError(t, publisher.PublishEvent(ctx, message))
		mockProducer.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("broker_failure_propagates", func(t *testing.T) {
		mockRepo := new(MockOutboxRepo)
		mockProducer := new(MockMessagePublisher)
		publisher := NewEventPublisher(mockRepo, mockProducer, newTestLogger())

		message := closedSessionMessage(t, 1, 0)
		mockProducer.On("Publish", mock.Anything, message.SessionID.String(), mock.Anything).Return(errors.New("broker down")).Once()

		assert.Error(t, publisher.PublishEvent(ctx, message))
		mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("undecodable_payload_marked_failed", func(t *testing.T) {
		mockRepo := new(MockOutboxRepo)
		mockProducer := new(MockMessagePublisher)
		publisher := NewEventPublisher(mockRepo, mockProducer, newTestLogger())

		message := &outbox.Message{ID: 9, SessionID: uuid.New(), Payload: []byte("not json"), Status: outbox.StatusPending}
		mockRepo.On("UpdateStatus", mock.Anything, int64(9), outbox.StatusFailedToPublish).Return(nil).Once()

		assert.Error(t, publisher.PublishEvent(ctx, message))
		mockProducer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

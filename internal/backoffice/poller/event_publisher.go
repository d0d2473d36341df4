// Package poller delivers pending closing-event outbox messages to the
// message broker. Messages are written by the session service inside the
// closing transaction; this package owns everything after the commit.
package poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parkops/backoffice/internal/domain/outbox"
	"github.com/parkops/backoffice/internal/platform/messaging/producers"
)

// EventPublisher delivers one outbox message to the broker and marks it processed
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher on a Kafka producer
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new closing-event publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent decodes the closed session from the message payload, publishes
// it keyed by session ID, and marks the outbox row processed. A payload that
// cannot be decoded is marked failed immediately; retrying cannot fix it.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	session, err := message.Session()
	if err != nil {
		p.logger.Error("Failed to decode session from outbox payload",
			"outbox_id", message.ID, "session_id", message.SessionID.String(), "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to mark outbox message as FAILED_TO_PUBLISH after decode error",
				"outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	if err := p.producer.Publish(ctx, session.ID.String(), session); err != nil {
		return fmt.Errorf("failed to publish closing event for session %s: %w", session.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		p.logger.Error("Closing event published but outbox message not marked PROCESSED",
			"outbox_id", message.ID, "session_id", session.ID.String(), "error", err)
		return fmt.Errorf("publish for session %s OK, but failed to mark outbox %d as PROCESSED: %w", session.ID, message.ID, err)
	}

	p.logger.Info("Closing event published",
		"outbox_id", message.ID,
		"session_id", session.ID.String(),
		"discrepancy_flagged", session.DiscrepancyFlagged,
	)
	return nil
}

// Package outbox implements the transactional outbox used to publish
// cash-session closing events reliably: the message row is written in the
// same database transaction as the closed session, then delivered to the
// message broker by a background poller.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/parkops/backoffice/internal/domain/cashsession"
)

// MessageStatus defines message publishing states
type MessageStatus string

const (
	StatusPending         MessageStatus = "PENDING"
	StatusProcessed       MessageStatus = "PROCESSED"
	StatusFailedToPublish MessageStatus = "FAILED_TO_PUBLISH"
)

// Message stores a serialized closed session awaiting publication
type Message struct {
	ID            int64           `json:"id"`
	SessionID     uuid.UUID       `json:"session_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        MessageStatus   `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

func NewMessage(session *cashsession.Session) (*Message, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	return &Message{
		SessionID: session.ID,
		Payload:   payload,
		Status:    StatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Session extracts the closed session from the payload
func (m *Message) Session() (*cashsession.Session, error) {
	var session cashsession.Session
	if err := json.Unmarshal(m.Payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Package events is the best-effort domain event side-channel. Publish
// failures are the caller's problem to log, never to propagate.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicSessionClosed = "cash_session_closed"
	TopicSaleCompleted = "sale_completed"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Envelope wraps every published payload with a unique id and timestamp.
type Envelope struct {
	EventID    string `json:"event_id"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

func Wrap(payload any) Envelope {
	return Envelope{
		EventID:    uuid.New().String(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	}
}

type SessionClosed struct {
	SessionID      string          `json:"session_id"`
	OperatorID     string          `json:"operator_id"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	CountedAmount  decimal.Decimal `json:"counted_amount"`
	Difference     decimal.Decimal `json:"difference"`
}

type SaleCompleted struct {
	SaleID        string          `json:"sale_id"`
	OperatorID    string          `json:"operator_id"`
	SessionID     string          `json:"session_id,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
}

type Noop struct{}

func (Noop) Publish(_ context.Context, _ string, _ any) error {
	return nil
}

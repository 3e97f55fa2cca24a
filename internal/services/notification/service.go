// Package notification emits reconciled payment outcomes to downstream
// consumers of the merchant application.
package notification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event types
const (
	EventSTKCompleted    = "stk.completed"
	EventSTKFailed       = "stk.failed"
	EventB2CCompleted    = "b2c.completed"
	EventB2CFailed       = "b2c.failed"
	EventB2CTimeout      = "b2c.timeout"
	EventC2BConfirmation = "c2b.confirmed"
)

// Event is a reconciled provider outcome.
type Event struct {
	Type       string                 `json:"type"`
	Reference  string                 `json:"reference"`
	ResultCode int                    `json:"result_code"`
	ResultDesc string                 `json:"result_desc"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.log.Info("payment event",
		zap.String("type", event.Type),
		zap.String("reference", event.Reference),
		zap.Int("result_code", event.ResultCode))
	return nil
}

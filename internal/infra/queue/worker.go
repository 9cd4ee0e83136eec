package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

const handleTimeout = 30 * time.Second

// LeadCreatedHandler processes one lead.created event.
type LeadCreatedHandler interface {
	Execute(ctx context.Context, event usecase.LeadCreatedEvent) error
}

type Worker struct {
	Channel *amqp.Channel
	Handler LeadCreatedHandler
	Logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, handler LeadCreatedHandler, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Channel: ch, Handler: handler, Logger: logger}
}

// Start consumes until ctx is done or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("falla al registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info("queue worker waiting", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("queue worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de entregas cerrado")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery acks on success. Malformed payloads and failed deliveries
// are nacked without requeue so they land in the DLQ.
func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event usecase.LeadCreatedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil || event.LeadID == "" {
		w.Logger.Error("invalid lead.created payload", zap.ByteString("body", d.Body), zap.Error(err))
		d.Nack(false, false)
		return
	}

	hctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()
	if err := w.Handler.Execute(hctx, event); err != nil {
		middleware.RecordIntegrationError("smtp")
		w.Logger.Error("lead notification failed", zap.String("lead_id", event.LeadID), zap.Error(err))
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

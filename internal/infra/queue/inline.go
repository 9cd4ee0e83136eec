package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

// InlineDispatcher runs the handler in a goroutine of this process. It is
// used when no broker is configured.
type InlineDispatcher struct {
	Handler LeadCreatedHandler
	Logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewInlineDispatcher(handler LeadCreatedHandler, logger *zap.Logger) *InlineDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InlineDispatcher{Handler: handler, Logger: logger}
}

func (d *InlineDispatcher) PublishLeadCreated(ctx context.Context, event usecase.LeadCreatedEvent) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
		defer cancel()
		if err := d.Handler.Execute(hctx, event); err != nil {
			middleware.RecordIntegrationError("smtp")
			d.Logger.Error("lead notification failed", zap.String("lead_id", event.LeadID), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every dispatched event has been handled.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

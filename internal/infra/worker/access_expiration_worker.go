package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
)

// AccessExpirationWorker periodically derives the access status of every
// sale, publishes the totals as gauges and logs windows that ended since the
// previous sweep. Access status is never written back.
type AccessExpirationWorker struct {
	sales        entity.SaleRepositoryInterface
	tickInterval time.Duration
	logger       *zap.Logger
	now          func() time.Time
	expired      map[string]struct{}
}

func NewAccessExpirationWorker(sales entity.SaleRepositoryInterface, interval time.Duration, logger *zap.Logger) *AccessExpirationWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessExpirationWorker{
		sales:        sales,
		tickInterval: interval,
		logger:       logger,
		now:          time.Now,
		expired:      map[string]struct{}{},
	}
}

func (w *AccessExpirationWorker) Start(ctx context.Context) {
	w.logger.Info("access expiration worker started", zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("access expiration worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep returns the counts it published.
func (w *AccessExpirationWorker) sweep(ctx context.Context) map[entity.AccessStatus]int {
	sales, err := w.sales.List(ctx, entity.SaleFilter{Limit: 100000})
	if err != nil {
		w.logger.Error("access sweep failed", zap.Error(err))
		return nil
	}

	now := w.now()
	counts := map[entity.AccessStatus]int{
		entity.AccessPending:       0,
		entity.AccessActive:        0,
		entity.AccessExpired:       0,
		entity.AccessGrantedNoDate: 0,
	}
	seen := map[string]struct{}{}
	for _, s := range sales {
		status := s.AccessStatus(now)
		counts[status]++
		if status != entity.AccessExpired {
			continue
		}
		seen[s.ID] = struct{}{}
		if _, known := w.expired[s.ID]; !known {
			w.logger.Info("course access expired",
				zap.String("sale_id", s.ID),
				zap.String("lead_id", s.LeadID),
				zap.Time("access_end_date", *s.AccessEndDate))
		}
	}
	w.expired = seen

	for status, n := range counts {
		middleware.SetMembersByAccessStatus(string(status), n)
	}
	return counts
}

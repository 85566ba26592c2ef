package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/metrics"
)

// TicketExpirer は上映開始済みセッションのチケットを期限切れにするインターフェース
type TicketExpirer interface {
	ExpireOverdueTickets(ctx context.Context, now time.Time) (int, error)
}

// TicketExpirySweeper は期限切れチケットを定期的にスイープするワーカー
type TicketExpirySweeper struct {
	ticketService TicketExpirer
	interval      time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewTicketExpirySweeper は新しいスイーパーを作成
func NewTicketExpirySweeper(ts TicketExpirer, interval time.Duration) *TicketExpirySweeper {
	return &TicketExpirySweeper{
		ticketService: ts,
		interval:      interval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *TicketExpirySweeper) Start(ctx context.Context) {
	logger.Info("期限切れチケットスイーパー開始",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れチケットスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("期限切れチケットスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *TicketExpirySweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は上映開始済みセッションの有効チケットを期限切れにする
func (s *TicketExpirySweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れチケットのスイープ開始")

	count, err := s.ticketService.ExpireOverdueTickets(ctx, time.Now())
	if err != nil {
		log.Error("期限切れチケットのスイープ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		metrics.AddExpiredTickets(count)
		log.Info("チケットを期限切れに遷移", zap.Int("count", count))
	} else {
		log.Debug("期限切れ対象のチケットなし")
	}
}

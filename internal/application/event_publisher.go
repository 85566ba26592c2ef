package application

import (
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/event"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/logger"
)

// LoggingPublisher はドメインイベントを構造化ログへ流す Publisher 実装
// メール送信・統計などの後続処理は、このログまたは差し替えた実装側で行う
type LoggingPublisher struct{}

func NewLoggingPublisher() *LoggingPublisher {
	return &LoggingPublisher{}
}

func (p *LoggingPublisher) PublishPurchaseConfirmed(e event.PurchaseConfirmed) {
	logger.Info("購入確定イベント",
		zap.String("purchase_id", e.PurchaseID),
		zap.String("customer_id", e.CustomerID),
		zap.Int("ticket_count", len(e.TicketIDs)),
		zap.Int("total_amount", e.TotalAmount),
	)
}

func (p *LoggingPublisher) PublishPurchaseCancelled(e event.PurchaseCancelled) {
	logger.Info("購入キャンセルイベント",
		zap.String("purchase_id", e.PurchaseID),
		zap.String("customer_id", e.CustomerID),
		zap.Int("ticket_count", len(e.TicketIDs)),
	)
}

var _ event.Publisher = (*LoggingPublisher)(nil)

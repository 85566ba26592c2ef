package event

import "time"

// PurchaseConfirmed は購入確定を表すドメインイベント
type PurchaseConfirmed struct {
	PurchaseID  string
	CustomerID  string
	TicketIDs   []string
	TotalAmount int
	OccurredAt  time.Time
}

// PurchaseCancelled は購入キャンセルを表すドメインイベント
type PurchaseCancelled struct {
	PurchaseID string
	CustomerID string
	TicketIDs  []string
	OccurredAt time.Time
}

// Publisher はドメインイベントの通知先
// Core はイベント値を渡すのみで、配送の失敗は購入操作の結果に影響しない
type Publisher interface {
	PublishPurchaseConfirmed(e PurchaseConfirmed)
	PublishPurchaseCancelled(e PurchaseCancelled)
}

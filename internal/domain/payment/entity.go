package payment

import "time"

// Status は支払いの状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Payment は外部決済集約の読み取りビュー
// この Core からは購入キャンセル時の取り消しを除き読み取り専用
type Payment struct {
	ID        string
	Amount    int
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSuccessful は支払いが成功済みかを返す
func (p *Payment) IsSuccessful() bool {
	return p.Status == StatusSuccess
}

// IsPending は支払いが処理中かを返す
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

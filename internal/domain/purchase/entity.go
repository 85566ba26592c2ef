package purchase

import "time"

// Status は購入の状態を表す
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Purchase は購入エンティティを表す
// 1人の顧客による1回の注文で、1枚以上のチケットを束ねる
type Purchase struct {
	ID          string
	CustomerID  string
	TicketIDs   []string
	PaymentID   *string
	TotalAmount int
	Status      Status
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPurchase は新しい購入を作成する
func NewPurchase(customerID string, totalAmount int) *Purchase {
	now := time.Now()
	return &Purchase{
		CustomerID:  customerID,
		TotalAmount: totalAmount,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsPending は購入が保留中かを返す
func (p *Purchase) IsPending() bool {
	return p.Status == StatusPending
}

// Confirm は購入を確定する
// 支払い成功の確認は呼び出し側（アプリケーション層）の責務
func (p *Purchase) Confirm(paymentID string) error {
	if p.Status != StatusPending {
		return ErrPurchaseNotPending
	}
	now := time.Now()
	p.Status = StatusConfirmed
	p.PaymentID = &paymentID
	p.ConfirmedAt = &now
	p.UpdatedAt = now
	return nil
}

// Cancel は購入をキャンセルする
// 確定後のキャンセル（払い戻し経路）も許可される
func (p *Purchase) Cancel() error {
	if p.Status == StatusCancelled {
		return ErrPurchaseAlreadyCancelled
	}
	p.Status = StatusCancelled
	p.UpdatedAt = time.Now()
	return nil
}

// Validate は購入の検証を行う
func (p *Purchase) Validate() error {
	if p.CustomerID == "" {
		return ErrCustomerIDRequired
	}
	if len(p.TicketIDs) == 0 {
		return ErrTicketsRequired
	}
	return nil
}

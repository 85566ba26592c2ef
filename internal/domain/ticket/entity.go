package ticket

import "time"

// Status はチケットの状態を表す
type Status string

const (
	StatusActive    Status = "active"
	StatusValidated Status = "validated"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Ticket はチケットエンティティを表す
// 1枚のチケットは1つのセッションの1座席に対応し、1つの購入に属する
type Ticket struct {
	ID         string
	PurchaseID string
	SessionID  string
	SeatNumber string
	Type       Type
	Status     Status
	Price      int
	QRCode     string
	Used       bool
	UsedAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int // 楽観的ロック用
}

// NewTicket は新しいチケットを作成する
// 発行時点で有効（active）状態となる
func NewTicket(sessionID, seatNumber, qrCode string, ticketType Type) *Ticket {
	now := time.Now()
	return &Ticket{
		SessionID:  sessionID,
		SeatNumber: seatNumber,
		Type:       ticketType,
		Status:     StatusActive,
		Price:      PriceFor(ticketType),
		QRCode:     qrCode,
		Used:       false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsActive はチケットが有効状態かを返す
func (t *Ticket) IsActive() bool {
	return t.Status == StatusActive
}

// MarkValidated はチケットを検証済みにする（入場ゲートのスキャン）
// 検証済みチケットの再検証は成功として扱う（冪等）
func (t *Ticket) MarkValidated() error {
	switch t.Status {
	case StatusValidated:
		return nil
	case StatusActive:
		t.Status = StatusValidated
		t.UpdatedAt = time.Now()
		return nil
	case StatusCancelled:
		return ErrTicketCancelled
	case StatusExpired:
		return ErrTicketExpired
	default:
		return ErrTicketNotActive
	}
}

// Use はチケットを使用済みにする（物理入場）
// 検証済みかつ未使用の場合のみ許可される
func (t *Ticket) Use() error {
	if t.Status != StatusValidated {
		return ErrTicketNotValidated
	}
	if t.Used {
		return ErrTicketAlreadyUsed
	}
	now := time.Now()
	t.Used = true
	t.UsedAt = &now
	t.UpdatedAt = now
	return nil
}

// Cancel はチケットをキャンセルする（購入キャンセル経由でのみ呼ばれる）
// 使用済みチケットはキャンセルできない
func (t *Ticket) Cancel() error {
	if t.Used {
		return ErrTicketAlreadyUsed
	}
	switch t.Status {
	case StatusCancelled:
		return ErrTicketAlreadyCancelled
	case StatusExpired:
		return ErrTicketExpired
	}
	t.Status = StatusCancelled
	t.UpdatedAt = time.Now()
	return nil
}

// Expire はチケットを期限切れにする（上映開始後のスイープでのみ呼ばれる）
func (t *Ticket) Expire() error {
	if t.Status != StatusActive {
		return ErrTicketNotActive
	}
	t.Status = StatusExpired
	t.UpdatedAt = time.Now()
	return nil
}

// Rebook はチケットを別セッション・別座席へ振り替える
// 使用済みチケットは振り替えできない
func (t *Ticket) Rebook(sessionID, seatNumber string) error {
	if t.Used {
		return ErrTicketAlreadyUsed
	}
	if t.Status != StatusActive && t.Status != StatusValidated {
		return ErrTicketNotRebookable
	}
	t.SessionID = sessionID
	t.SeatNumber = seatNumber
	t.UpdatedAt = time.Now()
	return nil
}

// Validate はチケットの検証を行う
func (t *Ticket) Validate() error {
	if t.SessionID == "" {
		return ErrSessionIDRequired
	}
	if t.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	if !t.Type.IsValid() {
		return ErrInvalidTicketType
	}
	if t.QRCode == "" {
		return ErrQRCodeRequired
	}
	return nil
}

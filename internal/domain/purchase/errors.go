package purchase

import "errors"

// Purchase ドメインのエラー定義
var (
	ErrPurchaseNotFound         = errors.New("購入が見つかりません")
	ErrPurchaseNotPending       = errors.New("購入は保留中ではありません")
	ErrPurchaseAlreadyCancelled = errors.New("購入は既にキャンセルされています")
	ErrPaymentNotSucceeded      = errors.New("支払いが成功していないため確定できません")
	ErrUsedTicketInPurchase     = errors.New("使用済みチケットを含む購入はキャンセルできません")
	ErrCustomerIDRequired       = errors.New("顧客IDは必須です")
	ErrTicketsRequired          = errors.New("購入には1枚以上のチケットが必要です")
)

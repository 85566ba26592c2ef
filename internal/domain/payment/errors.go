package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound = errors.New("支払いが見つかりません")
)

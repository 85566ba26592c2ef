package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound         = errors.New("チケットが見つかりません")
	ErrTicketNotActive        = errors.New("チケットは有効状態ではありません")
	ErrTicketNotValidated     = errors.New("チケットは検証されていません")
	ErrTicketAlreadyUsed      = errors.New("チケットは既に使用されています")
	ErrTicketAlreadyCancelled = errors.New("チケットは既にキャンセルされています")
	ErrTicketCancelled        = errors.New("チケットはキャンセルされています")
	ErrTicketExpired          = errors.New("チケットは期限切れです")
	ErrTicketNotRebookable    = errors.New("チケットは振り替えできない状態です")
	ErrRebookDifferentMovie   = errors.New("振替先は同じ作品のセッションである必要があります")
	ErrDuplicateScan          = errors.New("チケットは既にスキャンされています")
	ErrSessionIDRequired      = errors.New("セッションIDは必須です")
	ErrSeatNumberRequired     = errors.New("座席番号は必須です")
	ErrInvalidTicketType      = errors.New("無効なチケット種別です")
	ErrQRCodeRequired         = errors.New("QRコードは必須です")
	ErrOptimisticLockConflict = errors.New("チケットは他の処理により更新されました")
)

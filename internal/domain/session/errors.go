package session

import "errors"

// Session ドメインのエラー定義
var (
	ErrSessionNotFound         = errors.New("セッションが見つかりません")
	ErrSeatNotAvailable        = errors.New("座席は確保できません")
	ErrSeatUnknown             = errors.New("存在しない座席番号です")
	ErrSeatsStillAvailable     = errors.New("空席が残っているため満席にできません")
	ErrSessionCancelled        = errors.New("セッションは中止されています")
	ErrSessionAlreadyCancelled = errors.New("セッションは既に中止されています")
	ErrSessionSoldOut          = errors.New("セッションは満席です")
	ErrSeatLayoutRequired      = errors.New("座席配置は必須です")
	ErrRoomTimeConflict        = errors.New("同一ルームの既存セッションと時間帯が重なっています")
	ErrMovieIDRequired         = errors.New("作品IDは必須です")
	ErrRoomIDRequired          = errors.New("ルームIDは必須です")
	ErrShowtimeRequired        = errors.New("上映開始時刻は必須です")
	ErrOptimisticLockConflict  = errors.New("楽観的ロックの競合が発生しました")
)

package programming

import (
	"errors"
	"fmt"
)

// Programming ドメインのエラー定義
var (
	ErrProgrammingNotFound   = errors.New("番組表が見つかりません")
	ErrPeriodRequired        = errors.New("期間は必須です")
	ErrInvalidPeriod         = errors.New("期間の終了日は開始日より後である必要があります")
	ErrSessionsRequired      = errors.New("番組表には1つ以上のセッションが必要です")
	ErrDuplicateSession      = errors.New("セッションIDが重複しています")
	ErrSessionNotProgramable = errors.New("販売可能状態でないセッションは番組表に割り当てられません")
	ErrShowtimeOutsidePeriod = errors.New("上映開始時刻が番組表の期間外です")
	ErrScheduleConflict      = errors.New("同一ルームで上映時間帯が重なっています")
)

// ConflictError は同一ルームでの時間帯衝突を表す
// 衝突した2つのセッションとルームを特定できる
type ConflictError struct {
	RoomID          string
	FirstSessionID  string
	SecondSessionID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ルーム %s でセッション %s と %s の上映時間帯が重なっています",
		e.RoomID, e.FirstSessionID, e.SecondSessionID)
}

// Unwrap は ErrScheduleConflict として判定できるようにする
func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}

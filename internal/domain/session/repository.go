package session

import (
	"context"
	"time"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
)

// Repository はセッションリポジトリのインターフェース
type Repository interface {
	// Create は新しいセッションを座席マップごと作成する
	Create(ctx context.Context, session *Session) error

	// GetByID はIDからセッションを座席マップ込みで取得する
	GetByID(ctx context.Context, id string) (*Session, error)

	// ListByMovie は作品IDからセッション一覧を取得する
	ListByMovie(ctx context.Context, movieID string) ([]*Session, error)

	// List はセッション一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Session, error)

	// ListStartedBefore は指定時刻より前に開始した未中止セッションを取得する
	ListStartedBefore(ctx context.Context, t time.Time) ([]*Session, error)

	// Update はセッションの状態を更新する（楽観的ロック）
	Update(ctx context.Context, session *Session) error

	// ReserveSeat は座席を確保する（compare-and-set、トランザクション必須）
	// 既に埋まっている座席は ErrSeatNotAvailable
	ReserveSeat(ctx context.Context, tx transaction.Tx, sessionID, seatNumber string) error

	// ReleaseSeat は座席を解放する（トランザクション必須）
	ReleaseSeat(ctx context.Context, tx transaction.Tx, sessionID, seatNumber string) error

	// CountAvailableSeats はセッションの空席数を取得する
	CountAvailableSeats(ctx context.Context, sessionID string) (int, error)

	// ExistsScheduleConflict は同じルームで時間帯が重なるセッションの有無を返す
	ExistsScheduleConflict(ctx context.Context, roomID string, from, to time.Time, excludeID string) (bool, error)
}

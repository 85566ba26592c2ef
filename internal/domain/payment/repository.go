package payment

import "context"

// Repository は支払いリポジトリのインターフェース
type Repository interface {
	// GetByID はIDから支払いを取得する
	GetByID(ctx context.Context, id string) (*Payment, error)

	// UpdateStatus は支払いの状態を更新する
	// 購入キャンセル時に処理中の支払いを取り消す用途に限る
	UpdateStatus(ctx context.Context, id string, status Status) error
}

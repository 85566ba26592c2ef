package movie

import "context"

// Repository は作品カタログリポジトリのインターフェース
type Repository interface {
	// Create は新しい作品を登録する
	Create(ctx context.Context, movie *Movie) error

	// GetByID はIDから作品を取得する
	GetByID(ctx context.Context, id string) (*Movie, error)

	// List は作品一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Movie, error)

	// Update は作品を更新する
	Update(ctx context.Context, movie *Movie) error
}

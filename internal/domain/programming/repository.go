package programming

import "context"

// Repository は番組表リポジトリのインターフェース
type Repository interface {
	// Create は新しい番組表を作成する
	Create(ctx context.Context, programming *Programming) error

	// GetByID はIDから番組表を取得する
	GetByID(ctx context.Context, id string) (*Programming, error)

	// List は番組表一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Programming, error)
}

package purchase

import (
	"context"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
)

// Repository は購入リポジトリのインターフェース
type Repository interface {
	// Create は新しい購入を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, purchase *Purchase) error

	// GetByID はIDから購入を取得する
	GetByID(ctx context.Context, id string) (*Purchase, error)

	// ListByCustomer は顧客IDから購入一覧を取得する
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*Purchase, error)

	// List は購入一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Purchase, error)

	// Update は購入を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, purchase *Purchase) error
}

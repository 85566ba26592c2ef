package ticket

import (
	"context"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
)

// Repository はチケットリポジトリのインターフェース
type Repository interface {
	// CreateBulk は複数のチケットを一括作成する（トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, tickets []*Ticket) error

	// GetByID はIDからチケットを取得する
	GetByID(ctx context.Context, id string) (*Ticket, error)

	// GetByQRCode はQRコードからチケットを取得する
	GetByQRCode(ctx context.Context, qrCode string) (*Ticket, error)

	// ListByPurchase は購入IDからチケット一覧を取得する
	ListByPurchase(ctx context.Context, purchaseID string) ([]*Ticket, error)

	// ListActive は有効状態のチケット一覧を取得する
	ListActive(ctx context.Context) ([]*Ticket, error)

	// ListActiveBySession はセッションの有効状態チケット一覧を取得する
	ListActiveBySession(ctx context.Context, sessionID string) ([]*Ticket, error)

	// ListActiveByCustomer は顧客の有効状態チケット一覧を取得する
	ListActiveByCustomer(ctx context.Context, customerID string) ([]*Ticket, error)

	// Update はチケットを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, ticket *Ticket) error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/purchase"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
)

type purchaseRow struct {
	ID          string     `db:"id"`
	CustomerID  string     `db:"customer_id"`
	PaymentID   *string    `db:"payment_id"`
	TotalAmount int        `db:"total_amount"`
	Status      string     `db:"status"`
	ConfirmedAt *time.Time `db:"confirmed_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r *purchaseRow) toEntity() *purchase.Purchase {
	return &purchase.Purchase{
		ID: r.ID, CustomerID: r.CustomerID, PaymentID: r.PaymentID,
		TotalAmount: r.TotalAmount, Status: purchase.Status(r.Status),
		ConfirmedAt: r.ConfirmedAt, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type PurchaseRepository struct{ db *sqlx.DB }

func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository { return &PurchaseRepository{db: db} }

func (r *PurchaseRepository) Create(ctx context.Context, tx transaction.Tx, p *purchase.Purchase) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}
	query := `INSERT INTO purchases (customer_id, total_amount, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, p.CustomerID, p.TotalAmount, string(p.Status), p.CreatedAt, p.UpdatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("購入作成に失敗: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id string) (*purchase.Purchase, error) {
	query := `SELECT id, customer_id, payment_id, total_amount, status, confirmed_at, created_at, updated_at FROM purchases WHERE id = $1`
	var row purchaseRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchase.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("購入取得に失敗: %w", err)
	}
	p := row.toEntity()
	if err := r.loadTicketIDs(ctx, []*purchase.Purchase{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PurchaseRepository) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*purchase.Purchase, error) {
	query := `SELECT id, customer_id, payment_id, total_amount, status, confirmed_at, created_at, updated_at FROM purchases WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, customerID, limit, offset)
}

func (r *PurchaseRepository) List(ctx context.Context, limit, offset int) ([]*purchase.Purchase, error) {
	query := `SELECT id, customer_id, payment_id, total_amount, status, confirmed_at, created_at, updated_at FROM purchases ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.listQuery(ctx, query, limit, offset)
}

func (r *PurchaseRepository) listQuery(ctx context.Context, query string, args ...interface{}) ([]*purchase.Purchase, error) {
	var rows []purchaseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	purchases := make([]*purchase.Purchase, len(rows))
	for i, row := range rows {
		purchases[i] = row.toEntity()
	}
	if err := r.loadTicketIDs(ctx, purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// loadTicketIDs は購入に属するチケットIDを1クエリでまとめて読み込む
func (r *PurchaseRepository) loadTicketIDs(ctx context.Context, purchases []*purchase.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	ids := make([]string, len(purchases))
	byID := make(map[string]*purchase.Purchase, len(purchases))
	for i, p := range purchases {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	var rows []struct {
		ID         string `db:"id"`
		PurchaseID string `db:"purchase_id"`
	}
	query := `SELECT id, purchase_id FROM tickets WHERE purchase_id = ANY($1) ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("チケットID取得に失敗: %w", err)
	}
	for _, row := range rows {
		p := byID[row.PurchaseID]
		p.TicketIDs = append(p.TicketIDs, row.ID)
	}
	return nil
}

func (r *PurchaseRepository) Update(ctx context.Context, tx transaction.Tx, p *purchase.Purchase) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}
	query := `UPDATE purchases SET payment_id = $1, status = $2, confirmed_at = $3, updated_at = NOW() WHERE id = $4`
	result, err := sqlxTx.ExecContext(ctx, query, p.PaymentID, string(p.Status), p.ConfirmedAt, p.ID)
	if err != nil {
		return fmt.Errorf("購入更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return purchase.ErrPurchaseNotFound
	}
	return nil
}

var _ purchase.Repository = (*PurchaseRepository)(nil)

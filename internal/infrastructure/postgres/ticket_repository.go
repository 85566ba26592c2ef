package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
)

type ticketRow struct {
	ID         string     `db:"id"`
	PurchaseID string     `db:"purchase_id"`
	SessionID  string     `db:"session_id"`
	SeatNumber string     `db:"seat_number"`
	Type       string     `db:"type"`
	Status     string     `db:"status"`
	Price      int        `db:"price"`
	QRCode     string     `db:"qr_code"`
	Used       bool       `db:"used"`
	UsedAt     *time.Time `db:"used_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	Version    int        `db:"version"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	return &ticket.Ticket{
		ID: r.ID, PurchaseID: r.PurchaseID, SessionID: r.SessionID,
		SeatNumber: r.SeatNumber, Type: ticket.Type(r.Type),
		Status: ticket.Status(r.Status), Price: r.Price, QRCode: r.QRCode,
		Used: r.Used, UsedAt: r.UsedAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

const ticketColumns = `id, purchase_id, session_id, seat_number, type, status, price, qr_code, used, used_at, created_at, updated_at, version`

type TicketRepository struct{ db *sqlx.DB }

func NewTicketRepository(db *sqlx.DB) *TicketRepository { return &TicketRepository{db: db} }

// CreateBulk はマルチバリューINSERTでチケットを一括作成する
func (r *TicketRepository) CreateBulk(ctx context.Context, tx transaction.Tx, tickets []*ticket.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	query := `INSERT INTO tickets (purchase_id, session_id, seat_number, type, status, price, qr_code, used, created_at, updated_at, version) VALUES `
	args := make([]interface{}, 0, len(tickets)*11)
	placeholders := make([]string, 0, len(tickets))
	for i, t := range tickets {
		base := i * 11
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11))
		args = append(args, t.PurchaseID, t.SessionID, t.SeatNumber, string(t.Type), string(t.Status), t.Price, t.QRCode, t.Used, t.CreatedAt, t.UpdatedAt, t.Version)
	}
	query += strings.Join(placeholders, ", ") + " RETURNING id"

	rows, err := sqlxTx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("チケット一括作成に失敗: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&tickets[i].ID); err != nil {
			return fmt.Errorf("チケットID取得に失敗: %w", err)
		}
		i++
	}
	return rows.Err()
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	return r.get(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
}

func (r *TicketRepository) GetByQRCode(ctx context.Context, qrCode string) (*ticket.Ticket, error) {
	return r.get(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE qr_code = $1`, qrCode)
}

func (r *TicketRepository) get(ctx context.Context, query string, arg interface{}) (*ticket.Ticket, error) {
	var row ticketRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TicketRepository) ListByPurchase(ctx context.Context, purchaseID string) ([]*ticket.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE purchase_id = $1 ORDER BY created_at, id`, purchaseID)
}

func (r *TicketRepository) ListActive(ctx context.Context) ([]*ticket.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE status = 'active' ORDER BY created_at, id`)
}

func (r *TicketRepository) ListActiveBySession(ctx context.Context, sessionID string) ([]*ticket.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE session_id = $1 AND status = 'active' ORDER BY created_at, id`, sessionID)
}

func (r *TicketRepository) ListActiveByCustomer(ctx context.Context, customerID string) ([]*ticket.Ticket, error) {
	query := `SELECT t.` + strings.ReplaceAll(ticketColumns, ", ", ", t.") + `
		FROM tickets t
		JOIN purchases p ON p.id = t.purchase_id
		WHERE p.customer_id = $1 AND t.status = 'active'
		ORDER BY t.created_at, t.id`
	return r.list(ctx, query, customerID)
}

func (r *TicketRepository) list(ctx context.Context, query string, args ...interface{}) ([]*ticket.Ticket, error) {
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

func (r *TicketRepository) Update(ctx context.Context, tx transaction.Tx, t *ticket.Ticket) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}
	// 読み取り時のバージョンと一致する場合のみ書き込む compare-and-set
	// 同じチケットへの並行遷移（二重入場やスイープとの競合）は片方だけが勝つ
	query := `UPDATE tickets SET session_id = $1, seat_number = $2, status = $3, used = $4, used_at = $5, updated_at = NOW(), version = version + 1 WHERE id = $6 AND version = $7`
	result, err := sqlxTx.ExecContext(ctx, query, t.SessionID, t.SeatNumber, string(t.Status), t.Used, t.UsedAt, t.ID, t.Version)
	if err != nil {
		return fmt.Errorf("チケット更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ticket.ErrOptimisticLockConflict
	}
	t.Version++
	return nil
}

var _ ticket.Repository = (*TicketRepository)(nil)

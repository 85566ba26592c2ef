package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/programming"
)

type programmingRow struct {
	ID          string    `db:"id"`
	PeriodStart time.Time `db:"period_start"`
	PeriodEnd   time.Time `db:"period_end"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *programmingRow) toEntity() *programming.Programming {
	return &programming.Programming{
		ID: r.ID, PeriodStart: r.PeriodStart, PeriodEnd: r.PeriodEnd,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type ProgrammingRepository struct{ db *sqlx.DB }

func NewProgrammingRepository(db *sqlx.DB) *ProgrammingRepository {
	return &ProgrammingRepository{db: db}
}

func (r *ProgrammingRepository) Create(ctx context.Context, p *programming.Programming) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO programmings (period_start, period_end, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := tx.QueryRowContext(ctx, query, p.PeriodStart, p.PeriodEnd, p.CreatedAt, p.UpdatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("番組表作成に失敗: %w", err)
	}

	for i, sessionID := range p.SessionIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO programming_sessions (programming_id, session_id, position) VALUES ($1, $2, $3)`,
			p.ID, sessionID, i); err != nil {
			return fmt.Errorf("番組表セッション登録に失敗: %w", err)
		}
	}
	return tx.Commit()
}

func (r *ProgrammingRepository) GetByID(ctx context.Context, id string) (*programming.Programming, error) {
	query := `SELECT id, period_start, period_end, created_at, updated_at FROM programmings WHERE id = $1`
	var row programmingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, programming.ErrProgrammingNotFound
		}
		return nil, fmt.Errorf("番組表取得に失敗: %w", err)
	}
	p := row.toEntity()
	if err := r.loadSessionIDs(ctx, []*programming.Programming{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProgrammingRepository) List(ctx context.Context, limit, offset int) ([]*programming.Programming, error) {
	query := `SELECT id, period_start, period_end, created_at, updated_at FROM programmings ORDER BY period_start DESC LIMIT $1 OFFSET $2`
	var rows []programmingRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}
	programmings := make([]*programming.Programming, len(rows))
	for i, row := range rows {
		programmings[i] = row.toEntity()
	}
	if err := r.loadSessionIDs(ctx, programmings); err != nil {
		return nil, err
	}
	return programmings, nil
}

func (r *ProgrammingRepository) loadSessionIDs(ctx context.Context, programmings []*programming.Programming) error {
	if len(programmings) == 0 {
		return nil
	}
	ids := make([]string, len(programmings))
	byID := make(map[string]*programming.Programming, len(programmings))
	for i, p := range programmings {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	var rows []struct {
		ProgrammingID string `db:"programming_id"`
		SessionID     string `db:"session_id"`
	}
	query := `SELECT programming_id, session_id FROM programming_sessions WHERE programming_id = ANY($1) ORDER BY position`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("番組表セッション取得に失敗: %w", err)
	}
	for _, row := range rows {
		p := byID[row.ProgrammingID]
		p.SessionIDs = append(p.SessionIDs, row.SessionID)
	}
	return nil
}

var _ programming.Repository = (*ProgrammingRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
)

type sessionRow struct {
	ID        string    `db:"id"`
	MovieID   string    `db:"movie_id"`
	RoomID    string    `db:"room_id"`
	Showtime  time.Time `db:"showtime"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int       `db:"version"`
}

func (r *sessionRow) toEntity() *session.Session {
	return &session.Session{
		ID: r.ID, MovieID: r.MovieID, RoomID: r.RoomID,
		Showtime: r.Showtime, Status: session.Status(r.Status),
		Seats:     make(map[string]bool),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type seatRow struct {
	SessionID  string `db:"session_id"`
	SeatNumber string `db:"seat_number"`
	Available  bool   `db:"available"`
}

type SessionRepository struct{ db *sqlx.DB }

func NewSessionRepository(db *sqlx.DB) *SessionRepository { return &SessionRepository{db: db} }

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO sessions (movie_id, room_id, showtime, status, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := tx.QueryRowContext(ctx, query, s.MovieID, s.RoomID, s.Showtime, string(s.Status), s.CreatedAt, s.UpdatedAt, s.Version).Scan(&s.ID); err != nil {
		return fmt.Errorf("セッション作成に失敗: %w", err)
	}

	for seatNumber, available := range s.Seats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_seats (session_id, seat_number, available) VALUES ($1, $2, $3)`,
			s.ID, seatNumber, available); err != nil {
			return fmt.Errorf("座席作成に失敗: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*session.Session, error) {
	query := `SELECT id, movie_id, room_id, showtime, status, created_at, updated_at, version FROM sessions WHERE id = $1`
	var row sessionRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	s := row.toEntity()
	if err := r.loadSeats(ctx, []*session.Session{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepository) ListByMovie(ctx context.Context, movieID string) ([]*session.Session, error) {
	query := `SELECT id, movie_id, room_id, showtime, status, created_at, updated_at, version FROM sessions WHERE movie_id = $1 ORDER BY showtime`
	return r.list(ctx, query, movieID)
}

func (r *SessionRepository) List(ctx context.Context, limit, offset int) ([]*session.Session, error) {
	query := `SELECT id, movie_id, room_id, showtime, status, created_at, updated_at, version FROM sessions ORDER BY showtime LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *SessionRepository) ListStartedBefore(ctx context.Context, t time.Time) ([]*session.Session, error) {
	query := `SELECT id, movie_id, room_id, showtime, status, created_at, updated_at, version FROM sessions WHERE showtime < $1 AND status != 'cancelled' ORDER BY showtime`
	return r.list(ctx, query, t)
}

func (r *SessionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*session.Session, error) {
	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	sessions := make([]*session.Session, len(rows))
	for i, row := range rows {
		sessions[i] = row.toEntity()
	}
	if err := r.loadSeats(ctx, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// loadSeats は複数セッションの座席マップを1クエリでまとめて読み込む
func (r *SessionRepository) loadSeats(ctx context.Context, sessions []*session.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	ids := make([]string, len(sessions))
	byID := make(map[string]*session.Session, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	var rows []seatRow
	query := `SELECT session_id, seat_number, available FROM session_seats WHERE session_id = ANY($1)`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("座席取得に失敗: %w", err)
	}
	for _, row := range rows {
		byID[row.SessionID].Seats[row.SeatNumber] = row.Available
	}
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	query := `UPDATE sessions SET status = $1, showtime = $2, updated_at = NOW(), version = version + 1 WHERE id = $3 AND version = $4`
	result, err := r.db.ExecContext(ctx, query, string(s.Status), s.Showtime, s.ID, s.Version)
	if err != nil {
		return fmt.Errorf("セッション更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return session.ErrOptimisticLockConflict
	}
	s.Version++
	return nil
}

// ReserveSeat は座席の空き確認と確保を1つのUPDATEで行う compare-and-set
// 最後の空席が埋まった場合は同じトランザクション内で満席状態へ遷移する
func (r *SessionRepository) ReserveSeat(ctx context.Context, tx transaction.Tx, sessionID, seatNumber string) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	result, err := sqlxTx.ExecContext(ctx,
		`UPDATE session_seats SET available = FALSE WHERE session_id = $1 AND seat_number = $2 AND available = TRUE`,
		sessionID, seatNumber)
	if err != nil {
		return fmt.Errorf("座席確保に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return session.ErrSeatNotAvailable
	}

	_, err = sqlxTx.ExecContext(ctx,
		`UPDATE sessions SET status = 'sold_out', updated_at = NOW(), version = version + 1
		 WHERE id = $1 AND status = 'available'
		   AND NOT EXISTS (SELECT 1 FROM session_seats WHERE session_id = $1 AND available = TRUE)`,
		sessionID)
	if err != nil {
		return fmt.Errorf("満席遷移に失敗: %w", err)
	}
	return nil
}

// ReleaseSeat は座席を解放し、満席だったセッションを販売可能へ戻す
func (r *SessionRepository) ReleaseSeat(ctx context.Context, tx transaction.Tx, sessionID, seatNumber string) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクションです")
	}

	result, err := sqlxTx.ExecContext(ctx,
		`UPDATE session_seats SET available = TRUE WHERE session_id = $1 AND seat_number = $2`,
		sessionID, seatNumber)
	if err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return session.ErrSeatUnknown
	}

	_, err = sqlxTx.ExecContext(ctx,
		`UPDATE sessions SET status = 'available', updated_at = NOW(), version = version + 1 WHERE id = $1 AND status = 'sold_out'`,
		sessionID)
	if err != nil {
		return fmt.Errorf("販売可能遷移に失敗: %w", err)
	}
	return nil
}

func (r *SessionRepository) CountAvailableSeats(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM session_seats WHERE session_id = $1 AND available = TRUE`, sessionID)
	return count, err
}

// ExistsScheduleConflict は同じルームで占有区間 [from, to) と重なるセッションの有無を返す
// 既存セッションの占有区間は上映開始から「上映時間+清掃30分」まで
func (r *SessionRepository) ExistsScheduleConflict(ctx context.Context, roomID string, from, to time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions s
			JOIN movies m ON m.id = s.movie_id
			WHERE s.room_id = $1
			  AND s.status != 'cancelled'
			  AND ($4 = '' OR s.id::text != $4)
			  AND s.showtime < $3
			  AND s.showtime + make_interval(mins => m.duration_minutes + 30) > $2
		)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, roomID, from, to, excludeID); err != nil {
		return false, fmt.Errorf("スケジュール確認に失敗: %w", err)
	}
	return exists, nil
}

var _ session.Repository = (*SessionRepository)(nil)

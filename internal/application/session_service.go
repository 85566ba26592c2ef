package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/programming"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-cinema-ticketing/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/logger"
)

const (
	seatCacheTTL = 30 * time.Second
)

// SessionService は上映セッションを扱うアプリケーションサービス
type SessionService struct {
	txManager   transaction.Manager
	sessionRepo session.Repository
	movieRepo   movie.Repository
	seatCache   redisinfra.SeatCacheInterface
}

func NewSessionService(txm transaction.Manager, sr session.Repository, mr movie.Repository, cache redisinfra.SeatCacheInterface) *SessionService {
	return &SessionService{txManager: txm, sessionRepo: sr, movieRepo: mr, seatCache: cache}
}

type CreateSessionInput struct {
	MovieID     string
	RoomID      string
	Showtime    time.Time
	SeatNumbers []string
	Rows        int
	SeatsPerRow int
}

// CreateSession は新しいセッションを作成する
// 作品がカタログに存在し、現在上映中である場合のみ作成できる
// 同一ルームの既存セッションと時間帯が重なる場合は拒否する
func (s *SessionService) CreateSession(ctx context.Context, input CreateSessionInput) (*session.Session, error) {
	mv, err := s.movieRepo.GetByID(ctx, input.MovieID)
	if err != nil {
		return nil, err
	}
	if !mv.IsScreening() {
		return nil, movie.ErrMovieNotShowing
	}

	seatNumbers := input.SeatNumbers
	if len(seatNumbers) == 0 {
		seatNumbers = generateSeatNumbers(input.Rows, input.SeatsPerRow)
	}
	if len(seatNumbers) == 0 {
		return nil, session.ErrSeatLayoutRequired
	}

	se := session.NewSession(input.MovieID, input.RoomID, input.Showtime, seatNumbers)
	if err := se.Validate(); err != nil {
		return nil, err
	}

	occupiedUntil := input.Showtime.Add(mv.Duration()).Add(programming.CleanupBuffer)
	conflict, err := s.sessionRepo.ExistsScheduleConflict(ctx, input.RoomID, input.Showtime, occupiedUntil, "")
	if err != nil {
		return nil, fmt.Errorf("スケジュール確認に失敗: %w", err)
	}
	if conflict {
		return nil, session.ErrRoomTimeConflict
	}

	if err := s.sessionRepo.Create(ctx, se); err != nil {
		return nil, fmt.Errorf("セッション作成に失敗しました: %w", err)
	}
	return se, nil
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

func (s *SessionService) ListSessions(ctx context.Context, limit, offset int) ([]*session.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.sessionRepo.List(ctx, limit, offset)
}

func (s *SessionService) ListSessionsByMovie(ctx context.Context, movieID string) ([]*session.Session, error) {
	return s.sessionRepo.ListByMovie(ctx, movieID)
}

// ReserveSeat は単一座席を確保する（窓口販売向け）
func (s *SessionService) ReserveSeat(ctx context.Context, sessionID, seatNumber string) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()
	if err := s.sessionRepo.ReserveSeat(ctx, tx, sessionID, seatNumber); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	s.invalidateCache(ctx, sessionID)
	return nil
}

// ReleaseSeat は単一座席を解放する
func (s *SessionService) ReleaseSeat(ctx context.Context, sessionID, seatNumber string) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()
	if err := s.sessionRepo.ReleaseSeat(ctx, tx, sessionID, seatNumber); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	s.invalidateCache(ctx, sessionID)
	return nil
}

// MarkSoldOut はセッションを明示的に満席へ遷移する
func (s *SessionService) MarkSoldOut(ctx context.Context, sessionID string) (*session.Session, error) {
	se, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := se.MarkSoldOut(); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(ctx, se); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, sessionID)
	return se, nil
}

// CancelSession はセッションを中止する
func (s *SessionService) CancelSession(ctx context.Context, sessionID string) (*session.Session, error) {
	se, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := se.Cancel(); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(ctx, se); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, sessionID)
	return se, nil
}

// CountAvailableSeats はセッションの空席数を返す（キャッシュ優先）
func (s *SessionService) CountAvailableSeats(ctx context.Context, sessionID string) (int, error) {
	if s.seatCache != nil {
		count, err := s.seatCache.GetAvailableCount(ctx, sessionID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("session_id", sessionID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	count, err := s.sessionRepo.CountAvailableSeats(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	if s.seatCache != nil {
		if cacheErr := s.seatCache.SetAvailableCount(ctx, sessionID, count, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return count, nil
}

func (s *SessionService) invalidateCache(ctx context.Context, sessionID string) {
	if s.seatCache == nil {
		return
	}
	if err := s.seatCache.Invalidate(ctx, sessionID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// generateSeatNumbers は行数×列数から "A1".."B10" 形式の座席番号を生成する
func generateSeatNumbers(rows, seatsPerRow int) []string {
	if rows <= 0 || seatsPerRow <= 0 || rows > 26 {
		return nil
	}
	numbers := make([]string, 0, rows*seatsPerRow)
	for r := 0; r < rows; r++ {
		rowLabel := string(rune('A' + r))
		for n := 1; n <= seatsPerRow; n++ {
			numbers = append(numbers, fmt.Sprintf("%s%d", rowLabel, n))
		}
	}
	return numbers
}

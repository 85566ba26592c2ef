package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-cinema-ticketing/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/metrics"
)

// TicketService はチケットの検証・使用・振替・期限切れを扱うアプリケーションサービス
type TicketService struct {
	txManager   transaction.Manager
	ticketRepo  ticket.Repository
	sessionRepo session.Repository
	movieRepo   movie.Repository
	seatCache   redisinfra.SeatCacheInterface
	scanChecks  []ScanCheck
}

func NewTicketService(
	txm transaction.Manager,
	tr ticket.Repository,
	sr session.Repository,
	mr movie.Repository,
	cache redisinfra.SeatCacheInterface,
	scanChecks ...ScanCheck,
) *TicketService {
	return &TicketService{
		txManager:   txm,
		ticketRepo:  tr,
		sessionRepo: sr,
		movieRepo:   mr,
		seatCache:   cache,
		scanChecks:  scanChecks,
	}
}

// ValidateTicketByQR は入場ゲートのスキャンを処理する
// スキャンされたチケットの購入に属する有効状態のチケットを全てまとめて検証する（グループ入場）
// 検証済みチケットの再スキャンは成功として扱う
func (s *TicketService) ValidateTicketByQR(ctx context.Context, qrCode string) (*ticket.Ticket, error) {
	scanned, err := s.ticketRepo.GetByQRCode(ctx, qrCode)
	if err != nil {
		metrics.RecordTicketScan("rejected")
		return nil, err
	}

	for _, check := range s.scanChecks {
		if err := check(scanned); err != nil {
			metrics.RecordTicketScan("rejected")
			return nil, err
		}
	}

	// 再スキャンは冪等（状態を変えずに成功）
	if scanned.Status == ticket.StatusValidated {
		metrics.RecordTicketScan("duplicate")
		return scanned, nil
	}
	if err := scanned.MarkValidated(); err != nil {
		metrics.RecordTicketScan("rejected")
		return nil, err
	}

	group, err := s.ticketRepo.ListByPurchase(ctx, scanned.PurchaseID)
	if err != nil {
		return nil, fmt.Errorf("購入チケット取得に失敗: %w", err)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.ticketRepo.Update(ctx, tx, scanned); err != nil {
		return nil, err
	}
	// 同じ購入の残りの有効チケットは個別に検証する
	// 1枚の失敗でグループ全体は失敗しない
	for _, tk := range group {
		if tk.ID == scanned.ID || !tk.IsActive() {
			continue
		}
		if err := tk.MarkValidated(); err != nil {
			logger.Warn("グループ検証をスキップ", zap.String("ticket_id", tk.ID), zap.Error(err))
			continue
		}
		if err := s.ticketRepo.Update(ctx, tx, tk); err != nil {
			// 並行して状態が変わったチケットは次のスキャンに委ねる
			if errors.Is(err, ticket.ErrOptimisticLockConflict) {
				logger.Warn("グループ検証をスキップ", zap.String("ticket_id", tk.ID), zap.Error(err))
				continue
			}
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	metrics.RecordTicketScan("validated")
	return scanned, nil
}

// UseTicket は検証済みチケットを使用済みにする（物理入場）
func (s *TicketService) UseTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	tk, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tk.Use(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()
	if err := s.ticketRepo.Update(ctx, tx, tk); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return tk, nil
}

// RebookTicket はチケットを別セッションの座席へ振り替える
// 振替先は同じ作品のセッションでなければならない
// 新しい座席の確保と元の座席の解放は同一トランザクションで行う
func (s *TicketService) RebookTicket(ctx context.Context, id, newSessionID, newSeatNumber string) (*ticket.Ticket, error) {
	tk, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldSession, err := s.sessionRepo.GetByID(ctx, tk.SessionID)
	if err != nil {
		return nil, fmt.Errorf("元セッション取得に失敗: %w", err)
	}
	newSession, err := s.sessionRepo.GetByID(ctx, newSessionID)
	if err != nil {
		return nil, fmt.Errorf("振替先セッション取得に失敗: %w", err)
	}
	if newSession.IsCancelled() {
		return nil, session.ErrSessionCancelled
	}
	if newSession.MovieID != oldSession.MovieID {
		return nil, ticket.ErrRebookDifferentMovie
	}
	if _, err := s.movieRepo.GetByID(ctx, newSession.MovieID); err != nil {
		return nil, err
	}
	if !newSession.IsSeatAvailable(newSeatNumber) {
		return nil, session.ErrSeatNotAvailable
	}

	oldSessionID, oldSeat := tk.SessionID, tk.SeatNumber
	if err := tk.Rebook(newSessionID, newSeatNumber); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()
	if err := s.sessionRepo.ReserveSeat(ctx, tx, newSessionID, newSeatNumber); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.ReleaseSeat(ctx, tx, oldSessionID, oldSeat); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Update(ctx, tx, tk); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, oldSessionID)
	s.invalidateCache(ctx, newSessionID)
	return tk, nil
}

func (s *TicketService) GetTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	return s.ticketRepo.GetByID(ctx, id)
}

func (s *TicketService) ListActiveTickets(ctx context.Context) ([]*ticket.Ticket, error) {
	return s.ticketRepo.ListActive(ctx)
}

func (s *TicketService) ListCustomerActiveTickets(ctx context.Context, customerID string) ([]*ticket.Ticket, error) {
	return s.ticketRepo.ListActiveByCustomer(ctx, customerID)
}

// ExpireSessionTickets は上映開始済みセッションの有効チケットを期限切れにする
// 上映前または中止済みのセッションは何もせず0を返す
func (s *TicketService) ExpireSessionTickets(ctx context.Context, sessionID string, now time.Time) (int, error) {
	se, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if !se.HasStarted(now) || se.IsCancelled() {
		return 0, nil
	}

	tickets, err := s.ticketRepo.ListActiveBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	if len(tickets) == 0 {
		return 0, nil
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for _, tk := range tickets {
		if err := tk.Expire(); err != nil {
			logger.Warn("期限切れ遷移をスキップ", zap.String("ticket_id", tk.ID), zap.Error(err))
			continue
		}
		if err := s.ticketRepo.Update(ctx, tx, tk); err != nil {
			// 一覧取得後に検証されたチケットを期限切れで上書きしない
			if errors.Is(err, ticket.ErrOptimisticLockConflict) {
				logger.Warn("期限切れ遷移をスキップ", zap.String("ticket_id", tk.ID), zap.Error(err))
				continue
			}
			return 0, err
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("コミットに失敗: %w", err)
	}
	return count, nil
}

// ExpireOverdueTickets は上映開始済みの全セッションを走査して期限切れ処理を行う
func (s *TicketService) ExpireOverdueTickets(ctx context.Context, now time.Time) (int, error) {
	sessions, err := s.sessionRepo.ListStartedBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	total := 0
	for _, se := range sessions {
		count, err := s.ExpireSessionTickets(ctx, se.ID, now)
		if err != nil {
			return total, err
		}
		total += count
	}
	return total, nil
}

func (s *TicketService) invalidateCache(ctx context.Context, sessionID string) {
	if s.seatCache == nil {
		return
	}
	if err := s.seatCache.Invalidate(ctx, sessionID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.String("session_id", sessionID), zap.Error(err))
	}
}

package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainevent "github.com/sanosuguru/go-cinema-ticketing/internal/domain/event"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/payment"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/purchase"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-cinema-ticketing/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/metrics"
)

const (
	seatLockTTL        = 10 * time.Second
	seatLockMaxRetries = 3
	seatLockRetryDelay = 100 * time.Millisecond
)

// PurchaseService は購入ライフサイクルを扱うアプリケーションサービス
type PurchaseService struct {
	txManager    transaction.Manager
	purchaseRepo purchase.Repository
	ticketRepo   ticket.Repository
	sessionRepo  session.Repository
	paymentRepo  payment.Repository
	lockManager  redisinfra.LockManagerInterface
	seatCache    redisinfra.SeatCacheInterface
	publisher    domainevent.Publisher
}

func NewPurchaseService(
	txm transaction.Manager,
	pr purchase.Repository,
	tr ticket.Repository,
	sr session.Repository,
	payr payment.Repository,
	lm redisinfra.LockManagerInterface,
	cache redisinfra.SeatCacheInterface,
	pub domainevent.Publisher,
) *PurchaseService {
	return &PurchaseService{
		txManager:    txm,
		purchaseRepo: pr,
		ticketRepo:   tr,
		sessionRepo:  sr,
		paymentRepo:  payr,
		lockManager:  lm,
		seatCache:    cache,
		publisher:    pub,
	}
}

// SeatRequest は購入したい1座席分の指定
type SeatRequest struct {
	SessionID  string
	SeatNumber string
	Type       ticket.Type
}

type InitiatePurchaseInput struct {
	CustomerID string
	Seats      []SeatRequest
}

// InitiatePurchase は座席を確保してチケットと保留中の購入を作成する
// いずれかの座席が確保できない場合は全体が失敗し、座席は一切確保されない
func (s *PurchaseService) InitiatePurchase(ctx context.Context, input InitiatePurchaseInput) (*purchase.Purchase, error) {
	if input.CustomerID == "" {
		return nil, purchase.ErrCustomerIDRequired
	}
	if len(input.Seats) == 0 {
		return nil, purchase.ErrTicketsRequired
	}
	for _, req := range input.Seats {
		if req.SessionID == "" {
			return nil, ticket.ErrSessionIDRequired
		}
		if req.SeatNumber == "" {
			return nil, ticket.ErrSeatNumberRequired
		}
		if !req.Type.IsValid() {
			return nil, ticket.ErrInvalidTicketType
		}
	}

	// 分散ロックを取得（座席キーをソートしてデッドロックを防止）
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, buildSeatLockKey(input.Seats), seatLockTTL, seatLockMaxRetries, seatLockRetryDelay)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				metrics.RecordPurchase("seat_conflict")
				return nil, fmt.Errorf("座席が他の購入で処理中です: %w", session.ErrSeatNotAvailable)
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	// 全座席の空き確認（1つでも埋まっていれば何も確保せず失敗）
	sessions := make(map[string]*session.Session)
	for _, req := range input.Seats {
		se, ok := sessions[req.SessionID]
		if !ok {
			var err error
			se, err = s.sessionRepo.GetByID(ctx, req.SessionID)
			if err != nil {
				return nil, fmt.Errorf("セッション取得に失敗: %w", err)
			}
			sessions[req.SessionID] = se
		}
		if se.IsCancelled() {
			return nil, session.ErrSessionCancelled
		}
		if !se.IsSeatAvailable(req.SeatNumber) {
			metrics.RecordPurchase("seat_conflict")
			return nil, session.ErrSeatNotAvailable
		}
	}

	totalAmount := 0
	tickets := make([]*ticket.Ticket, 0, len(input.Seats))
	for _, req := range input.Seats {
		tk := ticket.NewTicket(req.SessionID, req.SeatNumber, uuid.New().String(), req.Type)
		if err := tk.Validate(); err != nil {
			return nil, err
		}
		tickets = append(tickets, tk)
		totalAmount += tk.Price
	}

	p := purchase.NewPurchase(input.CustomerID, totalAmount)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 座席確保はDB側の compare-and-set。途中で失敗した場合は
	// ロールバックにより確保済みの座席も元に戻る
	for _, req := range input.Seats {
		if err := s.sessionRepo.ReserveSeat(ctx, tx, req.SessionID, req.SeatNumber); err != nil {
			if errors.Is(err, session.ErrSeatNotAvailable) {
				metrics.RecordPurchase("seat_conflict")
			}
			return nil, err
		}
	}

	if err := s.purchaseRepo.Create(ctx, tx, p); err != nil {
		return nil, err
	}
	for _, tk := range tickets {
		tk.PurchaseID = p.ID
	}
	if err := s.ticketRepo.CreateBulk(ctx, tx, tickets); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	for _, tk := range tickets {
		p.TicketIDs = append(p.TicketIDs, tk.ID)
	}
	metrics.RecordPurchase("initiated")
	metrics.IncActivePurchases(string(purchase.StatusPending))
	s.invalidateSeatCaches(ctx, sessions)
	return p, nil
}

// ConfirmPurchase は支払い成功を確認して購入を確定する
func (s *PurchaseService) ConfirmPurchase(ctx context.Context, purchaseID, paymentID string) (*purchase.Purchase, error) {
	p, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	pay, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !pay.IsSuccessful() {
		return nil, purchase.ErrPaymentNotSucceeded
	}

	if err := p.Confirm(paymentID); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()
	if err := s.purchaseRepo.Update(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	metrics.RecordPurchase("confirmed")
	metrics.DecActivePurchases(string(purchase.StatusPending))
	metrics.IncActivePurchases(string(purchase.StatusConfirmed))

	if s.publisher != nil {
		s.publisher.PublishPurchaseConfirmed(domainevent.PurchaseConfirmed{
			PurchaseID:  p.ID,
			CustomerID:  p.CustomerID,
			TicketIDs:   p.TicketIDs,
			TotalAmount: p.TotalAmount,
			OccurredAt:  time.Now(),
		})
	}
	return p, nil
}

// CancelPurchase は購入をキャンセルし、座席を解放してチケットを取り消す
// 使用済みチケットが1枚でも含まれる場合は全体が失敗する
func (s *PurchaseService) CancelPurchase(ctx context.Context, purchaseID string) (*purchase.Purchase, error) {
	p, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.ticketRepo.ListByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	for _, tk := range tickets {
		if tk.Used {
			return nil, purchase.ErrUsedTicketInPurchase
		}
	}

	prevStatus := p.Status
	if err := p.Cancel(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	affectedSessions := make(map[string]struct{})
	for _, tk := range tickets {
		if tk.Status != ticket.StatusActive && tk.Status != ticket.StatusValidated {
			continue
		}
		if err := tk.Cancel(); err != nil {
			return nil, err
		}
		if err := s.ticketRepo.Update(ctx, tx, tk); err != nil {
			return nil, err
		}
		if err := s.sessionRepo.ReleaseSeat(ctx, tx, tk.SessionID, tk.SeatNumber); err != nil {
			return nil, err
		}
		affectedSessions[tk.SessionID] = struct{}{}
	}
	if err := s.purchaseRepo.Update(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	metrics.RecordPurchase("cancelled")
	metrics.DecActivePurchases(string(prevStatus))

	// 処理中の支払いが残っていれば連動して取り消す（失敗しても購入キャンセルは成立）
	s.cancelPendingPayment(ctx, p)

	if s.publisher != nil {
		s.publisher.PublishPurchaseCancelled(domainevent.PurchaseCancelled{
			PurchaseID: p.ID,
			CustomerID: p.CustomerID,
			TicketIDs:  p.TicketIDs,
			OccurredAt: time.Now(),
		})
	}

	if s.seatCache != nil {
		for sessionID := range affectedSessions {
			if err := s.seatCache.Invalidate(ctx, sessionID); err != nil {
				logger.Warn("キャッシュ無効化エラー", zap.Error(err))
			}
		}
	}
	return p, nil
}

func (s *PurchaseService) GetPurchase(ctx context.Context, id string) (*purchase.Purchase, error) {
	return s.purchaseRepo.GetByID(ctx, id)
}

func (s *PurchaseService) ListCustomerPurchases(ctx context.Context, customerID string, limit, offset int) ([]*purchase.Purchase, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.purchaseRepo.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *PurchaseService) cancelPendingPayment(ctx context.Context, p *purchase.Purchase) {
	if p.PaymentID == nil {
		return
	}
	pay, err := s.paymentRepo.GetByID(ctx, *p.PaymentID)
	if err != nil {
		logger.Warn("支払い取得エラー", zap.String("payment_id", *p.PaymentID), zap.Error(err))
		return
	}
	if !pay.IsPending() {
		return
	}
	if err := s.paymentRepo.UpdateStatus(ctx, pay.ID, payment.StatusCancelled); err != nil {
		logger.Warn("支払い取り消しエラー", zap.String("payment_id", pay.ID), zap.Error(err))
	}
}

func (s *PurchaseService) invalidateSeatCaches(ctx context.Context, sessions map[string]*session.Session) {
	if s.seatCache == nil {
		return
	}
	for sessionID := range sessions {
		if err := s.seatCache.Invalidate(ctx, sessionID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
}

// buildSeatLockKey は座席指定からロックキーを生成（ソートしてデッドロック防止）
func buildSeatLockKey(seats []SeatRequest) string {
	keys := make([]string, len(seats))
	for i, req := range seats {
		keys[i] = req.SessionID + ":" + req.SeatNumber
	}
	sort.Strings(keys)
	return "seats:" + strings.Join(keys, ",")
}

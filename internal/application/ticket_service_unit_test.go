package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
)

type ticketTestDeps struct {
	txManager   *MockTxManager
	tx          *MockTx
	ticketRepo  *MockTicketRepository
	sessionRepo *MockSessionRepository
	movieRepo   *MockMovieRepository
	seatCache   *MockSeatCache
}

func newTicketTestDeps() *ticketTestDeps {
	return &ticketTestDeps{
		txManager:   new(MockTxManager),
		tx:          new(MockTx),
		ticketRepo:  new(MockTicketRepository),
		sessionRepo: new(MockSessionRepository),
		movieRepo:   new(MockMovieRepository),
		seatCache:   new(MockSeatCache),
	}
}

func (d *ticketTestDeps) newService(checks ...ScanCheck) *TicketService {
	return NewTicketService(d.txManager, d.ticketRepo, d.sessionRepo, d.movieRepo, d.seatCache, checks...)
}

func newTicketWithID(id, sessionID, seatNumber, qrCode string) *ticket.Ticket {
	tk := ticket.NewTicket(sessionID, seatNumber, qrCode, ticket.TypeFull)
	tk.ID = id
	tk.PurchaseID = "purchase-1"
	return tk
}

func TestTicketService_ValidateTicketByQR_GroupValidation(t *testing.T) {
	deps := newTicketTestDeps()
	service := deps.newService()
	ctx := context.Background()

	scanned := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
	sibling := newTicketWithID("ticket-2", "session-1", "A2", "qr-2")
	cancelled := newTicketWithID("ticket-3", "session-1", "A3", "qr-3")
	require.NoError(t, cancelled.Cancel())

	deps.ticketRepo.On("GetByQRCode", ctx, "qr-1").Return(scanned, nil)
	deps.ticketRepo.On("ListByPurchase", ctx, "purchase-1").
		Return([]*ticket.Ticket{scanned, sibling, cancelled}, nil)

	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.ticketRepo.On("Update", ctx, deps.tx, scanned).Return(nil)
	deps.ticketRepo.On("Update", ctx, deps.tx, sibling).Return(nil)

	result, err := service.ValidateTicketByQR(ctx, "qr-1")

	require.NoError(t, err)
	assert.Equal(t, ticket.StatusValidated, result.Status)
	// 同じ購入の有効チケットもまとめて検証される
	assert.Equal(t, ticket.StatusValidated, sibling.Status)
	// 取り消し済みチケットは対象外
	assert.Equal(t, ticket.StatusCancelled, cancelled.Status)

	deps.ticketRepo.AssertExpectations(t)
}

func TestTicketService_ValidateTicketByQR_RescanIsIdempotent(t *testing.T) {
	deps := newTicketTestDeps()
	service := deps.newService()
	ctx := context.Background()

	validated := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
	require.NoError(t, validated.MarkValidated())

	deps.ticketRepo.On("GetByQRCode", ctx, "qr-1").Return(validated, nil)

	result, err := service.ValidateTicketByQR(ctx, "qr-1")

	// 再スキャンは状態を変えずに成功する
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusValidated, result.Status)
	deps.txManager.AssertNotCalled(t, "Begin")
	deps.ticketRepo.AssertNotCalled(t, "ListByPurchase")
}

func TestTicketService_ValidateTicketByQR_DuplicateScanCheck(t *testing.T) {
	deps := newTicketTestDeps()
	// 重複スキャン拒否を明示的に組み込んだ構成
	service := deps.newService(NewDuplicateScanCheck())
	ctx := context.Background()

	scanned := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")

	deps.ticketRepo.On("GetByQRCode", ctx, "qr-1").Return(scanned, nil)
	deps.ticketRepo.On("ListByPurchase", ctx, "purchase-1").Return([]*ticket.Ticket{scanned}, nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.ticketRepo.On("Update", ctx, deps.tx, scanned).Return(nil)

	_, err := service.ValidateTicketByQR(ctx, "qr-1")
	require.NoError(t, err)

	// 2回目のスキャンは冪等ではなく拒否される
	_, err = service.ValidateTicketByQR(ctx, "qr-1")
	require.ErrorIs(t, err, ticket.ErrDuplicateScan)
}

func TestTicketService_ValidateTicketByQR_GroupMemberConflictSkipped(t *testing.T) {
	deps := newTicketTestDeps()
	service := deps.newService()
	ctx := context.Background()

	scanned := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
	sibling := newTicketWithID("ticket-2", "session-1", "A2", "qr-2")

	deps.ticketRepo.On("GetByQRCode", ctx, "qr-1").Return(scanned, nil)
	deps.ticketRepo.On("ListByPurchase", ctx, "purchase-1").
		Return([]*ticket.Ticket{scanned, sibling}, nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.ticketRepo.On("Update", ctx, deps.tx, scanned).Return(nil)
	// 同行者のチケットが並行更新されていた場合はスキップして続行する
	deps.ticketRepo.On("Update", ctx, deps.tx, sibling).Return(ticket.ErrOptimisticLockConflict)

	result, err := service.ValidateTicketByQR(ctx, "qr-1")

	require.NoError(t, err)
	assert.Equal(t, ticket.StatusValidated, result.Status)
	deps.tx.AssertCalled(t, "Commit")
}

func TestTicketService_ValidateTicketByQR_UsedTicket(t *testing.T) {
	deps := newTicketTestDeps()
	service := deps.newService()
	ctx := context.Background()

	used := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
	require.NoError(t, used.MarkValidated())
	require.NoError(t, used.Use())

	deps.ticketRepo.On("GetByQRCode", ctx, "qr-1").Return(used, nil)

	result, err := service.ValidateTicketByQR(ctx, "qr-1")

	// 使用済みチケットの再スキャンは検証済み扱いで成功する（入場判断は使用時に行う）
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusValidated, result.Status)
	assert.True(t, result.Used)
}

func TestTicketService_UseTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("検証済みチケットを使用できる", func(t *testing.T) {
		deps := newTicketTestDeps()
		service := deps.newService()

		tk := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
		require.NoError(t, tk.MarkValidated())

		deps.ticketRepo.On("GetByID", ctx, "ticket-1").Return(tk, nil)
		deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
		deps.tx.On("Rollback").Return(nil)
		deps.tx.On("Commit").Return(nil)
		deps.ticketRepo.On("Update", ctx, deps.tx, tk).Return(nil)

		result, err := service.UseTicket(ctx, "ticket-1")

		require.NoError(t, err)
		assert.True(t, result.Used)
		assert.NotNil(t, result.UsedAt)
	})

	t.Run("未検証のチケットは使用できない", func(t *testing.T) {
		deps := newTicketTestDeps()
		service := deps.newService()

		tk := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
		deps.ticketRepo.On("GetByID", ctx, "ticket-1").Return(tk, nil)

		_, err := service.UseTicket(ctx, "ticket-1")

		require.ErrorIs(t, err, ticket.ErrTicketNotValidated)
		deps.txManager.AssertNotCalled(t, "Begin")
	})

	t.Run("使用済みチケットは再使用できない", func(t *testing.T) {
		deps := newTicketTestDeps()
		service := deps.newService()

		tk := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
		require.NoError(t, tk.MarkValidated())
		require.NoError(t, tk.Use())

		deps.ticketRepo.On("GetByID", ctx, "ticket-1").Return(tk, nil)

		_, err := service.UseTicket(ctx, "ticket-1")

		require.ErrorIs(t, err, ticket.ErrTicketAlreadyUsed)
	})

	t.Run("並行更新との競合はエラーになる", func(t *testing.T) {
		deps := newTicketTestDeps()
		service := deps.newService()

		tk := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
		require.NoError(t, tk.MarkValidated())

		deps.ticketRepo.On("GetByID", ctx, "ticket-1").Return(tk, nil)
		deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
		deps.tx.On("Rollback").Return(nil)
		deps.ticketRepo.On("Update", ctx, deps.tx, tk).Return(ticket.ErrOptimisticLockConflict)

		_, err := service.UseTicket(ctx, "ticket-1")

		require.ErrorIs(t, err, ticket.ErrOptimisticLockConflict)
	})
}

func TestTicketService_RebookTicket_Success(t *testing.T) {
	deps := newTicketTestDeps()
	service := deps.newService()
	ctx := context.Background()

	tk := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")

	oldSession := availableSession("session-1", "movie-1", "A1", "A2")
	newSession := availableSession("session-2", "movie-1", "B1", "B2")

	deps.ticketRepo.On("GetByID", ctx, "ticket-1").Return(tk, nil)
	deps.sessionRepo.On("GetByID", ctx, "session-1").Return(oldSession, nil)
	deps.sessionRepo.On("GetByID", ctx, "session-2").Return(newSession, nil)
	deps.movieRepo.On("GetByID", ctx, "movie-1").
		Return(&movie.Movie{ID: "movie-1", Title: "作品A", DurationMinutes: 120, Screening: true}, nil)

	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)

	// 新しい座席の確保と元の座席の解放が同一トランザクションで行われる
	deps.sessionRepo.On("ReserveSeat", ctx, deps.tx, "session-2", "B1").Return(nil)
	deps.sessionRepo.On("ReleaseSeat", ctx, deps.tx, "session-1", "A1").Return(nil)
	deps.ticketRepo.On("Update", ctx, deps.tx, tk).Return(nil)

	deps.seatCache.On("Invalidate", ctx, "session-1").Return(nil)
	deps.seatCache.On("Invalidate", ctx, "session-2").Return(nil)

	result, err := service.RebookTicket(ctx, "ticket-1", "session-2", "B1")

	require.NoError(t, err)
	assert.Equal(t, "session-2", result.SessionID)
	assert.Equal(t, "B1", result.SeatNumber)

	deps.sessionRepo.AssertExpectations(t)
	deps.seatCache.AssertExpectations(t)
}

func TestTicketService_RebookTicket_DifferentMovie(t *testing.T) {
	deps := newTicketTestDeps()
	service := deps.newService()
	ctx := context.Background()

	tk := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")

	deps.ticketRepo.On("GetByID", ctx, "ticket-1").Return(tk, nil)
	deps.sessionRepo.On("GetByID", ctx, "session-1").
		Return(availableSession("session-1", "movie-1", "A1"), nil)
	deps.sessionRepo.On("GetByID", ctx, "session-2").
		Return(availableSession("session-2", "movie-2", "B1"), nil)

	_, err := service.RebookTicket(ctx, "ticket-1", "session-2", "B1")

	require.ErrorIs(t, err, ticket.ErrRebookDifferentMovie)
	deps.txManager.AssertNotCalled(t, "Begin")
}

func TestTicketService_RebookTicket_SeatNotAvailable(t *testing.T) {
	deps := newTicketTestDeps()
	service := deps.newService()
	ctx := context.Background()

	tk := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")

	newSession := availableSession("session-2", "movie-1", "B1")
	require.NoError(t, newSession.ReserveSeat("B1"))

	deps.ticketRepo.On("GetByID", ctx, "ticket-1").Return(tk, nil)
	deps.sessionRepo.On("GetByID", ctx, "session-1").
		Return(availableSession("session-1", "movie-1", "A1"), nil)
	deps.sessionRepo.On("GetByID", ctx, "session-2").Return(newSession, nil)
	deps.movieRepo.On("GetByID", ctx, "movie-1").
		Return(&movie.Movie{ID: "movie-1", Title: "作品A", DurationMinutes: 120, Screening: true}, nil)

	_, err := service.RebookTicket(ctx, "ticket-1", "session-2", "B1")

	require.ErrorIs(t, err, session.ErrSeatNotAvailable)
	// チケットは元の座席のまま
	assert.Equal(t, "session-1", tk.SessionID)
	assert.Equal(t, "A1", tk.SeatNumber)
}

func TestTicketService_ExpireSessionTickets(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("開始済みセッションの有効チケットを期限切れにする", func(t *testing.T) {
		deps := newTicketTestDeps()
		service := deps.newService()

		started := availableSession("session-1", "movie-1", "A1", "A2")
		started.Showtime = now.Add(-1 * time.Hour)

		tk1 := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
		tk2 := newTicketWithID("ticket-2", "session-1", "A2", "qr-2")

		deps.sessionRepo.On("GetByID", ctx, "session-1").Return(started, nil)
		deps.ticketRepo.On("ListActiveBySession", ctx, "session-1").
			Return([]*ticket.Ticket{tk1, tk2}, nil)
		deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
		deps.tx.On("Rollback").Return(nil)
		deps.tx.On("Commit").Return(nil)
		deps.ticketRepo.On("Update", ctx, deps.tx, tk1).Return(nil)
		deps.ticketRepo.On("Update", ctx, deps.tx, tk2).Return(nil)

		count, err := service.ExpireSessionTickets(ctx, "session-1", now)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, ticket.StatusExpired, tk1.Status)
		assert.Equal(t, ticket.StatusExpired, tk2.Status)
	})

	t.Run("一覧取得後に更新されたチケットはスキップする", func(t *testing.T) {
		deps := newTicketTestDeps()
		service := deps.newService()

		started := availableSession("session-4", "movie-1", "A1", "A2")
		started.Showtime = now.Add(-1 * time.Hour)

		tk1 := newTicketWithID("ticket-1", "session-4", "A1", "qr-1")
		tk2 := newTicketWithID("ticket-2", "session-4", "A2", "qr-2")

		deps.sessionRepo.On("GetByID", ctx, "session-4").Return(started, nil)
		deps.ticketRepo.On("ListActiveBySession", ctx, "session-4").
			Return([]*ticket.Ticket{tk1, tk2}, nil)
		deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
		deps.tx.On("Rollback").Return(nil)
		deps.tx.On("Commit").Return(nil)
		deps.ticketRepo.On("Update", ctx, deps.tx, tk1).Return(ticket.ErrOptimisticLockConflict)
		deps.ticketRepo.On("Update", ctx, deps.tx, tk2).Return(nil)

		count, err := service.ExpireSessionTickets(ctx, "session-4", now)

		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("上映前のセッションは何もしない", func(t *testing.T) {
		deps := newTicketTestDeps()
		service := deps.newService()

		future := availableSession("session-2", "movie-1", "A1")
		future.Showtime = now.Add(3 * time.Hour)

		deps.sessionRepo.On("GetByID", ctx, "session-2").Return(future, nil)

		count, err := service.ExpireSessionTickets(ctx, "session-2", now)

		require.NoError(t, err)
		assert.Equal(t, 0, count)
		deps.ticketRepo.AssertNotCalled(t, "ListActiveBySession")
	})

	t.Run("中止済みセッションは何もしない", func(t *testing.T) {
		deps := newTicketTestDeps()
		service := deps.newService()

		cancelled := availableSession("session-3", "movie-1", "A1")
		cancelled.Showtime = now.Add(-1 * time.Hour)
		require.NoError(t, cancelled.Cancel())

		deps.sessionRepo.On("GetByID", ctx, "session-3").Return(cancelled, nil)

		count, err := service.ExpireSessionTickets(ctx, "session-3", now)

		require.NoError(t, err)
		assert.Equal(t, 0, count)
		deps.ticketRepo.AssertNotCalled(t, "ListActiveBySession")
	})
}

func TestTicketService_ExpireOverdueTickets(t *testing.T) {
	deps := newTicketTestDeps()
	service := deps.newService()
	ctx := context.Background()
	now := time.Now()

	yesterday := availableSession("session-1", "movie-1", "A1", "A2")
	yesterday.Showtime = now.Add(-24 * time.Hour)
	earlier := availableSession("session-2", "movie-1", "B1")
	earlier.Showtime = now.Add(-2 * time.Hour)

	tk1 := newTicketWithID("ticket-1", "session-1", "A1", "qr-1")
	tk2 := newTicketWithID("ticket-2", "session-1", "A2", "qr-2")

	deps.sessionRepo.On("ListStartedBefore", ctx, now).
		Return([]*session.Session{yesterday, earlier}, nil)
	deps.sessionRepo.On("GetByID", ctx, "session-1").Return(yesterday, nil)
	deps.sessionRepo.On("GetByID", ctx, "session-2").Return(earlier, nil)
	deps.ticketRepo.On("ListActiveBySession", ctx, "session-1").
		Return([]*ticket.Ticket{tk1, tk2}, nil)
	deps.ticketRepo.On("ListActiveBySession", ctx, "session-2").
		Return([]*ticket.Ticket{}, nil)
	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.ticketRepo.On("Update", ctx, deps.tx, tk1).Return(nil)
	deps.ticketRepo.On("Update", ctx, deps.tx, tk2).Return(nil)

	total, err := service.ExpireOverdueTickets(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

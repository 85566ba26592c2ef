package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
	redisinfra "github.com/sanosuguru/go-cinema-ticketing/internal/infrastructure/redis"
)

type sessionTestDeps struct {
	txManager   *MockTxManager
	tx          *MockTx
	sessionRepo *MockSessionRepository
	movieRepo   *MockMovieRepository
	seatCache   *MockSeatCache
	service     *SessionService
}

func newSessionTestDeps() *sessionTestDeps {
	txm := new(MockTxManager)
	tx := new(MockTx)
	sessionRepo := new(MockSessionRepository)
	movieRepo := new(MockMovieRepository)
	seatCache := new(MockSeatCache)

	return &sessionTestDeps{
		txManager:   txm,
		tx:          tx,
		sessionRepo: sessionRepo,
		movieRepo:   movieRepo,
		seatCache:   seatCache,
		service:     NewSessionService(txm, sessionRepo, movieRepo, seatCache),
	}
}

func screeningMovie(id string) *movie.Movie {
	return &movie.Movie{ID: id, Title: "作品A", DurationMinutes: 120, Screening: true}
}

func TestSessionService_CreateSession_Success(t *testing.T) {
	deps := newSessionTestDeps()
	ctx := context.Background()
	showtime := time.Now().Add(24 * time.Hour)

	deps.movieRepo.On("GetByID", ctx, "movie-1").Return(screeningMovie("movie-1"), nil)
	// 上映時間 + 清掃バッファ30分のあいだルームが塞がる
	occupiedUntil := showtime.Add(120 * time.Minute).Add(30 * time.Minute)
	deps.sessionRepo.On("ExistsScheduleConflict", ctx, "room-1", showtime, occupiedUntil, "").
		Return(false, nil)
	deps.sessionRepo.On("Create", ctx, mock.AnythingOfType("*session.Session")).Return(nil)

	result, err := deps.service.CreateSession(ctx, CreateSessionInput{
		MovieID:     "movie-1",
		RoomID:      "room-1",
		Showtime:    showtime,
		Rows:        2,
		SeatsPerRow: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, session.StatusAvailable, result.Status)
	assert.Equal(t, 20, result.Capacity())
	assert.Equal(t, 20, result.AvailableSeatCount())
	// 行×列から "A1".."B10" 形式で生成される
	assert.True(t, result.IsSeatAvailable("A1"))
	assert.True(t, result.IsSeatAvailable("B10"))
	assert.False(t, result.IsSeatAvailable("C1"))

	deps.sessionRepo.AssertExpectations(t)
}

func TestSessionService_CreateSession_RoomTimeConflict(t *testing.T) {
	deps := newSessionTestDeps()
	ctx := context.Background()
	showtime := time.Now().Add(24 * time.Hour)

	deps.movieRepo.On("GetByID", ctx, "movie-1").Return(screeningMovie("movie-1"), nil)
	deps.sessionRepo.On("ExistsScheduleConflict", ctx, "room-1", showtime, mock.AnythingOfType("time.Time"), "").
		Return(true, nil)

	result, err := deps.service.CreateSession(ctx, CreateSessionInput{
		MovieID:     "movie-1",
		RoomID:      "room-1",
		Showtime:    showtime,
		SeatNumbers: []string{"A1", "A2"},
	})

	require.ErrorIs(t, err, session.ErrRoomTimeConflict)
	assert.Nil(t, result)
	deps.sessionRepo.AssertNotCalled(t, "Create")
}

func TestSessionService_CreateSession_MovieNotShowing(t *testing.T) {
	deps := newSessionTestDeps()
	ctx := context.Background()

	stopped := screeningMovie("movie-1")
	stopped.Screening = false
	deps.movieRepo.On("GetByID", ctx, "movie-1").Return(stopped, nil)

	result, err := deps.service.CreateSession(ctx, CreateSessionInput{
		MovieID:     "movie-1",
		RoomID:      "room-1",
		Showtime:    time.Now().Add(24 * time.Hour),
		SeatNumbers: []string{"A1"},
	})

	require.ErrorIs(t, err, movie.ErrMovieNotShowing)
	assert.Nil(t, result)
	deps.sessionRepo.AssertNotCalled(t, "ExistsScheduleConflict")
}

func TestSessionService_CreateSession_MovieNotFound(t *testing.T) {
	deps := newSessionTestDeps()
	ctx := context.Background()

	deps.movieRepo.On("GetByID", ctx, "movie-x").Return(nil, movie.ErrMovieNotFound)

	result, err := deps.service.CreateSession(ctx, CreateSessionInput{
		MovieID:     "movie-x",
		RoomID:      "room-1",
		Showtime:    time.Now().Add(24 * time.Hour),
		SeatNumbers: []string{"A1"},
	})

	require.ErrorIs(t, err, movie.ErrMovieNotFound)
	assert.Nil(t, result)
}

func TestSessionService_CreateSession_NoSeatLayout(t *testing.T) {
	deps := newSessionTestDeps()
	ctx := context.Background()

	deps.movieRepo.On("GetByID", ctx, "movie-1").Return(screeningMovie("movie-1"), nil)

	result, err := deps.service.CreateSession(ctx, CreateSessionInput{
		MovieID:  "movie-1",
		RoomID:   "room-1",
		Showtime: time.Now().Add(24 * time.Hour),
	})

	require.ErrorIs(t, err, session.ErrSeatLayoutRequired)
	assert.Nil(t, result)
}

func TestSessionService_ReserveSeat(t *testing.T) {
	deps := newSessionTestDeps()
	ctx := context.Background()

	deps.txManager.On("Begin", ctx).Return(deps.tx, nil)
	deps.tx.On("Rollback").Return(nil)
	deps.tx.On("Commit").Return(nil)
	deps.sessionRepo.On("ReserveSeat", ctx, deps.tx, "session-1", "A1").Return(nil)
	deps.seatCache.On("Invalidate", ctx, "session-1").Return(nil)

	err := deps.service.ReserveSeat(ctx, "session-1", "A1")

	require.NoError(t, err)
	deps.sessionRepo.AssertExpectations(t)
	deps.seatCache.AssertExpectations(t)
}

func TestSessionService_MarkSoldOut(t *testing.T) {
	ctx := context.Background()

	t.Run("全席埋まったセッションを満席にできる", func(t *testing.T) {
		deps := newSessionTestDeps()
		se := availableSession("session-1", "movie-1", "A1")
		se.Seats["A1"] = false

		deps.sessionRepo.On("GetByID", ctx, "session-1").Return(se, nil)
		deps.sessionRepo.On("Update", ctx, se).Return(nil)
		// 空席数キャッシュが古い値を返し続けないよう無効化する
		deps.seatCache.On("Invalidate", ctx, "session-1").Return(nil)

		result, err := deps.service.MarkSoldOut(ctx, "session-1")

		require.NoError(t, err)
		assert.Equal(t, session.StatusSoldOut, result.Status)
		deps.seatCache.AssertExpectations(t)
	})

	t.Run("空席が残っているセッションは満席にできない", func(t *testing.T) {
		deps := newSessionTestDeps()
		se := availableSession("session-1", "movie-1", "A1", "A2")

		deps.sessionRepo.On("GetByID", ctx, "session-1").Return(se, nil)

		_, err := deps.service.MarkSoldOut(ctx, "session-1")

		require.ErrorIs(t, err, session.ErrSeatsStillAvailable)
		deps.sessionRepo.AssertNotCalled(t, "Update")
		deps.seatCache.AssertNotCalled(t, "Invalidate")
	})
}

func TestSessionService_CancelSession(t *testing.T) {
	ctx := context.Background()

	t.Run("セッションを中止できる", func(t *testing.T) {
		deps := newSessionTestDeps()
		se := availableSession("session-1", "movie-1", "A1", "A2")

		deps.sessionRepo.On("GetByID", ctx, "session-1").Return(se, nil)
		deps.sessionRepo.On("Update", ctx, se).Return(nil)
		deps.seatCache.On("Invalidate", ctx, "session-1").Return(nil)

		result, err := deps.service.CancelSession(ctx, "session-1")

		require.NoError(t, err)
		assert.Equal(t, session.StatusCancelled, result.Status)
	})

	t.Run("中止済みのセッションは再中止できない", func(t *testing.T) {
		deps := newSessionTestDeps()
		se := availableSession("session-1", "movie-1", "A1")
		require.NoError(t, se.Cancel())

		deps.sessionRepo.On("GetByID", ctx, "session-1").Return(se, nil)

		_, err := deps.service.CancelSession(ctx, "session-1")

		require.ErrorIs(t, err, session.ErrSessionAlreadyCancelled)
		deps.sessionRepo.AssertNotCalled(t, "Update")
	})
}

func TestSessionService_CountAvailableSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("キャッシュヒット", func(t *testing.T) {
		deps := newSessionTestDeps()
		deps.seatCache.On("GetAvailableCount", ctx, "session-1").Return(42, nil)

		count, err := deps.service.CountAvailableSeats(ctx, "session-1")

		require.NoError(t, err)
		assert.Equal(t, 42, count)
		deps.sessionRepo.AssertNotCalled(t, "CountAvailableSeats")
	})

	t.Run("キャッシュミス時はDBから取得してキャッシュする", func(t *testing.T) {
		deps := newSessionTestDeps()
		deps.seatCache.On("GetAvailableCount", ctx, "session-1").Return(0, redisinfra.ErrCacheMiss)
		deps.sessionRepo.On("CountAvailableSeats", ctx, "session-1").Return(17, nil)
		deps.seatCache.On("SetAvailableCount", ctx, "session-1", 17, 30*time.Second).Return(nil)

		count, err := deps.service.CountAvailableSeats(ctx, "session-1")

		require.NoError(t, err)
		assert.Equal(t, 17, count)
		deps.seatCache.AssertExpectations(t)
	})
}

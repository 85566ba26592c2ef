package session

import (
	"sort"
	"time"
)

// Status は上映セッションの状態を表す
type Status string

const (
	StatusAvailable Status = "available"
	StatusSoldOut   Status = "sold_out"
	StatusCancelled Status = "cancelled"
)

// Session は上映セッションエンティティを表す
// Seats は座席番号 → 空席かどうか（true = 空席）のマップ
type Session struct {
	ID        string
	MovieID   string
	RoomID    string
	Showtime  time.Time
	Status    Status
	Seats     map[string]bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int // 楽観的ロック用
}

// NewSession は新しいセッションを作成する
// 座席は全て空席で初期化される
func NewSession(movieID, roomID string, showtime time.Time, seatNumbers []string) *Session {
	seats := make(map[string]bool, len(seatNumbers))
	for _, n := range seatNumbers {
		seats[n] = true
	}
	now := time.Now()
	return &Session{
		MovieID:   movieID,
		RoomID:    roomID,
		Showtime:  showtime,
		Status:    StatusAvailable,
		Seats:     seats,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}
}

// SeatNumbers は全座席番号をソート済みで返す
func (s *Session) SeatNumbers() []string {
	numbers := make([]string, 0, len(s.Seats))
	for n := range s.Seats {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	return numbers
}

// IsSeatAvailable は座席が空席かを返す
// 存在しない座席番号は常に false
func (s *Session) IsSeatAvailable(seatNumber string) bool {
	return s.Seats[seatNumber]
}

// ReserveSeat は座席を確保する
// 最後の空席が埋まった場合、同じ操作の中で満席状態へ遷移する
func (s *Session) ReserveSeat(seatNumber string) error {
	if s.Status == StatusCancelled {
		return ErrSessionCancelled
	}
	available, ok := s.Seats[seatNumber]
	if !ok || !available {
		return ErrSeatNotAvailable
	}
	s.Seats[seatNumber] = false
	if s.AvailableSeatCount() == 0 {
		s.Status = StatusSoldOut
	}
	s.UpdatedAt = time.Now()
	return nil
}

// ReleaseSeat は座席を解放する
// 満席だったセッションは販売可能状態へ戻る
func (s *Session) ReleaseSeat(seatNumber string) error {
	if _, ok := s.Seats[seatNumber]; !ok {
		return ErrSeatUnknown
	}
	s.Seats[seatNumber] = true
	if s.Status == StatusSoldOut {
		s.Status = StatusAvailable
	}
	s.UpdatedAt = time.Now()
	return nil
}

// MarkSoldOut はセッションを満席状態にする
// 空席が残っている場合は遷移できない
func (s *Session) MarkSoldOut() error {
	if s.Status == StatusCancelled {
		return ErrSessionCancelled
	}
	if s.AvailableSeatCount() > 0 {
		return ErrSeatsStillAvailable
	}
	s.Status = StatusSoldOut
	s.UpdatedAt = time.Now()
	return nil
}

// Cancel はセッションを中止する（終端状態）
func (s *Session) Cancel() error {
	if s.Status == StatusCancelled {
		return ErrSessionAlreadyCancelled
	}
	s.Status = StatusCancelled
	s.UpdatedAt = time.Now()
	return nil
}

// IsCancelled はセッションが中止済みかを返す
func (s *Session) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// HasStarted は上映開始時刻を過ぎているかを返す
func (s *Session) HasStarted(now time.Time) bool {
	return s.Showtime.Before(now)
}

// Capacity は座席総数を返す
func (s *Session) Capacity() int {
	return len(s.Seats)
}

// AvailableSeatCount は空席数を返す
func (s *Session) AvailableSeatCount() int {
	count := 0
	for _, available := range s.Seats {
		if available {
			count++
		}
	}
	return count
}

// Validate はセッションの検証を行う
func (s *Session) Validate() error {
	if s.MovieID == "" {
		return ErrMovieIDRequired
	}
	if s.RoomID == "" {
		return ErrRoomIDRequired
	}
	if s.Showtime.IsZero() {
		return ErrShowtimeRequired
	}
	return nil
}

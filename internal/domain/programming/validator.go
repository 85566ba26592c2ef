package programming

import (
	"sort"
	"time"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
)

// CleanupBuffer は上映終了後の清掃・入れ替え時間
const CleanupBuffer = 30 * time.Minute

// ValidateSchedule は候補セッション群のルーム割り当てを検証する
// 同一ルーム内で上映開始から「上映時間+清掃時間」までを占有区間とみなし、
// 次のセッションの開始はその区間より厳密に後でなければならない
func ValidateSchedule(sessions []*session.Session, durationByMovie map[string]time.Duration, periodStart, periodEnd time.Time) error {
	for _, s := range sessions {
		if s.Status != session.StatusAvailable {
			return ErrSessionNotProgramable
		}
		if s.Showtime.Before(periodStart) || s.Showtime.After(periodEnd) {
			return ErrShowtimeOutsidePeriod
		}
	}

	byRoom := make(map[string][]*session.Session)
	for _, s := range sessions {
		byRoom[s.RoomID] = append(byRoom[s.RoomID], s)
	}

	for roomID, roomSessions := range byRoom {
		sort.Slice(roomSessions, func(i, j int) bool {
			return roomSessions[i].Showtime.Before(roomSessions[j].Showtime)
		})
		for i := 0; i < len(roomSessions)-1; i++ {
			prev, next := roomSessions[i], roomSessions[i+1]
			occupiedUntil := prev.Showtime.Add(durationByMovie[prev.MovieID]).Add(CleanupBuffer)
			if !next.Showtime.After(occupiedUntil) {
				return &ConflictError{
					RoomID:          roomID,
					FirstSessionID:  prev.ID,
					SecondSessionID: next.ID,
				}
			}
		}
	}
	return nil
}

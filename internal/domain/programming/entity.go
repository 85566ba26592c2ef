package programming

import "time"

// Programming は週間番組表エンティティを表す
// 期間と、その期間に割り当てられたセッションIDの集合を持つ
type Programming struct {
	ID          string
	PeriodStart time.Time
	PeriodEnd   time.Time
	SessionIDs  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProgramming は新しい番組表を作成する
func NewProgramming(periodStart, periodEnd time.Time, sessionIDs []string) *Programming {
	now := time.Now()
	return &Programming{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		SessionIDs:  sessionIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate は番組表の検証を行う
// セッションIDの重複はここで拒否する
func (p *Programming) Validate() error {
	if p.PeriodStart.IsZero() || p.PeriodEnd.IsZero() {
		return ErrPeriodRequired
	}
	if p.PeriodEnd.Before(p.PeriodStart) {
		return ErrInvalidPeriod
	}
	if len(p.SessionIDs) == 0 {
		return ErrSessionsRequired
	}
	seen := make(map[string]struct{}, len(p.SessionIDs))
	for _, id := range p.SessionIDs {
		if _, ok := seen[id]; ok {
			return ErrDuplicateSession
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Contains は指定の時刻が番組表の期間内かを返す
func (p *Programming) Contains(t time.Time) bool {
	return !t.Before(p.PeriodStart) && !t.After(p.PeriodEnd)
}

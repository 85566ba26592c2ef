package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/programming"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
)

// ProgrammingService は番組表の組み立てを扱うアプリケーションサービス
type ProgrammingService struct {
	programmingRepo programming.Repository
	sessionRepo     session.Repository
	movieRepo       movie.Repository
}

func NewProgrammingService(pr programming.Repository, sr session.Repository, mr movie.Repository) *ProgrammingService {
	return &ProgrammingService{programmingRepo: pr, sessionRepo: sr, movieRepo: mr}
}

type CreateProgrammingInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	SessionIDs  []string
}

// CreateProgramming は候補セッション群から番組表を作成する
// 同一ルームでの時間帯衝突が1件でもあれば全体が失敗する
func (s *ProgrammingService) CreateProgramming(ctx context.Context, input CreateProgrammingInput) (*programming.Programming, error) {
	p := programming.NewProgramming(input.PeriodStart, input.PeriodEnd, input.SessionIDs)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	sessions := make([]*session.Session, 0, len(input.SessionIDs))
	durations := make(map[string]time.Duration)
	for _, id := range input.SessionIDs {
		se, err := s.sessionRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, se)

		if _, ok := durations[se.MovieID]; !ok {
			mv, err := s.movieRepo.GetByID(ctx, se.MovieID)
			if err != nil {
				return nil, err
			}
			durations[se.MovieID] = mv.Duration()
		}
	}

	if err := programming.ValidateSchedule(sessions, durations, input.PeriodStart, input.PeriodEnd); err != nil {
		return nil, err
	}

	if err := s.programmingRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("番組表作成に失敗しました: %w", err)
	}
	return p, nil
}

func (s *ProgrammingService) GetProgramming(ctx context.Context, id string) (*programming.Programming, error) {
	return s.programmingRepo.GetByID(ctx, id)
}

func (s *ProgrammingService) ListProgrammings(ctx context.Context, limit, offset int) ([]*programming.Programming, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.programmingRepo.List(ctx, limit, offset)
}

package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
)

// MovieService は作品カタログを扱うアプリケーションサービス
type MovieService struct {
	movieRepo movie.Repository
}

func NewMovieService(mr movie.Repository) *MovieService {
	return &MovieService{movieRepo: mr}
}

type CreateMovieInput struct {
	Title           string
	Synopsis        string
	Rating          string
	DurationMinutes int
}

func (s *MovieService) CreateMovie(ctx context.Context, input CreateMovieInput) (*movie.Movie, error) {
	m := movie.NewMovie(input.Title, input.Synopsis, input.Rating, input.DurationMinutes)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.movieRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("作品登録に失敗しました: %w", err)
	}
	return m, nil
}

func (s *MovieService) GetMovie(ctx context.Context, id string) (*movie.Movie, error) {
	return s.movieRepo.GetByID(ctx, id)
}

func (s *MovieService) ListMovies(ctx context.Context, limit, offset int) ([]*movie.Movie, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.movieRepo.List(ctx, limit, offset)
}

// StopScreening は作品の上映を終了する
// 以後この作品の新しいセッションは作成できない
func (s *MovieService) StopScreening(ctx context.Context, id string) (*movie.Movie, error) {
	m, err := s.movieRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.StopScreening()
	if err := s.movieRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
)

func TestMovieService_CreateMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("正常に作品を登録できる", func(t *testing.T) {
		movieRepo := new(MockMovieRepository)
		service := NewMovieService(movieRepo)

		movieRepo.On("Create", ctx, mock.AnythingOfType("*movie.Movie")).Return(nil)

		result, err := service.CreateMovie(ctx, CreateMovieInput{
			Title:           "作品A",
			Synopsis:        "あらすじ",
			Rating:          "PG-12",
			DurationMinutes: 120,
		})

		require.NoError(t, err)
		assert.Equal(t, "作品A", result.Title)
		assert.True(t, result.Screening)
		movieRepo.AssertExpectations(t)
	})

	t.Run("タイトルなしはバリデーションエラー", func(t *testing.T) {
		movieRepo := new(MockMovieRepository)
		service := NewMovieService(movieRepo)

		_, err := service.CreateMovie(ctx, CreateMovieInput{DurationMinutes: 120})

		require.ErrorIs(t, err, movie.ErrTitleRequired)
		movieRepo.AssertNotCalled(t, "Create")
	})

	t.Run("上映時間0分はバリデーションエラー", func(t *testing.T) {
		movieRepo := new(MockMovieRepository)
		service := NewMovieService(movieRepo)

		_, err := service.CreateMovie(ctx, CreateMovieInput{Title: "作品A"})

		require.ErrorIs(t, err, movie.ErrInvalidDuration)
	})
}

func TestMovieService_StopScreening(t *testing.T) {
	ctx := context.Background()
	movieRepo := new(MockMovieRepository)
	service := NewMovieService(movieRepo)

	mv := screeningMovie("movie-1")
	movieRepo.On("GetByID", ctx, "movie-1").Return(mv, nil)
	movieRepo.On("Update", ctx, mv).Return(nil)

	result, err := service.StopScreening(ctx, "movie-1")

	require.NoError(t, err)
	assert.False(t, result.Screening)
	movieRepo.AssertExpectations(t)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
)

type movieRow struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	Synopsis        string    `db:"synopsis"`
	Rating          string    `db:"rating"`
	DurationMinutes int       `db:"duration_minutes"`
	Screening       bool      `db:"screening"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r *movieRow) toEntity() *movie.Movie {
	return &movie.Movie{
		ID: r.ID, Title: r.Title, Synopsis: r.Synopsis, Rating: r.Rating,
		DurationMinutes: r.DurationMinutes, Screening: r.Screening,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type MovieRepository struct{ db *sqlx.DB }

func NewMovieRepository(db *sqlx.DB) *MovieRepository { return &MovieRepository{db: db} }

func (r *MovieRepository) Create(ctx context.Context, m *movie.Movie) error {
	query := `INSERT INTO movies (title, synopsis, rating, duration_minutes, screening, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, m.Title, m.Synopsis, m.Rating, m.DurationMinutes, m.Screening, m.CreatedAt, m.UpdatedAt).Scan(&m.ID)
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*movie.Movie, error) {
	query := `SELECT id, title, synopsis, rating, duration_minutes, screening, created_at, updated_at FROM movies WHERE id = $1`
	var row movieRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, movie.ErrMovieNotFound
		}
		return nil, fmt.Errorf("作品取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *MovieRepository) List(ctx context.Context, limit, offset int) ([]*movie.Movie, error) {
	query := `SELECT id, title, synopsis, rating, duration_minutes, screening, created_at, updated_at FROM movies ORDER BY title LIMIT $1 OFFSET $2`
	var rows []movieRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}
	movies := make([]*movie.Movie, len(rows))
	for i, row := range rows {
		movies[i] = row.toEntity()
	}
	return movies, nil
}

func (r *MovieRepository) Update(ctx context.Context, m *movie.Movie) error {
	query := `UPDATE movies SET title = $1, synopsis = $2, rating = $3, duration_minutes = $4, screening = $5, updated_at = NOW() WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, m.Title, m.Synopsis, m.Rating, m.DurationMinutes, m.Screening, m.ID)
	if err != nil {
		return fmt.Errorf("作品更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return movie.ErrMovieNotFound
	}
	return nil
}

var _ movie.Repository = (*MovieRepository)(nil)

package movie

import "time"

// Movie は上映作品エンティティを表す
type Movie struct {
	ID              string
	Title           string
	Synopsis        string
	Rating          string
	DurationMinutes int
	Screening       bool // 現在上映中かどうか
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewMovie は新しい作品を作成する
func NewMovie(title, synopsis, rating string, durationMinutes int) *Movie {
	now := time.Now()
	return &Movie{
		Title:           title,
		Synopsis:        synopsis,
		Rating:          rating,
		DurationMinutes: durationMinutes,
		Screening:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Duration は上映時間を返す
func (m *Movie) Duration() time.Duration {
	return time.Duration(m.DurationMinutes) * time.Minute
}

// IsScreening は現在上映中かを返す
func (m *Movie) IsScreening() bool {
	return m.Screening
}

// StopScreening は上映を終了する
func (m *Movie) StopScreening() {
	m.Screening = false
	m.UpdatedAt = time.Now()
}

// Validate は作品の検証を行う
func (m *Movie) Validate() error {
	if m.Title == "" {
		return ErrTitleRequired
	}
	if m.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
)

func TestHealthHandler_Check(t *testing.T) {
	// Setup
	e := NewTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler()

	// Act
	err := h.Check(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"timestamp"`)
}

func TestNewHealthHandler(t *testing.T) {
	h := NewHealthHandler()
	assert.NotNil(t, h)
}

func TestToMovieResponse(t *testing.T) {
	now := time.Now()
	m := &movie.Movie{
		ID:              "movie-123",
		Title:           "テスト映画",
		Synopsis:        "テストあらすじ",
		Rating:          "PG-12",
		DurationMinutes: 120,
		Screening:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	resp := toMovieResponse(m)

	assert.Equal(t, m.ID, resp.ID)
	assert.Equal(t, m.Title, resp.Title)
	assert.Equal(t, m.Synopsis, resp.Synopsis)
	assert.Equal(t, m.Rating, resp.Rating)
	assert.Equal(t, m.DurationMinutes, resp.DurationMinutes)
	assert.Equal(t, m.Screening, resp.Screening)
	assert.Equal(t, m.CreatedAt, resp.CreatedAt)
}

func TestToSessionResponse(t *testing.T) {
	now := time.Now()
	s := &session.Session{
		ID:       "session-123",
		MovieID:  "movie-456",
		RoomID:   "room-1",
		Showtime: now.Add(24 * time.Hour),
		Status:   session.StatusAvailable,
		Seats: map[string]bool{
			"A1": true,
			"A2": false,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("座席なし", func(t *testing.T) {
		resp := toSessionResponse(s, false)

		assert.Equal(t, s.ID, resp.ID)
		assert.Equal(t, s.MovieID, resp.MovieID)
		assert.Equal(t, s.RoomID, resp.RoomID)
		assert.Equal(t, string(s.Status), resp.Status)
		assert.Equal(t, 2, resp.Capacity)
		assert.Equal(t, 1, resp.AvailableSeats)
		assert.Nil(t, resp.Seats)
	})

	t.Run("座席込み", func(t *testing.T) {
		resp := toSessionResponse(s, true)

		assert.Equal(t, []SeatStateResponse{
			{SeatNumber: "A1", Available: true},
			{SeatNumber: "A2", Available: false},
		}, resp.Seats)
	})
}

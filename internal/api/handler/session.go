package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-ticketing/internal/application"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
)

type SessionHandler struct {
	service SessionServiceInterface
}

func NewSessionHandler(s SessionServiceInterface) *SessionHandler {
	return &SessionHandler{service: s}
}

type CreateSessionRequest struct {
	MovieID     string    `json:"movie_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	RoomID      string    `json:"room_id" validate:"required" example:"room-1"`
	Showtime    time.Time `json:"showtime" validate:"required"`
	SeatNumbers []string  `json:"seat_numbers,omitempty" example:"A1,A2,B1"`
	Rows        int       `json:"rows,omitempty" example:"10"`
	SeatsPerRow int       `json:"seats_per_row,omitempty" example:"12"`
}

type SeatStateResponse struct {
	SeatNumber string `json:"seat_number" example:"A1"`
	Available  bool   `json:"available" example:"true"`
}

type SessionResponse struct {
	ID             string              `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	MovieID        string              `json:"movie_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RoomID         string              `json:"room_id" example:"room-1"`
	Showtime       time.Time           `json:"showtime"`
	Status         string              `json:"status" example:"available"`
	Capacity       int                 `json:"capacity" example:"120"`
	AvailableSeats int                 `json:"available_seats" example:"118"`
	Seats          []SeatStateResponse `json:"seats,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

func toSessionResponse(s *session.Session, includeSeats bool) SessionResponse {
	resp := SessionResponse{
		ID: s.ID, MovieID: s.MovieID, RoomID: s.RoomID,
		Showtime: s.Showtime, Status: string(s.Status),
		Capacity:       s.Capacity(),
		AvailableSeats: s.AvailableSeatCount(),
		CreatedAt:      s.CreatedAt,
	}
	if includeSeats {
		resp.Seats = make([]SeatStateResponse, 0, len(s.Seats))
		for _, num := range s.SeatNumbers() {
			resp.Seats = append(resp.Seats, SeatStateResponse{
				SeatNumber: num,
				Available:  s.Seats[num],
			})
		}
	}
	return resp
}

// Create godoc
// @Summary セッションを作成
// @Description 上映中の作品に対して新しいセッションを作成します
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "セッション情報"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "同一ルームで時間帯が衝突"
// @Router /sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.CreateSession(c.Request().Context(), application.CreateSessionInput{
		MovieID: req.MovieID, RoomID: req.RoomID, Showtime: req.Showtime,
		SeatNumbers: req.SeatNumbers, Rows: req.Rows, SeatsPerRow: req.SeatsPerRow,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSessionResponse(s, true))
}

// GetByID godoc
// @Summary セッションを取得
// @Description 指定IDのセッションを座席マップ付きで取得します
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetByID(c echo.Context) error {
	s, err := h.service.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(s, true))
}

// List godoc
// @Summary セッション一覧を取得
// @Description セッションの一覧を取得します（movie_id で絞り込み可能）
// @Tags sessions
// @Produce json
// @Param movie_id query string false "作品ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} SessionResponse
// @Router /sessions [get]
func (h *SessionHandler) List(c echo.Context) error {
	var (
		sessions []*session.Session
		err      error
	)
	if movieID := c.QueryParam("movie_id"); movieID != "" {
		sessions, err = h.service.ListSessionsByMovie(c.Request().Context(), movieID)
	} else {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		offset, _ := strconv.Atoi(c.QueryParam("offset"))
		sessions, err = h.service.ListSessions(c.Request().Context(), limit, offset)
	}
	if err != nil {
		return err
	}
	resp := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		resp[i] = toSessionResponse(s, false)
	}
	return c.JSON(http.StatusOK, resp)
}

type SeatRequest struct {
	SeatNumber string `json:"seat_number" validate:"required" example:"A1"`
}

// ReserveSeat godoc
// @Summary 座席を確保
// @Description 指定セッションの1座席を確保します（最後の1席なら満席に遷移）
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "セッションID"
// @Param request body SeatRequest true "座席番号"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "座席が確保できない"
// @Router /sessions/{id}/seats/reserve [post]
func (h *SessionHandler) ReserveSeat(c echo.Context) error {
	var req SeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.service.ReserveSeat(c.Request().Context(), c.Param("id"), req.SeatNumber); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReleaseSeat godoc
// @Summary 座席を解放
// @Description 確保済みの1座席を空席に戻します（満席なら販売可能に復帰）
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "セッションID"
// @Param request body SeatRequest true "座席番号"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/seats/release [post]
func (h *SessionHandler) ReleaseSeat(c echo.Context) error {
	var req SeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.service.ReleaseSeat(c.Request().Context(), c.Param("id"), req.SeatNumber); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkSoldOut godoc
// @Summary セッションを満席にする
// @Description 空席が残っていない場合のみ満席に遷移します
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "空席が残っている"
// @Router /sessions/{id}/sold-out [post]
func (h *SessionHandler) MarkSoldOut(c echo.Context) error {
	s, err := h.service.MarkSoldOut(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(s, false))
}

// Cancel godoc
// @Summary セッションを中止
// @Description セッションを中止します（以降このセッションの座席は確保できません）
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "既に中止済み"
// @Router /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c echo.Context) error {
	s, err := h.service.CancelSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(s, false))
}

// CountAvailableSeats godoc
// @Summary 空席数を取得
// @Description セッションの空席数を取得します（キャッシュ利用）
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/available-seats [get]
func (h *SessionHandler) CountAvailableSeats(c echo.Context) error {
	count, err := h.service.CountAvailableSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"available_seats": count})
}

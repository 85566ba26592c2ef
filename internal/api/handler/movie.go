package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-ticketing/internal/application"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
)

type MovieHandler struct {
	service MovieServiceInterface
}

func NewMovieHandler(s MovieServiceInterface) *MovieHandler {
	return &MovieHandler{service: s}
}

type CreateMovieRequest struct {
	Title           string `json:"title" validate:"required" example:"偉大な作品"`
	Synopsis        string `json:"synopsis" example:"あらすじ"`
	Rating          string `json:"rating" example:"PG-12"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1" example:"120"`
}

type MovieResponse struct {
	ID              string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title           string    `json:"title" example:"偉大な作品"`
	Synopsis        string    `json:"synopsis" example:"あらすじ"`
	Rating          string    `json:"rating" example:"PG-12"`
	DurationMinutes int       `json:"duration_minutes" example:"120"`
	Screening       bool      `json:"screening" example:"true"`
	CreatedAt       time.Time `json:"created_at"`
}

func toMovieResponse(m *movie.Movie) MovieResponse {
	return MovieResponse{
		ID: m.ID, Title: m.Title, Synopsis: m.Synopsis,
		Rating: m.Rating, DurationMinutes: m.DurationMinutes,
		Screening: m.Screening, CreatedAt: m.CreatedAt,
	}
}

// Create godoc
// @Summary 作品を登録
// @Description カタログに新しい作品を登録します
// @Tags movies
// @Accept json
// @Produce json
// @Param request body CreateMovieRequest true "作品情報"
// @Success 201 {object} MovieResponse
// @Failure 400 {object} map[string]string
// @Router /movies [post]
func (h *MovieHandler) Create(c echo.Context) error {
	var req CreateMovieRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	m, err := h.service.CreateMovie(c.Request().Context(), application.CreateMovieInput{
		Title: req.Title, Synopsis: req.Synopsis,
		Rating: req.Rating, DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toMovieResponse(m))
}

// GetByID godoc
// @Summary 作品を取得
// @Description 指定IDの作品を取得します
// @Tags movies
// @Produce json
// @Param id path string true "作品ID"
// @Success 200 {object} MovieResponse
// @Failure 404 {object} map[string]string
// @Router /movies/{id} [get]
func (h *MovieHandler) GetByID(c echo.Context) error {
	m, err := h.service.GetMovie(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResponse(m))
}

// List godoc
// @Summary 作品一覧を取得
// @Description カタログの作品一覧を取得します
// @Tags movies
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} MovieResponse
// @Router /movies [get]
func (h *MovieHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	movies, err := h.service.ListMovies(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]MovieResponse, len(movies))
	for i, m := range movies {
		resp[i] = toMovieResponse(m)
	}
	return c.JSON(http.StatusOK, resp)
}

// StopScreening godoc
// @Summary 作品の上映を終了
// @Description 作品を上映終了にします（以降この作品のセッションは作成できません）
// @Tags movies
// @Produce json
// @Param id path string true "作品ID"
// @Success 200 {object} MovieResponse
// @Failure 404 {object} map[string]string
// @Router /movies/{id}/stop [post]
func (h *MovieHandler) StopScreening(c echo.Context) error {
	m, err := h.service.StopScreening(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResponse(m))
}

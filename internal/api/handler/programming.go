package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-ticketing/internal/application"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/programming"
)

type ProgrammingHandler struct {
	service ProgrammingServiceInterface
}

func NewProgrammingHandler(s ProgrammingServiceInterface) *ProgrammingHandler {
	return &ProgrammingHandler{service: s}
}

type CreateProgrammingRequest struct {
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
	SessionIDs  []string  `json:"session_ids" validate:"required,min=1"`
}

type ProgrammingResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	SessionIDs  []string  `json:"session_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProgrammingResponse(p *programming.Programming) ProgrammingResponse {
	return ProgrammingResponse{
		ID: p.ID, PeriodStart: p.PeriodStart, PeriodEnd: p.PeriodEnd,
		SessionIDs: p.SessionIDs, CreatedAt: p.CreatedAt,
	}
}

// Create godoc
// @Summary 番組表を作成
// @Description 候補セッション群から番組表を作成します（同一ルームで時間帯が重なる場合は全体が失敗）
// @Tags programmings
// @Accept json
// @Produce json
// @Param request body CreateProgrammingRequest true "番組表情報"
// @Success 201 {object} ProgrammingResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "上映時間帯の衝突"
// @Router /programmings [post]
func (h *ProgrammingHandler) Create(c echo.Context) error {
	var req CreateProgrammingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.CreateProgramming(c.Request().Context(), application.CreateProgrammingInput{
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		SessionIDs:  req.SessionIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProgrammingResponse(p))
}

// GetByID godoc
// @Summary 番組表を取得
// @Description 指定IDの番組表を取得します
// @Tags programmings
// @Produce json
// @Param id path string true "番組表ID"
// @Success 200 {object} ProgrammingResponse
// @Failure 404 {object} map[string]string
// @Router /programmings/{id} [get]
func (h *ProgrammingHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetProgramming(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProgrammingResponse(p))
}

// List godoc
// @Summary 番組表一覧を取得
// @Description 番組表の一覧を取得します
// @Tags programmings
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ProgrammingResponse
// @Router /programmings [get]
func (h *ProgrammingHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	programmings, err := h.service.ListProgrammings(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]ProgrammingResponse, len(programmings))
	for i, p := range programmings {
		resp[i] = toProgrammingResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
)

type TicketHandler struct {
	service TicketServiceInterface
}

func NewTicketHandler(s TicketServiceInterface) *TicketHandler {
	return &TicketHandler{service: s}
}

type ValidateTicketRequest struct {
	QRCode string `json:"qr_code" validate:"required" example:"a3f1c2d4-..."`
}

type RebookTicketRequest struct {
	SessionID  string `json:"session_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatNumber string `json:"seat_number" validate:"required" example:"B3"`
}

type TicketResponse struct {
	ID         string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	PurchaseID string     `json:"purchase_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID  string     `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatNumber string     `json:"seat_number" example:"A1"`
	Type       string     `json:"type" example:"full"`
	Status     string     `json:"status" example:"active"`
	Price      int        `json:"price" example:"2000"`
	QRCode     string     `json:"qr_code" example:"a3f1c2d4-..."`
	Used       bool       `json:"used" example:"false"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toTicketResponse(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		ID: t.ID, PurchaseID: t.PurchaseID, SessionID: t.SessionID,
		SeatNumber: t.SeatNumber, Type: string(t.Type), Status: string(t.Status),
		Price: t.Price, QRCode: t.QRCode, Used: t.Used, UsedAt: t.UsedAt,
		CreatedAt: t.CreatedAt,
	}
}

// Validate godoc
// @Summary チケットを検証
// @Description QRコードでチケットを検証します（同一購入の他チケットも一括検証）
// @Tags tickets
// @Accept json
// @Produce json
// @Param request body ValidateTicketRequest true "QRコード"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "使用済み・重複スキャン"
// @Router /tickets/validate [post]
func (h *TicketHandler) Validate(c echo.Context) error {
	var req ValidateTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.ValidateTicketByQR(c.Request().Context(), req.QRCode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Use godoc
// @Summary チケットを使用
// @Description 検証済みのチケットを入場に使用します（一度だけ）
// @Tags tickets
// @Produce json
// @Param id path string true "チケットID"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "未検証・使用済み"
// @Router /tickets/{id}/use [post]
func (h *TicketHandler) Use(c echo.Context) error {
	t, err := h.service.UseTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Rebook godoc
// @Summary チケットを振り替え
// @Description 同じ作品の別セッションへチケットを振り替えます（元の座席は解放）
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "チケットID"
// @Param request body RebookTicketRequest true "振替先のセッションと座席"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "座席が確保できない・別作品"
// @Router /tickets/{id}/rebook [post]
func (h *TicketHandler) Rebook(c echo.Context) error {
	var req RebookTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.RebookTicket(c.Request().Context(), c.Param("id"), req.SessionID, req.SeatNumber)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// GetByID godoc
// @Summary チケットを取得
// @Description 指定IDのチケットを取得します
// @Tags tickets
// @Produce json
// @Param id path string true "チケットID"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Router /tickets/{id} [get]
func (h *TicketHandler) GetByID(c echo.Context) error {
	t, err := h.service.GetTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// ListActive godoc
// @Summary 有効チケット一覧を取得
// @Description 有効状態のチケット一覧を取得します（customer_id で絞り込み可能）
// @Tags tickets
// @Produce json
// @Param customer_id query string false "顧客ID"
// @Success 200 {array} TicketResponse
// @Router /tickets [get]
func (h *TicketHandler) ListActive(c echo.Context) error {
	var (
		tickets []*ticket.Ticket
		err     error
	)
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		tickets, err = h.service.ListCustomerActiveTickets(c.Request().Context(), customerID)
	} else {
		tickets, err = h.service.ListActiveTickets(c.Request().Context())
	}
	if err != nil {
		return err
	}
	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = toTicketResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// ExpireSession godoc
// @Summary セッションのチケットを失効
// @Description 開始済みセッションの有効チケットを失効させます
// @Tags tickets
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /sessions/{id}/tickets/expire [post]
func (h *TicketHandler) ExpireSession(c echo.Context) error {
	count, err := h.service.ExpireSessionTickets(c.Request().Context(), c.Param("id"), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"expired": count})
}

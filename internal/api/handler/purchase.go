package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-ticketing/internal/application"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/purchase"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
)

type PurchaseHandler struct {
	service PurchaseServiceInterface
}

func NewPurchaseHandler(s PurchaseServiceInterface) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

type PurchaseSeatRequest struct {
	SessionID  string `json:"session_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatNumber string `json:"seat_number" validate:"required" example:"A1"`
	TicketType string `json:"ticket_type" validate:"required,oneof=full half promotional" example:"full"`
}

type InitiatePurchaseRequest struct {
	Seats []PurchaseSeatRequest `json:"seats" validate:"required,min=1,dive"`
}

type ConfirmPurchaseRequest struct {
	PaymentID string `json:"payment_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type PurchaseResponse struct {
	ID          string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CustomerID  string     `json:"customer_id" example:"customer-123"`
	TicketIDs   []string   `json:"ticket_ids"`
	PaymentID   *string    `json:"payment_id,omitempty"`
	TotalAmount int        `json:"total_amount" example:"4000"`
	Status      string     `json:"status" example:"pending"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toPurchaseResponse(p *purchase.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID: p.ID, CustomerID: p.CustomerID, TicketIDs: p.TicketIDs,
		PaymentID: p.PaymentID, TotalAmount: p.TotalAmount,
		Status: string(p.Status), ConfirmedAt: p.ConfirmedAt, CreatedAt: p.CreatedAt,
	}
}

// Initiate godoc
// @Summary 購入を開始
// @Description 座席を確保し、チケットと保留中の購入を作成します（全席確保できなければ失敗）
// @Tags purchases
// @Accept json
// @Produce json
// @Param X-Customer-ID header string true "顧客ID"
// @Param request body InitiatePurchaseRequest true "購入する座席の一覧"
// @Success 201 {object} PurchaseResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string "座席が確保できない"
// @Router /purchases [post]
func (h *PurchaseHandler) Initiate(c echo.Context) error {
	customerID := c.Request().Header.Get("X-Customer-ID")
	if customerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "顧客IDが必要です")
	}
	var req InitiatePurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	seats := make([]application.SeatRequest, len(req.Seats))
	for i, s := range req.Seats {
		seats[i] = application.SeatRequest{
			SessionID:  s.SessionID,
			SeatNumber: s.SeatNumber,
			Type:       ticket.Type(s.TicketType),
		}
	}
	p, err := h.service.InitiatePurchase(c.Request().Context(), application.InitiatePurchaseInput{
		CustomerID: customerID,
		Seats:      seats,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toPurchaseResponse(p))
}

// GetByID godoc
// @Summary 購入を取得
// @Description 指定IDの購入を取得します
// @Tags purchases
// @Produce json
// @Param id path string true "購入ID"
// @Success 200 {object} PurchaseResponse
// @Failure 404 {object} map[string]string
// @Router /purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetPurchase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(p))
}

// ListByCustomer godoc
// @Summary 顧客の購入一覧を取得
// @Description 顧客の購入一覧を取得します
// @Tags purchases
// @Produce json
// @Param X-Customer-ID header string true "顧客ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PurchaseResponse
// @Failure 401 {object} map[string]string
// @Router /purchases [get]
func (h *PurchaseHandler) ListByCustomer(c echo.Context) error {
	customerID := c.Request().Header.Get("X-Customer-ID")
	if customerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "顧客IDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	purchases, err := h.service.ListCustomerPurchases(c.Request().Context(), customerID, limit, offset)
	if err != nil {
		return err
	}
	resp := make([]PurchaseResponse, len(purchases))
	for i, p := range purchases {
		resp[i] = toPurchaseResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary 購入を確定
// @Description 支払いが成功している場合のみ、保留中の購入を確定します
// @Tags purchases
// @Accept json
// @Produce json
// @Param id path string true "購入ID"
// @Param request body ConfirmPurchaseRequest true "支払いID"
// @Success 200 {object} PurchaseResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "支払い未成功・保留中でない"
// @Router /purchases/{id}/confirm [post]
func (h *PurchaseHandler) Confirm(c echo.Context) error {
	var req ConfirmPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.ConfirmPurchase(c.Request().Context(), c.Param("id"), req.PaymentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(p))
}

// Cancel godoc
// @Summary 購入をキャンセル
// @Description 購入をキャンセルし、チケットを無効化して座席を解放します
// @Tags purchases
// @Produce json
// @Param id path string true "購入ID"
// @Success 200 {object} PurchaseResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "使用済みチケットを含む"
// @Router /purchases/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c echo.Context) error {
	p, err := h.service.CancelPurchase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPurchaseResponse(p))
}

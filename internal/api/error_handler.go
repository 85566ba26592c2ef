package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/payment"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/programming"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/purchase"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
	"github.com/sanosuguru/go-cinema-ticketing/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// notFoundErrors は 404 にマッピングするドメインエラー
var notFoundErrors = []error{
	movie.ErrMovieNotFound,
	session.ErrSessionNotFound,
	ticket.ErrTicketNotFound,
	purchase.ErrPurchaseNotFound,
	payment.ErrPaymentNotFound,
	programming.ErrProgrammingNotFound,
}

// conflictErrors は 409 にマッピングするドメインエラー
// 座席の取り合い・状態遷移の衝突・スケジュール衝突
var conflictErrors = []error{
	session.ErrSeatNotAvailable,
	session.ErrSessionSoldOut,
	session.ErrSessionCancelled,
	session.ErrSessionAlreadyCancelled,
	session.ErrSeatsStillAvailable,
	session.ErrRoomTimeConflict,
	session.ErrOptimisticLockConflict,
	ticket.ErrTicketAlreadyUsed,
	ticket.ErrTicketNotValidated,
	ticket.ErrTicketNotActive,
	ticket.ErrTicketAlreadyCancelled,
	ticket.ErrTicketCancelled,
	ticket.ErrTicketExpired,
	ticket.ErrDuplicateScan,
	ticket.ErrTicketNotRebookable,
	ticket.ErrRebookDifferentMovie,
	ticket.ErrOptimisticLockConflict,
	purchase.ErrPurchaseNotPending,
	purchase.ErrPurchaseAlreadyCancelled,
	purchase.ErrPaymentNotSucceeded,
	purchase.ErrUsedTicketInPurchase,
	programming.ErrScheduleConflict,
}

// badRequestErrors は 400 にマッピングするドメインエラー（入力不備）
var badRequestErrors = []error{
	movie.ErrTitleRequired,
	movie.ErrInvalidDuration,
	movie.ErrMovieNotShowing,
	session.ErrMovieIDRequired,
	session.ErrRoomIDRequired,
	session.ErrShowtimeRequired,
	session.ErrSeatLayoutRequired,
	session.ErrSeatUnknown,
	ticket.ErrInvalidTicketType,
	ticket.ErrSessionIDRequired,
	ticket.ErrSeatNumberRequired,
	ticket.ErrQRCodeRequired,
	purchase.ErrCustomerIDRequired,
	purchase.ErrTicketsRequired,
	programming.ErrPeriodRequired,
	programming.ErrInvalidPeriod,
	programming.ErrSessionsRequired,
	programming.ErrDuplicateSession,
	programming.ErrSessionNotProgramable,
	programming.ErrShowtimeOutsidePeriod,
}

// domainStatus はドメインエラーをHTTPステータスに変換する
// 該当しない場合は 0 を返す
func domainStatus(err error) int {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return 0
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// ハンドラーから素のドメインエラーが返ってきた場合もここでステータスに変換する
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else if status := domainStatus(err); status != 0 {
		code = status
		message = err.Error()
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	// JSONレスポンスを返す
	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

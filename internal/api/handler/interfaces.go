package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-cinema-ticketing/internal/application"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/programming"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/purchase"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/session"
	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
)

// MovieServiceInterface は作品サービスのインターフェース
type MovieServiceInterface interface {
	CreateMovie(ctx context.Context, input application.CreateMovieInput) (*movie.Movie, error)
	GetMovie(ctx context.Context, id string) (*movie.Movie, error)
	ListMovies(ctx context.Context, limit, offset int) ([]*movie.Movie, error)
	StopScreening(ctx context.Context, id string) (*movie.Movie, error)
}

// SessionServiceInterface はセッションサービスのインターフェース
type SessionServiceInterface interface {
	CreateSession(ctx context.Context, input application.CreateSessionInput) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	ListSessions(ctx context.Context, limit, offset int) ([]*session.Session, error)
	ListSessionsByMovie(ctx context.Context, movieID string) ([]*session.Session, error)
	ReserveSeat(ctx context.Context, sessionID, seatNumber string) error
	ReleaseSeat(ctx context.Context, sessionID, seatNumber string) error
	MarkSoldOut(ctx context.Context, sessionID string) (*session.Session, error)
	CancelSession(ctx context.Context, sessionID string) (*session.Session, error)
	CountAvailableSeats(ctx context.Context, sessionID string) (int, error)
}

// PurchaseServiceInterface は購入サービスのインターフェース
type PurchaseServiceInterface interface {
	InitiatePurchase(ctx context.Context, input application.InitiatePurchaseInput) (*purchase.Purchase, error)
	ConfirmPurchase(ctx context.Context, purchaseID, paymentID string) (*purchase.Purchase, error)
	CancelPurchase(ctx context.Context, purchaseID string) (*purchase.Purchase, error)
	GetPurchase(ctx context.Context, id string) (*purchase.Purchase, error)
	ListCustomerPurchases(ctx context.Context, customerID string, limit, offset int) ([]*purchase.Purchase, error)
}

// TicketServiceInterface はチケットサービスのインターフェース
type TicketServiceInterface interface {
	ValidateTicketByQR(ctx context.Context, qrCode string) (*ticket.Ticket, error)
	UseTicket(ctx context.Context, id string) (*ticket.Ticket, error)
	RebookTicket(ctx context.Context, id, newSessionID, newSeatNumber string) (*ticket.Ticket, error)
	GetTicket(ctx context.Context, id string) (*ticket.Ticket, error)
	ListActiveTickets(ctx context.Context) ([]*ticket.Ticket, error)
	ListCustomerActiveTickets(ctx context.Context, customerID string) ([]*ticket.Ticket, error)
	ExpireSessionTickets(ctx context.Context, sessionID string, now time.Time) (int, error)
}

// ProgrammingServiceInterface は番組表サービスのインターフェース
type ProgrammingServiceInterface interface {
	CreateProgramming(ctx context.Context, input application.CreateProgrammingInput) (*programming.Programming, error)
	GetProgramming(ctx context.Context, id string) (*programming.Programming, error)
	ListProgrammings(ctx context.Context, limit, offset int) ([]*programming.Programming, error)
}

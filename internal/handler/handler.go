// Package handler содержит HTTP-обработчики API сервиса snaggle.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/snaggle-market/snaggle/internal/bidding"
	"github.com/snaggle-market/snaggle/internal/countdown"
	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/money"
	"github.com/snaggle-market/snaggle/internal/pagination"
	"github.com/snaggle-market/snaggle/internal/repository"
	"github.com/snaggle-market/snaggle/internal/service"
	"github.com/snaggle-market/snaggle/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ListAuctions(ctx context.Context, filter repository.AuctionFilter, page pagination.Page) (model.Page[service.AuctionView], error)
	GetAuction(ctx context.Context, id string) (*service.AuctionView, error)
	Countdown(ctx context.Context, id string) (countdown.Breakdown, error)
	WatchCountdown(ctx context.Context, id string, interval time.Duration, onTick func(countdown.Breakdown)) error
	QuickBid(ctx context.Context, id string) (money.Money, error)
	ValidateBid(ctx context.Context, id string, amount money.Money) error
	PlaceBid(ctx context.Context, id string, amount money.Money) error
	ListProducts(ctx context.Context, filter repository.ProductFilter, page pagination.Page) (model.Page[model.Product], error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	Quote(ctx context.Context, req service.QuoteRequest) (*service.Quote, error)
	Checkout(ctx context.Context, req service.QuoteRequest) (*service.Quote, error)
	ListDrops(ctx context.Context, page pagination.Page) (model.Page[model.Drop], error)
	GetDrop(ctx context.Context, id string) (*model.Drop, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// Handler реализует HTTP-обработчики API сервиса snaggle.
type Handler struct {
	service        Service
	logger         *zap.Logger
	streamInterval time.Duration
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		streamInterval: time.Second,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type bidErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Current   money.Money `json:"current_bid"`
	Increment money.Money `json:"increment"`
	NextBid   money.Money `json:"next_bid"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку сервиса в HTTP-ответ.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var bidErr *bidding.Error

	switch {
	case errors.As(err, &bidErr):
		writeJSON(w, http.StatusUnprocessableEntity, bidErrorResponse{
			Error:     bidErr.Kind.String(),
			Message:   bidErr.Error(),
			Current:   bidErr.Current,
			Increment: bidErr.Increment,
			NextBid:   bidding.NextBid(bidErr.Current, bidErr.Increment),
		})
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, repository.ErrInvalidState),
		errors.Is(err, pagination.ErrInvalidPage),
		errors.Is(err, pagination.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, money.ErrInvalidAmount):
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
	case errors.Is(err, service.ErrAuctionEnded):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "auction_ended", Message: err.Error()})
	case errors.Is(err, service.ErrNotImplemented):
		http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
	case errors.Is(err, context.Canceled):
		// Клиент ушёл, отвечать некому.
	default:
		h.logger.Error("request failed", zap.String("uri", r.RequestURI), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// pathID достаёт идентификатор из URL и проверяет его формат.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validation.IsValidID(id) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return "", false
	}
	return id, true
}

// Health сообщает, что сервис запущен.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GetUser возвращает профиль пользователя.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

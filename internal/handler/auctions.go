package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/snaggle-market/snaggle/internal/countdown"
	"github.com/snaggle-market/snaggle/internal/money"
	"github.com/snaggle-market/snaggle/internal/pagination"
	"github.com/snaggle-market/snaggle/internal/repository"
	"github.com/snaggle-market/snaggle/internal/validation"
)

// ListAuctions возвращает страницу аукционов с фильтрами category, drop и state.
func (h *Handler) ListAuctions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := pagination.Parse(query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filter := repository.AuctionFilter{
		Category: query.Get("category"),
		DropID:   query.Get("drop"),
		State:    query.Get("state"),
	}
	if (filter.Category != "" && !validation.IsValidCategory(filter.Category)) ||
		(filter.DropID != "" && !validation.IsValidID(filter.DropID)) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.service.ListAuctions(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetAuction возвращает аукцион с таймером и следующей ставкой.
func (h *Handler) GetAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetAuction(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type countdownResponse struct {
	countdown.Breakdown
	Label string `json:"label"`
}

// GetCountdown возвращает оставшееся время аукциона.
func (h *Handler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b, err := h.service.Countdown(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countdownResponse{Breakdown: b, Label: b.Label()})
}

// StreamCountdown отдаёт таймер потоком server-sent events раз в секунду.
// После события ended поток закрывается.
func (h *Handler) StreamCountdown(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	// Проверяем существование до отправки заголовков потока.
	if _, err := h.service.Countdown(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err := h.service.WatchCountdown(r.Context(), id, h.streamInterval, func(b countdown.Breakdown) {
		data, _ := json.Marshal(countdownResponse{Breakdown: b, Label: b.Label()})
		fmt.Fprintf(w, "event: countdown\ndata: %s\n\n", data)
		if b.IsExpired {
			fmt.Fprint(w, "event: ended\ndata: {}\n\n")
		}
		flusher.Flush()
	})
	if err != nil && r.Context().Err() == nil {
		h.logger.Warn("countdown stream", zap.String("auction_id", id), zap.Error(err))
	}
}

type quickBidResponse struct {
	AuctionID string      `json:"auction_id"`
	Amount    money.Money `json:"amount"`
}

// QuickBid возвращает сумму ставки в один шаг.
func (h *Handler) QuickBid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	amount, err := h.service.QuickBid(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quickBidResponse{AuctionID: id, Amount: amount})
}

type bidRequest struct {
	Amount *money.Money `json:"amount"`
}

func decodeBid(w http.ResponseWriter, r *http.Request) (money.Money, bool) {
	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return 0, false
	}
	return *req.Amount, true
}

type validateBidResponse struct {
	Valid  bool        `json:"valid"`
	Amount money.Money `json:"amount"`
}

// ValidateBid проверяет ставку без её размещения.
func (h *Handler) ValidateBid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	amount, ok := decodeBid(w, r)
	if !ok {
		return
	}

	if err := h.service.ValidateBid(r.Context(), id, amount); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, validateBidResponse{Valid: true, Amount: amount})
}

// PlaceBid принимает ставку. Корректная ставка получает 501: приём ставок не реализован.
func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	amount, ok := decodeBid(w, r)
	if !ok {
		return
	}

	if err := h.service.PlaceBid(r.Context(), id, amount); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

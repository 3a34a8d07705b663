package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/snaggle-market/snaggle/internal/pagination"
	"github.com/snaggle-market/snaggle/internal/repository"
	"github.com/snaggle-market/snaggle/internal/service"
	"github.com/snaggle-market/snaggle/internal/validation"
)

// ListProducts возвращает страницу товаров магазина.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := pagination.Parse(query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filter := repository.ProductFilter{
		Category: query.Get("category"),
		DropID:   query.Get("drop"),
	}
	if (filter.Category != "" && !validation.IsValidCategory(filter.Category)) ||
		(filter.DropID != "" && !validation.IsValidID(filter.DropID)) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.service.ListProducts(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetProduct возвращает товар.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func decodeQuote(w http.ResponseWriter, r *http.Request) (service.QuoteRequest, bool) {
	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return req, false
	}

	if !validation.IsValidID(req.ProductID) ||
		(req.UserID != "" && !validation.IsValidID(req.UserID)) ||
		!validation.IsValidQuantity(req.Quantity) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// Quote рассчитывает стоимость товара с учётом кредитов.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuote(w, r)
	if !ok {
		return
	}

	q, err := h.service.Quote(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

type checkoutResponse struct {
	Error string         `json:"error"`
	Quote *service.Quote `json:"quote"`
}

// Checkout оформляет заказ. Оплата не реализована, поэтому корректный заказ получает 501 с расчётом.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuote(w, r)
	if !ok {
		return
	}

	q, err := h.service.Checkout(r.Context(), req)
	if errors.Is(err, service.ErrNotImplemented) && q != nil {
		writeJSON(w, http.StatusNotImplemented, checkoutResponse{Error: "not_implemented", Quote: q})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// ListDrops возвращает страницу дропов.
func (h *Handler) ListDrops(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.ListDrops(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetDrop возвращает дроп.
func (h *Handler) GetDrop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	drop, err := h.service.GetDrop(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, drop)
}

package service

import (
	"context"

	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/money"
	"github.com/snaggle-market/snaggle/internal/pricing"
)

// QuoteRequest описывает запрос расчёта стоимости с учётом кредитов.
type QuoteRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Credits   int64  `json:"credits"`
}

// Quote содержит расчёт стоимости строки корзины.
type Quote struct {
	Product     model.Product  `json:"product"`
	Quantity    int64          `json:"quantity"`
	LineTotal   money.Money    `json:"line_total"`
	UserCredits int64          `json:"user_credits"`
	MaxCredits  int64          `json:"max_credits"`
	Selectable  int64          `json:"selectable_credits"`
	CreditValue money.Money    `json:"credit_value"`
	Pricing     pricing.Result `json:"pricing"`
}

// Quote считает стоимость товара с учётом выбранных кредитов.
// Без UserID считается, что у покупателя нет кредитов.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var userCredits int64
	if req.UserID != "" {
		user, err := s.repo.GetUser(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		userCredits = user.Credits
	}

	lineTotal := product.Price.Mul(req.Quantity)
	maxCredits := product.MaxCredits * req.Quantity

	return &Quote{
		Product:     *product,
		Quantity:    req.Quantity,
		LineTotal:   lineTotal,
		UserCredits: userCredits,
		MaxCredits:  maxCredits,
		Selectable:  pricing.MaxSelectable(userCredits, maxCredits),
		CreditValue: s.pricing.CreditValue(),
		Pricing: s.pricing.Apply(pricing.Request{
			LineTotal:         lineTotal,
			UserCredits:       userCredits,
			MaxCreditsAllowed: maxCredits,
			CreditsChosen:     req.Credits,
		}),
	}, nil
}

// Checkout рассчитывает заказ. Оплата не реализована: для корректного заказа возвращается ErrNotImplemented вместе с расчётом.
func (s *Service) Checkout(ctx context.Context, req QuoteRequest) (*Quote, error) {
	q, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	return q, ErrNotImplemented
}

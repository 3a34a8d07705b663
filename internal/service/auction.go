package service

import (
	"context"
	"time"

	"github.com/snaggle-market/snaggle/internal/bidding"
	"github.com/snaggle-market/snaggle/internal/countdown"
	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/money"
	"github.com/snaggle-market/snaggle/internal/pagination"
	"github.com/snaggle-market/snaggle/internal/repository"
)

// AuctionView объединяет аукцион с таймером и следующей ставкой на момент запроса.
type AuctionView struct {
	model.Auction
	Countdown      countdown.Breakdown `json:"countdown"`
	CountdownLabel string              `json:"countdown_label"`
	NextBid        money.Money         `json:"next_bid"`
	IsLive         bool                `json:"is_live"`
}

func (s *Service) view(a model.Auction, now time.Time) AuctionView {
	remaining := countdown.Remaining(a.EndsAt, now)
	live := a.IsLive(now)
	if !live {
		remaining = countdown.Breakdown{IsExpired: true}
	}

	return AuctionView{
		Auction:        a,
		Countdown:      remaining,
		CountdownLabel: remaining.Label(),
		NextBid:        bidding.NextBid(a.CurrentBid, a.Increment),
		IsLive:         live,
	}
}

// GetAuction возвращает аукцион с таймером.
func (s *Service) GetAuction(ctx context.Context, id string) (*AuctionView, error) {
	a, err := s.repo.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}

	v := s.view(*a, s.now())
	return &v, nil
}

// ListAuctions возвращает страницу аукционов с таймерами. Пустой filter.At заменяется текущим временем.
func (s *Service) ListAuctions(ctx context.Context, filter repository.AuctionFilter, page pagination.Page) (model.Page[AuctionView], error) {
	now := s.now()
	if filter.At.IsZero() {
		filter.At = now
	}

	res, err := s.repo.ListAuctions(ctx, filter, page)
	if err != nil {
		return model.Page[AuctionView]{}, err
	}

	views := make([]AuctionView, 0, len(res.Items))
	for _, a := range res.Items {
		views = append(views, s.view(a, now))
	}

	return model.Page[AuctionView]{
		Items:   views,
		Page:    res.Page,
		Limit:   res.Limit,
		Total:   res.Total,
		HasMore: res.HasMore,
	}, nil
}

// Countdown возвращает разбивку оставшегося времени аукциона.
func (s *Service) Countdown(ctx context.Context, id string) (countdown.Breakdown, error) {
	v, err := s.GetAuction(ctx, id)
	if err != nil {
		return countdown.Breakdown{}, err
	}
	return v.Countdown, nil
}

// WatchCountdown вызывает onTick с интервалом interval, пока аукцион не завершится или не отменён ctx.
// Последний вызов onTick получает разбивку с IsExpired.
func (s *Service) WatchCountdown(ctx context.Context, id string, interval time.Duration, onTick func(countdown.Breakdown)) error {
	a, err := s.repo.GetAuction(ctx, id)
	if err != nil {
		return err
	}

	target := a.EndsAt
	if a.ClosedAt != nil && a.ClosedAt.Before(target) {
		target = *a.ClosedAt
	}

	countdown.Watch(ctx, target, interval, s.now, onTick, nil)
	return ctx.Err()
}

// QuickBid возвращает сумму ставки в один шаг над текущей ценой.
func (s *Service) QuickBid(ctx context.Context, id string) (money.Money, error) {
	a, err := s.repo.GetAuction(ctx, id)
	if err != nil {
		return 0, err
	}
	if !a.IsLive(s.now()) {
		return 0, ErrAuctionEnded
	}
	return bidding.NextBid(a.CurrentBid, a.Increment), nil
}

// ValidateBid проверяет ставку amount против текущей цены аукциона.
func (s *Service) ValidateBid(ctx context.Context, id string, amount money.Money) error {
	a, err := s.repo.GetAuction(ctx, id)
	if err != nil {
		return err
	}
	if !a.IsLive(s.now()) {
		return ErrAuctionEnded
	}
	return bidding.Validate(amount, a.CurrentBid, a.Increment)
}

// PlaceBid проверяет ставку. Приём ставок не реализован: для корректной ставки возвращается ErrNotImplemented.
func (s *Service) PlaceBid(ctx context.Context, id string, amount money.Money) error {
	if err := s.ValidateBid(ctx, id, amount); err != nil {
		return err
	}
	return ErrNotImplemented
}

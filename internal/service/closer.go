package service

import (
	"context"
	"errors"
	"time"

	"github.com/snaggle-market/snaggle/internal/countdown"
	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/notify"
)

const (
	closerBatchSize     = 100
	maxDeliveryAttempts = 10
)

type pendingEvent struct {
	event     model.AuctionEnded
	attempts  int
	notBefore time.Time
}

// RunAuctionCloser закрывает аукционы, у которых вышло время, на каждом тике interval.
// Блокируется до отмены ctx; после возврата ни один тик уже не выполняется.
func (s *Service) RunAuctionCloser(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.closeExpiredAuctions(ctx)
		}
	}
}

func (s *Service) closeExpiredAuctions(ctx context.Context) {
	now := s.now()
	sugar := s.logger.Sugar()

	s.flushPending(ctx, now)

	auctions, err := s.repo.ListExpiredOpenAuctions(ctx, now, closerBatchSize)
	if err != nil {
		sugar.Errorw("list expired auctions", "error", err)
		return
	}

	for _, a := range auctions {
		if !countdown.Remaining(a.EndsAt, now).IsExpired {
			continue
		}

		closed, err := s.repo.CloseAuction(ctx, a.ID, now)
		if err != nil {
			sugar.Errorw("close auction", "auction_id", a.ID, "error", err)
			continue
		}
		if !closed {
			continue
		}

		sugar.Infow("auction closed", "auction_id", a.ID, "final_bid", a.CurrentBid.String())

		s.deliver(ctx, pendingEvent{
			event: model.AuctionEnded{
				EventID:   s.newID(),
				AuctionID: a.ID,
				Title:     a.Title,
				FinalBid:  a.CurrentBid,
				Leader:    a.Leader,
				EndsAt:    a.EndsAt,
				ClosedAt:  now,
			},
		}, now)
	}
}

// deliver отправляет событие; неудачная отправка откладывается до следующего тика
// или до момента, указанного получателем в Retry-After.
func (s *Service) deliver(ctx context.Context, p pendingEvent, now time.Time) {
	if s.notifier == nil {
		return
	}

	p.attempts++
	err := s.notifier.NotifyAuctionEnded(ctx, p.event)
	if err == nil {
		return
	}

	log := s.logger.Sugar().With(
		"event_id", p.event.EventID,
		"auction_id", p.event.AuctionID,
		"attempt", p.attempts,
		"error", err,
	)

	if p.attempts >= maxDeliveryAttempts {
		log.Errorw("drop auction ended event")
		return
	}

	p.notBefore = now
	var retryErr *notify.RetryAfterError
	if errors.As(err, &retryErr) {
		p.notBefore = now.Add(retryErr.RetryAfter)
	}

	log.Warnw("notify auction ended", "retry_at", p.notBefore)

	s.mu.Lock()
	s.pending = append(s.pending, p)
	s.mu.Unlock()
}

func (s *Service) flushPending(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []pendingEvent
	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.notBefore.After(now) {
			kept = append(kept, p)
			continue
		}
		due = append(due, p)
	}
	s.pending = kept
	s.mu.Unlock()

	for _, p := range due {
		if ctx.Err() != nil {
			s.mu.Lock()
			s.pending = append(s.pending, p)
			s.mu.Unlock()
			continue
		}
		s.deliver(ctx, p, now)
	}
}

// PendingEvents возвращает число событий, ожидающих повторной отправки.
func (s *Service) PendingEvents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

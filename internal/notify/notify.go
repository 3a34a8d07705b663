// Package notify доставляет события о завершении аукционов во внешние системы.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/snaggle-market/snaggle/internal/model"
)

//go:generate mockgen -destination=../mocks/notifier_mock.go -package=mocks github.com/snaggle-market/snaggle/internal/notify Notifier

// Notifier получает событие о завершении аукциона.
type Notifier interface {
	NotifyAuctionEnded(ctx context.Context, event model.AuctionEnded) error
}

// Multi рассылает событие всем получателям по очереди.
type Multi []Notifier

// NotifyAuctionEnded вызывает каждого получателя и объединяет их ошибки.
func (m Multi) NotifyAuctionEnded(ctx context.Context, event model.AuctionEnded) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyAuctionEnded(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier пишет событие в журнал.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier создаёт получателя, пишущего в logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyAuctionEnded(_ context.Context, event model.AuctionEnded) error {
	n.logger.Info("auction ended",
		zap.String("event_id", event.EventID),
		zap.String("auction_id", event.AuctionID),
		zap.String("title", event.Title),
		zap.String("final_bid", event.FinalBid.String()),
		zap.String("leader", event.Leader),
		zap.Time("ends_at", event.EndsAt),
		zap.Time("closed_at", event.ClosedAt),
	)
	return nil
}

// Package service реализует бизнес-логику сервиса snaggle.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/money"
	"github.com/snaggle-market/snaggle/internal/notify"
	"github.com/snaggle-market/snaggle/internal/pagination"
	"github.com/snaggle-market/snaggle/internal/pricing"
	"github.com/snaggle-market/snaggle/internal/repository"
)

var (
	// ErrAuctionEnded возвращается при попытке сделать ставку в завершённом аукционе.
	ErrAuctionEnded = errors.New("auction has ended")
	// ErrNotImplemented возвращается для операций, которые требуют платёжного бэкенда.
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidQuantity возвращается для количества меньше единицы.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	GetAuction(ctx context.Context, id string) (*model.Auction, error)
	ListAuctions(ctx context.Context, filter repository.AuctionFilter, page pagination.Page) (model.Page[model.Auction], error)
	ListExpiredOpenAuctions(ctx context.Context, now time.Time, limit int) ([]model.Auction, error)
	CloseAuction(ctx context.Context, id string, closedAt time.Time) (bool, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter, page pagination.Page) (model.Page[model.Product], error)
	GetDrop(ctx context.Context, id string) (*model.Drop, error)
	ListDrops(ctx context.Context, page pagination.Page) (model.Page[model.Drop], error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// Service содержит бизнес-логику сервиса snaggle.
type Service struct {
	repo     Repository
	notifier notify.Notifier
	pricing  *pricing.Calculator
	logger   *zap.Logger

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	pending []pendingEvent
}

// NewService создаёт сервис. notifier может быть nil, тогда события о завершении аукционов не рассылаются.
func NewService(repo Repository, notifier notify.Notifier, calc *pricing.Calculator, logger *zap.Logger) *Service {
	if calc == nil {
		calc = pricing.New(pricing.CreditValue)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		pricing:  calc,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// CreditValue возвращает курс кредита, по которому считаются скидки.
func (s *Service) CreditValue() money.Money {
	return s.pricing.CreditValue()
}

// GetProduct возвращает товар.
func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListProducts возвращает страницу товаров.
func (s *Service) ListProducts(ctx context.Context, filter repository.ProductFilter, page pagination.Page) (model.Page[model.Product], error) {
	return s.repo.ListProducts(ctx, filter, page)
}

// GetDrop возвращает дроп.
func (s *Service) GetDrop(ctx context.Context, id string) (*model.Drop, error) {
	return s.repo.GetDrop(ctx, id)
}

// ListDrops возвращает страницу дропов.
func (s *Service) ListDrops(ctx context.Context, page pagination.Page) (model.Page[model.Drop], error) {
	return s.repo.ListDrops(ctx, page)
}

// GetUser возвращает пользователя.
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetUser(ctx, id)
}

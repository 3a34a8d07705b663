package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/pagination"
)

// MemoryRepository хранит данные в памяти процесса. Используется, когда DATABASE_URI не задан.
type MemoryRepository struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction
	products map[string]model.Product
	drops    map[string]model.Drop
	users    map[string]model.User
}

// NewMemoryRepository создаёт хранилище, заполненное данными seed.
func NewMemoryRepository(seed Seed) *MemoryRepository {
	r := &MemoryRepository{
		auctions: make(map[string]model.Auction, len(seed.Auctions)),
		products: make(map[string]model.Product, len(seed.Products)),
		drops:    make(map[string]model.Drop, len(seed.Drops)),
		users:    make(map[string]model.User, len(seed.Users)),
	}

	for _, a := range seed.Auctions {
		r.auctions[a.ID] = cloneAuction(a)
	}
	for _, p := range seed.Products {
		r.products[p.ID] = p
	}
	for _, d := range seed.Drops {
		r.drops[d.ID] = d
	}
	for _, u := range seed.Users {
		r.users[u.ID] = u
	}

	return r
}

// Close ничего не делает.
func (r *MemoryRepository) Close() error {
	return nil
}

// GetAuction возвращает аукцион по идентификатору.
func (r *MemoryRepository) GetAuction(_ context.Context, id string) (*model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneAuction(a)
	return &a, nil
}

// ListAuctions возвращает страницу аукционов, упорядоченных по времени окончания.
func (r *MemoryRepository) ListAuctions(_ context.Context, filter AuctionFilter, page pagination.Page) (model.Page[model.Auction], error) {
	if err := filter.Validate(); err != nil {
		return model.Page[model.Auction]{}, err
	}

	r.mu.RLock()
	matched := make([]model.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		if filter.Match(a) {
			matched = append(matched, cloneAuction(a))
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, compareAuctions)

	return newPage(pagination.Slice(matched, page), len(matched), page), nil
}

// ListExpiredOpenAuctions возвращает незакрытые аукционы, чьё время вышло к моменту now.
func (r *MemoryRepository) ListExpiredOpenAuctions(_ context.Context, now time.Time, limit int) ([]model.Auction, error) {
	r.mu.RLock()
	var expired []model.Auction
	for _, a := range r.auctions {
		if a.ClosedAt == nil && !a.EndsAt.After(now) {
			expired = append(expired, cloneAuction(a))
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(expired, compareAuctions)

	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

// CloseAuction помечает аукцион закрытым. Возвращает true только для первого закрытия.
func (r *MemoryRepository) CloseAuction(_ context.Context, id string, closedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[id]
	if !ok {
		return false, ErrNotFound
	}
	if a.ClosedAt != nil {
		return false, nil
	}

	t := closedAt
	a.ClosedAt = &t
	r.auctions[id] = a
	return true, nil
}

// GetProduct возвращает товар по идентификатору.
func (r *MemoryRepository) GetProduct(_ context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// ListProducts возвращает страницу товаров, упорядоченных по названию.
func (r *MemoryRepository) ListProducts(_ context.Context, filter ProductFilter, page pagination.Page) (model.Page[model.Product], error) {
	r.mu.RLock()
	matched := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Match(p) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Product) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	return newPage(pagination.Slice(matched, page), len(matched), page), nil
}

// GetDrop возвращает дроп по идентификатору.
func (r *MemoryRepository) GetDrop(_ context.Context, id string) (*model.Drop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drops[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// ListDrops возвращает страницу дропов, упорядоченных по времени начала.
func (r *MemoryRepository) ListDrops(_ context.Context, page pagination.Page) (model.Page[model.Drop], error) {
	r.mu.RLock()
	drops := make([]model.Drop, 0, len(r.drops))
	for _, d := range r.drops {
		drops = append(drops, d)
	}
	r.mu.RUnlock()

	slices.SortFunc(drops, func(a, b model.Drop) int {
		return cmp.Or(a.StartsAt.Compare(b.StartsAt), cmp.Compare(a.ID, b.ID))
	})

	return newPage(pagination.Slice(drops, page), len(drops), page), nil
}

// GetUser возвращает пользователя по идентификатору.
func (r *MemoryRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func compareAuctions(a, b model.Auction) int {
	return cmp.Or(a.EndsAt.Compare(b.EndsAt), cmp.Compare(a.ID, b.ID))
}

func cloneAuction(a model.Auction) model.Auction {
	if a.ClosedAt != nil {
		t := *a.ClosedAt
		a.ClosedAt = &t
	}
	return a
}

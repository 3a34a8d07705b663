// Package repository содержит хранилища аукционов, товаров, дропов и пользователей.
package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/snaggle-market/snaggle/internal/model"
	"github.com/snaggle-market/snaggle/internal/pagination"
)

var (
	// ErrNotFound возвращается, если запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState возвращается для неизвестного значения фильтра state.
	ErrInvalidState = errors.New("invalid auction state")
)

// Значения фильтра по состоянию аукциона.
const (
	StateLive  = "live"
	StateEnded = "ended"
)

// AuctionFilter задаёт отбор аукционов. Пустые поля не ограничивают выборку.
type AuctionFilter struct {
	Category string
	DropID   string
	State    string
	// At задаёт момент, относительно которого определяется состояние.
	At time.Time
}

// Validate проверяет значение State.
func (f AuctionFilter) Validate() error {
	switch f.State {
	case "", StateLive, StateEnded:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidState, f.State)
	}
}

// Match сообщает, проходит ли аукцион фильтр.
func (f AuctionFilter) Match(a model.Auction) bool {
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.DropID != "" && a.DropID != f.DropID {
		return false
	}

	switch f.State {
	case StateLive:
		return a.IsLive(f.At)
	case StateEnded:
		return !a.IsLive(f.At)
	}
	return true
}

// ProductFilter задаёт отбор товаров.
type ProductFilter struct {
	Category string
	DropID   string
}

// Match сообщает, проходит ли товар фильтр.
func (f ProductFilter) Match(p model.Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.DropID != "" && p.DropID != f.DropID {
		return false
	}
	return true
}

func newPage[T any](items []T, total int, p pagination.Page) model.Page[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	return model.Page[T]{
		Items:   items,
		Page:    p.Number,
		Limit:   p.Limit,
		Total:   total,
		HasMore: p.HasMore(total),
	}
}

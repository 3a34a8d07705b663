// Package model содержит доменные сущности сервиса snaggle.
package model

import (
	"time"

	"github.com/snaggle-market/snaggle/internal/money"
)

// Auction описывает пенни-аукцион: каждая ставка поднимает цену на Increment.
type Auction struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description"`
	Category    string      `json:"category" yaml:"category"`
	DropID      string      `json:"drop_id,omitempty" yaml:"drop_id"`
	ImageURL    string      `json:"image_url,omitempty" yaml:"image_url"`
	RetailPrice money.Money `json:"retail_price" yaml:"retail_price"`
	CurrentBid  money.Money `json:"current_bid" yaml:"current_bid"`
	Increment   money.Money `json:"increment" yaml:"increment"`
	BidCount    int         `json:"bid_count" yaml:"bid_count"`
	Leader      string      `json:"leader,omitempty" yaml:"leader"`
	EndsAt      time.Time   `json:"ends_at" yaml:"ends_at"`
	ClosedAt    *time.Time  `json:"closed_at,omitempty" yaml:"closed_at"`
}

// IsLive сообщает, идёт ли аукцион в момент now.
func (a Auction) IsLive(now time.Time) bool {
	return a.ClosedAt == nil && a.EndsAt.After(now)
}

// Product описывает товар магазина, который можно частично оплатить кредитами.
type Product struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description"`
	Category    string      `json:"category" yaml:"category"`
	DropID      string      `json:"drop_id,omitempty" yaml:"drop_id"`
	ImageURL    string      `json:"image_url,omitempty" yaml:"image_url"`
	Price       money.Money `json:"price" yaml:"price"`
	// MaxCredits показывает, сколько кредитов можно списать на одну единицу товара.
	MaxCredits int64 `json:"max_credits" yaml:"max_credits"`
	Stock      int   `json:"stock" yaml:"stock"`
}

// Drop описывает ограниченную по времени подборку товаров и аукционов.
type Drop struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Tagline     string    `json:"tagline,omitempty" yaml:"tagline"`
	Description string    `json:"description,omitempty" yaml:"description"`
	StartsAt    time.Time `json:"starts_at" yaml:"starts_at"`
	EndsAt      time.Time `json:"ends_at" yaml:"ends_at"`
}

// User описывает участника торгов с балансом кредитов.
type User struct {
	ID          string    `json:"id" yaml:"id"`
	Username    string    `json:"username" yaml:"username"`
	DisplayName string    `json:"display_name" yaml:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty" yaml:"avatar_url"`
	Credits     int64     `json:"credits" yaml:"credits"`
	Wins        int       `json:"wins" yaml:"wins"`
	JoinedAt    time.Time `json:"joined_at" yaml:"joined_at"`
}

// Page содержит страницу результатов списка.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// AuctionEnded описывает событие о завершении аукциона.
type AuctionEnded struct {
	EventID   string      `json:"event_id"`
	AuctionID string      `json:"auction_id"`
	Title     string      `json:"title"`
	FinalBid  money.Money `json:"final_bid"`
	Leader    string      `json:"leader,omitempty"`
	EndsAt    time.Time   `json:"ends_at"`
	ClosedAt  time.Time   `json:"closed_at"`
}

package repository

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snaggle-market/snaggle/internal/model"
)

//go:embed fixtures/seed.yaml
var defaultSeed []byte

// Seed содержит начальный набор данных для хранилища.
type Seed struct {
	Auctions []model.Auction
	Products []model.Product
	Drops    []model.Drop
	Users    []model.User
}

// Время в фикстурах задаётся смещением от момента загрузки, чтобы витрина не устаревала.
type seedFile struct {
	Auctions []seedAuction   `yaml:"auctions"`
	Products []model.Product `yaml:"products"`
	Drops    []seedDrop      `yaml:"drops"`
	Users    []model.User    `yaml:"users"`
}

type seedAuction struct {
	model.Auction `yaml:",inline"`
	EndsIn        time.Duration `yaml:"ends_in"`
}

type seedDrop struct {
	model.Drop `yaml:",inline"`
	StartsIn   time.Duration `yaml:"starts_in"`
	EndsIn     time.Duration `yaml:"ends_in"`
}

// DefaultSeed разбирает встроенную фикстуру относительно now.
func DefaultSeed(now time.Time) (Seed, error) {
	return ParseSeed(defaultSeed, now)
}

// ParseSeed разбирает YAML-фикстуру. Поля ends_in и starts_in задают время относительно now.
func ParseSeed(data []byte, now time.Time) (Seed, error) {
	var raw seedFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}

	now = now.UTC().Truncate(time.Second)
	seed := Seed{
		Products: raw.Products,
		Users:    raw.Users,
	}

	for _, a := range raw.Auctions {
		if a.ID == "" {
			return Seed{}, fmt.Errorf("decode seed: auction %q has no id", a.Title)
		}
		if a.EndsIn != 0 {
			a.EndsAt = now.Add(a.EndsIn)
		}
		seed.Auctions = append(seed.Auctions, a.Auction)
	}

	for _, d := range raw.Drops {
		if d.StartsIn != 0 {
			d.StartsAt = now.Add(d.StartsIn)
		}
		if d.EndsIn != 0 {
			d.EndsAt = now.Add(d.EndsIn)
		}
		seed.Drops = append(seed.Drops, d.Drop)
	}

	return seed, nil
}

// Package countdown переводит момент окончания в разбивку оставшегося времени.
package countdown

import (
	"context"
	"fmt"
	"time"
)

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Breakdown хранит оставшееся время, разложенное на дни, часы, минуты и секунды.
type Breakdown struct {
	Days      int64 `json:"days"`
	Hours     int64 `json:"hours"`
	Minutes   int64 `json:"minutes"`
	Seconds   int64 `json:"seconds"`
	IsExpired bool  `json:"is_expired"`
}

// Remaining считает разбивку для target относительно now.
// Если target не позже now, все поля нулевые и IsExpired = true.
func Remaining(target, now time.Time) Breakdown {
	if !target.After(now) {
		return Breakdown{IsExpired: true}
	}

	diff := target.Sub(now).Milliseconds()

	return Breakdown{
		Days:    diff / msPerDay,
		Hours:   (diff % msPerDay) / msPerHour,
		Minutes: (diff % msPerHour) / msPerMinute,
		Seconds: (diff % msPerMinute) / msPerSecond,
	}
}

// Duration собирает разбивку обратно в длительность с точностью до секунды.
func (b Breakdown) Duration() time.Duration {
	return time.Duration(b.Days)*24*time.Hour +
		time.Duration(b.Hours)*time.Hour +
		time.Duration(b.Minutes)*time.Minute +
		time.Duration(b.Seconds)*time.Second
}

// Label форматирует разбивку для подписи таймера.
func (b Breakdown) Label() string {
	if b.IsExpired {
		return "ended"
	}
	if b.Days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", b.Days, b.Hours, b.Minutes, b.Seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", b.Hours, b.Minutes, b.Seconds)
}

// Watch опрашивает Remaining с интервалом interval и вызывает onTick на каждом тике.
// onExpire вызывается ровно один раз, на первом тике с IsExpired, после чего Watch возвращается.
// При отмене ctx Watch возвращается без вызова onExpire.
func Watch(ctx context.Context, target time.Time, interval time.Duration, now func() time.Time, onTick func(Breakdown), onExpire func()) {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}

	check := func() bool {
		b := Remaining(target, now())
		if onTick != nil {
			onTick(b)
		}
		if b.IsExpired {
			if onExpire != nil {
				onExpire()
			}
			return true
		}
		return false
	}

	if check() {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if check() {
				return
			}
		}
	}
}

// Package bidding реализует правило пенни-аукциона: каждая ставка превышает
// текущую цену ровно на целое число шагов.
package bidding

import (
	"errors"
	"fmt"

	"github.com/snaggle-market/snaggle/internal/money"
)

// DefaultIncrement задаёт шаг ставки по умолчанию, один цент.
const DefaultIncrement = money.Money(1)

// Kind описывает причину отклонения ставки.
type Kind int

const (
	KindTooLow Kind = iota + 1
	KindNotIncrementMultiple
)

func (k Kind) String() string {
	switch k {
	case KindTooLow:
		return "too_low"
	case KindNotIncrementMultiple:
		return "not_increment_multiple"
	default:
		return "unknown"
	}
}

var (
	// ErrTooLow: ставка не превышает текущую цену.
	ErrTooLow = errors.New("bid must be higher than the current price")
	// ErrNotIncrementMultiple: разница со ставкой не кратна шагу.
	ErrNotIncrementMultiple = errors.New("bid must move the price by a whole number of increments")
)

// Error возвращается из Validate.
type Error struct {
	Kind      Kind
	Proposed  money.Money
	Current   money.Money
	Increment money.Money
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTooLow:
		return fmt.Sprintf("%s: bid %s, current %s", ErrTooLow, e.Proposed, e.Current)
	case KindNotIncrementMultiple:
		return fmt.Sprintf("%s: bid %s, current %s, increment %s", ErrNotIncrementMultiple, e.Proposed, e.Current, e.Increment)
	default:
		return "invalid bid"
	}
}

// Is позволяет сравнивать ошибку с ErrTooLow и ErrNotIncrementMultiple через errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTooLow:
		return e.Kind == KindTooLow
	case ErrNotIncrementMultiple:
		return e.Kind == KindNotIncrementMultiple
	}
	return false
}

// NextBid возвращает следующую допустимую ставку: current + increment.
func NextBid(current, increment money.Money) money.Money {
	return current.Add(normalize(increment))
}

// Validate проверяет, что proposed > current и (proposed - current) кратно increment.
func Validate(proposed, current, increment money.Money) error {
	increment = normalize(increment)

	if proposed <= current {
		return &Error{Kind: KindTooLow, Proposed: proposed, Current: current, Increment: increment}
	}
	if proposed.Sub(current)%increment != 0 {
		return &Error{Kind: KindNotIncrementMultiple, Proposed: proposed, Current: current, Increment: increment}
	}
	return nil
}

func normalize(increment money.Money) money.Money {
	if increment <= 0 {
		return DefaultIncrement
	}
	return increment
}

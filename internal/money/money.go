// Package money содержит денежный тип в целых центах.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalidAmount возвращается для некорректной или дробной (меньше цента) суммы.
var ErrInvalidAmount = errors.New("invalid money amount")

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Money хранит сумму в центах.
type Money int64

// FromCents создаёт сумму из количества центов.
func FromCents(cents int64) Money {
	return Money(cents)
}

// Cents возвращает сумму в центах.
func (m Money) Cents() int64 {
	return int64(m)
}

func (m Money) Add(o Money) Money { return m + o }

func (m Money) Sub(o Money) Money { return m - o }

// Mul умножает сумму на целое число (количество, число кредитов).
func (m Money) Mul(n int64) Money {
	return Money(int64(m) * n)
}

// Max0 возвращает сумму, но не меньше нуля.
func (m Money) Max0() Money {
	if m < 0 {
		return 0
	}
	return m
}

// Decimal возвращает сумму в основных единицах валюты.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String форматирует сумму с двумя знаками после точки.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Parse разбирает десятичную строку вида "23.42".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// FromDecimal переводит десятичную сумму в центы без округления.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: %s has fractional cents", ErrInvalidAmount, d.String())
	}
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, d.String())
	}
	return Money(cents.IntPart()), nil
}

// MarshalJSON кодирует сумму JSON-числом с двумя знаками после точки.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON принимает как число, так и строку в кавычках.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalYAML разбирает скаляр вида 23.42 из фикстур.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected scalar at line %d", ErrInvalidAmount, value.Line)
	}

	parsed, err := Parse(value.Value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

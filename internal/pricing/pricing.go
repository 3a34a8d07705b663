// Package pricing рассчитывает скидку за списание кредитов и итоговую сумму к оплате.
package pricing

import (
	"math"

	"github.com/snaggle-market/snaggle/internal/money"
)

// CreditValue задаёт стоимость одного кредита (60 центов).
const CreditValue = money.Money(60)

// Request описывает запрос на списание кредитов для строки корзины или заказа.
// CreditsChosen может превышать доступные кредиты: калькулятор сам его ограничит.
type Request struct {
	LineTotal         money.Money `json:"line_total"`
	UserCredits       int64       `json:"user_credits"`
	MaxCreditsAllowed int64       `json:"max_credits_allowed"`
	CreditsChosen     int64       `json:"credits_chosen"`
}

// Result содержит итог расчёта.
type Result struct {
	UsableCredits int64       `json:"usable_credits"`
	Discount      money.Money `json:"discount"`
	Total         money.Money `json:"total"`
}

// Calculator применяет кредиты по фиксированному курсу.
type Calculator struct {
	creditValue money.Money
}

// New создаёт калькулятор; неположительный курс заменяется на CreditValue.
func New(creditValue money.Money) *Calculator {
	if creditValue <= 0 {
		creditValue = CreditValue
	}
	return &Calculator{creditValue: creditValue}
}

// CreditValue возвращает курс кредита калькулятора.
func (c *Calculator) CreditValue() money.Money {
	return c.creditValue
}

// Apply считает usableCredits = min(chosen, user, max), discount = usable * курс,
// total = max(0, lineTotal - discount). Отрицательные входные значения считаются нулём,
// а скидка при переполнении ограничивается максимальной суммой.
func (c *Calculator) Apply(req Request) Result {
	lineTotal := req.LineTotal.Max0()

	usable := min(clamp(req.CreditsChosen), clamp(req.UserCredits), clamp(req.MaxCreditsAllowed))
	creditValue := c.creditValue
	if creditValue <= 0 {
		creditValue = CreditValue
	}

	discount := money.Money(math.MaxInt64)
	if usable <= math.MaxInt64/creditValue.Cents() {
		discount = creditValue.Mul(usable)
	}

	return Result{
		UsableCredits: usable,
		Discount:      discount,
		Total:         lineTotal.Sub(discount).Max0(),
	}
}

// Apply считает результат по курсу CreditValue.
func Apply(req Request) Result {
	return New(CreditValue).Apply(req)
}

// MaxSelectable возвращает верхнюю границу слайдера выбора кредитов.
func MaxSelectable(userCredits, maxCreditsAllowed int64) int64 {
	return min(clamp(userCredits), clamp(maxCreditsAllowed))
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

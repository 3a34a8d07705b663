package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snaggle-market/snaggle/internal/money"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Result
	}{
		{
			name: "capped by max allowed",
			req:  Request{LineTotal: 10000, UserCredits: 50, MaxCreditsAllowed: 30, CreditsChosen: 40},
			want: Result{UsableCredits: 30, Discount: 1800, Total: 8200},
		},
		{
			name: "capped by user balance",
			req:  Request{LineTotal: 10000, UserCredits: 5, MaxCreditsAllowed: 30, CreditsChosen: 40},
			want: Result{UsableCredits: 5, Discount: 300, Total: 9700},
		},
		{
			name: "chosen below limits",
			req:  Request{LineTotal: 10000, UserCredits: 50, MaxCreditsAllowed: 30, CreditsChosen: 10},
			want: Result{UsableCredits: 10, Discount: 600, Total: 9400},
		},
		{
			name: "total floored at zero",
			req:  Request{LineTotal: 1000, UserCredits: 100, MaxCreditsAllowed: 100, CreditsChosen: 100},
			want: Result{UsableCredits: 100, Discount: 6000, Total: 0},
		},
		{
			name: "nothing chosen",
			req:  Request{LineTotal: 2500, UserCredits: 100, MaxCreditsAllowed: 100},
			want: Result{Total: 2500},
		},
		{
			name: "negative inputs clamp to zero",
			req:  Request{LineTotal: -500, UserCredits: -1, MaxCreditsAllowed: 10, CreditsChosen: -3},
			want: Result{},
		},
		{
			name: "largest exact discount",
			req:  Request{LineTotal: 10000, UserCredits: math.MaxInt64 / 60, MaxCreditsAllowed: math.MaxInt64, CreditsChosen: math.MaxInt64},
			want: Result{UsableCredits: math.MaxInt64 / 60, Discount: 9223372036854775800, Total: 0},
		},
		{
			name: "discount saturates",
			req:  Request{LineTotal: 10000, UserCredits: math.MaxInt64/60 + 1, MaxCreditsAllowed: 1<<62 - 1, CreditsChosen: 1<<62 - 1},
			want: Result{UsableCredits: math.MaxInt64/60 + 1, Discount: math.MaxInt64, Total: 0},
		},
		{
			name: "huge balances",
			req:  Request{LineTotal: 10000, UserCredits: 1<<62 - 1, MaxCreditsAllowed: 1<<62 - 1, CreditsChosen: 1<<62 - 1},
			want: Result{UsableCredits: 1<<62 - 1, Discount: math.MaxInt64, Total: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.req))
		})
	}
}

func TestApply_TotalBounds(t *testing.T) {
	for lineTotal := money.Money(0); lineTotal <= 5000; lineTotal += 137 {
		for credits := int64(0); credits <= 120; credits += 7 {
			req := Request{
				LineTotal:         lineTotal,
				UserCredits:       credits,
				MaxCreditsAllowed: 90,
				CreditsChosen:     credits + 3,
			}
			res := Apply(req)

			assert.GreaterOrEqual(t, res.Total, money.Money(0))
			assert.LessOrEqual(t, res.Total, lineTotal)
			assert.Equal(t, CreditValue.Mul(res.UsableCredits), res.Discount)
			assert.Equal(t, lineTotal.Sub(res.Discount).Max0(), res.Total)
		}
	}
}

func TestNew_CustomCreditValue(t *testing.T) {
	calc := New(100)
	res := calc.Apply(Request{LineTotal: 5000, UserCredits: 10, MaxCreditsAllowed: 10, CreditsChosen: 10})
	assert.Equal(t, money.Money(1000), res.Discount)
	assert.Equal(t, money.Money(4000), res.Total)

	assert.Equal(t, CreditValue, New(0).CreditValue())
	assert.Equal(t, CreditValue, New(-5).CreditValue())
}

func TestMaxSelectable(t *testing.T) {
	assert.Equal(t, int64(30), MaxSelectable(50, 30))
	assert.Equal(t, int64(5), MaxSelectable(5, 30))
	assert.Equal(t, int64(0), MaxSelectable(-5, 30))
}

func TestApply_TotalBoundsLargeCredits(t *testing.T) {
	for _, credits := range []int64{math.MaxInt64/60 - 1, math.MaxInt64 / 60, math.MaxInt64/60 + 1, 1 << 62, math.MaxInt64} {
		for _, calc := range []*Calculator{New(CreditValue), New(1), New(7), {}} {
			res := calc.Apply(Request{LineTotal: 10000, UserCredits: credits, MaxCreditsAllowed: credits, CreditsChosen: credits})

			assert.Equal(t, credits, res.UsableCredits)
			assert.GreaterOrEqual(t, res.Discount, money.Money(0))
			assert.GreaterOrEqual(t, res.Total, money.Money(0))
			assert.LessOrEqual(t, res.Total, money.Money(10000))
		}
	}
}

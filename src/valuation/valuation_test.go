package valuation_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/src/valuation"
)

func fptr(v float64) *float64 { return &v }

func TestMergePurchase(t *testing.T) {
	t.Run("first purchase becomes the position", func(t *testing.T) {
		pos, err := valuation.MergePurchase(nil, 0.5, 40000)
		require.NoError(t, err)
		assert.Equal(t, 0.5, pos.Amount)
		assert.Equal(t, 40000.0, pos.PurchasePrice)
	})

	t.Run("second purchase merges into weighted average", func(t *testing.T) {
		pos, err := valuation.MergePurchase(nil, 0.5, 40000)
		require.NoError(t, err)

		merged, err := valuation.MergePurchase(&pos, 0.5, 60000)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, merged.Amount, 1e-9)
		assert.InDelta(t, 50000.0, merged.PurchasePrice, 1e-9)
	})

	t.Run("uneven amounts weight the average", func(t *testing.T) {
		pos := valuation.Position{Amount: 3, PurchasePrice: 100}
		merged, err := valuation.MergePurchase(&pos, 1, 200)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, merged.Amount, 1e-9)
		assert.InDelta(t, 125.0, merged.PurchasePrice, 1e-9)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := valuation.MergePurchase(nil, 0, 40000)
		assert.EqualError(t, err, "Amount and purchase price must be positive")

		_, err = valuation.MergePurchase(nil, -1, 40000)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		existing := valuation.Position{Amount: 1, PurchasePrice: 100}
		_, err := valuation.MergePurchase(&existing, 1, 0)
		assert.Error(t, err)
	})
}

func TestValuate(t *testing.T) {
	t.Run("profit", func(t *testing.T) {
		v := valuation.Valuate(1.0, 50000, fptr(70000))
		assert.True(t, v.PriceKnown)
		assert.InDelta(t, 70000.0, v.CurrentValue, 1e-9)
		assert.InDelta(t, 20000.0, v.ProfitLoss, 1e-9)
		assert.InDelta(t, 40.0, v.ProfitLossPercentage, 1e-9)
	})

	t.Run("loss", func(t *testing.T) {
		v := valuation.Valuate(2.0, 100, fptr(75))
		assert.InDelta(t, 150.0, v.CurrentValue, 1e-9)
		assert.InDelta(t, -50.0, v.ProfitLoss, 1e-9)
		assert.InDelta(t, -25.0, v.ProfitLossPercentage, 1e-9)
	})

	t.Run("unknown price yields zero economics", func(t *testing.T) {
		v := valuation.Valuate(1.0, 50000, nil)
		assert.False(t, v.PriceKnown)
		assert.Zero(t, v.CurrentValue)
		assert.Zero(t, v.ProfitLoss)
		assert.Zero(t, v.ProfitLossPercentage)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("empty portfolio", func(t *testing.T) {
		s := valuation.Summarize(nil)
		assert.Zero(t, s.TotalHoldings)
		assert.Zero(t, s.TotalInvested)
		assert.Zero(t, s.TotalCurrentValue)
		assert.Zero(t, s.TotalProfitLoss)
		assert.Zero(t, s.TotalProfitLossPercentage)
	})

	t.Run("mixed holdings", func(t *testing.T) {
		s := valuation.Summarize([]valuation.ValuedHolding{
			{Amount: 1.0, PurchasePrice: 50000, CurrentPrice: fptr(70000)},
			{Amount: 10, PurchasePrice: 200, CurrentPrice: fptr(200)},
		})
		assert.Equal(t, 2, s.TotalHoldings)
		assert.InDelta(t, 52000.0, s.TotalInvested, 1e-9)
		assert.InDelta(t, 72000.0, s.TotalCurrentValue, 1e-9)
		assert.InDelta(t, 20000.0, s.TotalProfitLoss, 1e-9)
		assert.InDelta(t, 20000.0/52000.0*100, s.TotalProfitLossPercentage, 1e-9)
	})

	t.Run("unknown prices count invested but not value", func(t *testing.T) {
		s := valuation.Summarize([]valuation.ValuedHolding{
			{Amount: 1, PurchasePrice: 1000, CurrentPrice: nil},
			{Amount: 1, PurchasePrice: 1000, CurrentPrice: fptr(1500)},
		})
		assert.Equal(t, 2, s.TotalHoldings)
		assert.InDelta(t, 2000.0, s.TotalInvested, 1e-9)
		assert.InDelta(t, 1500.0, s.TotalCurrentValue, 1e-9)
		assert.InDelta(t, 500.0, s.TotalProfitLoss, 1e-9)
	})
}

func TestMergePurchaseProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	amounts := gen.Float64Range(1e-6, 1e6)
	prices := gen.Float64Range(1e-6, 1e7)

	properties.Property("merged amount is the exact sum", prop.ForAll(
		func(a1, p1, a2, p2 float64) bool {
			pos, err := valuation.MergePurchase(nil, a1, p1)
			if err != nil {
				return false
			}
			merged, err := valuation.MergePurchase(&pos, a2, p2)
			if err != nil {
				return false
			}
			return merged.Amount == a1+a2
		},
		amounts, prices, amounts, prices,
	))

	properties.Property("merged price stays within the input price bounds", prop.ForAll(
		func(a1, p1, a2, p2 float64) bool {
			pos := valuation.Position{Amount: a1, PurchasePrice: p1}
			merged, err := valuation.MergePurchase(&pos, a2, p2)
			if err != nil {
				return false
			}
			lo, hi := math.Min(p1, p2), math.Max(p1, p2)
			const eps = 1e-9
			return merged.PurchasePrice >= lo-eps*hi && merged.PurchasePrice <= hi+eps*hi
		},
		amounts, prices, amounts, prices,
	))

	properties.Property("merging equal prices preserves the price", prop.ForAll(
		func(a1, a2, p float64) bool {
			pos := valuation.Position{Amount: a1, PurchasePrice: p}
			merged, err := valuation.MergePurchase(&pos, a2, p)
			if err != nil {
				return false
			}
			return math.Abs(merged.PurchasePrice-p) <= 1e-9*p
		},
		amounts, amounts, prices,
	))

	properties.TestingRun(t)
}

func TestValuationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	amounts := gen.Float64Range(1e-6, 1e6)
	prices := gen.Float64Range(1e-6, 1e7)

	properties.Property("value at purchase price has zero P&L", prop.ForAll(
		func(amount, price float64) bool {
			v := valuation.Valuate(amount, price, &price)
			invested := amount * price
			return math.Abs(v.ProfitLoss) <= 1e-9*invested &&
				math.Abs(v.ProfitLossPercentage) <= 1e-6
		},
		amounts, prices,
	))

	properties.Property("P&L sign follows the price direction", prop.ForAll(
		func(amount, purchase, current float64) bool {
			v := valuation.Valuate(amount, purchase, &current)
			switch {
			case current > purchase:
				return v.ProfitLoss > 0
			case current < purchase:
				return v.ProfitLoss < 0
			default:
				return v.ProfitLoss == 0
			}
		},
		amounts, prices, prices,
	))

	properties.Property("summary totals do not depend on holding order", prop.ForAll(
		func(a1, p1, c1, a2, p2, c2, a3, p3, c3 float64) bool {
			h1 := valuation.ValuedHolding{Amount: a1, PurchasePrice: p1, CurrentPrice: &c1}
			h2 := valuation.ValuedHolding{Amount: a2, PurchasePrice: p2, CurrentPrice: &c2}
			h3 := valuation.ValuedHolding{Amount: a3, PurchasePrice: p3, CurrentPrice: nil}
			_ = c3

			s1 := valuation.Summarize([]valuation.ValuedHolding{h1, h2, h3})
			s2 := valuation.Summarize([]valuation.ValuedHolding{h3, h1, h2})

			tol := 1e-6 * (1 + math.Abs(s1.TotalInvested))
			return s1.TotalHoldings == s2.TotalHoldings &&
				math.Abs(s1.TotalInvested-s2.TotalInvested) <= tol &&
				math.Abs(s1.TotalCurrentValue-s2.TotalCurrentValue) <= tol &&
				math.Abs(s1.TotalProfitLoss-s2.TotalProfitLoss) <= tol
		},
		amounts, prices, prices, amounts, prices, prices, amounts, prices, prices,
	))

	properties.TestingRun(t)
}

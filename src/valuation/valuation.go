package valuation

import (
	"cryptotracker/src/utils"
)

// Position is a stored lot: how much of an asset is held and at what average
// cost basis.
type Position struct {
	Amount        float64
	PurchasePrice float64
}

// MergePurchase folds a new purchase into an existing position using the
// amount-weighted average price. A nil existing position yields the purchase
// itself. The merged price always lies between the two input prices and the
// merged amount is their exact sum.
func MergePurchase(existing *Position, amount, price float64) (Position, error) {
	if amount <= 0 || price <= 0 {
		return Position{}, utils.BadRequest("Amount and purchase price must be positive")
	}
	if existing == nil {
		return Position{Amount: amount, PurchasePrice: price}, nil
	}

	totalAmount := existing.Amount + amount
	weightedPrice := (existing.Amount*existing.PurchasePrice + amount*price) / totalAmount
	return Position{Amount: totalAmount, PurchasePrice: weightedPrice}, nil
}

// Valuation is the live economics of one position.
type Valuation struct {
	CurrentValue         float64
	ProfitLoss           float64
	ProfitLossPercentage float64
	// PriceKnown is false when no market price has been observed for the
	// asset; the numeric fields are zero in that case rather than derived
	// from a fabricated zero price.
	PriceKnown bool
}

// Valuate computes the current value and P&L of a position. currentPrice is
// nil when the market data gateway has not supplied a price yet.
func Valuate(amount, purchasePrice float64, currentPrice *float64) Valuation {
	if currentPrice == nil {
		return Valuation{}
	}

	invested := amount * purchasePrice
	currentValue := amount * *currentPrice
	profitLoss := currentValue - invested

	var pct float64
	if invested != 0 {
		pct = profitLoss / invested * 100
	}

	return Valuation{
		CurrentValue:         currentValue,
		ProfitLoss:           profitLoss,
		ProfitLossPercentage: pct,
		PriceKnown:           true,
	}
}

// ValuedHolding pairs a position with the price it is valued at.
type ValuedHolding struct {
	Amount        float64
	PurchasePrice float64
	CurrentPrice  *float64
}

// PortfolioSummary is the dashboard roll-up across all of a user's holdings.
type PortfolioSummary struct {
	TotalHoldings             int
	TotalInvested             float64
	TotalCurrentValue         float64
	TotalProfitLoss           float64
	TotalProfitLossPercentage float64
}

// Summarize folds per-holding valuations into portfolio totals. An empty
// input produces the zero summary; the fold is a plain sum, so the input
// order never affects the result. Holdings without a known price contribute
// their invested amount but zero current value, matching the per-holding
// valuation policy.
func Summarize(holdings []ValuedHolding) PortfolioSummary {
	summary := PortfolioSummary{TotalHoldings: len(holdings)}

	for _, h := range holdings {
		v := Valuate(h.Amount, h.PurchasePrice, h.CurrentPrice)
		summary.TotalInvested += h.Amount * h.PurchasePrice
		summary.TotalCurrentValue += v.CurrentValue
		summary.TotalProfitLoss += v.ProfitLoss
	}

	if summary.TotalInvested > 0 {
		summary.TotalProfitLossPercentage = summary.TotalProfitLoss / summary.TotalInvested * 100
	}
	return summary
}

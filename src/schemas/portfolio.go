package schemas

import "time"

type AddHoldingRequest struct {
	Symbol        string  `json:"symbol"`
	Amount        float64 `json:"amount"`
	PurchasePrice float64 `json:"purchase_price"`
	Notes         string  `json:"notes"`
}

type UpdateHoldingRequest struct {
	Amount        float64 `json:"amount"`
	PurchasePrice float64 `json:"purchase_price"`
	Notes         string  `json:"notes"`
}

// HoldingResponse enriches a stored position with live economics. When the
// asset has no refreshed price yet, CurrentPrice is null, PriceKnown is false
// and the derived fields are zero rather than silently pretending a price of
// zero was observed.
type HoldingResponse struct {
	ID                   int64     `json:"id"`
	Symbol               string    `json:"symbol"`
	Name                 string    `json:"name"`
	Amount               float64   `json:"amount"`
	PurchasePrice        float64   `json:"purchase_price"`
	PurchaseDate         time.Time `json:"purchase_date"`
	Notes                *string   `json:"notes"`
	CurrentPrice         *float64  `json:"current_price"`
	CurrentValue         float64   `json:"current_value"`
	ProfitLoss           float64   `json:"profit_loss"`
	ProfitLossPercentage float64   `json:"profit_loss_percentage"`
	PriceKnown           bool      `json:"price_known"`
}

type HoldingMutationResponse struct {
	Message   string          `json:"message"`
	Portfolio HoldingResponse `json:"portfolio"`
}

type PortfolioSummaryResponse struct {
	TotalHoldings             int     `json:"total_holdings"`
	TotalInvested             float64 `json:"total_invested"`
	TotalCurrentValue         float64 `json:"total_current_value"`
	TotalProfitLoss           float64 `json:"total_profit_loss"`
	TotalProfitLossPercentage float64 `json:"total_profit_loss_percentage"`
}

package controllers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"cryptotracker/src/models"
	"cryptotracker/src/schemas"
	"cryptotracker/src/utils"
	"cryptotracker/src/valuation"
)

func (c *Controller) GetPortfolio(ctx context.Context, userID int64) ([]schemas.HoldingResponse, error) {
	entries, err := c.Portfolios.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]schemas.HoldingResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, holdingResponse(&entries[i]))
	}
	return responses, nil
}

// AddHolding records a purchase, merging into an existing position when the
// user already holds the asset. The second return value reports whether a new
// position was created.
func (c *Controller) AddHolding(ctx context.Context, userID int64, req *schemas.AddHoldingRequest) (*schemas.HoldingMutationResponse, bool, error) {
	if req.Symbol == "" || req.Amount == 0 || req.PurchasePrice == 0 {
		return nil, false, utils.BadRequest("Symbol, amount, and purchase price are required")
	}
	if req.Amount < 0 || req.PurchasePrice < 0 {
		return nil, false, utils.BadRequest("Amount and purchase price must be positive")
	}

	crypto, err := c.Cryptos.GetBySymbol(ctx, req.Symbol)
	if err != nil {
		return nil, false, err
	}
	if crypto == nil {
		return nil, false, utils.NotFound("Cryptocurrency not found")
	}

	entry, created, err := c.Portfolios.AddPurchase(ctx, userID, crypto.ID, req.Amount, req.PurchasePrice, notesPtr(req.Notes))
	if err != nil {
		return nil, false, err
	}

	message := "Portfolio updated successfully"
	if created {
		message = "Cryptocurrency added to portfolio"
	}
	return &schemas.HoldingMutationResponse{
		Message:   message,
		Portfolio: holdingResponse(joinEntry(entry, crypto)),
	}, created, nil
}

func (c *Controller) UpdateHolding(ctx context.Context, userID, id int64, req *schemas.UpdateHoldingRequest) (*schemas.HoldingMutationResponse, error) {
	if req.Amount == 0 || req.PurchasePrice == 0 {
		return nil, utils.BadRequest("Amount and purchase price are required")
	}
	if req.Amount < 0 || req.PurchasePrice < 0 {
		return nil, utils.BadRequest("Amount and purchase price must be positive")
	}

	existing, err := c.Portfolios.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, utils.NotFound("Portfolio entry not found")
	}

	entry, err := c.Portfolios.Update(ctx, id, userID, req.Amount, req.PurchasePrice, notesPtr(req.Notes))
	if err != nil {
		return nil, err
	}
	// The entry can vanish between the ownership check and the update.
	if entry == nil {
		return nil, utils.NotFound("Portfolio entry not found")
	}

	crypto, err := c.Cryptos.GetByID(ctx, entry.CryptoID)
	if err != nil {
		return nil, err
	}

	return &schemas.HoldingMutationResponse{
		Message:   "Portfolio updated successfully",
		Portfolio: holdingResponse(joinEntry(entry, crypto)),
	}, nil
}

func (c *Controller) DeleteHolding(ctx context.Context, userID, id int64) (*schemas.MessageResponse, error) {
	existing, err := c.Portfolios.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, utils.NotFound("Portfolio entry not found")
	}

	if err := c.Portfolios.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("Portfolio entry not found")
		}
		return nil, err
	}
	return &schemas.MessageResponse{Message: "Cryptocurrency removed from portfolio"}, nil
}

func (c *Controller) GetPortfolioSummary(ctx context.Context, userID int64) (*schemas.PortfolioSummaryResponse, error) {
	entries, err := c.Portfolios.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings := make([]valuation.ValuedHolding, 0, len(entries))
	for _, e := range entries {
		holdings = append(holdings, valuation.ValuedHolding{
			Amount:        e.Amount,
			PurchasePrice: e.PurchasePrice,
			CurrentPrice:  e.CurrentPrice,
		})
	}

	summary := valuation.Summarize(holdings)
	return &schemas.PortfolioSummaryResponse{
		TotalHoldings:             summary.TotalHoldings,
		TotalInvested:             summary.TotalInvested,
		TotalCurrentValue:         summary.TotalCurrentValue,
		TotalProfitLoss:           summary.TotalProfitLoss,
		TotalProfitLossPercentage: summary.TotalProfitLossPercentage,
	}, nil
}

func holdingResponse(entry *models.PortfolioEntryWithCrypto) schemas.HoldingResponse {
	v := valuation.Valuate(entry.Amount, entry.PurchasePrice, entry.CurrentPrice)
	return schemas.HoldingResponse{
		ID:                   entry.ID,
		Symbol:               entry.Symbol,
		Name:                 entry.Name,
		Amount:               entry.Amount,
		PurchasePrice:        entry.PurchasePrice,
		PurchaseDate:         entry.PurchaseDate,
		Notes:                entry.Notes,
		CurrentPrice:         entry.CurrentPrice,
		CurrentValue:         v.CurrentValue,
		ProfitLoss:           v.ProfitLoss,
		ProfitLossPercentage: v.ProfitLossPercentage,
		PriceKnown:           v.PriceKnown,
	}
}

func joinEntry(entry *models.PortfolioEntry, crypto *models.Cryptocurrency) *models.PortfolioEntryWithCrypto {
	joined := &models.PortfolioEntryWithCrypto{PortfolioEntry: *entry}
	if crypto != nil {
		joined.Symbol = crypto.Symbol
		joined.Name = crypto.Name
		joined.CurrentPrice = crypto.CurrentPrice
	}
	return joined
}

func notesPtr(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}

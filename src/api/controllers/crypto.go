package controllers

import (
	"context"
	"time"

	"cryptotracker/src/models"
	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
	"cryptotracker/src/utils"
)

const cryptoListCacheTTL = time.Minute

// GetAllCryptos lists the tracked assets, newest market data first. The list
// is served from the shared cache when possible; a cache outage degrades to
// the in-process cache and then the database, never to an error.
func (c *Controller) GetAllCryptos(ctx context.Context) ([]schemas.CryptoResponse, error) {
	if c.cache != nil {
		var cached []schemas.CryptoResponse
		if err := c.cache.Get(ctx, services.CacheKeyCryptoList, &cached); err == nil {
			return cached, nil
		}
	} else if cached, ok := c.listCache.Get(); ok {
		return cached, nil
	}

	cryptos, err := c.Cryptos.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]schemas.CryptoResponse, 0, len(cryptos))
	for i := range cryptos {
		responses = append(responses, c.cryptoResponse(&cryptos[i]))
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, services.CacheKeyCryptoList, responses, cryptoListCacheTTL); err != nil {
			c.logger.WithError(err).Warn("failed to cache crypto list")
		}
	} else {
		c.listCache.Set(responses, cryptoListCacheTTL)
	}
	return responses, nil
}

func (c *Controller) GetCryptoBySymbol(ctx context.Context, symbol string) (*schemas.CryptoResponse, error) {
	crypto, err := c.Cryptos.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if crypto == nil {
		return nil, utils.NotFound("Cryptocurrency not found")
	}
	resp := c.cryptoResponse(crypto)
	return &resp, nil
}

func (c *Controller) GetPriceHistory(ctx context.Context, symbol string, days int) ([]schemas.PricePointResponse, error) {
	crypto, err := c.Cryptos.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if crypto == nil {
		return nil, utils.NotFound("Cryptocurrency not found")
	}

	points, err := c.History.GetBySymbol(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	responses := make([]schemas.PricePointResponse, 0, len(points))
	for _, p := range points {
		responses = append(responses, schemas.PricePointResponse{
			Price:      p.Price,
			MarketCap:  p.MarketCap,
			Volume24h:  p.Volume24h,
			RecordedAt: p.RecordedAt,
		})
	}
	return responses, nil
}

func (c *Controller) CreateCrypto(ctx context.Context, req *schemas.CreateCryptoRequest) (*schemas.CreateCryptoResponse, error) {
	if req.Symbol == "" || req.Name == "" {
		return nil, utils.BadRequest("Symbol and name are required")
	}

	existing, err := c.Cryptos.GetBySymbol(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.BadRequest("Cryptocurrency already exists")
	}

	crypto, err := c.Cryptos.Create(ctx, req.Symbol, req.Name)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Delete(ctx, services.CacheKeyCryptoList)
	}
	c.listCache.Clear()

	return &schemas.CreateCryptoResponse{
		Message: "Cryptocurrency added successfully",
		Crypto:  c.cryptoResponse(crypto),
	}, nil
}

// RefreshPrices is the user-triggered variant of the scheduled refresh.
func (c *Controller) RefreshPrices(ctx context.Context) (*schemas.RefreshResponse, error) {
	updated, err := c.Market.RefreshPrices(utils.WithLogger(ctx, c.logger))
	if err != nil {
		return nil, err
	}
	c.listCache.Clear()
	return &schemas.RefreshResponse{
		Message:      "Prices updated successfully",
		UpdatedCount: updated,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (c *Controller) cryptoResponse(crypto *models.Cryptocurrency) schemas.CryptoResponse {
	return schemas.CryptoResponse{
		ID:             crypto.ID,
		Symbol:         crypto.Symbol,
		Name:           crypto.Name,
		CurrentPrice:   crypto.CurrentPrice,
		MarketCap:      crypto.MarketCap,
		Volume24h:      crypto.Volume24h,
		PriceChange24h: crypto.PriceChange24h,
		LastUpdated:    crypto.LastUpdated,
		NeedsUpdate:    time.Since(crypto.LastUpdated) > c.freshness,
	}
}

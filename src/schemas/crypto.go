package schemas

import "time"

type CryptoResponse struct {
	ID             int64     `json:"id"`
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name"`
	CurrentPrice   *float64  `json:"current_price"`
	MarketCap      *float64  `json:"market_cap"`
	Volume24h      *float64  `json:"volume_24h"`
	PriceChange24h *float64  `json:"price_change_24h"`
	LastUpdated    time.Time `json:"last_updated"`
	NeedsUpdate    bool      `json:"needs_update"`
}

type CreateCryptoRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type CreateCryptoResponse struct {
	Message string         `json:"message"`
	Crypto  CryptoResponse `json:"crypto"`
}

type PricePointResponse struct {
	Price      float64   `json:"price"`
	MarketCap  float64   `json:"market_cap"`
	Volume24h  float64   `json:"volume_24h"`
	RecordedAt time.Time `json:"recorded_at"`
}

type RefreshResponse struct {
	Message      string    `json:"message"`
	UpdatedCount int       `json:"updated_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// PriceQuote is the source-agnostic shape both market data clients decode
// into; the refresh service does not care which upstream produced it.
type PriceQuote struct {
	Price          float64
	MarketCap      float64
	Volume24h      float64
	PriceChange24h float64
}

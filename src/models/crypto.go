package models

import "time"

type Cryptocurrency struct {
	ID             int64     `db:"id"`
	Symbol         string    `db:"symbol"`
	Name           string    `db:"name"`
	CurrentPrice   *float64  `db:"current_price"`
	MarketCap      *float64  `db:"market_cap"`
	Volume24h      *float64  `db:"volume_24h"`
	PriceChange24h *float64  `db:"price_change_24h"`
	LastUpdated    time.Time `db:"last_updated"`
}

// PricePoint is an immutable snapshot of an asset's market data, appended by
// the refresh task and never mutated.
type PricePoint struct {
	ID         int64     `db:"id"`
	CryptoID   int64     `db:"crypto_id"`
	Price      float64   `db:"price"`
	MarketCap  float64   `db:"market_cap"`
	Volume24h  float64   `db:"volume_24h"`
	RecordedAt time.Time `db:"recorded_at"`
}

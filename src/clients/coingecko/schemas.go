package coingecko

// SimplePriceEntry is one asset's quote from the /simple/price endpoint.
// Market cap, volume and change are optional on the free tier and arrive as
// null when not requested or not available.
type SimplePriceEntry struct {
	USD          float64  `json:"usd"`
	USDMarketCap *float64 `json:"usd_market_cap"`
	USD24hVol    *float64 `json:"usd_24h_vol"`
	USD24hChange *float64 `json:"usd_24h_change"`
}

// GetSimplePricesResponse maps CoinGecko coin ids to their quotes.
type GetSimplePricesResponse map[string]SimplePriceEntry

package coincap

// GetAssetResponse wraps a single asset from /v2/assets/{id}. CoinCap encodes
// all numerics as decimal strings.
type GetAssetResponse struct {
	Data AssetData `json:"data"`
}

type AssetData struct {
	ID               string `json:"id"`
	Symbol           string `json:"symbol"`
	PriceUSD         string `json:"priceUsd"`
	MarketCapUSD     string `json:"marketCapUsd"`
	VolumeUSD24Hr    string `json:"volumeUsd24Hr"`
	ChangePercent24H string `json:"changePercent24Hr"`
}

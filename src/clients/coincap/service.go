package coincap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"cryptotracker/src/config"
	"cryptotracker/src/schemas"
	"cryptotracker/src/utils"
	"cryptotracker/src/utils/requests"
)

type ServiceClientI interface {
	GetAsset(ctx context.Context, id string) (*schemas.PriceQuote, error)
}

type ServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
}

// NewClient creates a new instance of the CoinCap service client, the
// fallback quote source when CoinGecko has no usable data for an asset.
func NewClient(cfg *config.Config) *ServiceClient {
	return &ServiceClient{
		API:     requests.NewExternalAPIService(10 * time.Second),
		BaseURL: cfg.ExternalClients.CoinCap.BaseURL,
	}
}

// GetAsset fetches a single asset quote by CoinCap asset id.
func (c *ServiceClient) GetAsset(ctx context.Context, id string) (*schemas.PriceQuote, error) {
	endpoint := fmt.Sprintf("%s/v2/assets/%s", c.BaseURL, id)

	resp, err := c.API.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, utils.NewHTTPError(resp.StatusCode, fmt.Sprintf("coincap: %s", resp.Status))
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var assetResponse GetAssetResponse
	err = json.Unmarshal(responseBody, &assetResponse)
	if err != nil {
		return nil, err
	}

	price, err := strconv.ParseFloat(assetResponse.Data.PriceUSD, 64)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("coincap: no usable price for %s", id)
	}

	quote := &schemas.PriceQuote{Price: price}
	if v, err := strconv.ParseFloat(assetResponse.Data.MarketCapUSD, 64); err == nil {
		quote.MarketCap = v
	}
	if v, err := strconv.ParseFloat(assetResponse.Data.VolumeUSD24Hr, 64); err == nil {
		quote.Volume24h = v
	}
	if v, err := strconv.ParseFloat(assetResponse.Data.ChangePercent24H, 64); err == nil {
		quote.PriceChange24h = v
	}
	return quote, nil
}

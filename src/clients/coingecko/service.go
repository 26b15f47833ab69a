package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"cryptotracker/src/config"
	"cryptotracker/src/schemas"
	"cryptotracker/src/utils"
	"cryptotracker/src/utils/requests"
)

type ServiceClientI interface {
	GetSimplePrices(ctx context.Context, ids []string) (map[string]schemas.PriceQuote, error)
}

type ServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
	APIKey  string
}

// NewClient creates a new instance of the CoinGecko service client.
func NewClient(cfg *config.Config) *ServiceClient {
	return &ServiceClient{
		API:     requests.NewExternalAPIService(10 * time.Second),
		BaseURL: cfg.ExternalClients.CoinGecko.BaseURL,
		APIKey:  cfg.ExternalClients.CoinGecko.APIKey,
	}
}

// GetSimplePrices fetches USD quotes for the given coin ids in one batch call.
func (c *ServiceClient) GetSimplePrices(ctx context.Context, ids []string) (map[string]schemas.PriceQuote, error) {
	endpoint := fmt.Sprintf("%s/simple/price", c.BaseURL)

	params := url.Values{}
	params.Add("ids", strings.Join(ids, ","))
	params.Add("vs_currencies", "usd")
	params.Add("include_market_cap", "true")
	params.Add("include_24hr_vol", "true")
	params.Add("include_24hr_change", "true")

	var headers map[string]string
	if c.APIKey != "" {
		headers = map[string]string{"x-cg-pro-api-key": c.APIKey}
	}

	resp, err := c.API.GetWithHeaders(ctx, endpoint, params, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, utils.NewHTTPError(resp.StatusCode, fmt.Sprintf("coingecko: %s", resp.Status))
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var priceResponse GetSimplePricesResponse
	err = json.Unmarshal(responseBody, &priceResponse)
	if err != nil {
		return nil, err
	}

	quotes := make(map[string]schemas.PriceQuote, len(priceResponse))
	for id, entry := range priceResponse {
		if entry.USD <= 0 {
			continue
		}
		q := schemas.PriceQuote{Price: entry.USD}
		if entry.USDMarketCap != nil {
			q.MarketCap = *entry.USDMarketCap
		}
		if entry.USD24hVol != nil {
			q.Volume24h = *entry.USD24hVol
		}
		if entry.USD24hChange != nil {
			q.PriceChange24h = *entry.USD24hChange
		}
		quotes[id] = q
	}
	return quotes, nil
}

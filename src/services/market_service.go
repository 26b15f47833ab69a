package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"cryptotracker/src/clients/coincap"
	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/repositories"
	"cryptotracker/src/schemas"
	"cryptotracker/src/utils"
)

// CacheKeyCryptoList is the shared-cache key for the asset list response,
// invalidated after every successful refresh.
const CacheKeyCryptoList = "crypto:list"

// coinGeckoIDs maps the tracked symbols to CoinGecko coin ids. The same ids
// double as CoinCap asset ids for the fallback source.
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"SHIB":  "shiba-inu",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"UNI":   "uniswap",
	"MATIC": "matic-network",
	"ATOM":  "cosmos",
}

// CacheInvalidator is the slice of the redis handler the refresh task needs.
type CacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

type MarketServiceI interface {
	RefreshPrices(ctx context.Context) (int, error)
}

// MarketService keeps asset prices fresh: a cron tick (or a user-triggered
// refresh) pulls quotes for every stale asset, updates the asset row and
// appends a price history snapshot. Failures are isolated per asset.
type MarketService struct {
	cryptos   repositories.CryptoRepository
	history   repositories.PriceHistoryRepository
	coinGecko coingecko.ServiceClientI
	coinCap   coincap.ServiceClientI
	cache     CacheInvalidator

	freshness  time.Duration
	limiter    *rate.Limiter
	refreshing atomic.Bool
}

func NewMarketService(
	cryptos repositories.CryptoRepository,
	history repositories.PriceHistoryRepository,
	coinGecko coingecko.ServiceClientI,
	coinCap coincap.ServiceClientI,
	cache CacheInvalidator,
	freshness time.Duration,
	requestsPerSec float64,
) *MarketService {
	if requestsPerSec <= 0 {
		requestsPerSec = 1
	}
	return &MarketService{
		cryptos:   cryptos,
		history:   history,
		coinGecko: coinGecko,
		coinCap:   coinCap,
		cache:     cache,
		freshness: freshness,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSec), 1),
	}
}

// RefreshPrices updates every asset whose last refresh is older than the
// freshness window and returns how many were updated. Overlapping runs are
// skipped rather than queued, so a slow upstream never stacks bursts.
func (s *MarketService) RefreshPrices(ctx context.Context) (int, error) {
	logger := utils.LoggerFromContext(ctx)

	if !s.refreshing.CompareAndSwap(false, true) {
		logger.Info("price refresh already in progress, skipping")
		return 0, nil
	}
	defer s.refreshing.Store(false)

	stale, err := s.cryptos.GetStale(ctx, s.freshness)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	var ids []string
	for _, crypto := range stale {
		if id, ok := coinGeckoIDs[crypto.Symbol]; ok {
			ids = append(ids, id)
		} else {
			logger.WithField("symbol", crypto.Symbol).Warn("no CoinGecko id mapping, skipping")
		}
	}

	quotes := map[string]schemas.PriceQuote{}
	if len(ids) > 0 {
		fetched, err := s.coinGecko.GetSimplePrices(ctx, ids)
		if err != nil {
			logger.WithError(err).Warn("CoinGecko batch request failed, relying on fallback source")
		} else {
			quotes = fetched
		}
	}

	updated := 0
	for _, crypto := range stale {
		id, ok := coinGeckoIDs[crypto.Symbol]
		if !ok {
			continue
		}

		quote, ok := quotes[id]
		if !ok {
			fallback, err := s.fetchFallback(ctx, id)
			if err != nil {
				logger.WithError(err).WithField("symbol", crypto.Symbol).Warn("both price sources failed, skipping asset")
				continue
			}
			quote = *fallback
		}

		if !plausiblePrice(crypto.Symbol, quote.Price) {
			logger.WithFields(logrus.Fields{"symbol": crypto.Symbol, "price": quote.Price}).
				Warn("suspicious price, skipping update")
			continue
		}

		if err := s.cryptos.UpdateMarketData(ctx, crypto.ID, repositories.MarketDataUpdate{
			Price:          quote.Price,
			MarketCap:      quote.MarketCap,
			Volume24h:      quote.Volume24h,
			PriceChange24h: quote.PriceChange24h,
		}); err != nil {
			logger.WithError(err).WithField("symbol", crypto.Symbol).Error("failed to update market data")
			continue
		}

		if err := s.history.Insert(ctx, crypto.ID, quote.Price, quote.MarketCap, quote.Volume24h); err != nil {
			logger.WithError(err).WithField("symbol", crypto.Symbol).Error("failed to append price history")
		}

		logger.WithFields(logrus.Fields{"symbol": crypto.Symbol, "price": quote.Price}).Info("updated price")
		updated++
	}

	if updated > 0 && s.cache != nil {
		if err := s.cache.Delete(ctx, CacheKeyCryptoList); err != nil {
			logger.WithError(err).Warn("failed to invalidate crypto list cache")
		}
	}
	return updated, nil
}

// fetchFallback makes one rate-limited attempt against the fallback source.
func (s *MarketService) fetchFallback(ctx context.Context, id string) (*schemas.PriceQuote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.coinCap.GetAsset(ctx, id)
}

// plausiblePrice rejects quotes that are wildly out of range for well-known
// assets before they poison stored valuations.
func plausiblePrice(symbol string, price float64) bool {
	if price <= 0 {
		return false
	}
	if symbol == "BTC" && (price < 10000 || price > 200000) {
		return false
	}
	return true
}

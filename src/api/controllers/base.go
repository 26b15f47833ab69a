package controllers

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"cryptotracker/src/clients/coincap"
	"cryptotracker/src/clients/coingecko"
	"cryptotracker/src/config"
	"cryptotracker/src/repositories"
	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
	"cryptotracker/src/utils"
)

// ResponseCache is the slice of the redis handler the controller uses for
// read-path caching. It may be absent; the controller then falls back to a
// per-process cache.
type ResponseCache interface {
	Get(ctx context.Context, key string, result interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Controller struct {
	Users      repositories.UserRepository
	Cryptos    repositories.CryptoRepository
	Portfolios repositories.PortfolioRepository
	History    repositories.PriceHistoryRepository

	Auth   services.AuthServiceI
	Market services.MarketServiceI

	TokenAuth *jwtauth.JWTAuth

	cache     ResponseCache
	listCache *utils.Cache[[]schemas.CryptoResponse]
	freshness time.Duration
	logger    *logrus.Logger
}

// NewController wires the durable repositories and the live market data
// clients. cache may be nil when redis is unreachable.
func NewController(cfg *config.Config, db *pgxpool.Pool, cache ResponseCache, logger *logrus.Logger) *Controller {
	users := repositories.NewUserRepository(db)
	cryptos := repositories.NewCryptoRepository(db)
	portfolios := repositories.NewPortfolioRepository(db)
	history := repositories.NewPriceHistoryRepository(db)
	return NewControllerWithRepositories(cfg, users, cryptos, portfolios, history, cache, logger)
}

// NewControllerWithRepositories is the seam used by tests to swap in the
// in-memory repositories.
func NewControllerWithRepositories(
	cfg *config.Config,
	users repositories.UserRepository,
	cryptos repositories.CryptoRepository,
	portfolios repositories.PortfolioRepository,
	history repositories.PriceHistoryRepository,
	cache ResponseCache,
	logger *logrus.Logger,
) *Controller {
	tokenAuth := jwtauth.New("HS256", []byte(cfg.Auth.JWTSecret), nil)

	tokenHours := cfg.Auth.TokenHours
	if tokenHours == 0 {
		tokenHours = 24 * 7
	}
	email := services.NewEmailSender(cfg, logger)
	auth := services.NewAuthService(users, tokenAuth, time.Duration(tokenHours)*time.Hour, email, cfg.Service.ClientURL)

	freshness := time.Duration(cfg.MarketData.FreshnessMinutes) * time.Minute
	if freshness == 0 {
		freshness = 5 * time.Minute
	}

	var invalidator services.CacheInvalidator
	if cache != nil {
		invalidator = cache
	}
	market := services.NewMarketService(
		cryptos, history,
		coingecko.NewClient(cfg), coincap.NewClient(cfg),
		invalidator, freshness, cfg.MarketData.RequestsPerSec)

	return &Controller{
		Users:      users,
		Cryptos:    cryptos,
		Portfolios: portfolios,
		History:    history,
		Auth:       auth,
		Market:     market,
		TokenAuth:  tokenAuth,
		cache:      cache,
		listCache:  utils.NewCache[[]schemas.CryptoResponse](),
		freshness:  freshness,
		logger:     logger,
	}
}

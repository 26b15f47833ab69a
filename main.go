package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"cryptotracker/src/api"
	"cryptotracker/src/api/controllers"
	"cryptotracker/src/config"
	"cryptotracker/src/database"
	"cryptotracker/src/scheduler"
	"cryptotracker/src/utils"
	redis_utils "cryptotracker/src/utils/redis"
)

func main() {
	_ = godotenv.Load()

	logger := utils.NewLogger(logrus.InfoLevel, false, "")

	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		logger.WithError(err).Fatal("Error while loading config")
	}

	errC, err := run(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Couldn't run")
	}

	if err := <-errC; err != nil {
		logger.WithError(err).Error("Error while running")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) (<-chan error, error) {
	errC := make(chan error, 1)

	pool, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	// Redis is a read cache only; the server stays up without it.
	var cache controllers.ResponseCache
	redisHandler, err := redis_utils.NewRedisHandler(cfg)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, serving without shared cache")
	} else {
		cache = redisHandler
	}

	controller := controllers.NewController(cfg, pool, cache, logger)
	server := api.NewServer(cfg, controller)
	httpServer := api.NewHTTPServer(server)

	cronSpec := cfg.MarketData.CronSpec
	if cronSpec == "" {
		cronSpec = "@every 5m"
	}
	_, err = scheduler.NewScheduledTask(cronSpec, func() {
		ctx := utils.WithLogger(context.Background(), logger)
		if _, err := controller.Market.RefreshPrices(ctx); err != nil {
			logger.WithError(err).Error("scheduled price refresh failed")
		}
	})
	if err != nil {
		return nil, err
	}

	// Prime prices right away so fresh deployments don't serve nulls until
	// the first cron tick.
	go func() {
		ctx := utils.WithLogger(context.Background(), logger)
		if count, err := controller.Market.RefreshPrices(ctx); err != nil {
			logger.WithError(err).Error("initial price refresh failed")
		} else if count > 0 {
			logger.WithField("updated", count).Info("initial price refresh done")
		}
	}()

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or
		// Close, the returned error is ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()
	return errC, nil
}

package controllers_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/src/api/controllers"
	"cryptotracker/src/config"
	"cryptotracker/src/models"
	"cryptotracker/src/repositories"
	"cryptotracker/src/schemas"
)

// vanishingPortfolioRepo answers the ownership check but reports the row gone
// by the time the write lands, like a concurrent delete would.
type vanishingPortfolioRepo struct {
	repositories.PortfolioRepository
	entry *models.PortfolioEntry
}

func (r *vanishingPortfolioRepo) GetByIDAndUser(_ context.Context, _, _ int64) (*models.PortfolioEntry, error) {
	return r.entry, nil
}

func (r *vanishingPortfolioRepo) Update(_ context.Context, _, _ int64, _, _ float64, _ *string) (*models.PortfolioEntry, error) {
	return nil, nil
}

func (r *vanishingPortfolioRepo) Delete(_ context.Context, _, _ int64) error {
	return pgx.ErrNoRows
}

func newRacingController(t *testing.T) *controllers.Controller {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	users := repositories.NewMemoryUserRepository()
	cryptos := repositories.NewMemoryCryptoRepository()
	history := repositories.NewMemoryPriceHistoryRepository(cryptos)

	btc, err := cryptos.Create(context.Background(), "BTC", "Bitcoin")
	require.NoError(t, err)

	ctrl := controllers.NewControllerWithRepositories(cfg, users, cryptos,
		repositories.NewMemoryPortfolioRepository(cryptos), history, nil, logger)
	ctrl.Portfolios = &vanishingPortfolioRepo{entry: &models.PortfolioEntry{
		ID: 1, UserID: 1, CryptoID: btc.ID, Amount: 1, PurchasePrice: 50000,
	}}
	return ctrl
}

func TestUpdateHoldingConcurrentlyDeleted(t *testing.T) {
	ctrl := newRacingController(t)

	_, err := ctrl.UpdateHolding(context.Background(), 1, 1, &schemas.UpdateHoldingRequest{
		Amount: 2, PurchasePrice: 45000,
	})
	assert.EqualError(t, err, "Portfolio entry not found")
}

func TestDeleteHoldingConcurrentlyDeleted(t *testing.T) {
	ctrl := newRacingController(t)

	_, err := ctrl.DeleteHolding(context.Background(), 1, 1)
	assert.EqualError(t, err, "Portfolio entry not found")
}

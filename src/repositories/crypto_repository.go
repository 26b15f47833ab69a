package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptotracker/src/models"
)

type CryptoRepository interface {
	GetAll(ctx context.Context) ([]models.Cryptocurrency, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Cryptocurrency, error)
	GetByID(ctx context.Context, id int64) (*models.Cryptocurrency, error)
	Create(ctx context.Context, symbol, name string) (*models.Cryptocurrency, error)
	// GetStale returns the assets whose last refresh is older than the
	// freshness window, so the refresh task can bound upstream call volume.
	GetStale(ctx context.Context, window time.Duration) ([]models.Cryptocurrency, error)
	UpdateMarketData(ctx context.Context, id int64, quote MarketDataUpdate) error
}

// MarketDataUpdate carries one refreshed observation for an asset.
type MarketDataUpdate struct {
	Price          float64
	MarketCap      float64
	Volume24h      float64
	PriceChange24h float64
}

type cryptoRepo struct {
	db *pgxpool.Pool
}

func NewCryptoRepository(db *pgxpool.Pool) CryptoRepository {
	return &cryptoRepo{db: db}
}

const cryptoColumns = `id, symbol, name, current_price, market_cap, volume_24h, price_change_24h, last_updated`

func scanCrypto(row pgx.Row) (*models.Cryptocurrency, error) {
	var c models.Cryptocurrency
	err := row.Scan(&c.ID, &c.Symbol, &c.Name, &c.CurrentPrice,
		&c.MarketCap, &c.Volume24h, &c.PriceChange24h, &c.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cryptoRepo) GetAll(ctx context.Context) ([]models.Cryptocurrency, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+cryptoColumns+`
		FROM cryptocurrencies
		ORDER BY market_cap DESC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cryptos []models.Cryptocurrency
	for rows.Next() {
		var c models.Cryptocurrency
		if err := rows.Scan(&c.ID, &c.Symbol, &c.Name, &c.CurrentPrice,
			&c.MarketCap, &c.Volume24h, &c.PriceChange24h, &c.LastUpdated); err != nil {
			return nil, err
		}
		cryptos = append(cryptos, c)
	}
	return cryptos, rows.Err()
}

func (r *cryptoRepo) GetBySymbol(ctx context.Context, symbol string) (*models.Cryptocurrency, error) {
	return scanCrypto(r.db.QueryRow(ctx,
		`SELECT `+cryptoColumns+` FROM cryptocurrencies WHERE symbol = $1`,
		strings.ToUpper(symbol)))
}

func (r *cryptoRepo) GetByID(ctx context.Context, id int64) (*models.Cryptocurrency, error) {
	return scanCrypto(r.db.QueryRow(ctx,
		`SELECT `+cryptoColumns+` FROM cryptocurrencies WHERE id = $1`, id))
}

func (r *cryptoRepo) Create(ctx context.Context, symbol, name string) (*models.Cryptocurrency, error) {
	return scanCrypto(r.db.QueryRow(ctx,
		`INSERT INTO cryptocurrencies (symbol, name)
		VALUES ($1, $2)
		RETURNING `+cryptoColumns,
		strings.ToUpper(symbol), name))
}

func (r *cryptoRepo) GetStale(ctx context.Context, window time.Duration) ([]models.Cryptocurrency, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+cryptoColumns+`
		FROM cryptocurrencies
		WHERE last_updated < now() - make_interval(secs => $1)`,
		window.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cryptos []models.Cryptocurrency
	for rows.Next() {
		var c models.Cryptocurrency
		if err := rows.Scan(&c.ID, &c.Symbol, &c.Name, &c.CurrentPrice,
			&c.MarketCap, &c.Volume24h, &c.PriceChange24h, &c.LastUpdated); err != nil {
			return nil, err
		}
		cryptos = append(cryptos, c)
	}
	return cryptos, rows.Err()
}

func (r *cryptoRepo) UpdateMarketData(ctx context.Context, id int64, quote MarketDataUpdate) error {
	_, err := r.db.Exec(ctx,
		`UPDATE cryptocurrencies
		SET current_price = $1,
			market_cap = $2,
			volume_24h = $3,
			price_change_24h = $4,
			last_updated = now()
		WHERE id = $5`,
		quote.Price, quote.MarketCap, quote.Volume24h, quote.PriceChange24h, id)
	return err
}

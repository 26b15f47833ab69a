package repositories

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"cryptotracker/src/models"
)

type PriceHistoryRepository interface {
	Insert(ctx context.Context, cryptoID int64, price, marketCap, volume24h float64) error
	GetBySymbol(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

type priceHistoryRepo struct {
	db *pgxpool.Pool
}

func NewPriceHistoryRepository(db *pgxpool.Pool) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) Insert(ctx context.Context, cryptoID int64, price, marketCap, volume24h float64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO price_history (crypto_id, price, market_cap, volume_24h)
		VALUES ($1, $2, $3, $4)`,
		cryptoID, price, marketCap, volume24h)
	return err
}

func (r *priceHistoryRepo) GetBySymbol(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ph.id, ph.crypto_id, ph.price, ph.market_cap, ph.volume_24h, ph.recorded_at
		FROM price_history ph
		JOIN cryptocurrencies c ON ph.crypto_id = c.id
		WHERE c.symbol = $1 AND ph.recorded_at >= now() - make_interval(days => $2)
		ORDER BY ph.recorded_at ASC`,
		strings.ToUpper(symbol), days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.ID, &p.CryptoID, &p.Price, &p.MarketCap, &p.Volume24h, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

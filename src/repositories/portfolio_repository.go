package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptotracker/src/models"
	"cryptotracker/src/valuation"
)

type PortfolioRepository interface {
	GetByUserID(ctx context.Context, userID int64) ([]models.PortfolioEntryWithCrypto, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (*models.PortfolioEntry, error)
	// AddPurchase records a purchase for (user, asset). When a position
	// already exists it is merged with the weighted-average cost basis;
	// the read and write happen inside one transaction with the existing
	// row locked, so concurrent purchases of the same asset serialize.
	AddPurchase(ctx context.Context, userID, cryptoID int64, amount, price float64, notes *string) (*models.PortfolioEntry, bool, error)
	Update(ctx context.Context, id, userID int64, amount, price float64, notes *string) (*models.PortfolioEntry, error)
	Delete(ctx context.Context, id, userID int64) error
}

type portfolioRepo struct {
	db *pgxpool.Pool
}

func NewPortfolioRepository(db *pgxpool.Pool) PortfolioRepository {
	return &portfolioRepo{db: db}
}

const portfolioColumns = `id, user_id, crypto_id, amount, purchase_price, purchase_date, notes, created_at, updated_at`

func scanPortfolioEntry(row pgx.Row) (*models.PortfolioEntry, error) {
	var e models.PortfolioEntry
	err := row.Scan(&e.ID, &e.UserID, &e.CryptoID, &e.Amount, &e.PurchasePrice,
		&e.PurchaseDate, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *portfolioRepo) GetByUserID(ctx context.Context, userID int64) ([]models.PortfolioEntryWithCrypto, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.user_id, p.crypto_id, p.amount, p.purchase_price, p.purchase_date,
			p.notes, p.created_at, p.updated_at, c.symbol, c.name, c.current_price
		FROM portfolios p
		JOIN cryptocurrencies c ON p.crypto_id = c.id
		WHERE p.user_id = $1
		ORDER BY p.amount * COALESCE(c.current_price, 0) DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.PortfolioEntryWithCrypto
	for rows.Next() {
		var e models.PortfolioEntryWithCrypto
		if err := rows.Scan(&e.ID, &e.UserID, &e.CryptoID, &e.Amount, &e.PurchasePrice,
			&e.PurchaseDate, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
			&e.Symbol, &e.Name, &e.CurrentPrice); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *portfolioRepo) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.PortfolioEntry, error) {
	return scanPortfolioEntry(r.db.QueryRow(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1 AND user_id = $2`,
		id, userID))
}

func (r *portfolioRepo) AddPurchase(ctx context.Context, userID, cryptoID int64, amount, price float64, notes *string) (*models.PortfolioEntry, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var existing *valuation.Position
	var pos valuation.Position
	err = tx.QueryRow(ctx,
		`SELECT amount, purchase_price FROM portfolios
		WHERE user_id = $1 AND crypto_id = $2
		FOR UPDATE`,
		userID, cryptoID).Scan(&pos.Amount, &pos.PurchasePrice)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		existing = nil
	case err != nil:
		return nil, false, err
	default:
		existing = &pos
	}

	merged, err := valuation.MergePurchase(existing, amount, price)
	if err != nil {
		return nil, false, err
	}

	var entry *models.PortfolioEntry
	if existing == nil {
		entry, err = scanPortfolioEntry(tx.QueryRow(ctx,
			`INSERT INTO portfolios (user_id, crypto_id, amount, purchase_price, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+portfolioColumns,
			userID, cryptoID, merged.Amount, merged.PurchasePrice, notes))
	} else {
		entry, err = scanPortfolioEntry(tx.QueryRow(ctx,
			`UPDATE portfolios
			SET amount = $1, purchase_price = $2, notes = $3, updated_at = now()
			WHERE user_id = $4 AND crypto_id = $5
			RETURNING `+portfolioColumns,
			merged.Amount, merged.PurchasePrice, notes, userID, cryptoID))
	}
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return entry, existing == nil, nil
}

func (r *portfolioRepo) Update(ctx context.Context, id, userID int64, amount, price float64, notes *string) (*models.PortfolioEntry, error) {
	return scanPortfolioEntry(r.db.QueryRow(ctx,
		`UPDATE portfolios
		SET amount = $1, purchase_price = $2, notes = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5
		RETURNING `+portfolioColumns,
		amount, price, notes, id, userID))
}

func (r *portfolioRepo) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM portfolios WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

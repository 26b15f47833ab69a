package models

import "time"

// PortfolioEntry is a user's merged position in one asset. The table enforces
// UNIQUE(user_id, crypto_id): a second purchase of the same asset folds into
// the existing row via the weighted-average merge.
type PortfolioEntry struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	CryptoID      int64     `db:"crypto_id"`
	Amount        float64   `db:"amount"`
	PurchasePrice float64   `db:"purchase_price"`
	PurchaseDate  time.Time `db:"purchase_date"`
	Notes         *string   `db:"notes"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// PortfolioEntryWithCrypto joins an entry with its asset's identity and the
// last refreshed market price. CurrentPrice is nil until the first refresh
// succeeds for the asset.
type PortfolioEntryWithCrypto struct {
	PortfolioEntry
	Symbol       string   `db:"symbol"`
	Name         string   `db:"name"`
	CurrentPrice *float64 `db:"current_price"`
}

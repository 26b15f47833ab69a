package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"cryptotracker/src/models"
	"cryptotracker/src/valuation"
)

// In-memory implementations of the repository interfaces. They back the
// service and handler tests; state lives for the life of the process only.

type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: map[int64]models.User{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, username, email, passwordHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	u := models.User{
		ID:           r.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.nextID++
	r.users[u.ID] = u
	return &u, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByIdentifier(_ context.Context, usernameOrEmail string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == usernameOrEmail || u.Email == usernameOrEmail {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) SetResetToken(_ context.Context, email, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.Email == email {
			u.ResetToken = &token
			u.ResetTokenExpires = &expires
			u.UpdatedAt = time.Now()
			r.users[id] = u
		}
	}
	return nil
}

func (r *MemoryUserRepository) GetByResetToken(_ context.Context, token string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(time.Now()) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = passwordHash
		u.ResetToken = nil
		u.ResetTokenExpires = nil
		u.UpdatedAt = time.Now()
		r.users[id] = u
	}
	return nil
}

type MemoryCryptoRepository struct {
	mu      sync.RWMutex
	nextID  int64
	cryptos map[int64]models.Cryptocurrency
}

func NewMemoryCryptoRepository() *MemoryCryptoRepository {
	return &MemoryCryptoRepository{nextID: 1, cryptos: map[int64]models.Cryptocurrency{}}
}

func (r *MemoryCryptoRepository) GetAll(_ context.Context) ([]models.Cryptocurrency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Cryptocurrency, 0, len(r.cryptos))
	for _, c := range r.cryptos {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		mi, mj := 0.0, 0.0
		if out[i].MarketCap != nil {
			mi = *out[i].MarketCap
		}
		if out[j].MarketCap != nil {
			mj = *out[j].MarketCap
		}
		return mi > mj
	})
	return out, nil
}

func (r *MemoryCryptoRepository) GetBySymbol(_ context.Context, symbol string) (*models.Cryptocurrency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	symbol = strings.ToUpper(symbol)
	for _, c := range r.cryptos {
		if c.Symbol == symbol {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *MemoryCryptoRepository) GetByID(_ context.Context, id int64) (*models.Cryptocurrency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.cryptos[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *MemoryCryptoRepository) Create(_ context.Context, symbol, name string) (*models.Cryptocurrency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := models.Cryptocurrency{
		ID:          r.nextID,
		Symbol:      strings.ToUpper(symbol),
		Name:        name,
		LastUpdated: time.Time{},
	}
	r.nextID++
	r.cryptos[c.ID] = c
	return &c, nil
}

func (r *MemoryCryptoRepository) GetStale(_ context.Context, window time.Duration) ([]models.Cryptocurrency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := time.Now().Add(-window)
	var out []models.Cryptocurrency
	for _, c := range r.cryptos {
		if c.LastUpdated.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryCryptoRepository) UpdateMarketData(_ context.Context, id int64, quote MarketDataUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cryptos[id]; ok {
		price, mcap, vol, change := quote.Price, quote.MarketCap, quote.Volume24h, quote.PriceChange24h
		c.CurrentPrice = &price
		c.MarketCap = &mcap
		c.Volume24h = &vol
		c.PriceChange24h = &change
		c.LastUpdated = time.Now()
		r.cryptos[id] = c
	}
	return nil
}

type MemoryPortfolioRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]models.PortfolioEntry
	cryptos *MemoryCryptoRepository
}

// NewMemoryPortfolioRepository joins against the given crypto repository when
// listing, mirroring the SQL join in the durable implementation.
func NewMemoryPortfolioRepository(cryptos *MemoryCryptoRepository) *MemoryPortfolioRepository {
	return &MemoryPortfolioRepository{nextID: 1, entries: map[int64]models.PortfolioEntry{}, cryptos: cryptos}
}

func (r *MemoryPortfolioRepository) GetByUserID(ctx context.Context, userID int64) ([]models.PortfolioEntryWithCrypto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PortfolioEntryWithCrypto
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		joined := models.PortfolioEntryWithCrypto{PortfolioEntry: e}
		r.cryptos.mu.RLock()
		if c, ok := r.cryptos.cryptos[e.CryptoID]; ok {
			joined.Symbol = c.Symbol
			joined.Name = c.Name
			joined.CurrentPrice = c.CurrentPrice
		}
		r.cryptos.mu.RUnlock()
		out = append(out, joined)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryPortfolioRepository) GetByIDAndUser(_ context.Context, id, userID int64) (*models.PortfolioEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok && e.UserID == userID {
		return &e, nil
	}
	return nil, nil
}

func (r *MemoryPortfolioRepository) AddPurchase(_ context.Context, userID, cryptoID int64, amount, price float64, notes *string) (*models.PortfolioEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.entries {
		if e.UserID == userID && e.CryptoID == cryptoID {
			merged, err := valuation.MergePurchase(
				&valuation.Position{Amount: e.Amount, PurchasePrice: e.PurchasePrice},
				amount, price)
			if err != nil {
				return nil, false, err
			}
			e.Amount = merged.Amount
			e.PurchasePrice = merged.PurchasePrice
			e.Notes = notes
			e.UpdatedAt = time.Now()
			r.entries[id] = e
			return &e, false, nil
		}
	}

	merged, err := valuation.MergePurchase(nil, amount, price)
	if err != nil {
		return nil, false, err
	}
	now := time.Now()
	e := models.PortfolioEntry{
		ID:            r.nextID,
		UserID:        userID,
		CryptoID:      cryptoID,
		Amount:        merged.Amount,
		PurchasePrice: merged.PurchasePrice,
		PurchaseDate:  now,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.nextID++
	r.entries[e.ID] = e
	return &e, true, nil
}

func (r *MemoryPortfolioRepository) Update(_ context.Context, id, userID int64, amount, price float64, notes *string) (*models.PortfolioEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return nil, nil
	}
	e.Amount = amount
	e.PurchasePrice = price
	e.Notes = notes
	e.UpdatedAt = time.Now()
	r.entries[id] = e
	return &e, nil
}

func (r *MemoryPortfolioRepository) Delete(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok && e.UserID == userID {
		delete(r.entries, id)
		return nil
	}
	return pgx.ErrNoRows
}

type MemoryPriceHistoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	points  []models.PricePoint
	cryptos *MemoryCryptoRepository
}

func NewMemoryPriceHistoryRepository(cryptos *MemoryCryptoRepository) *MemoryPriceHistoryRepository {
	return &MemoryPriceHistoryRepository{nextID: 1, cryptos: cryptos}
}

func (r *MemoryPriceHistoryRepository) Insert(_ context.Context, cryptoID int64, price, marketCap, volume24h float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points = append(r.points, models.PricePoint{
		ID:         r.nextID,
		CryptoID:   cryptoID,
		Price:      price,
		MarketCap:  marketCap,
		Volume24h:  volume24h,
		RecordedAt: time.Now(),
	})
	r.nextID++
	return nil
}

func (r *MemoryPriceHistoryRepository) GetBySymbol(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	c, err := r.cryptos.GetBySymbol(ctx, symbol)
	if err != nil || c == nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -days)
	var out []models.PricePoint
	for _, p := range r.points {
		if p.CryptoID == c.ID && !p.RecordedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

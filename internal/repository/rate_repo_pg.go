package repository

import (
	"context"

	"github.com/coverwing/membership/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RateRepository interface {
	UpsertRates(ctx context.Context, rates []domain.ExchangeRate) error
	ListRates(ctx context.Context) ([]domain.ExchangeRate, error)
	ListCountryBasePrices(ctx context.Context) ([]domain.CountryBasePrice, error)
}

type PGRateRepository struct {
	db *pgxpool.Pool
}

func NewRateRepository(db *pgxpool.Pool) RateRepository {
	return &PGRateRepository{db: db}
}

func (r *PGRateRepository) UpsertRates(ctx context.Context, rates []domain.ExchangeRate) error {
	for _, rate := range rates {
		if _, err := r.db.Exec(ctx, `INSERT INTO exchange_rates (currency, rate, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (currency) DO UPDATE SET rate=EXCLUDED.rate, updated_at=now()`,
			rate.Currency, rate.Rate); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRateRepository) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rows, err := r.db.Query(ctx, `SELECT currency, rate, updated_at FROM exchange_rates ORDER BY currency`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		var rate domain.ExchangeRate
		if err := rows.Scan(&rate.Currency, &rate.Rate, &rate.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func (r *PGRateRepository) ListCountryBasePrices(ctx context.Context) ([]domain.CountryBasePrice, error) {
	rows, err := r.db.Query(ctx, `SELECT country_id, amount FROM country_base_prices`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []domain.CountryBasePrice
	for rows.Next() {
		var o domain.CountryBasePrice
		if err := rows.Scan(&o.CountryID, &o.Amount); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

var _ RateRepository = (*PGRateRepository)(nil)

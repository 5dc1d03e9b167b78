package rates

import (
	"context"

	"github.com/coverwing/membership/internal/domain"
	"github.com/coverwing/membership/internal/repository"
)

type RatesUseCase interface {
	Refresh(ctx context.Context) (int, error)
	List(ctx context.Context) ([]domain.ExchangeRate, error)
}

type Provider interface {
	Fetch(ctx context.Context) ([]domain.ExchangeRate, error)
}

type Cache interface {
	GetRates(ctx context.Context) (map[string]float64, error)
	SetRates(ctx context.Context, rates map[string]float64) error
}

type RateService struct {
	provider Provider
	repo     repository.RateRepository
	cache    Cache
}

func NewRateService(provider Provider, repo repository.RateRepository, cache Cache) *RateService {
	return &RateService{provider: provider, repo: repo, cache: cache}
}

// Refresh pulls the current GBP-base rates, upserts them keyed by currency
// code and primes the cache. A provider failure leaves the stored rates
// untouched; the next scheduled run tries again.
func (s *RateService) Refresh(ctx context.Context) (int, error) {
	fetched, err := s.provider.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.repo.UpsertRates(ctx, fetched); err != nil {
		return 0, err
	}

	if s.cache != nil {
		byCurrency := make(map[string]float64, len(fetched))
		for _, r := range fetched {
			byCurrency[r.Currency] = r.Rate
		}
		_ = s.cache.SetRates(ctx, byCurrency)
	}
	return len(fetched), nil
}

func (s *RateService) List(ctx context.Context) ([]domain.ExchangeRate, error) {
	return s.repo.ListRates(ctx)
}

var _ RatesUseCase = (*RateService)(nil)

package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coverwing/membership/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

func (c *RedisCache) GetCountryBasePrices(ctx context.Context) (map[string]int64, error) {
	data, err := c.client.Get(ctx, countryBasePricesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var prices map[string]int64
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

func (c *RedisCache) SetCountryBasePrices(ctx context.Context, prices map[string]int64) error {
	payload, err := json.Marshal(prices)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, countryBasePricesKey(), payload, c.ttl).Err()
}

func (c *RedisCache) GetRates(ctx context.Context) (map[string]float64, error) {
	data, err := c.client.Get(ctx, ratesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rates map[string]float64
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

func (c *RedisCache) SetRates(ctx context.Context, rates map[string]float64) error {
	payload, err := json.Marshal(rates)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ratesKey(), payload, c.ttl).Err()
}

func countryBasePricesKey() string {
	return "cache:country_base_prices"
}

func ratesKey() string {
	return "cache:exchange_rates"
}

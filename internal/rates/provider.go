package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coverwing/membership/config"
	"github.com/coverwing/membership/internal/domain"
)

// Provider fetches exchange rates against a GBP base from the external
// rates service.
type Provider struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewProvider(cfg config.RatesConfig) *Provider {
	return &Provider{baseURL: cfg.BaseURL, apiKey: cfg.APIKey, http: http.DefaultClient}
}

func (p *Provider) Fetch(ctx context.Context) ([]domain.ExchangeRate, error) {
	endpoint := fmt.Sprintf("%s/latest?base=GBP&apikey=%s", p.baseURL, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates provider returned %d", resp.StatusCode)
	}

	var out struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	rates := make([]domain.ExchangeRate, 0, len(out.Rates))
	for currency, rate := range out.Rates {
		rates = append(rates, domain.ExchangeRate{Currency: currency, Rate: rate})
	}
	return rates, nil
}

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coverwing/membership/config"
)

// Client talks to the address-lookup provider. Timeouts are whatever the
// default HTTP client does; the provider is only hit from interactive
// autocomplete requests.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type Prediction struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

type Place struct {
	PlaceID          string `json:"place_id"`
	FormattedAddress string `json:"formatted_address"`
	CountryCode      string `json:"country_code"`
	PostalCode       string `json:"postal_code"`
}

func NewClient(cfg config.GeoConfig) *Client {
	return &Client{baseURL: cfg.BaseURL, apiKey: cfg.APIKey, http: http.DefaultClient}
}

func (c *Client) Autocomplete(ctx context.Context, query string) ([]Prediction, error) {
	endpoint := fmt.Sprintf("%s/autocomplete?input=%s&key=%s", c.baseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))
	var out struct {
		Predictions []Prediction `json:"predictions"`
	}
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out.Predictions, nil
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*Place, error) {
	endpoint := fmt.Sprintf("%s/place/%s?key=%s", c.baseURL, url.PathEscape(placeID), url.QueryEscape(c.apiKey))
	var out struct {
		Result Place `json:"result"`
	}
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geo provider returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

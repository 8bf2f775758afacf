package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Detail is the restaurant record backing a place id. The lookup itself is an
// external collaborator; this package only defines the contract and a plain
// HTTP implementation of it.
type Detail struct {
	PlaceID  string   `json:"placeId"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Cuisine  string   `json:"cuisine"`
	Rating   *float64 `json:"rating,omitempty"`
	Website  string   `json:"website,omitempty"`
	Phone    string   `json:"phone,omitempty"`
}

type Lookup interface {
	PlaceDetails(ctx context.Context, placeID string) (Detail, error)
}

// Searcher finds places by free text. The deeplink fallback adapter uses it
// to surface suggestions when no platform integration has inventory.
type Searcher interface {
	SearchPlaces(ctx context.Context, term, location string) ([]Detail, error)
}

// Client fetches place details over HTTP from the configured details service.
type Client struct {
	hc   *http.Client
	base string
	key  string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		hc:   &http.Client{Timeout: 10 * time.Second},
		base: strings.TrimRight(baseURL, "/"),
		key:  apiKey,
	}
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string) (Detail, error) {
	if placeID == "" {
		return Detail{}, fmt.Errorf("place id required")
	}
	u := c.base + "/v1/places/" + url.PathEscape(placeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Detail{}, err
	}
	if c.key != "" {
		req.Header.Set("authorization", "Bearer "+c.key)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return Detail{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Detail{}, fmt.Errorf("places lookup http %d: %s", resp.StatusCode, string(body))
	}
	var d Detail
	if err := json.Unmarshal(body, &d); err != nil {
		return Detail{}, fmt.Errorf("places parse: %w", err)
	}
	if d.PlaceID == "" {
		d.PlaceID = placeID
	}
	return d, nil
}

func (c *Client) SearchPlaces(ctx context.Context, term, location string) ([]Detail, error) {
	q := url.Values{}
	q.Set("term", term)
	q.Set("location", location)
	u := c.base + "/v1/places/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.key != "" {
		req.Header.Set("authorization", "Bearer "+c.key)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("places search http %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Results []Detail `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("places parse: %w", err)
	}
	return parsed.Results, nil
}

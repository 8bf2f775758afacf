package resy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/chateshreyas231/dineasy-sub000/internal/domain/monitor"
	"github.com/chateshreyas231/dineasy-sub000/internal/domain/search"
)

const defaultBaseURL = "https://api.resy.com"

type Config struct {
	APIKey    string
	AuthToken string
	BaseURL   string
}

// Adapter is a minimal Resy API client following the request flow used by
// resy-cli: venue search, then /4/find for day availability. It is
// verified-capable.
type Adapter struct {
	hc   *http.Client
	cfg  Config
	base string
}

func New(cfg Config) *Adapter {
	base := defaultBaseURL
	if strings.TrimSpace(cfg.BaseURL) != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Adapter{
		hc:   &http.Client{Timeout: 15 * time.Second},
		cfg:  cfg,
		base: base,
	}
}

func (a *Adapter) Name() string { return "resy" }

func (a *Adapter) Enabled() bool {
	return strings.TrimSpace(a.cfg.APIKey) != "" && strings.TrimSpace(a.cfg.AuthToken) != ""
}

type venueSearchResponse struct {
	Search struct {
		Hits []struct {
			ID struct {
				Resy int64 `json:"resy"`
			} `json:"id"`
			Name         string   `json:"name"`
			Neighborhood string   `json:"neighborhood"`
			Locality     string   `json:"locality"`
			CuisineList  []string `json:"cuisine"`
			Rating       *float64 `json:"rating"`
			PriceRange   int      `json:"price_range"`
			URLSlug      string   `json:"url_slug"`
		} `json:"hits"`
	} `json:"search"`
}

func (a *Adapter) SearchAvailability(ctx context.Context, intent search.QueryIntent) ([]search.RestaurantOption, error) {
	if intent.Location == "" {
		return nil, errors.New("location is required")
	}
	term := strings.TrimSpace(intent.Cuisine + " " + intent.Location)

	payload := map[string]any{
		"query":    term,
		"per_page": 20,
		"types":    []string{"venue"},
	}
	b, _ := json.Marshal(payload)
	_, status, body, err := a.do(ctx, http.MethodPost, "/3/venuesearch/search", "application/json", nil, b)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("resy venue search failed (status=%d)", status)
	}

	var res venueSearchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("resy parse venue search: %w", err)
	}

	out := make([]search.RestaurantOption, 0, len(res.Search.Hits))
	for _, h := range res.Search.Hits {
		location := h.Neighborhood
		if location == "" {
			location = h.Locality
		}
		cuisine := ""
		if len(h.CuisineList) > 0 {
			cuisine = h.CuisineList[0]
		}
		out = append(out, search.RestaurantOption{
			Name:         h.Name,
			Platform:     "Resy",
			DateTime:     intent.DateTime,
			PartySize:    intent.PartySize,
			Cuisine:      cuisine,
			Location:     location,
			Rating:       h.Rating,
			RestaurantID: strconv.FormatInt(h.ID.Resy, 10),
			PriceRange:   strings.Repeat("$", maxInt(h.PriceRange, 1)),
			BookingLink:  fmt.Sprintf("https://resy.com/cities/%s?date=%s&seats=%d", h.URLSlug, intent.DateTime.Format("2006-01-02"), intent.PartySize),
		})
	}
	return out, nil
}

type findResponse struct {
	Results struct {
		Venues []struct {
			Slots []struct {
				Date struct {
					Start string `json:"start"`
				} `json:"date"`
				Config struct {
					Type  string `json:"type"`
					Token string `json:"token"`
				} `json:"config"`
			} `json:"slots"`
		} `json:"venues"`
	} `json:"results"`
}

func (a *Adapter) GetAvailability(ctx context.Context, req monitor.AvailabilityRequest) ([]monitor.AvailabilitySlot, error) {
	if req.PlaceID == "" {
		return nil, errors.New("venue id is required")
	}
	params := map[string]string{
		"party_size": strconv.Itoa(req.PartySize),
		"venue_id":   req.PlaceID,
		"day":        req.WindowStart.Format("2006-01-02"),
		// deprecated but still required by the endpoint
		"lat":  "0",
		"long": "0",
	}
	_, status, body, err := a.do(ctx, http.MethodGet, "/4/find", "", params, nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("resy find failed (status=%d)", status)
	}

	var res findResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("resy parse find: %w", err)
	}
	if len(res.Results.Venues) == 0 {
		return nil, nil
	}

	var out []monitor.AvailabilitySlot
	for _, s := range res.Results.Venues[0].Slots {
		// slot start is "YYYY-MM-DD HH:MM:SS" in venue-local time
		t, err := time.Parse("2006-01-02 15:04:05", s.Date.Start)
		if err != nil {
			continue
		}
		out = append(out, monitor.AvailabilitySlot{
			DateTime: t,
			Verified: true,
			Provider: a.Name(),
			Metadata: map[string]string{
				"configType":  s.Config.Type,
				"configToken": s.Config.Token,
			},
		})
	}
	return out, nil
}

func (a *Adapter) do(ctx context.Context, method, path, contentType string, query map[string]string, body []byte) (*http.Response, int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, nil, err
	}
	req.Header.Add("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36")
	req.Header.Add("origin", "https://resy.com")
	req.Header.Add("referrer", "https://resy.com")
	req.Header.Add("x-origin", "https://resy.com")
	req.Header.Add("cache-control", "no-cache")
	if contentType != "" {
		req.Header.Add("content-type", contentType)
	}
	req.Header.Add("authorization", fmt.Sprintf(`ResyAPI api_key="%s"`, a.cfg.APIKey))
	req.Header.Add("x-resy-auth-token", a.cfg.AuthToken)
	req.Header.Add("x-resy-universal-auth", a.cfg.AuthToken)

	if query != nil {
		q := req.URL.Query()
		for k, v := range query {
			q.Add(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	res, err := a.hc.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res, res.StatusCode, nil, err
	}
	return res, res.StatusCode, b, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

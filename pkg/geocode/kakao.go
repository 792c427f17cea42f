package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelternet/shelterbot/internal/models"
)

// ErrNotFound means the lookup ran fine but returned zero candidates.
var ErrNotFound = errors.New("geocode: no matching place")

// ErrAdapter covers credential, transport and parse failures. Callers
// surface both errors as user-facing "could not locate" text rather than
// propagating them.
var ErrAdapter = errors.New("geocode: lookup failed")

const defaultEndpoint = "https://dapi.kakao.com/v2/local/search/keyword.json"

// ClientConfig represents the configuration for the Kakao local-search
// geocoding client.
type ClientConfig struct {
	APIKey    string
	Endpoint  string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
}

type Client struct {
	config  ClientConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewWithConfig creates a new Client with the given configuration.
func NewWithConfig(config ClientConfig) *Client {
	if config.Endpoint == "" {
		config.Endpoint = defaultEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &Client{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		limiter: limiter,
	}
}

type keywordResponse struct {
	Documents []struct {
		PlaceName string `json:"place_name"`
		X         string `json:"x"` // longitude
		Y         string `json:"y"` // latitude
	} `json:"documents"`
}

// Resolve looks query up against the keyword-search endpoint and takes
// the first candidate as authoritative. No disambiguation is attempted
// among multiple matches.
func (c *Client) Resolve(ctx context.Context, query string) (*models.Place, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrAdapter)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAdapter, err)
		}
	}

	reqURL := c.config.Endpoint + "?" + url.Values{"query": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapter, err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapter, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrAdapter, resp.StatusCode)
	}

	var body keywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapter, err)
	}

	if len(body.Documents) == 0 {
		return nil, ErrNotFound
	}

	first := body.Documents[0]
	lat, err := strconv.ParseFloat(first.Y, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad latitude %q", ErrAdapter, first.Y)
	}
	lon, err := strconv.ParseFloat(first.X, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad longitude %q", ErrAdapter, first.X)
	}

	return &models.Place{Name: first.PlaceName, Lat: lat, Lon: lon}, nil
}

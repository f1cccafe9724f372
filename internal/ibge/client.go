package ibge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/AtibaiaGeo/GeoInsights-Backend/internal/config"
)

// Client is the shared HTTP client for the IBGE public APIs. All resolvers
// go through it so outbound traffic shares one rate limiter.
type Client struct {
	localitiesBaseURL string
	aggregatesBaseURL string
	meshBaseURL       string

	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the IBGE APIs from the given settings.
// Zero-valued fields fall back to the production defaults.
func NewClient(cfg config.IBGE) *Client {
	if cfg.LocalitiesBaseURL == "" {
		cfg.LocalitiesBaseURL = config.DefaultLocalitiesBaseURL
	}
	if cfg.AggregatesBaseURL == "" {
		cfg.AggregatesBaseURL = config.DefaultAggregatesBaseURL
	}
	if cfg.MeshBaseURL == "" {
		cfg.MeshBaseURL = config.DefaultMeshBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = config.DefaultRequestsPerSecond
	}

	return &Client{
		localitiesBaseURL: cfg.LocalitiesBaseURL,
		aggregatesBaseURL: cfg.AggregatesBaseURL,
		meshBaseURL:       cfg.MeshBaseURL,
		httpClient: &http.Client{
			// Hard cap; each resolver sets a tighter per-call deadline
			// through the request context.
			Timeout: 90 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

// getJSON performs a rate-limited GET and decodes the body into out when the
// response is 200. For any other status it returns the status with out left
// untouched, so callers can treat non-success as business-level absence.
func (c *Client) getJSON(ctx context.Context, source, url string, out any) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	LogRequest(source, http.MethodGet, url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		LogError(source, "fetch", err)
		return 0, fmt.Errorf("%s request: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		LogResponse(source, resp.StatusCode, time.Since(start), 0)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		LogError(source, "decode", err)
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", source, err)
	}

	LogResponse(source, resp.StatusCode, time.Since(start), 1)
	return resp.StatusCode, nil
}

// Package places implements candidate search against a Places text-search API.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the Places API root.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	// MaxResults bounds the number of candidates returned per search.
	MaxResults = 5
)

// ErrMissingKey is returned when the client has no API key.
var ErrMissingKey = errors.New("places API key is not set")

// Client searches restaurants by category and location.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client. Requests are traced through the global tracer provider.
func New(apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID string  `json:"place_id"`
		Name    string  `json:"name"`
		Address string  `json:"formatted_address"`
		Phone   string  `json:"formatted_phone_number"`
		Rating  float64 `json:"rating"`
	} `json:"results"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Phone string `json:"formatted_phone_number"`
	} `json:"result"`
}

// Search implements ports.CandidateSearcher. Text search results carry no
// phone number, so each kept place is resolved through a details lookup.
func (c *Client) Search(ctx context.Context, category, location string) ([]domain.Candidate, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}

	q := url.Values{}
	q.Set("query", fmt.Sprintf("%s restaurants in %s", category, location))

	var body searchResponse
	if err := c.get(ctx, "/textsearch/json", q, &body); err != nil {
		return nil, err
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("places API status %s: %s", body.Status, body.ErrorMessage)
	}

	var out []domain.Candidate
	for _, r := range body.Results {
		if len(out) == MaxResults {
			break
		}
		if r.Name == "" {
			continue
		}
		phone := r.Phone
		if phone == "" && r.PlaceID != "" {
			var err error
			if phone, err = c.phone(ctx, r.PlaceID); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.logger.Warn("place details lookup failed", "name", r.Name, "err", err)
				continue
			}
		}
		if phone == "" {
			c.logger.Debug("skipping place without contact", "name", r.Name)
			continue
		}
		out = append(out, domain.Candidate{Name: r.Name, Contact: phone, Location: r.Address, Score: r.Rating})
	}
	c.logger.Info("places search finished", "category", category, "location", location, "results", len(out))
	return out, nil
}

// phone fetches the formatted phone number of a place.
func (c *Client) phone(ctx context.Context, placeID string) (string, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "formatted_phone_number")

	var body detailsResponse
	if err := c.get(ctx, "/details/json", q, &body); err != nil {
		return "", err
	}
	switch body.Status {
	case "OK":
		return body.Result.Phone, nil
	case "NOT_FOUND", "ZERO_RESULTS":
		return "", nil
	default:
		return "", fmt.Errorf("places API status %s: %s", body.Status, body.ErrorMessage)
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid places response: %w", err)
	}
	return nil
}

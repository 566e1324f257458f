package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultSisterTimeout bounds a single sister restaurant request.
const DefaultSisterTimeout = 10 * time.Second

// SisterClient asks the sister restaurant's inventory API for availability.
type SisterClient struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

type sisterRequest struct {
	Ingredients []string `json:"ingredients"`
}

// NewSisterClient creates a client posting to url
func NewSisterClient(url string, timeout time.Duration, logger *zap.Logger) *SisterClient {
	if timeout <= 0 {
		timeout = DefaultSisterTimeout
	}
	return &SisterClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name implements Source
func (c *SisterClient) Name() string { return "sister" }

// Lookup implements Source. Any failure marks every requested ingredient
// unavailable instead of returning an error.
func (c *SisterClient) Lookup(ctx context.Context, names []string) Report {
	availability, err := c.query(ctx, names)
	if err != nil {
		c.logger.Error("Error querying sister restaurant API", zap.Error(err))
		r := newReport()
		for _, n := range names {
			r.Stock[n] = Stock{}
		}
		r.diag(fmt.Sprintf("Error querying sister restaurant API: %v", err))
		return r
	}

	r := newReport()
	for _, n := range names {
		v, ok := availability[n]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case bool:
			r.Stock[n] = Stock{Unmetered: val}
		case float64:
			if val > 0 {
				r.Stock[n] = Stock{Quantity: ptr(val)}
			} else {
				r.Stock[n] = Stock{}
			}
		default:
			r.Stock[n] = Stock{}
			r.diag(fmt.Sprintf("Unexpected availability value for %s: %v", n, v))
		}
	}
	return r
}

func (c *SisterClient) query(ctx context.Context, names []string) (map[string]interface{}, error) {
	if c.url == "" {
		return nil, fmt.Errorf("sister restaurant API URL is not configured")
	}

	body, err := json.Marshal(sisterRequest{Ingredients: names})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var availability map[string]interface{}
	if err := json.Unmarshal(raw, &availability); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return availability, nil
}

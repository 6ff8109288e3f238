package currencyfreaks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	symbols    []string
	logger     *logrus.Logger
}

func NewClient(baseURL, apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				ResponseHeaderTimeout: 15 * time.Second,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		symbols: []string{"KRW", "JPY"},
		logger:  logger,
	}
}

func (c *Client) FetchLatest(ctx context.Context) (*LatestRates, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("symbols", strings.Join(c.symbols, ","))
	endpoint := fmt.Sprintf("%s/v2.0/rates/latest?%s", c.baseURL, q.Encode())

	c.logger.WithField("symbols", c.symbols).Info("Fetching latest rates")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Errorf("Failed to create request: %v", err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Failed to fetch by API: %v", err)
		return nil, fmt.Errorf("fetch error: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debugf("Response status: %d", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Errorf("Failed to read response body: %v", err)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debugf("Error body: %s", string(body)[:min(200, len(body))])
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if len(body) == 0 {
		c.logger.Error("Empty response body from rates API")
		return nil, errors.New("empty response body")
	}

	var latest LatestRates
	if err := json.Unmarshal(body, &latest); err != nil {
		c.logger.Errorf("Failed to parse rates JSON: %v", err)
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if len(latest.Rates) == 0 {
		c.logger.Warn("No rates found in parsed response")
		return nil, errors.New("no rates in response")
	}

	c.logger.Infof("Successfully parsed %d rates (base %s, date %s)", len(latest.Rates), latest.Base, latest.Date)
	return &latest, nil
}

// Package moex fetches bond reference data and market prices from the
// Moscow Exchange ISS API and maps them into domain values.
package moex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const bondsPath = "/iss/engines/stock/markets/bonds/securities.json"

// Client is the upstream source consumed by the bond service.
type Client interface {
	FetchSecurities(ctx context.Context) (Table, error)
	FetchMarketData(ctx context.Context) (Table, error)
}

// ISSClient provides methods for fetching bond tables from the ISS API.
// It wraps an HTTP client and always requests the compact JSON form
// without metadata.
type ISSClient struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewISSClient creates a client for the ISS instance at baseURL
// (e.g. https://iss.moex.com). Every request is bounded by timeout.
func NewISSClient(baseURL string, timeout time.Duration, log zerolog.Logger) *ISSClient {
	return &ISSClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("client", "moex-iss").Logger(),
	}
}

// FetchSecurities downloads the full bond securities list.
func (c *ISSClient) FetchSecurities(ctx context.Context) (Table, error) {
	return c.fetchBlock(ctx, "securities", SecuritiesColumns)
}

// FetchMarketData downloads the latest trade prices of all bonds.
func (c *ISSClient) FetchMarketData(ctx context.Context) (Table, error) {
	return c.fetchBlock(ctx, "marketdata", MarketDataColumns)
}

// BlockURL builds the request URL for one block of the bonds market.
func (c *ISSClient) BlockURL(block string, columns []string) string {
	q := url.Values{}
	q.Set("iss.json", "compact")
	q.Set("iss.meta", "off")
	q.Set("iss.dp", "dot")
	q.Set("iss.only", block)
	q.Set(block+".columns", strings.Join(columns, ","))
	return c.baseURL + bondsPath + "?" + q.Encode()
}

func (c *ISSClient) fetchBlock(ctx context.Context, block string, columns []string) (Table, error) {
	u := c.BlockURL(block, columns)
	start := time.Now()

	resp, err := c.query(ctx, u)
	if err != nil {
		return Table{}, err
	}
	t, err := resp.Block(block)
	if err != nil {
		return Table{}, err
	}

	c.log.Debug().
		Str("block", block).
		Int("rows", len(t.Data)).
		Dur("took", time.Since(start)).
		Msg("Fetched ISS block")
	return t, nil
}

// query executes one GET request and decodes the compact payload.
func (c *ISSClient) query(ctx context.Context, u string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("iss request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read iss response: %w", err)
	}

	result, err := decodeResponse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse iss response: %w", err)
	}
	return result, nil
}

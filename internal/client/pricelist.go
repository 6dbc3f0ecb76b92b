package client

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"spareparts/catalog/internal/batch"
	"spareparts/catalog/internal/config"
	"spareparts/catalog/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// PriceListClient reads supplier price lists from disk or over HTTP(S).
// It satisfies batch.PriceListSource.
type PriceListClient interface {
	FetchPriceList(ctx context.Context, location string) ([]batch.Row, error)
	Close() error
}

type priceListClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	parser     *priceListParser
	proxies    proxy.Supplier
}

func NewPriceListClient(cfg config.PriceListConfig, proxies proxy.Supplier) PriceListClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	return &priceListClient{
		rl:         ratelimit.New(max(cfg.MaxRequestsPerSecond, 1)),
		httpClient: client,
		parser:     newPriceListParser(),
		proxies:    proxies,
	}
}

func (c *priceListClient) FetchPriceList(ctx context.Context, location string) ([]batch.Row, error) {
	var (
		html string
		err  error
	)
	if isRemote(location) {
		html, err = c.fetchHTML(ctx, location)
	} else {
		html, err = readHTML(location)
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.parser.ParsePriceList(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price list %s: %w", location, err)
	}

	log.Infof("📄 Read %d rows from price list %s", len(rows), location)
	return rows, nil
}

func (c *priceListClient) fetchHTML(ctx context.Context, url string) (string, error) {
	c.rl.Take()

	if c.proxies != nil {
		if proxyURL := c.proxies.Get(); proxyURL != "" {
			log.Debugf("🔗 Fetching %s via %s", url, proxyURL)
			c.httpClient.SetProxy(proxyURL)
		}
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch price list %s: %w", url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to fetch price list %s: HTTP %d %s", url, resp.StatusCode(), resp.Status())
	}

	return resp.String(), nil
}

func (c *priceListClient) Close() error {
	return c.httpClient.Close()
}

func readHTML(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read price list %s: %w", path, err)
	}
	return string(raw), nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

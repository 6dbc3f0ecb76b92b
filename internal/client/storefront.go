package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spareparts/catalog/internal/config"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	revalidateSecretHeader = "X-Revalidate-Secret"
	defaultRevalidatePath  = "/api/revalidate"
)

// StorefrontClient asks the storefront to rebuild pages that render the catalog
type StorefrontClient interface {
	Revalidate(ctx context.Context, paths []string) error
	Close() error
}

type storefrontClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	endpoint   string
	secret     string
}

type revalidateRequest struct {
	Path string `json:"path"`
}

func NewStorefrontClient(cfg config.StorefrontConfig) StorefrontClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetAllowNonIdempotentRetry(true).
		SetHeader("Content-Type", "application/json")

	endpoint := cfg.RevalidatePath
	if endpoint == "" {
		endpoint = defaultRevalidatePath
	}

	return &storefrontClient{
		rl:         ratelimit.New(max(cfg.MaxRequestsPerSecond, 1)),
		httpClient: client,
		endpoint:   "/" + strings.TrimPrefix(endpoint, "/"),
		secret:     cfg.Secret,
	}
}

// Revalidate posts every path and returns the joined failures.
func (c *storefrontClient) Revalidate(ctx context.Context, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := c.revalidate(ctx, path); err != nil {
			log.Warnf("⚠️ Revalidation of %s failed: %v", path, err)
			errs = append(errs, err)
			continue
		}
		log.Infof("🔁 Revalidated %s", path)
	}
	return errors.Join(errs...)
}

func (c *storefrontClient) revalidate(ctx context.Context, path string) error {
	c.rl.Take()

	req := c.httpClient.R().
		SetContext(ctx).
		SetBody(revalidateRequest{Path: path})
	if c.secret != "" {
		req.SetHeader(revalidateSecretHeader, c.secret)
	}

	resp, err := req.Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to revalidate %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to revalidate %s: HTTP %d %s", path, resp.StatusCode(), resp.String())
	}
	return nil
}

func (c *storefrontClient) Close() error {
	return c.httpClient.Close()
}

package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const probeConcurrency = 16

// Supplier hands out outbound proxies for price list downloads
type Supplier interface {
	// Get returns the next proxy URL, or "" when the pool is empty.
	Get() string
	Len() int
}

type roundRobin struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewSupplier builds a round-robin pool. With a probeURL every proxy is tried
// once and those that cannot fetch it are left out; configured order is kept.
func NewSupplier(ctx context.Context, proxies []string, probeURL string) Supplier {
	if len(proxies) == 0 || probeURL == "" {
		return &roundRobin{proxies: append([]string(nil), proxies...)}
	}

	log.Infof("🔄 Probing %d price list proxies...", len(proxies))

	healthy := make([]bool, len(proxies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, proxyURL := range proxies {
		g.Go(func() error {
			healthy[i] = probe(ctx, proxyURL, probeURL)
			return nil
		})
	}
	_ = g.Wait()

	working := make([]string, 0, len(proxies))
	for i, ok := range healthy {
		if ok {
			working = append(working, proxies[i])
		}
	}

	log.Infof("✅ %d of %d proxies usable", len(working), len(proxies))
	return &roundRobin{proxies: working}
}

func (p *roundRobin) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxyURL := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)
	return proxyURL
}

func (p *roundRobin) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.proxies)
}

func probe(ctx context.Context, proxyURL, probeURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(probeURL)
	if err != nil {
		log.Debugf("❌ Proxy %s failed probe: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Debugf("❌ Proxy %s failed probe with status %s", proxyURL, resp.Status())
		return false
	}
	return true
}

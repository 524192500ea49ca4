// Package enrich fetches product pages to resolve display names.
//
// Enrichment is strictly best-effort: every failure mode (network error,
// missing title, malformed HTML) degrades to the generic default name and
// never surfaces to the caller.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/metrics"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/proxy"
	"github.com/adrianyu91/Monitor-Discord-Webhook/internal/relay"
)

// DefaultProductName is the placeholder used whenever enrichment is skipped
// or fails.
const DefaultProductName = "Unknown Product"

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36"
	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"

	maxTitleLen = 100
)

// Sites excluded from enrichment: their pages are slow or unreliable to
// fetch and the trade-off is not worth the latency.
var skippedSites = []string{"bestbuy", "amazon"}

// retailerSuffixes are boilerplate tails retailers append to page titles.
var retailerSuffixes = []string{
	" - Best Buy Canada",
	" - Walmart Canada",
	" - Canadian Tire",
	" - Toys R Us Canada",
	" - Amazon.ca",
}

// Config controls enrichment fetch behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Enricher resolves product display names from live product pages.
type Enricher struct {
	cfg    Config
	pool   *proxy.Pool
	base   *colly.Collector
	logger *zap.Logger
}

// New builds an Enricher drawing proxies from pool.
func New(cfg Config, pool *proxy.Pool, logger *zap.Logger) *Enricher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	// Single-page probe; a robots.txt round trip per alert is not wanted.
	c.IgnoreRobotsTxt = true
	return &Enricher{cfg: cfg, pool: pool, base: c, logger: logger}
}

// Enrich returns the display name for a resolved product URL. Sites on the
// exclusion list and ChangeDetection alerts (whose name is already derived
// from the URL) skip the fetch entirely.
func (e *Enricher) Enrich(ctx context.Context, productURL, site string, format relay.Format) string {
	if skipped(site) || format == relay.FormatChangeDetection {
		metrics.EnrichmentsTotal("skipped")
		return DefaultProductName
	}

	start := time.Now()
	title, err := e.fetchTitle(ctx, productURL)
	metrics.ObserveEnrichmentDuration(time.Since(start))
	if err != nil {
		metrics.EnrichmentsTotal("failed")
		e.logger.Debug("enrichment fetch failed",
			zap.String("url", productURL),
			zap.String("site", site),
			zap.Error(err),
		)
		return DefaultProductName
	}

	name := cleanTitle(title)
	if name == "" {
		metrics.EnrichmentsTotal("failed")
		return DefaultProductName
	}
	metrics.EnrichmentsTotal("ok")
	return name
}

func skipped(site string) bool {
	for _, s := range skippedSites {
		if strings.Contains(site, s) {
			return true
		}
	}
	return false
}

// fetchTitle issues a single GET through a randomly picked proxy (if any)
// and captures the page's <title> text.
func (e *Enricher) fetchTitle(ctx context.Context, productURL string) (string, error) {
	proxyURL, _ := e.pool.Pick()

	collector := e.base.Clone()
	collector.UserAgent = e.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(e.cfg.Timeout)
	collector.WithTransport(newTransport(proxyURL))
	e.logger.Debug("enrichment fetch",
		zap.String("url", productURL),
		zap.String("proxy", proxyDescription(proxyURL)),
	)

	var (
		title    string
		fetchErr error
	)
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
	})
	collector.OnHTML("title", func(el *colly.HTMLElement) {
		if title == "" {
			title = el.Text
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(productURL)
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("enrichment canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("visit product page: %w", err)
		}
		if fetchErr != nil {
			return "", fmt.Errorf("product page response: %w", fetchErr)
		}
	}
	if title == "" {
		return "", fmt.Errorf("no <title> element in %s", productURL)
	}
	return title, nil
}

func newTransport(proxyURL *url.URL) *http.Transport {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return transport
}

// cleanTitle strips retailer boilerplate from a page title and bounds its
// length for embed display.
func cleanTitle(title string) string {
	for _, suffix := range retailerSuffixes {
		if strings.HasSuffix(strings.ToLower(title), strings.ToLower(suffix)) {
			title = title[:len(title)-len(suffix)]
		}
	}
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen]) + "..."
	}
	return title
}

// proxyDescription is used in logs only; credentials are redacted.
func proxyDescription(u *url.URL) string {
	if u == nil {
		return "direct"
	}
	return u.Host
}

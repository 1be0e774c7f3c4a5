// Package source fetches the shared source document and other documents on allowed hosts.
package source

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/courier-sign/internal/config"
	"github.com/JaimeStill/courier-sign/pkg/metrics"
	"github.com/cockroachdb/errors"
	"github.com/docker/go-units"
	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
)

var (
	ErrSourceNotFound    = errors.New("source document not found")
	ErrSourceUnavailable = errors.New("source document unavailable")
	ErrSourceTooLarge    = errors.New("source document exceeds the maximum size")
	ErrURLNotAllowed     = errors.New("document url not allowed")
)

// Fetcher downloads documents over HTTP with a bounded timeout. It never retries.
// Only the default document is cached.
type Fetcher struct {
	client     *http.Client
	cache      *cache.Cache
	ttl        time.Duration
	defaultURL string
	base       *url.URL
	hosts      map[string]bool
	maxSize    int64
	logger     *slog.Logger
}

// New creates a Fetcher. A zero cache TTL disables caching and a maxSize of zero
// disables the body limit.
func New(cfg *config.SourceConfig, client *http.Client, maxSize int64, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	ttl := cfg.CacheTTLDuration()
	c := client
	if timeout := cfg.FetchTimeoutDuration(); timeout > 0 {
		clone := *client
		clone.Timeout = timeout
		c = &clone
	}

	hosts := lo.SliceToMap(cfg.AllowedHosts, func(h string) (string, bool) {
		return strings.ToLower(strings.TrimSpace(h)), true
	})
	base, err := url.Parse(cfg.URL)
	if err != nil || base.Host == "" {
		base = nil
	} else {
		hosts[strings.ToLower(base.Host)] = true
	}

	return &Fetcher{
		client:     c,
		cache:      cache.New(ttl, 2*ttl),
		ttl:        ttl,
		defaultURL: cfg.URL,
		base:       base,
		hosts:      hosts,
		maxSize:    maxSize,
		logger:     logger.With("system", "source"),
	}
}

// DefaultURL returns the configured source document URL.
func (f *Fetcher) DefaultURL() string {
	return f.defaultURL
}

// Resolve turns ref into an absolute URL on an allowed host. An empty ref is the
// default URL and a relative ref resolves against it.
func (f *Fetcher) Resolve(ref string) (string, error) {
	if ref == "" || ref == f.defaultURL {
		return f.defaultURL, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(ErrURLNotAllowed, "%s: %v", ref, err)
	}
	if f.base != nil {
		u = f.base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.Wrapf(ErrURLNotAllowed, "%s: scheme %q", ref, u.Scheme)
	}
	if !f.hosts[strings.ToLower(u.Host)] {
		return "", errors.WithHintf(
			errors.Wrapf(ErrURLNotAllowed, "%s", ref),
			"documents can only be fetched from %s", strings.Join(slices.Sorted(maps.Keys(f.hosts)), ", "),
		)
	}
	return u.String(), nil
}

// FetchDefault fetches the configured source document.
func (f *Fetcher) FetchDefault(ctx context.Context) ([]byte, error) {
	return f.Fetch(ctx, f.defaultURL)
}

// Fetch returns the body at ref after resolving it. A 404 yields ErrSourceNotFound and
// an oversized body ErrSourceTooLarge. Every other failure yields ErrSourceUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := f.Resolve(ref)
	if err != nil {
		metrics.SourceFetches.WithLabelValues("rejected").Inc()
		return nil, err
	}

	cacheable := f.ttl > 0 && target == f.defaultURL
	if cacheable {
		if v, ok := f.cache.Get(target); ok {
			metrics.SourceFetches.WithLabelValues("cached").Inc()
			return v.([]byte), nil
		}
	}

	data, err := f.get(ctx, target)
	if err != nil {
		return nil, err
	}

	if cacheable {
		f.cache.Set(target, data, f.ttl)
	}
	metrics.SourceFetches.WithLabelValues("ok").Inc()
	f.logger.Info("source document fetched", "url", target, "bytes", len(data))
	return data, nil
}

// Invalidate drops the cached body for rawURL.
func (f *Fetcher) Invalidate(rawURL string) {
	f.cache.Delete(rawURL)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		metrics.SourceFetches.WithLabelValues("error").Inc()
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s: %v", rawURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.SourceFetches.WithLabelValues("error").Inc()
		return nil, errors.WithHint(
			errors.Wrapf(ErrSourceUnavailable, "%s: %v", rawURL, err),
			"check that the source document host is reachable",
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.SourceFetches.WithLabelValues("not_found").Inc()
		return nil, errors.WithHintf(
			errors.Wrapf(ErrSourceNotFound, "%s", rawURL),
			"place the source document at %s or check the template configuration", pathOf(rawURL),
		)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.SourceFetches.WithLabelValues("error").Inc()
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s: status %d", rawURL, resp.StatusCode)
	}

	if f.maxSize > 0 && resp.ContentLength > f.maxSize {
		return nil, f.tooLarge(rawURL)
	}

	body := io.Reader(resp.Body)
	if f.maxSize > 0 {
		body = io.LimitReader(resp.Body, f.maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		metrics.SourceFetches.WithLabelValues("error").Inc()
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s: read body: %v", rawURL, err)
	}
	if f.maxSize > 0 && int64(len(data)) > f.maxSize {
		return nil, f.tooLarge(rawURL)
	}
	return data, nil
}

func (f *Fetcher) tooLarge(rawURL string) error {
	metrics.SourceFetches.WithLabelValues("too_large").Inc()
	return errors.WithHintf(
		errors.Wrapf(ErrSourceTooLarge, "%s", rawURL),
		"documents are limited to %s", units.HumanSize(float64(f.maxSize)),
	)
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return u.Path
}

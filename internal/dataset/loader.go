package dataset

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/tracks/internal/cachemanager"
	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/tracing"
)

// DefaultTTL bounds how long a parsed file stays cached.
const DefaultTTL = cachemanager.DefaultExpiration

// Loader reads dataset files through a cache keyed by path and modification
// time, so re-reading an unchanged file skips the YAML decode.
type Loader struct {
	cache  *cachemanager.ReadThroughCache[string, []*Item, string]
	tracer trace.Tracer
	ttl    time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	manager   cachemanager.CacheManager[string, []*Item]
	tracer    trace.Tracer
	ttl       time.Duration
	skipCache bool
}

// WithCacheManager replaces the default in-memory cache.
func WithCacheManager(m cachemanager.CacheManager[string, []*Item]) LoaderOption {
	return func(c *loaderConfig) { c.manager = m }
}

// WithTracer records a dataset.load span per Load.
func WithTracer(t trace.Tracer) LoaderOption {
	return func(c *loaderConfig) { c.tracer = t }
}

// WithTTL sets the cache lifetime of a parsed file.
func WithTTL(ttl time.Duration) LoaderOption {
	return func(c *loaderConfig) { c.ttl = ttl }
}

// WithoutCache makes every Load decode the file.
func WithoutCache() LoaderOption {
	return func(c *loaderConfig) { c.skipCache = true }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	cfg := loaderConfig{ttl: DefaultTTL}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.manager == nil {
		cfg.manager = cachemanager.NewInMemoryCacheManager[string, []*Item](
			"datasets", cfg.ttl, cachemanager.DefaultCleanupInterval)
	}
	if cfg.tracer == nil {
		cfg.tracer = tracing.Noop()
	}
	return &Loader{
		cache:  cachemanager.NewReadThroughCache(cfg.manager, readFile, cfg.skipCache),
		tracer: cfg.tracer,
		ttl:    cfg.ttl,
	}
}

// Load returns the items of the file at path. The caller owns the returned
// items; the cached copies are never handed out.
func (l *Loader) Load(ctx context.Context, path string) (items []*Item, err error) {
	ctx, span := l.tracer.Start(ctx, tracing.SpanDatasetLoad)
	defer func() { tracing.EndSpan(span, err) }()
	span.SetAttributes(attribute.String(tracing.AttrDatasetPath, path))

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", path, err)
	}

	cached, hit, err := l.cache.Get(ctx, cacheKey(path, info), path, l.ttl)
	if err != nil {
		log.ErrorErr(log.CatDataset, "load failed", err, "path", path)
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool(tracing.AttrCacheHit, hit),
		attribute.Int(tracing.AttrDatasetItems, len(cached)),
	)
	log.Debug(log.CatDataset, "loaded", "path", path, "items", len(cached), "cached", hit)

	return Clone(cached), nil
}

// Reload loads path and merges it into prev.
func (l *Loader) Reload(ctx context.Context, path string, prev []*Item) ([]*Item, MergeResult, error) {
	next, err := l.Load(ctx, path)
	if err != nil {
		return prev, MergeResult{}, err
	}

	_, span := l.tracer.Start(ctx, tracing.SpanDatasetMerge)
	merged, res := Merge(prev, next)
	span.SetAttributes(
		attribute.String(tracing.AttrDatasetPath, path),
		attribute.Int(tracing.AttrItemsUpdated, res.Updated),
		attribute.Int(tracing.AttrItemsEntered, res.Added),
		attribute.Int(tracing.AttrItemsExited, res.Removed),
	)
	tracing.EndSpan(span, nil)

	log.Info(log.CatDataset, "reloaded", "path", path,
		"updated", res.Updated, "added", res.Added, "removed", res.Removed)
	return merged, res, nil
}

func cacheKey(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s@%d:%d", path, info.ModTime().UnixNano(), info.Size())
}

func readFile(_ context.Context, path string) ([]*Item, error) {
	f, err := os.Open(path) //nolint:gosec // G304: dataset paths come from the user's config
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	items, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

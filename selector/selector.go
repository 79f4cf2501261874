package selector

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"go.ntppool.org/common/logger"
	"go.ntppool.org/common/tracing"
	"go.opentelemetry.io/otel/attribute"

	"go.ntppool.org/imagerotate/catalog"
)

// Selector picks images from a catalog. It owns the catalog quotas and the
// recency window; all access goes through its mutex so the
// filter-pick-decrement sequence is atomic.
type Selector struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	recent  *RecencyWindow
	rand    *rand.Rand
	log     *slog.Logger
	metrics *Metrics
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand sets the random source, for deterministic tests and simulations.
func WithRand(r *rand.Rand) Option {
	return func(sl *Selector) {
		sl.rand = r
	}
}

// WithRecencySize sets how many recently shown images are excluded.
func WithRecencySize(n int) Option {
	return func(sl *Selector) {
		sl.recent = NewRecencyWindow(n)
	}
}

// NewSelector returns a selector for cat. metrics may be nil.
func NewSelector(cat *catalog.Catalog, log *slog.Logger, metrics *Metrics, opts ...Option) *Selector {
	if cat == nil {
		cat = catalog.New()
	}
	if log == nil {
		log = slog.Default()
	}

	sl := &Selector{
		catalog: cat,
		recent:  NewRecencyWindow(DefaultRecencySize),
		rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:     log,
		metrics: metrics,
	}

	for _, opt := range opts {
		opt(sl)
	}

	metrics.setCatalogSize(cat.Len(), false)

	return sl
}

// Select picks one image for the requested categories, uses one show of
// its quota and records it in the recency window. An empty request
// matches every image. The returned image is a copy.
func (sl *Selector) Select(ctx context.Context, requested catalog.Categories) (catalog.Image, error) {
	ctx, span := tracing.Start(ctx, "selector.Select")
	defer span.End()

	start := time.Now()
	log := logger.FromContext(ctx)

	sl.mu.Lock()
	defer sl.mu.Unlock()

	log.DebugContext(ctx, "requested categories", "categories", requested.Sorted())

	candidates := sl.candidates(requested)
	if len(candidates) == 0 {
		n := sl.catalog.ResetDepletedQuotas()
		sl.metrics.trackReset(n)
		log.DebugContext(ctx, "show counters reset for depleted images", "images", n)

		candidates = sl.candidates(requested)
	}

	sl.metrics.observeCandidates(len(candidates))
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	if len(candidates) == 0 {
		sl.metrics.trackSelection(resultNoEligible, time.Since(start).Seconds())
		log.WarnContext(ctx, "no eligible image",
			"categories", requested.Sorted(),
			"recent", sl.recent.URLs(),
			"catalog_size", sl.catalog.Len(),
		)
		return catalog.Image{}, ErrNoEligibleImage
	}

	img := candidates[sl.rand.IntN(len(candidates))]
	if err := img.Consume(); err != nil {
		// candidates are filtered on a positive quota while holding the lock
		sl.metrics.trackSelection(resultQuotaBroken, time.Since(start).Seconds())
		return catalog.Image{}, fmt.Errorf("selecting image: %w", err)
	}
	sl.recent.Push(img.URL)

	sl.metrics.trackSelection(resultOK, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("url", img.URL))

	log.InfoContext(ctx, "image displayed",
		"url", img.URL,
		"categories", img.Categories.Sorted(),
		"shows_left", img.ShowsLeft,
	)
	log.DebugContext(ctx, "recently shown images updated", "recent", sl.recent.URLs())

	return img.Clone(), nil
}

// candidates must be called with the lock held
func (sl *Selector) candidates(requested catalog.Categories) []*catalog.Image {
	return sl.catalog.Filter(func(img *catalog.Image) bool {
		if img.ShowsLeft <= 0 {
			return false
		}
		if len(requested) > 0 && !requested.Intersects(img.Categories) {
			return false
		}
		return !sl.recent.Contains(img.URL)
	})
}

// SetCatalog replaces the catalog, for example after the source file
// changed. The recency window is cleared.
func (sl *Selector) SetCatalog(cat *catalog.Catalog) {
	if cat == nil {
		cat = catalog.New()
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.catalog = cat
	sl.recent.Clear()
	sl.metrics.setCatalogSize(cat.Len(), true)

	sl.log.Info("catalog replaced", "images", cat.Len())
}

// Recent returns the recency window, oldest first.
func (sl *Selector) Recent() []string {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.recent.URLs()
}

// Status returns a copy of the catalog and recency window.
func (sl *Selector) Status() Status {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	return Status{
		Images:   sl.catalog.Snapshot(),
		Recent:   sl.recent.URLs(),
		Capacity: sl.recent.Capacity(),
		Time:     time.Now(),
	}
}

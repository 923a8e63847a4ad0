package sensorthings

import (
	"context"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/domain"
	"github.com/couchcryptid/flood-crcl-service/internal/observability"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const sectionsKey = "sections"

// Source is the subset of Client that CachedSource decorates.
type Source interface {
	ListSections(ctx context.Context) ([]domain.Section, error)
	FetchForecast(ctx context.Context, section domain.Section) (domain.ForecastSeries, error)
}

// CachedSource keeps the section catalogue for ttl so scheduled runs do not
// re-page it every time. Forecasts are never cached.
type CachedSource struct {
	inner   Source
	cache   *expirable.LRU[string, []domain.Section]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a source.
func NewCachedSource(inner Source, ttl time.Duration, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   expirable.NewLRU[string, []domain.Section](1, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedSource) ListSections(ctx context.Context) ([]domain.Section, error) {
	if sections, ok := c.cache.Get(sectionsKey); ok {
		c.metrics.SectionCache.WithLabelValues("hit").Inc()
		return sections, nil
	}
	c.metrics.SectionCache.WithLabelValues("miss").Inc()

	sections, err := c.inner.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	// An empty catalogue is likely transient; do not pin it for a whole TTL.
	if len(sections) > 0 {
		c.cache.Add(sectionsKey, sections)
	}
	return sections, nil
}

func (c *CachedSource) FetchForecast(ctx context.Context, section domain.Section) (domain.ForecastSeries, error) {
	return c.inner.FetchForecast(ctx, section)
}

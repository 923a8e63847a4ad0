package sensorthings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/domain"
	"github.com/couchcryptid/flood-crcl-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	listCalls  int
	fetchCalls int
	sections   []domain.Section
	err        error
}

func (m *countingSource) ListSections(_ context.Context) ([]domain.Section, error) {
	m.listCalls++
	return m.sections, m.err
}

func (m *countingSource) FetchForecast(_ context.Context, _ domain.Section) (domain.ForecastSeries, error) {
	m.fetchCalls++
	return domain.ForecastSeries{RunID: "1"}, nil
}

func TestCachedSource_ListSectionsCacheHit(t *testing.T) {
	inner := &countingSource{sections: []domain.Section{{ID: "390"}}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedSource(inner, time.Minute, metrics)

	s1, err := cached.ListSections(context.Background())
	require.NoError(t, err)
	s2, err := cached.ListSections(context.Background())
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, inner.listCalls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SectionCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SectionCache.WithLabelValues("miss")))
}

func TestCachedSource_Expires(t *testing.T) {
	inner := &countingSource{sections: []domain.Section{{ID: "390"}}}
	cached := NewCachedSource(inner, 20*time.Millisecond, observability.NewMetricsForTesting())

	_, err := cached.ListSections(context.Background())
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = cached.ListSections(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, inner.listCalls)
}

func TestCachedSource_DoesNotCacheEmptyOrErrors(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, time.Minute, observability.NewMetricsForTesting())

	_, _ = cached.ListSections(context.Background())
	_, _ = cached.ListSections(context.Background())
	assert.Equal(t, 2, inner.listCalls)

	inner.err = errors.New("unavailable")
	_, err := cached.ListSections(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, inner.listCalls)
}

func TestCachedSource_ForecastsPassThrough(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, time.Minute, observability.NewMetricsForTesting())

	for range 3 {
		_, err := cached.FetchForecast(context.Background(), domain.Section{ID: "390"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.fetchCalls)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/domain"
	"github.com/couchcryptid/flood-crcl-service/internal/observability"
	"github.com/couchcryptid/flood-crcl-service/internal/report"
	"github.com/jonboulle/clockwork"
)

// SectionSource supplies the monitored sections and their forecasts.
type SectionSource interface {
	ListSections(ctx context.Context) ([]domain.Section, error)
	FetchForecast(ctx context.Context, section domain.Section) (domain.ForecastSeries, error)
}

// Publisher hands a finished report to the message bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, r report.MetricReport) error
}

// Options tunes a Runner.
type Options struct {
	Topic    string
	Exponent float64
	Clock    clockwork.Clock
}

// RunSummary describes one completed batch run.
type RunSummary struct {
	Sections       int
	Counts         [domain.NumScales]int
	Alerts         int
	PublishFailed  int
	Index          domain.RegionalIndex
	RegionalPushed bool
}

// Runner executes classification runs over all sections.
type Runner struct {
	source    SectionSource
	publisher Publisher
	builder   *report.Builder
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	mu      sync.Mutex
	last    RunSummary
	lastAt  time.Time
	hasLast bool
}

// New creates a Runner. A nil Options.Clock uses real time.
func New(source SectionSource, publisher Publisher, builder *report.Builder, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Topic == "" {
		opts.Topic = report.Topic
	}
	return &Runner{
		source:    source,
		publisher: publisher,
		builder:   builder,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one run has completed.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no classification run has completed yet")
	}
	return nil
}

// LastRun returns the summary of the most recent successful run and when it
// completed. ok is false until a run has succeeded.
func (r *Runner) LastRun() (summary RunSummary, at time.Time, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.lastAt, r.hasLast
}

// Run performs a run immediately and then every interval until ctx is done.
// With a zero interval it performs exactly one run and returns its error.
// Failed scheduled runs are logged; the next tick starts from a fresh histogram.
func (r *Runner) Run(ctx context.Context, interval time.Duration) error {
	r.metrics.RunnerRunning.Set(1)
	defer r.metrics.RunnerRunning.Set(0)

	if interval <= 0 {
		_, err := r.RunOnce(ctx)
		return err
	}

	r.logger.Info("runner started", "interval", interval)
	ticker := r.opts.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("classification run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.Info("runner stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// RunOnce classifies every section, publishes a report for each extreme one,
// and publishes the regional index. Source and classification errors abort
// the run; publish errors are logged and counted only.
func (r *Runner) RunOnce(ctx context.Context) (RunSummary, error) {
	start := r.opts.Clock.Now()
	summary, err := r.runOnce(ctx)
	r.metrics.RunDuration.Observe(r.opts.Clock.Since(start).Seconds())

	if err != nil {
		r.metrics.RunsTotal.WithLabelValues("error").Inc()
		return summary, err
	}

	r.metrics.RunsTotal.WithLabelValues("success").Inc()
	r.mu.Lock()
	r.last, r.lastAt, r.hasLast = summary, r.opts.Clock.Now(), true
	r.mu.Unlock()
	r.ready.Store(true)
	r.logger.Info("classification run complete",
		"sections", summary.Sections,
		"counts", summary.Counts,
		"alerts", summary.Alerts,
		"publish_failed", summary.PublishFailed,
		"regional_index", summary.Index.Value,
		"power_mean", summary.Index.Mean,
	)
	return summary, nil
}

func (r *Runner) runOnce(ctx context.Context) (RunSummary, error) {
	var summary RunSummary

	sections, err := r.source.ListSections(ctx)
	if err != nil {
		r.metrics.SourceErrors.Inc()
		return summary, fmt.Errorf("list sections: %w", err)
	}
	r.logger.Info("classification run started", "sections", len(sections))

	// One histogram per run; an aborted run's counts are never reused.
	hist := domain.NewScaleHistogram()

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		series, err := r.source.FetchForecast(ctx, section)
		if err != nil {
			r.metrics.SourceErrors.Inc()
			return summary, fmt.Errorf("fetch forecast for section %s: %w", section.ID, err)
		}

		c, err := domain.Classify(series, section.Thresholds)
		if err != nil {
			return summary, fmt.Errorf("classify section %s: %w", section.ID, err)
		}
		if err := hist.Record(c); err != nil {
			return summary, fmt.Errorf("record section %s: %w", section.ID, err)
		}
		summary.Sections++

		r.logger.Debug("section classified",
			"section_id", section.ID,
			"section_name", section.Name,
			"peak", c.PeakValue,
			"peak_time", c.PeakSample.Timestamp,
			"scale", int(c.Scale),
		)

		if !c.IsExtreme {
			continue
		}
		summary.Alerts++
		if !r.publish(ctx, r.builder.SectionReport(section, series, c)) {
			summary.PublishFailed++
		}
	}

	summary.Counts = hist.Counts()

	idx, err := hist.OverallIndex(r.opts.Exponent)
	if err != nil {
		return summary, fmt.Errorf("overall index: %w", err)
	}
	summary.Index = idx
	// Counted only once the run has an index, so aborted runs add nothing.
	for s, n := range summary.Counts {
		r.metrics.SectionsClassified.WithLabelValues(strconv.Itoa(s)).Add(float64(n))
	}
	r.metrics.RegionalIndex.Set(float64(idx.Value))
	r.metrics.RegionalPowerMean.Set(idx.Mean)

	summary.RegionalPushed = r.publish(ctx, r.builder.RegionalReport(idx))
	if !summary.RegionalPushed {
		summary.PublishFailed++
	}
	return summary, nil
}

// publish is fire-and-forget: failures are logged and counted, never retried.
func (r *Runner) publish(ctx context.Context, rep report.MetricReport) bool {
	if err := r.publisher.Publish(ctx, r.opts.Topic, rep); err != nil {
		r.metrics.PublishErrors.Inc()
		r.logger.Warn("publish report failed",
			"error", err,
			"kind", rep.Kind,
			"msg_identifier", rep.Header.MsgIdentifier,
		)
		return false
	}
	r.metrics.ReportsPublished.WithLabelValues(rep.Kind).Inc()
	return true
}

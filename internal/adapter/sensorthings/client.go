// Package sensorthings retrieves river sections and water-level forecasts from
// an OGC SensorThings API v1.0 service.
package sensorthings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/config"
	"github.com/couchcryptid/flood-crcl-service/internal/domain"
)

const (
	pageSize = 1000
	// windowLayout is the timestamp form the service expects in $filter.
	windowLayout = "2006-01-02T15:04:05.000Z"
)

var errNoDatastream = errors.New("thing has no forecast datastream")

// Client implements pipeline.SectionSource against a SensorThings service.
type Client struct {
	baseURL           string
	httpClient        *http.Client
	defaultThresholds domain.Threshold
	mode              string
	windowStart       time.Time
	windowEnd         time.Time
	logger            *slog.Logger
}

// NewClient creates a SensorThings client from the service configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.SensorThingsURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.SensorThingsTimeout,
		},
		defaultThresholds: cfg.DefaultThresholds,
		mode:              cfg.ForecastMode,
		windowStart:       cfg.ForecastWindowStart,
		windowEnd:         cfg.ForecastWindowEnd,
		logger:            logger,
	}
}

// ListSections returns every Thing typed as a river section, following
// @iot.nextLink until the catalogue is exhausted.
func (c *Client) ListSections(ctx context.Context) ([]domain.Section, error) {
	params := url.Values{
		"$filter": {"properties/type eq 'riverSection'"},
		"$select": {"id,name,description,properties"},
		"$expand": {"Locations($select=description,location)"},
		"$count":  {"true"},
		"$top":    {fmt.Sprint(pageSize)},
	}
	next := c.baseURL + "/Things?" + params.Encode()

	var sections []domain.Section
	for next != "" {
		var page thingsPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("list river sections: %w", err)
		}
		for _, th := range page.Value {
			sections = append(sections, c.toSection(th))
		}
		next = page.NextLink
	}

	c.logger.Debug("river sections listed", "count", len(sections))
	return sections, nil
}

// FetchForecast returns the ordered forecast series of one section. In
// last_run mode only observations of the datastream's latest run are kept; in
// window mode the service filters by phenomenon time.
func (c *Client) FetchForecast(ctx context.Context, section domain.Section) (domain.ForecastSeries, error) {
	params := url.Values{
		"$select": {"id,name,properties"},
		"$expand": {"Observations(" + c.observationQuery() + ")"},
	}
	u := fmt.Sprintf("%s/Things(%s)/Datastreams?%s", c.baseURL, url.PathEscape(section.ID), params.Encode())

	var page datastreamsPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return domain.ForecastSeries{}, fmt.Errorf("fetch forecast: %w", err)
	}
	if len(page.Value) == 0 {
		return domain.ForecastSeries{}, fmt.Errorf("section %s: %w", section.ID, errNoDatastream)
	}

	// The forecast datastream is the first one attached to the section.
	ds := page.Value[0]
	observations := ds.Observations
	for next := ds.ObservationsNextLink; next != ""; {
		var more observationsPage
		if err := c.getJSON(ctx, next, &more); err != nil {
			return domain.ForecastSeries{}, fmt.Errorf("fetch forecast page: %w", err)
		}
		observations = append(observations, more.Value...)
		next = more.NextLink
	}

	var series domain.ForecastSeries
	lastRun := rawID(ds.Properties.LastRunID)
	if c.mode == config.ForecastModeWindow {
		// The window may span several runs; the series is named after its first.
		series.Window = &domain.TimeWindow{Start: c.windowStart.UTC(), End: c.windowEnd.UTC()}
	} else {
		series.RunID = lastRun
	}
	for _, obs := range observations {
		runID := rawID(obs.Parameters.RunID)
		// Untagged observations are kept; tagged ones must belong to the last run.
		if c.mode == config.ForecastModeLastRun && lastRun != "" && runID != "" && runID != lastRun {
			continue
		}
		if series.RunID == "" {
			series.RunID = runID
		}
		value, err := rawNumber(obs.Result)
		if err != nil {
			return domain.ForecastSeries{}, fmt.Errorf("observation %s: %w", rawID(obs.ID), err)
		}
		series.Samples = append(series.Samples, domain.ForecastSample{
			Timestamp:     obs.PhenomenonTime,
			Value:         value,
			ObservationID: rawID(obs.ID),
		})
	}

	c.logger.Debug("forecast fetched",
		"section_id", section.ID,
		"run_id", series.RunID,
		"samples", len(series.Samples),
	)
	return series, nil
}

func (c *Client) observationQuery() string {
	parts := []string{
		"$select=result,phenomenonTime,id,parameters",
		"$orderby=phenomenonTime asc",
		fmt.Sprintf("$top=%d", pageSize),
	}
	if c.mode == config.ForecastModeWindow {
		parts = append(parts, fmt.Sprintf("$filter=phenomenonTime ge %s and phenomenonTime le %s",
			c.windowStart.UTC().Format(windowLayout), c.windowEnd.UTC().Format(windowLayout)))
	}
	return strings.Join(parts, ";")
}

func (c *Client) toSection(th thing) domain.Section {
	s := domain.Section{
		ID:          rawID(th.ID),
		Name:        th.Name,
		Description: th.Description,
		Thresholds:  c.thresholdsFor(th),
	}
	if len(th.Locations) > 0 {
		if coords := th.Locations[0].Location.Coordinates; len(coords) >= 2 {
			s.Position = domain.Position{Lon: coords[0], Lat: coords[1]}
		}
	}
	return s
}

// thresholdsFor reads the section's threshold properties. The upstream
// catalogue spells them "treshold"; "threshold" is accepted too. Sections
// without a complete triple fall back to the configured default.
func (c *Client) thresholdsFor(th thing) domain.Threshold {
	for _, prefix := range []string{"treshold", "threshold"} {
		t1, ok1 := propNumber(th.Properties, prefix+"1")
		t2, ok2 := propNumber(th.Properties, prefix+"2")
		t3, ok3 := propNumber(th.Properties, prefix+"3")
		if ok1 && ok2 && ok3 {
			return domain.Threshold{T1: t1, T2: t2, T3: t3}
		}
	}
	return c.defaultThresholds
}

func (c *Client) getJSON(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sensorthings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sensorthings API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

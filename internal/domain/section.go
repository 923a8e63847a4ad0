package domain

import (
	"fmt"
	"time"
)

// Threshold holds the three ascending water-level boundaries of a section.
type Threshold struct {
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
	T3 float64 `json:"t3"`
}

// Validate reports whether the thresholds are strictly ascending.
func (t Threshold) Validate() error {
	if !(t.T1 < t.T2 && t.T2 < t.T3) {
		return fmt.Errorf("%w: got %g, %g, %g", ErrInvalidThreshold, t.T1, t.T2, t.T3)
	}
	return nil
}

// Position is a WGS-84 point in SensorThings (lon, lat) order.
type Position struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Coordinates returns the position as a [lon, lat] pair.
func (p Position) Coordinates() []float64 {
	return []float64{p.Lon, p.Lat}
}

// Section is a monitored river segment.
type Section struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Position    Position  `json:"position"`
	Thresholds  Threshold `json:"thresholds"`
}

// ForecastSample is one predicted water level at one instant.
type ForecastSample struct {
	Timestamp     string  `json:"timestamp"` // ISO-8601, as delivered upstream
	Value         float64 `json:"value"`
	ObservationID string  `json:"observationId"`
}

// TimeWindow bounds the phenomenon times a forecast was queried over.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ForecastSeries is the ordered forecast horizon of one section. Window is
// set when the series was selected by time rather than by latest run.
type ForecastSeries struct {
	RunID   string           `json:"runId,omitempty"`
	Window  *TimeWindow      `json:"window,omitempty"`
	Samples []ForecastSample `json:"samples"`
}

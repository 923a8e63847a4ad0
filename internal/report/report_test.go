package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOptions = Options{
	District:       "Vicenza",
	Language:       "it-IT",
	RegionPosition: domain.Position{Lon: 11.54679, Lat: 45.55012},
}

func freezeClock(t *testing.T) clockwork.Clock {
	t.Helper()
	fake := clockwork.NewFakeClockAt(time.Date(2018, time.January, 26, 8, 15, 30, 450_000_000, time.UTC))
	SetClock(fake)
	t.Cleanup(func() { SetClock(nil) })
	return fake
}

func testSection() domain.Section {
	return domain.Section{
		ID:         "390",
		Name:       "Astico m .00",
		Position:   domain.Position{Lon: 11.5, Lat: 45.7},
		Thresholds: domain.Threshold{T1: 170, T2: 180, T3: 190},
	}
}

func TestSectionReport(t *testing.T) {
	freezeClock(t)

	series := domain.ForecastSeries{
		RunID: "4711",
		Samples: []domain.ForecastSample{
			{Timestamp: "2018-01-26T08:00:00.000Z", Value: 150, ObservationID: "9001"},
			{Timestamp: "2018-01-26T09:00:00.000Z", Value: 185, ObservationID: "9002"},
		},
	}
	c, err := domain.Classify(series, testSection().Thresholds)
	require.NoError(t, err)

	r := NewBuilder(testOptions).SectionReport(testSection(), series, c)

	assert.Equal(t, Topic, r.Header.TopicName)
	assert.Equal(t, "CRCL", r.Header.Sender)
	assert.Equal(t, "2018-01-26T08:15:30Z", r.Header.SentUTC)
	assert.Equal(t, "Vicenza", r.Header.District)
	assert.Equal(t, int64(20190617001), r.Header.Code)
	assert.Equal(t, "Threshold_1=170, Threshold_2=180, Threshold_3=190", r.Header.Note)
	_, err = uuid.Parse(r.Header.MsgIdentifier)
	require.NoError(t, err)

	assert.Equal(t, "4711", r.Body.DataStreamID)
	assert.Equal(t, "River Water Level Forecast", r.Body.DataStreamName)
	assert.Contains(t, r.Body.DataStreamDescription, "4711")
	assert.Equal(t, "it-IT", r.Body.Language)
	assert.Equal(t, []float64{11.5, 45.7}, r.Body.Position)

	require.Len(t, r.Body.Measurements, 2)
	forecast, scale := r.Body.Measurements[0], r.Body.Measurements[1]

	assert.Equal(t, "9002_1", forecast.MeasurementID)
	assert.Equal(t, "2018-01-26T09:00:00Z", forecast.MeasurementTimeStamp)
	assert.Equal(t, 185.0, forecast.YValue)
	assert.Equal(t, "#FFA500", forecast.Color)
	assert.Equal(t, "medium", forecast.Note)
	assert.Equal(t, "390", forecast.DataSeriesID)
	assert.Equal(t, "Astico m .00", forecast.DataSeriesName)

	assert.Equal(t, "9002_2", scale.MeasurementID)
	assert.Equal(t, forecast.MeasurementTimeStamp, scale.MeasurementTimeStamp)
	assert.Equal(t, 2.0, scale.YValue)
	assert.Empty(t, scale.Color)
	assert.Equal(t, "Crisis level 2 (medium)", scale.Note)
}

func TestSectionReport_DataStreamDescription(t *testing.T) {
	freezeClock(t)
	window := &domain.TimeWindow{
		Start: time.Date(2018, 1, 26, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2018, 1, 28, 14, 0, 0, 0, time.UTC),
	}
	samples := []domain.ForecastSample{{Timestamp: "2018-01-26T09:00:00.000Z", Value: 185, ObservationID: "9002"}}

	tests := []struct {
		name   string
		series domain.ForecastSeries
		wantID string
		want   string
	}{
		{
			name:   "last run",
			series: domain.ForecastSeries{RunID: "12", Samples: samples},
			wantID: "12",
			want:   "AMICO predictions of water level in the last run with ID:12",
		},
		{
			name:   "time window",
			series: domain.ForecastSeries{RunID: "11", Window: window, Samples: samples},
			wantID: "11",
			want:   "AMICO predictions of water level in the run with ID:11 at dates:2018-01-26T08:00:00.000Z / 2018-01-28T14:00:00.000Z",
		},
		{
			name:   "untagged",
			series: domain.ForecastSeries{Samples: samples},
			want:   "AMICO predictions of water level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := domain.Classify(tt.series, testSection().Thresholds)
			require.NoError(t, err)

			r := NewBuilder(testOptions).SectionReport(testSection(), tt.series, c)
			assert.Equal(t, tt.wantID, r.Body.DataStreamID)
			assert.Equal(t, tt.want, r.Body.DataStreamDescription)
		})
	}
}

func TestRegionalReport(t *testing.T) {
	freezeClock(t)

	tests := []struct {
		value int
		color string
		note  string
	}{
		{0, "#00FF00", "Overall Crisis Classification Index is TRIVIAL!!!"},
		{1, "#FFFF00", "Overall Crisis Classification Index is LOW!!!"},
		{2, "#FFA500", "Overall Crisis Classification Index is MEDIUM!!!"},
		{3, "#FF0000", "Overall Crisis Classification Index is HIGH!!!"},
	}

	b := NewBuilder(testOptions)
	for _, tt := range tests {
		r := b.RegionalReport(domain.NewRegionalIndex(tt.value))

		require.Len(t, r.Body.Measurements, 1)
		m := r.Body.Measurements[0]
		assert.Equal(t, float64(tt.value), m.YValue)
		assert.Equal(t, tt.color, m.Color)
		assert.Equal(t, tt.note, m.Note)
		assert.Equal(t, r.Header.SentUTC, m.MeasurementTimeStamp)
		assert.Equal(t, "1", r.Body.DataStreamID)
		assert.Equal(t, []float64{11.54679, 45.55012}, r.Body.Position)
	}
}

func TestReports_UniqueMessageIdentifiers(t *testing.T) {
	b := NewBuilder(testOptions)
	a := b.RegionalReport(domain.NewRegionalIndex(1))
	c := b.RegionalReport(domain.NewRegionalIndex(1))
	assert.NotEqual(t, a.Header.MsgIdentifier, c.Header.MsgIdentifier)
}

func TestMetricReport_JSONShape(t *testing.T) {
	freezeClock(t)
	r := NewBuilder(testOptions).RegionalReport(domain.NewRegionalIndex(3))

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "TOP104_METRIC_REPORT", raw["header"]["topicName"])
	assert.Equal(t, "Flood", raw["body"]["dataStreamSubCategory"])
	assert.NotContains(t, raw["header"], "note")
}

func TestNormalizeTimestamp(t *testing.T) {
	assert.Equal(t, "2018-01-26T08:00:00Z", NormalizeTimestamp("2018-01-26T08:00:00.000Z"))
	assert.Equal(t, "2018-01-26T08:00:00.123Z", NormalizeTimestamp("2018-01-26T08:00:00.123Z"))
	assert.Equal(t, "2018-01-26T08:00:00Z", NormalizeTimestamp("2018-01-26T08:00:00Z"))
}

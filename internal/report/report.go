// Package report builds the metric report messages published for each extreme
// river section and for the regional crisis index.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/domain"
	"github.com/google/uuid"
)

// Topic is the bus topic metric reports are published on.
const Topic = "TOP104_METRIC_REPORT"

// Report kinds, carried as a message header.
const (
	KindSection  = "section"
	KindRegional = "regional"
)

const (
	sender         = "CRCL"
	status         = "Actual"
	actionType     = "Update"
	scope          = "Public"
	messageCode    = 20190617001
	category       = "Met"
	subCategory    = "Flood"
	forecastStream = "River Water Level Forecast"
	regionalStream = "Overall Crisis Classification Index"
	windowLayout   = "2006-01-02T15:04:05.000Z"
)

// MetricReport is the envelope sent to the bus.
type MetricReport struct {
	Kind   string `json:"-"`
	Header Header `json:"header"`
	Body   Body   `json:"body"`
}

// Header identifies the message and its sender.
type Header struct {
	TopicName     string `json:"topicName"`
	Sender        string `json:"sender"`
	MsgIdentifier string `json:"msgIdentifier"`
	SentUTC       string `json:"sentUTC"`
	Status        string `json:"status"`
	ActionType    string `json:"actionType"`
	Scope         string `json:"scope"`
	District      string `json:"district"`
	Code          int64  `json:"code"`
	Note          string `json:"note,omitempty"`
}

// Body carries the data stream description and its measurements.
type Body struct {
	DataStreamGenerator   string        `json:"dataStreamGenerator"`
	DataStreamID          string        `json:"dataStreamID"`
	DataStreamName        string        `json:"dataStreamName"`
	DataStreamDescription string        `json:"dataStreamDescription"`
	Language              string        `json:"language"`
	DataStreamCategory    string        `json:"dataStreamCategory"`
	DataStreamSubCategory string        `json:"dataStreamSubCategory"`
	Position              []float64     `json:"position"`
	Measurements          []Measurement `json:"measurements"`
}

// Measurement is one plotted value.
type Measurement struct {
	MeasurementID        string  `json:"measurementID"`
	MeasurementTimeStamp string  `json:"measurementTimeStamp"`
	DataSeriesID         string  `json:"dataSeriesID"`
	DataSeriesName       string  `json:"dataSeriesName"`
	XValue               string  `json:"xValue"`
	YValue               float64 `json:"yValue"`
	Color                string  `json:"color"`
	Note                 string  `json:"note"`
}

// Options holds the deployment-specific envelope fields.
type Options struct {
	District       string
	Language       string
	RegionPosition domain.Position
}

// Builder assembles metric reports.
type Builder struct {
	opts Options
}

// NewBuilder creates a report builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// SectionReport builds the report for one extreme section. It carries two
// measurements: the forecast peak and the derived scale.
func (b *Builder) SectionReport(section domain.Section, series domain.ForecastSeries, c domain.Classification) MetricReport {
	header := b.header()
	th := section.Thresholds
	header.Note = "Threshold_1=" + formatNumber(th.T1) +
		", Threshold_2=" + formatNumber(th.T2) +
		", Threshold_3=" + formatNumber(th.T3)

	ts := NormalizeTimestamp(c.PeakSample.Timestamp)
	obsID := c.PeakSample.ObservationID

	return MetricReport{
		Kind:   KindSection,
		Header: header,
		Body: Body{
			DataStreamGenerator:   sender,
			DataStreamID:          series.RunID,
			DataStreamName:        forecastStream,
			DataStreamDescription: forecastDescription(series),
			Language:              b.opts.Language,
			DataStreamCategory:    category,
			DataStreamSubCategory: subCategory,
			Position:              section.Position.Coordinates(),
			Measurements: []Measurement{
				{
					MeasurementID:        obsID + "_1",
					MeasurementTimeStamp: ts,
					DataSeriesID:         section.ID,
					DataSeriesName:       section.Name,
					YValue:               c.PeakValue,
					Color:                string(c.Color),
					Note:                 c.Note,
				},
				{
					MeasurementID:        obsID + "_2",
					MeasurementTimeStamp: ts,
					DataSeriesID:         section.ID,
					DataSeriesName:       section.Name,
					YValue:               float64(c.Scale),
					Note:                 fmt.Sprintf("Crisis level %d (%s)", c.Scale, c.Note),
				},
			},
		},
	}
}

// RegionalReport builds the report for the overall crisis index.
func (b *Builder) RegionalReport(idx domain.RegionalIndex) MetricReport {
	header := b.header()
	return MetricReport{
		Kind:   KindRegional,
		Header: header,
		Body: Body{
			DataStreamGenerator:   sender,
			DataStreamID:          "1",
			DataStreamName:        regionalStream,
			DataStreamDescription: "Overall Crisis Classification Index at the Region Of Interest based on river water levels by AMICO's forecast",
			Language:              b.opts.Language,
			DataStreamCategory:    category,
			DataStreamSubCategory: subCategory,
			Position:              b.opts.RegionPosition.Coordinates(),
			Measurements: []Measurement{{
				MeasurementID:        "1",
				MeasurementTimeStamp: header.SentUTC,
				DataSeriesID:         "1",
				DataSeriesName:       regionalStream,
				YValue:               float64(idx.Value),
				Color:                string(idx.Color),
				Note:                 "Overall Crisis Classification Index is " + idx.Note + "!!!",
			}},
		},
	}
}

func (b *Builder) header() Header {
	return Header{
		TopicName:     Topic,
		Sender:        sender,
		MsgIdentifier: uuid.NewString(),
		SentUTC:       clock.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
		Status:        status,
		ActionType:    actionType,
		Scope:         scope,
		District:      b.opts.District,
		Code:          messageCode,
	}
}

func forecastDescription(series domain.ForecastSeries) string {
	const prefix = "AMICO predictions of water level"
	switch {
	case series.Window != nil:
		return fmt.Sprintf("%s in the run with ID:%s at dates:%s / %s", prefix, series.RunID,
			series.Window.Start.UTC().Format(windowLayout), series.Window.End.UTC().Format(windowLayout))
	case series.RunID == "":
		return prefix
	default:
		return prefix + " in the last run with ID:" + series.RunID
	}
}

// NormalizeTimestamp drops a zero millisecond suffix: "…T08:00:00.000Z" → "…T08:00:00Z".
func NormalizeTimestamp(ts string) string {
	return strings.Replace(ts, ".000Z", "Z", 1)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package domain

// Classification is the result of classifying one section's forecast.
type Classification struct {
	PeakValue  float64        `json:"peak_value"`
	PeakSample ForecastSample `json:"peak_sample"`
	PeakIndex  int            `json:"peak_index"`
	Scale      Scale          `json:"scale"`
	Color      Color          `json:"color"`
	Note       string         `json:"note"`
	IsExtreme  bool           `json:"is_extreme"`
}

// Classify finds the peak of the series and maps it to a scale against th.
// The earliest sample attaining the peak is reported; later ties are ignored.
func Classify(series ForecastSeries, th Threshold) (Classification, error) {
	if len(series.Samples) == 0 {
		return Classification{}, ErrEmptySeries
	}
	if err := th.Validate(); err != nil {
		return Classification{}, err
	}

	peakIdx := 0
	for i := 1; i < len(series.Samples); i++ {
		if series.Samples[i].Value > series.Samples[peakIdx].Value {
			peakIdx = i
		}
	}

	peak := series.Samples[peakIdx]
	scale := scaleFor(peak.Value, th)

	return Classification{
		PeakValue:  peak.Value,
		PeakSample: peak,
		PeakIndex:  peakIdx,
		Scale:      scale,
		Color:      scale.Color(),
		Note:       scale.Note(),
		IsExtreme:  scale > ScaleTrivial,
	}, nil
}

// scaleFor applies half-open, lower-inclusive intervals: a value equal to a
// threshold belongs to the upper scale.
func scaleFor(v float64, th Threshold) Scale {
	switch {
	case v >= th.T3:
		return ScaleHigh
	case v >= th.T2:
		return ScaleMedium
	case v >= th.T1:
		return ScaleLow
	default:
		return ScaleTrivial
	}
}

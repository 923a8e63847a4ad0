// Package domain models flood crisis classification for monitored river sections.
//
// # Data Source
//
// River sections and their water-level forecasts come from an OGC SensorThings
// service. Each section is a Thing with properties "treshold1..3" (the upstream
// spelling) and one forecast Datastream whose Observations hold the predicted
// level in centimetres, one per forecast step over a ~54h horizon.
//
// # Section Classification
//
// A section's scale comes from the peak of its forecast series compared against
// three ascending thresholds using half-open, lower-inclusive intervals:
//
//	peak <  t1        → 0 trivial (green,  "normal")
//	t1 ≤ peak < t2    → 1 low     (yellow, "low")
//	t2 ≤ peak < t3    → 2 medium  (orange, "medium")
//	peak ≥ t3         → 3 high    (red,    "high")
//
// A value exactly equal to a threshold belongs to the upper scale. When the peak
// occurs more than once, the first occurrence is reported. See [Classify].
//
// # Regional Index
//
// Every classified section adds one count to a [ScaleHistogram]. At the end of
// a run the histogram is reduced to one level with a count-weighted power mean
//
//	mean = (Σ n_s · s^p / Σ n_s)^(1/p)
//
// and the regional index is ceil(mean) clamped to 0..3. Larger p lets a few
// high-scale sections dominate. A histogram is single-use: once the index is
// computed it rejects further records. See [ScaleHistogram.OverallIndex].
package domain

package domain

import "errors"

var (
	// ErrEmptySeries is returned when a forecast series has no samples.
	ErrEmptySeries = errors.New("forecast series is empty")

	// ErrInvalidThreshold is returned when thresholds are not strictly ascending.
	ErrInvalidThreshold = errors.New("thresholds must satisfy t1 < t2 < t3")

	// ErrEmptyHistogram is returned when the regional index is requested before
	// any section was recorded.
	ErrEmptyHistogram = errors.New("scale histogram is empty")

	// ErrHistogramFinalized is returned on any use of a histogram after its
	// regional index was computed.
	ErrHistogramFinalized = errors.New("scale histogram is finalized")

	// ErrInvalidScale is returned when a classification outside 0..3 is recorded.
	ErrInvalidScale = errors.New("scale out of range")

	// ErrInvalidExponent is returned when the power mean exponent is zero,
	// negative, NaN or infinite.
	ErrInvalidExponent = errors.New("power mean exponent must be a finite positive number")
)

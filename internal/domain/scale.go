package domain

// Scale is the ordinal crisis level of a single section.
type Scale int

const (
	ScaleTrivial Scale = iota
	ScaleLow
	ScaleMedium
	ScaleHigh
)

// NumScales is the number of ordinal levels a section can take.
const NumScales = 4

// Color is a hex RGB color used by downstream visualization.
type Color string

const (
	ColorGreen  Color = "#00FF00"
	ColorYellow Color = "#FFFF00"
	ColorOrange Color = "#FFA500"
	ColorRed    Color = "#FF0000"
)

// Valid reports whether s is one of the four defined levels.
func (s Scale) Valid() bool {
	return s >= ScaleTrivial && s <= ScaleHigh
}

// Color returns the display color of a section scale.
func (s Scale) Color() Color {
	switch s {
	case ScaleLow:
		return ColorYellow
	case ScaleMedium:
		return ColorOrange
	case ScaleHigh:
		return ColorRed
	default:
		return ColorGreen
	}
}

// Note returns the short label of a section scale.
func (s Scale) Note() string {
	switch s {
	case ScaleLow:
		return "low"
	case ScaleMedium:
		return "medium"
	case ScaleHigh:
		return "high"
	default:
		return "normal"
	}
}

// regionalNote maps a regional index value to its label. Out-of-range values
// read as TRIVIAL.
func regionalNote(v int) string {
	switch Scale(v) {
	case ScaleLow:
		return "LOW"
	case ScaleMedium:
		return "MEDIUM"
	case ScaleHigh:
		return "HIGH"
	default:
		return "TRIVIAL"
	}
}

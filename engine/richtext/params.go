package richtext

// Params holds the tunable constants of the layout reconciliation.
//
// The baseline correction of an inline object taller than the font is
//
//	max(0, ((h*scale - fontSize - BaselinePad)*BaselineSlope + BaselineBias) * unitsPerPixel * lineSpacing)
//
// which was fitted by hand against the host line-height accounting; none of
// the coefficients are derived.
type Params struct {
	BaselinePad   float32 `toml:"baseline_pad"`
	BaselineSlope float32 `toml:"baseline_slope"`
	BaselineBias  float32 `toml:"baseline_bias"`

	// DegenerateEpsilon is the width/height under which a shaped quad is
	// treated as the zero-area quad emitted at wrap boundaries.
	DegenerateEpsilon float32 `toml:"degenerate_epsilon"`

	// SameLineTolerance scales the font size to obtain the vertical distance
	// under which two quads are considered to share a line.
	SameLineTolerance float32 `toml:"same_line_tolerance"`
}

func DefaultParams() Params {
	return Params{
		BaselinePad:       2,
		BaselineSlope:     0.2,
		BaselineBias:      1,
		DegenerateEpsilon: 1e-6,
		SameLineTolerance: 1,
	}
}

func (p Params) baselineOffset(height, realFontSize, unitsPerPixel, lineSpacing float32) float32 {
	off := ((height-realFontSize-p.BaselinePad)*p.BaselineSlope + p.BaselineBias) * unitsPerPixel * lineSpacing
	if off < 0 {
		return 0
	}
	return off
}

// Package scale validates source geometry against the enhancement scale
// factors supported by the effects SDK.
//
// The SDK trains its models on a fixed range of 16:9 resolutions per scale
// factor. Non-16:9 sources are accepted, but their dimensions are checked
// against the same per-factor bounds, so a 4:3 source competes against the
// 16:9 table.
package scale

// Factor is one of the fixed enhancement scale factors.
type Factor uint8

const (
	// None leaves the source size unchanged. Used when no scaling stage is
	// selected; validation then uses the neutral bound row.
	None Factor = iota

	// X133 scales by 4/3. Disabled by default in configuration surfaces:
	// it rarely lands on a resolution the SDK models accept.
	X133

	// X15 scales by 1.5.
	X15

	// X2 scales by 2.
	X2

	// X3 scales by 3.
	X3

	// X4 scales by 4.
	X4

	numFactors
)

// Ratio returns the multiplier for the factor.
func (f Factor) Ratio() float64 {
	switch f {
	case X133:
		return 4.0 / 3.0
	case X15:
		return 1.5
	case X2:
		return 2
	case X3:
		return 3
	case X4:
		return 4
	default:
		return 1
	}
}

// String returns the factor's display form.
func (f Factor) String() string {
	switch f {
	case X133:
		return "1.33x"
	case X15:
		return "1.5x"
	case X2:
		return "2x"
	case X3:
		return "3x"
	case X4:
		return "4x"
	default:
		return "1x"
	}
}

// Valid reports whether f is a known factor.
func (f Factor) Valid() bool { return f < numFactors }

// Discouraged reports whether the factor is known to be unreliable and
// should be hidden from configuration surfaces by default.
func (f Factor) Discouraged() bool { return f == X133 }

// bounds is the inclusive input-size envelope per factor: minW, minH,
// maxW, maxH. The values are the SDK's published 16:9 training bounds and
// apply to every aspect ratio.
var bounds = [numFactors][4]int{
	None: {160, 90, 1920, 1080},
	X133: {160, 90, 3840, 2160},
	X15:  {160, 90, 3840, 2160},
	X2:   {160, 90, 1920, 1080},
	X3:   {160, 90, 1280, 720},
	X4:   {160, 90, 960, 540},
}

// Bounds returns the inclusive (minW, minH, maxW, maxH) input envelope
// for the factor.
func Bounds(f Factor) (minW, minH, maxW, maxH int) {
	if !f.Valid() {
		f = None
	}
	b := bounds[f]
	return b[0], b[1], b[2], b[3]
}

// Output computes the scaled output size, rounding each dimension half up.
// Deterministic and side-effect free.
func Output(f Factor, w, h int) (outW, outH int) {
	r := f.Ratio()
	return int(float64(w)*r + 0.5), int(float64(h)*r + 0.5)
}

// Validate computes the output size for (w, h) under f and reports whether
// the combination is legal for the SDK:
//
//  1. the input and output aspect ratios must match exactly under integer
//     cross-multiplication (w*outH == h*outW), so rounding cannot drift
//     the ratio;
//  2. the input size must fall within the factor's inclusive bound table.
//
// The computed output size is returned even when ok is false.
func Validate(f Factor, w, h int) (outW, outH int, ok bool) {
	outW, outH = Output(f, w, h)

	if w*outH != h*outW {
		return outW, outH, false
	}

	minW, minH, maxW, maxH := Bounds(f)
	ok = w >= minW && w <= maxW && h >= minH && h <= maxH
	return outW, outH, ok
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compositor

import "github.com/gogpu/gputypes"

// ColorSpace is the color space negotiated with the host compositor for
// the upstream source.
type ColorSpace uint8

const (
	// SpaceSRGB is 8-bit sRGB.
	SpaceSRGB ColorSpace = iota

	// SpaceSRGB16F is sRGB with 16-bit float storage.
	SpaceSRGB16F

	// SpaceRec709Extended is extended-range Rec.709.
	SpaceRec709Extended

	// SpaceRec709SCRGB is scRGB with Rec.709 primaries.
	SpaceRec709SCRGB
)

// String returns the color space name.
func (s ColorSpace) String() string {
	switch s {
	case SpaceSRGB16F:
		return "srgb-16f"
	case SpaceRec709Extended:
		return "rec709-extended"
	case SpaceRec709SCRGB:
		return "rec709-scrgb"
	default:
		return "srgb"
	}
}

// PreferredSpaces is the negotiation order offered to the host when it
// asks which spaces the pipeline can consume.
var PreferredSpaces = [...]ColorSpace{SpaceSRGB, SpaceSRGB16F, SpaceRec709Extended}

// Negotiate picks the first of preferred that matches the source's space,
// falling back to the last preference when none matches. A nil or empty
// preference list returns the source space unchanged.
func Negotiate(source ColorSpace, preferred []ColorSpace) ColorSpace {
	space := source
	for _, p := range preferred {
		space = p
		if p == source {
			break
		}
	}
	return space
}

// FormatForSpace returns the texture format the host uses to carry the
// given color space.
func FormatForSpace(s ColorSpace) gputypes.TextureFormat {
	switch s {
	case SpaceSRGB16F, SpaceRec709Extended, SpaceRec709SCRGB:
		return gputypes.TextureFormatRGBA16Float
	default:
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// DrawTechnique selects the final-composition draw technique and intensity
// multiplier for presenting a frame produced in sourceSpace on a canvas in
// currentSpace. sdrWhiteLevel is the host's SDR white level in nits
// (typically 80-480); the shader math behind each technique name is owned
// by the host.
func DrawTechnique(currentSpace, sourceSpace ColorSpace, sdrWhiteLevel float32) (tech string, multiplier float32) {
	tech = "Draw"
	multiplier = 1

	switch sourceSpace {
	case SpaceSRGB, SpaceSRGB16F:
		if currentSpace == SpaceRec709SCRGB {
			tech = "DrawMultiply"
			multiplier = sdrWhiteLevel / 80
		}

	case SpaceRec709Extended:
		switch currentSpace {
		case SpaceSRGB, SpaceSRGB16F:
			tech = "DrawTonemap"
		case SpaceRec709SCRGB:
			tech = "DrawMultiply"
			multiplier = sdrWhiteLevel / 80
		}

	case SpaceRec709SCRGB:
		switch currentSpace {
		case SpaceSRGB, SpaceSRGB16F:
			tech = "DrawMultiplyTonemap"
			multiplier = 80 / sdrWhiteLevel
		case SpaceRec709Extended:
			tech = "DrawMultiply"
			multiplier = 80 / sdrWhiteLevel
		}
	}

	return tech, multiplier
}

// ConvertTechnique selects the technique and multiplier for converting the
// source render into the unorm staging texture the pipeline reads from.
func ConvertTechnique(sourceSpace ColorSpace, sdrWhiteLevel float32) (tech string, multiplier float32) {
	switch sourceSpace {
	case SpaceRec709Extended:
		return "ConvertUnormTonemap", 1
	case SpaceRec709SCRGB:
		return "ConvertUnormMultiplyTonemap", 80 / sdrWhiteLevel
	default:
		return "ConvertUnorm", 1
	}
}

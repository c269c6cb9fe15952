package vfx

import (
	"strings"

	"github.com/gogpu/vfx/sdk"
)

// Capability describes which effect stages the loaded SDK backend
// supports on the current device. It is produced once at process start by
// Probe and passed by value into every pipeline instance, so multiple
// concurrent pipelines never share mutable capability state.
type Capability struct {
	// Loaded reports whether the SDK backend itself is usable.
	Loaded bool

	// ArtifactReduction, SuperRes, and Upscale report per-stage support.
	ArtifactReduction bool
	SuperRes          bool
	Upscale           bool

	// Info is the raw capability string reported by the SDK.
	Info string
}

// Any reports whether at least one effect stage is supported.
func (c Capability) Any() bool {
	return c.Loaded && (c.ArtifactReduction || c.SuperRes || c.Upscale)
}

// Probe queries the SDK capability string once and derives per-stage
// support from the effect selectors it lists. A failed query yields a
// zero Capability; the caller should then skip pipeline construction
// entirely.
func Probe(s sdk.SDK) Capability {
	info, err := s.Info()
	if err != nil {
		Logger().Info("effects SDK unavailable", "sdk", s.Name(), "err", err)
		return Capability{}
	}

	c := Capability{
		Loaded:            true,
		ArtifactReduction: strings.Contains(info, string(sdk.EffectArtifactReduction)),
		SuperRes:          strings.Contains(info, string(sdk.EffectSuperRes)),
		Upscale:           strings.Contains(info, string(sdk.EffectUpscale)),
		Info:              info,
	}

	Logger().Info("effects SDK probed",
		"sdk", s.Name(),
		"artifact_reduction", c.ArtifactReduction,
		"super_res", c.SuperRes,
		"upscale", c.Upscale)

	return c
}

// Package pipeline drives live video frames through the vendor
// enhancement stages: it validates geometry, owns the chain of GPU image
// buffers between stages, sequences per-frame transfers and stage runs,
// and tears everything down safely against a concurrently rendering host.
//
// Threading model: Tick and Process belong to the host's render thread.
// Update, NotifyFrame, Reset, and Teardown may be called from a control
// thread; they only set state the render thread consumes at the next tick
// or frame boundary. Teardown blocks until no frame is executing.
package pipeline

import (
	"github.com/gogpu/vfx"
	"github.com/gogpu/vfx/scale"
	"github.com/gogpu/vfx/sdk"
)

// Stage selects which scaling stage the pipeline runs after the optional
// artifact-reduction pass.
type Stage uint8

const (
	// StageNone runs no scaling stage. Artifact reduction may still run.
	StageNone Stage = iota

	// StageSuperRes runs neural resolution enhancement.
	StageSuperRes

	// StageUpscale runs non-neural high-quality upscaling.
	StageUpscale
)

// String returns the stage name for logging.
func (s Stage) String() string {
	switch s {
	case StageSuperRes:
		return "superres"
	case StageUpscale:
		return "upscale"
	default:
		return "none"
	}
}

// kind returns the SDK effect selector for the stage.
func (s Stage) kind() sdk.EffectKind {
	if s == StageUpscale {
		return sdk.EffectUpscale
	}
	return sdk.EffectSuperRes
}

// Settings is the user-facing pipeline configuration. The host owns
// persistence; the pipeline only consumes snapshots via Update.
type Settings struct {
	// Stage selects the scaling stage.
	Stage Stage

	// ApplyArtifactReduction runs the artifact-reduction pass before the
	// scaling stage.
	ApplyArtifactReduction bool

	// ARMode is the artifact-reduction aggressiveness.
	ARMode sdk.Mode

	// SRMode is the super-resolution aggressiveness. Ignored by
	// StageUpscale.
	SRMode sdk.Mode

	// Strength is the upscale sharpening strength in [0,1]. Ignored by
	// StageSuperRes.
	Strength float32

	// Scale is the enhancement scale factor. Ignored when Stage is
	// StageNone.
	Scale scale.Factor
}

// DefaultSettings returns the configuration used when the host has no
// persisted settings: the best supported scaling stage at 1.5x, weak
// modes, moderate sharpening, artifact reduction off.
func DefaultSettings(c vfx.Capability) Settings {
	s := Settings{
		ARMode:   sdk.ModeWeak,
		SRMode:   sdk.ModeWeak,
		Strength: 0.4,
		Scale:    scale.X15,
	}
	switch {
	case c.SuperRes:
		s.Stage = StageSuperRes
	case c.Upscale:
		s.Stage = StageUpscale
	}
	return s
}

// clamp normalizes out-of-range values the way the settings surface does:
// strength clamps into [0,1], an unknown scale factor falls back to 1.5x.
func (s Settings) clamp() Settings {
	if s.Strength < 0 {
		s.Strength = 0
	}
	if s.Strength > 1 {
		s.Strength = 1
	}
	if !s.Scale.Valid() {
		s.Scale = scale.X15
	}
	return s
}

// wantsAR reports whether the artifact-reduction stage should exist under
// these settings and capabilities.
func (s Settings) wantsAR(c vfx.Capability) bool {
	return s.ApplyArtifactReduction && c.ArtifactReduction
}

// wantsStage reports whether the scaling stage should exist under these
// settings and capabilities.
func (s Settings) wantsStage(c vfx.Capability) bool {
	switch s.Stage {
	case StageSuperRes:
		return c.SuperRes
	case StageUpscale:
		return c.Upscale
	default:
		return false
	}
}

// factor returns the effective scale factor: None when no scaling stage
// is selected, so geometry validates against the neutral bound row.
func (s Settings) factor(c vfx.Capability) scale.Factor {
	if !s.wantsStage(c) {
		return scale.None
	}
	return s.Scale
}

package pipeline

import (
	"fmt"

	"github.com/gogpu/vfx"
	"github.com/gogpu/vfx/sdk"
)

// stageHandle is one live effect stage plus the input/output images bound
// to it. A stage and its images share a lifetime: destroying the handle
// destroys both. At most one handle exists per stage kind.
type stageHandle struct {
	kind   sdk.EffectKind
	effect sdk.Effect

	in, out sdk.Image

	// needsReload forces a Load before the next run, set whenever
	// parameters, bindings, or model assets change.
	needsReload bool

	// loaded mirrors the last successful Load for the current bindings.
	loaded bool

	// resolutionBad records a resolution-unsupported Load failure. The
	// stage stays unusable until geometry or configuration changes clear
	// the flag.
	resolutionBad bool
}

// newStageHandle creates the effect handle. Creation is cheap; images are
// bound later by the buffer build and Load is a separate step. The handle
// reports the kind the effect itself carries, not the requested selector.
func newStageHandle(s sdk.SDK, kind sdk.EffectKind) (*stageHandle, error) {
	effect, err := s.CreateEffect(kind)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create %s stage: %w", kind, err)
	}
	return &stageHandle{kind: effect.Kind(), effect: effect, needsReload: true}, nil
}

// ensureImages creates or in-place resizes the stage's input and output
// images. Existing images keep their allocation envelope across shrinks.
func (h *stageHandle) ensureImages(s sdk.SDK, inDesc, outDesc sdk.ImageDesc) error {
	var err error
	if h.in, err = ensureImage(s, h.in, inDesc); err != nil {
		return err
	}
	if h.out, err = ensureImage(s, h.out, outDesc); err != nil {
		return err
	}
	h.needsReload = true
	return nil
}

// configure (re)applies every stage parameter and binding. Wiring is
// re-derived wholesale on each rebuild rather than patched incrementally,
// so a stage that changes neighbors cannot keep a stale binding.
func (h *stageHandle) configure(stream sdk.Stream, modelDir string, mode sdk.Mode, strength float32) error {
	if err := h.effect.SetStream(stream); err != nil {
		return fmt.Errorf("pipeline: bind stream to %s: %w", h.kind, err)
	}
	if err := h.effect.SetModelDir(modelDir); err != nil {
		return fmt.Errorf("pipeline: set model dir on %s: %w", h.kind, err)
	}
	if err := h.effect.SetInput(h.in); err != nil {
		return fmt.Errorf("pipeline: bind input to %s: %w", h.kind, err)
	}
	if err := h.effect.SetOutput(h.out); err != nil {
		return fmt.Errorf("pipeline: bind output to %s: %w", h.kind, err)
	}
	if h.kind == sdk.EffectUpscale {
		if err := h.effect.SetStrength(strength); err != nil {
			return fmt.Errorf("pipeline: set strength on %s: %w", h.kind, err)
		}
	} else if err := h.effect.SetMode(mode); err != nil {
		return fmt.Errorf("pipeline: set mode on %s: %w", h.kind, err)
	}
	h.needsReload = true
	h.loaded = false
	return nil
}

// load performs the expensive model load and validation step. A
// resolution-unsupported failure leaves the stage unusable but is
// non-fatal; the caller surfaces a warning and keeps skipping frames.
// Every other failure is fatal to the pipeline generation.
func (h *stageHandle) load() error {
	err := h.effect.Load()
	switch {
	case err == nil:
		h.loaded = true
		h.resolutionBad = false
		h.needsReload = false
		return nil
	case vfx.IsResolutionUnsupported(err):
		h.loaded = false
		h.resolutionBad = true
		h.needsReload = false
		vfx.Logger().Warn("stage rejected current geometry",
			"stage", string(h.kind), "err", err)
		return nil
	default:
		h.loaded = false
		return fmt.Errorf("pipeline: load %s stage: %w", h.kind, err)
	}
}

// usable reports whether the stage can run a frame.
func (h *stageHandle) usable() bool {
	return h != nil && h.loaded && !h.needsReload
}

// destroy releases the effect handle and its bound images. Safe on nil.
func (h *stageHandle) destroy() {
	if h == nil {
		return
	}
	if h.effect != nil {
		h.effect.Destroy()
		h.effect = nil
	}
	if h.in != nil {
		h.in.Destroy()
		h.in = nil
	}
	if h.out != nil {
		h.out.Destroy()
		h.out = nil
	}
	h.loaded = false
}

// ensureImage creates img at desc, or reallocates it in place when it
// already exists.
func ensureImage(s sdk.SDK, img sdk.Image, desc sdk.ImageDesc) (sdk.Image, error) {
	if img == nil {
		created, err := s.CreateImage(desc)
		if err != nil {
			return nil, err
		}
		return created, nil
	}
	if err := img.Realloc(desc); err != nil {
		return img, err
	}
	return img, nil
}

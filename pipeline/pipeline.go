package pipeline

import (
	"fmt"
	"sync"

	"github.com/gogpu/vfx"
	"github.com/gogpu/vfx/compositor"
	"github.com/gogpu/vfx/scale"
	"github.com/gogpu/vfx/sdk"
)

// Warnings is the persistent, user-visible warning state of a pipeline.
// Warnings are conditions, not faults: they clear on their own when
// geometry or configuration changes resolve them.
type Warnings struct {
	// InvalidGeometry reports a source size that fails validation for the
	// selected scale factor. Frames pass through unmodified.
	InvalidGeometry bool

	// ARResolution reports that the artifact-reduction stage rejected the
	// current geometry at load.
	ARResolution bool

	// SRResolution reports that the scaling stage rejected the current
	// geometry at load.
	SRResolution bool
}

// generation identifies the (geometry, stage-selection) pairing the
// current buffers and handles were built for. Any change invalidates
// the whole set.
type generation struct {
	srcW, srcH int
	outW, outH int
	stage      Stage
	ar         bool
}

// Pipeline drives frames from a host compositor through the enhancement
// stages of one effects-SDK backend.
//
// One Pipeline serves one source. Tick, Process, SourceTexture, and
// OutputTexture belong to the render thread; Update, NotifyFrame, Reset,
// Teardown, OutputSize, and Warnings may be called from a control thread.
type Pipeline struct {
	sdkimpl    sdk.SDK
	host       compositor.Host
	capability vfx.Capability

	mu   sync.Mutex
	cond *sync.Cond

	// Control-thread inputs, consumed at the next tick or frame boundary.
	settings            Settings
	pendingDestroyAR    bool
	pendingDestroyStage bool
	pendingReset        bool
	arParamsDirty       bool
	stageParamsDirty    bool
	selectionDirty      bool
	hasNewFrame         bool

	// Lifecycle flags.
	executing   bool
	stopped     bool
	tearingDown bool
	tornDown    bool

	// Published state, written by the render thread under mu so the
	// control thread can read it.
	srcW, srcH    int
	outW, outH    int
	geometryValid bool
	warn          Warnings

	// Render-thread state. Touched only by Tick/Process, and by Teardown
	// after the executing flag has cleared for good.
	stream            sdk.Stream
	modelDir          string
	ar                *stageHandle
	enh               *stageHandle
	buf               bufferSet
	gen               generation
	buffersReady      bool
	initialRenderDone bool
}

// New creates a pipeline on the given SDK backend and host. The
// capability descriptor comes from vfx.Probe at process start; stages the
// device does not support are never created regardless of settings.
func New(s sdk.SDK, host compositor.Host, capability vfx.Capability, settings Settings) *Pipeline {
	p := &Pipeline{
		sdkimpl:    s,
		host:       host,
		capability: capability,
		settings:   settings.clamp(),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Update applies a new configuration snapshot. Safe to call from the
// control thread at any time: changes take effect at the next tick, never
// mid-frame. Applying an identical configuration is a no-op.
func (p *Pipeline) Update(next Settings) {
	next = next.clamp()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tornDown {
		return
	}

	cur := p.settings
	if next == cur {
		return
	}

	if next.wantsAR(p.capability) != cur.wantsAR(p.capability) {
		if !next.wantsAR(p.capability) {
			p.pendingDestroyAR = true
		}
		p.selectionDirty = true
	}
	if next.ARMode != cur.ARMode {
		p.arParamsDirty = true
	}

	if next.wantsStage(p.capability) != cur.wantsStage(p.capability) ||
		next.Stage != cur.Stage {
		// A deselected or re-kinded stage is destroyed at the next safe
		// point, never synchronously from the settings callback.
		if cur.wantsStage(p.capability) {
			p.pendingDestroyStage = true
		}
		p.selectionDirty = true
	}
	if next.SRMode != cur.SRMode || next.Strength != cur.Strength {
		p.stageParamsDirty = true
	}

	// A scale change needs no flag: the next geometry recompute sees it.
	p.settings = next
}

// NotifyFrame marks that the upstream source delivered a new frame. The
// stage pipeline runs at most once per notification; without one, Process
// redraws the previously computed output.
func (p *Pipeline) NotifyFrame() {
	p.mu.Lock()
	p.hasNewFrame = true
	p.mu.Unlock()
}

// Reset requests full stream and stage reconstruction at the next tick.
// Hosts call this when the upstream source itself resets or updates.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.pendingReset = true
	p.mu.Unlock()
}

// OutputSize returns the size the pipeline currently produces: the scaled
// output size when the configuration is valid and a scaling stage is
// active, the source size otherwise.
func (p *Pipeline) OutputSize() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || !p.geometryValid {
		return p.srcW, p.srcH
	}
	return p.outW, p.outH
}

// Warnings returns the current user-visible warning state.
func (p *Pipeline) Warnings() Warnings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.warn
}

// Stopped reports whether a fatal fault has stopped processing. Frames
// pass through unmodified from then on.
func (p *Pipeline) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// SourceTexture returns the render target the host must draw the current
// source frame into before Process. Nil until buffers exist. Render
// thread only.
func (p *Pipeline) SourceTexture() compositor.Texture {
	if !p.buffersReady {
		return nil
	}
	return p.buf.srcTex
}

// OutputTexture returns the texture carrying the enhanced result for
// final composition. Nil until buffers exist. Render thread only.
func (p *Pipeline) OutputTexture() compositor.Texture {
	if !p.buffersReady {
		return nil
	}
	return p.buf.dstTex
}

// Tick advances the pipeline to the current source geometry and
// configuration: consumes deferred destructions, recomputes and validates
// geometry, and (re)builds buffers and stages when the generation
// changed. Call once per render tick, before Process.
func (p *Pipeline) Tick() {
	if !p.begin() {
		return
	}
	defer p.end()

	p.mu.Lock()
	destroyAR := p.pendingDestroyAR
	destroyStage := p.pendingDestroyStage
	reset := p.pendingReset
	arDirty := p.arParamsDirty
	stageDirty := p.stageParamsDirty
	selDirty := p.selectionDirty
	p.pendingDestroyAR = false
	p.pendingDestroyStage = false
	p.pendingReset = false
	p.arParamsDirty = false
	p.stageParamsDirty = false
	p.selectionDirty = false
	cfg := p.settings
	p.mu.Unlock()

	// Deferred stage destruction happens here, at the tick boundary,
	// where no frame can be executing.
	if destroyAR {
		p.ar.destroy()
		p.ar = nil
		p.buffersReady = false
	}
	if destroyStage {
		p.enh.destroy()
		p.enh = nil
		p.buffersReady = false
	}
	if selDirty {
		p.buffersReady = false
	}
	if reset {
		p.rebuildGeneration("source reset")
	}
	if arDirty && p.ar != nil {
		p.ar.needsReload = true
	}
	if stageDirty && p.enh != nil {
		p.enh.needsReload = true
	}

	srcW, srcH := p.host.SourceSize()
	factor := cfg.factor(p.capability)
	outW, outH, ok := scale.Validate(factor, srcW, srcH)
	valid := srcW > 0 && srcH > 0 && ok

	p.mu.Lock()
	wasValid := p.geometryValid
	p.srcW, p.srcH = srcW, srcH
	p.outW, p.outH = outW, outH
	p.geometryValid = valid
	p.warn.InvalidGeometry = !valid && srcW > 0 && srcH > 0
	p.mu.Unlock()

	if !valid {
		if wasValid && srcW > 0 {
			vfx.Logger().Warn("source geometry invalid for scale factor",
				"size", fmt.Sprintf("%dx%d", srcW, srcH),
				"factor", factor.String())
		}
		return
	}

	if !cfg.wantsAR(p.capability) && !cfg.wantsStage(p.capability) {
		// Nothing selected: enhancement is a no-op, keep no generation.
		p.buffersReady = false
		return
	}

	gen := generation{
		srcW: srcW, srcH: srcH,
		outW: outW, outH: outH,
		stage: cfg.Stage,
		ar:    cfg.wantsAR(p.capability),
	}
	if gen != p.gen || !p.buffersReady {
		if err := p.rebuild(cfg, gen); err != nil {
			p.fail(err)
			return
		}
		p.gen = gen
		p.buffersReady = true
		p.initialRenderDone = false
		vfx.Logger().Info("pipeline generation rebuilt",
			"source", fmt.Sprintf("%dx%d", srcW, srcH),
			"output", fmt.Sprintf("%dx%d", outW, outH),
			"stage", cfg.Stage.String(),
			"artifact_reduction", gen.ar)
	}

	if err := p.reloadStages(cfg); err != nil {
		p.fail(err)
		return
	}

	p.mu.Lock()
	p.warn.ARResolution = p.ar != nil && p.ar.resolutionBad
	p.warn.SRResolution = p.enh != nil && p.enh.resolutionBad
	p.mu.Unlock()
}

// rebuild constructs buffers and stage handles for a new generation.
// Existing handles and images are resized and re-wired in place.
func (p *Pipeline) rebuild(cfg Settings, gen generation) error {
	var err error
	if p.stream == nil {
		if p.stream, err = p.sdkimpl.CreateStream(); err != nil {
			return fmt.Errorf("pipeline: create stream: %w", err)
		}
	}

	needModels := gen.ar || gen.stage == StageSuperRes
	if needModels && p.modelDir == "" {
		if p.modelDir, err = p.sdkimpl.ModelDir(); err != nil {
			return fmt.Errorf("pipeline: resolve model dir: %w", err)
		}
	}

	if err = p.buf.build(p.sdkimpl, p.host, gen.srcW, gen.srcH, gen.outW, gen.outH); err != nil {
		return err
	}

	if gen.ar {
		if p.ar == nil {
			if p.ar, err = newStageHandle(p.sdkimpl, sdk.EffectArtifactReduction); err != nil {
				return err
			}
		}
		if err = p.ar.ensureImages(p.sdkimpl,
			planarFloatDesc(gen.srcW, gen.srcH),
			planarFloatDesc(gen.srcW, gen.srcH)); err != nil {
			return err
		}
	}

	if cfg.wantsStage(p.capability) {
		kind := cfg.Stage.kind()
		if p.enh != nil && p.enh.kind != kind {
			p.enh.destroy()
			p.enh = nil
		}
		if p.enh == nil {
			if p.enh, err = newStageHandle(p.sdkimpl, kind); err != nil {
				return err
			}
		}
		inDesc, outDesc := planarFloatDesc(gen.srcW, gen.srcH), planarFloatDesc(gen.outW, gen.outH)
		if cfg.Stage == StageUpscale {
			inDesc, outDesc = chunkyByteDesc(gen.srcW, gen.srcH), chunkyByteDesc(gen.outW, gen.outH)
		}
		if err = p.enh.ensureImages(p.sdkimpl, inDesc, outDesc); err != nil {
			return err
		}
	}
	return nil
}

// reloadStages re-applies parameters and reloads every stage flagged
// needsReload. Wiring is re-derived wholesale each time.
func (p *Pipeline) reloadStages(cfg Settings) error {
	if p.ar != nil && p.ar.needsReload {
		if err := p.ar.configure(p.stream, p.modelDir, cfg.ARMode, 0); err != nil {
			return err
		}
		if err := p.ar.load(); err != nil {
			return err
		}
	}
	if p.enh != nil && p.enh.needsReload {
		if err := p.enh.configure(p.stream, p.modelDir, cfg.SRMode, cfg.Strength); err != nil {
			return err
		}
		if err := p.enh.load(); err != nil {
			return err
		}
	}
	return nil
}

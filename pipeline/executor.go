package pipeline

import (
	"fmt"

	"github.com/gogpu/vfx"
	"github.com/gogpu/vfx/sdk"
)

// FrameResult tells the host what to composite after Process.
type FrameResult uint8

const (
	// FrameSkipped means no enhanced output exists for this frame; the
	// host draws the unmodified source.
	FrameSkipped FrameResult = iota

	// FrameReused means the previously enhanced output is still current;
	// the host redraws OutputTexture without the pipeline running again.
	FrameReused

	// FrameEnhanced means a new enhanced output was produced in
	// OutputTexture.
	FrameEnhanced
)

// String returns the result name for logging.
func (r FrameResult) String() string {
	switch r {
	case FrameReused:
		return "reused"
	case FrameEnhanced:
		return "enhanced"
	default:
		return "skipped"
	}
}

// Process runs the per-frame enhancement protocol. The host must have
// drawn the current source frame into SourceTexture beforehand.
//
// Preconditions are checked in order; any miss skips enhancement for this
// frame and the source passes through unmodified. A transient device
// fault drops the frame and rebuilds the stream and stages; any other
// failure stops the pipeline terminally. Render thread only.
func (p *Pipeline) Process() (FrameResult, error) {
	if !p.begin() {
		return FrameSkipped, nil
	}
	defer p.end()

	p.mu.Lock()
	cfg := p.settings
	valid := p.geometryValid
	newFrame := p.hasNewFrame
	p.mu.Unlock()

	wantAR := cfg.wantsAR(p.capability)
	wantStage := cfg.wantsStage(p.capability)

	switch {
	case !valid,
		!wantAR && !wantStage,
		!p.buffersReady,
		wantAR && !p.ar.usable(),
		wantStage && !p.enh.usable():
		return FrameSkipped, nil
	}

	// Throttle to one pipeline execution per new input frame; the output
	// from the last run stays valid for redraws in between.
	if !newFrame && p.initialRenderDone {
		return FrameReused, nil
	}

	p.mu.Lock()
	p.hasNewFrame = false
	p.mu.Unlock()

	if err := p.runFrame(wantAR, wantStage); err != nil {
		if vfx.IsTransient(err) {
			vfx.Logger().Warn("transient device fault, rebuilding stream and stages", "err", err)
			p.rebuildGeneration("transient device fault")
			return FrameSkipped, nil
		}
		p.fail(err)
		return FrameSkipped, err
	}

	p.initialRenderDone = true
	return FrameEnhanced, nil
}

// runFrame executes the transfer/invoke sequence across the active
// stages. Stages run sequentially; each consumes the previous output.
func (p *Pipeline) runFrame(wantAR, wantStage bool) error {
	b := &p.buf

	first := p.enh
	if wantAR {
		first = p.ar
	}

	// 1. Source texture into the first stage's input, converting to that
	// stage's value-range contract.
	if err := p.textureTransfer(b.srcImg, first.in, false); err != nil {
		return err
	}

	// 2. Optional artifact reduction, output forwarded to the scaling
	// stage or straight toward the destination.
	if wantAR {
		if err := p.ar.effect.Run(); err != nil {
			return fmt.Errorf("pipeline: run %s stage: %w", p.ar.kind, err)
		}
		next := b.dstTmp
		if wantStage {
			next = p.enh.in
		}
		if err := p.transfer(p.ar.out, next); err != nil {
			return err
		}
	}

	// 3. Scaling stage. Planar-float output must hop through the
	// interleaved 8-bit buffer before the device-texture destination;
	// the upscaler's output is already interleaved 8-bit.
	final := b.dstTmp
	if wantStage {
		if err := p.enh.effect.Run(); err != nil {
			return fmt.Errorf("pipeline: run %s stage: %w", p.enh.kind, err)
		}
		if p.enh.out.Desc().Component == sdk.F32 {
			if err := p.transfer(p.enh.out, b.dstTmp); err != nil {
				return err
			}
		} else {
			final = p.enh.out
		}
	}

	// 4. Final staged result into the destination texture, no scaling.
	return p.textureTransfer(final, b.dstImg, true)
}

// transfer moves src into dst with the multiplier their value-range
// contracts demand.
func (p *Pipeline) transfer(src, dst sdk.Image) error {
	err := p.sdkimpl.Transfer(src, dst, transferScale(src.Desc(), dst.Desc()), p.stream, p.buf.staging)
	if err != nil {
		return fmt.Errorf("pipeline: transfer: %w", err)
	}
	return nil
}

// textureTransfer is transfer with the map/unmap bracket a
// device-texture-backed endpoint requires. mapDst selects which side is
// texture-backed.
func (p *Pipeline) textureTransfer(src, dst sdk.Image, mapDst bool) error {
	mapped := src
	if mapDst {
		mapped = dst
	}
	if err := mapped.Map(p.stream); err != nil {
		return fmt.Errorf("pipeline: map texture image: %w", err)
	}
	transferErr := p.transfer(src, dst)
	if err := mapped.Unmap(p.stream); err != nil && transferErr == nil {
		transferErr = fmt.Errorf("pipeline: unmap texture image: %w", err)
	}
	return transferErr
}

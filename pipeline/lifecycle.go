package pipeline

import "github.com/gogpu/vfx"

// begin enters the render-thread critical section. Returns false when the
// pipeline is stopped or tearing down, in which case the caller must skip
// all work.
func (p *Pipeline) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.tearingDown || p.tornDown {
		return false
	}
	p.executing = true
	return true
}

// end leaves the critical section and wakes any waiting teardown.
func (p *Pipeline) end() {
	p.mu.Lock()
	p.executing = false
	p.cond.Broadcast()
	p.mu.Unlock()
}

// fail stops the pipeline terminally. Future ticks and frames no-op and
// the source passes through unmodified.
func (p *Pipeline) fail(err error) {
	vfx.Logger().Error("pipeline stopped", "kind", vfx.KindOf(err).String(), "err", err)
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

// rebuildGeneration destroys the execution stream and every stage handle
// (with their bound images) so the next tick reconstructs them. This is
// the recovery path for transient device faults and for upstream source
// resets; it is never a per-call retry. Render thread only.
func (p *Pipeline) rebuildGeneration(reason string) {
	vfx.Logger().Info("rebuilding stream and stages", "reason", reason)

	p.ar.destroy()
	p.ar = nil
	p.enh.destroy()
	p.enh = nil
	if p.stream != nil {
		p.stream.Destroy()
		p.stream = nil
	}
	p.buffersReady = false
	p.initialRenderDone = false
	p.gen = generation{}
}

// Teardown releases every resource the pipeline owns: stage handles and
// their images, the execution stream, owned buffers, and the textures it
// created. It first raises the stop flag, then blocks until no frame is
// executing, so nothing is freed under a running executor.
//
// Idempotent and safe to invoke from multiple goroutines; exactly one
// caller performs the release.
func (p *Pipeline) Teardown() {
	p.mu.Lock()
	if p.tornDown {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.tearingDown = true
	for p.executing {
		p.cond.Wait()
	}
	if p.tornDown {
		// Another teardown finished while this one waited.
		p.mu.Unlock()
		return
	}
	p.tornDown = true
	p.mu.Unlock()

	// The render thread can no longer enter begin(), so the
	// render-thread state is safe to release here.
	p.ar.destroy()
	p.ar = nil
	p.enh.destroy()
	p.enh = nil
	if p.stream != nil {
		p.stream.Destroy()
		p.stream = nil
	}
	p.buf.destroy()
	p.buffersReady = false

	vfx.Logger().Info("pipeline torn down")
}

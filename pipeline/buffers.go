package pipeline

import (
	"fmt"

	"github.com/gogpu/vfx/compositor"
	"github.com/gogpu/vfx/sdk"
)

// Stage image descriptors. Planar float stages carry three [0,1] channels;
// interleaved 8-bit stages carry four [0,255] channels with the row
// alignment the upscaler wants.
func planarFloatDesc(w, h int) sdk.ImageDesc {
	return sdk.ImageDesc{
		Width: w, Height: h,
		Format:    sdk.FormatBGR,
		Component: sdk.F32,
		Layout:    sdk.Planar,
		Alignment: 1,
	}
}

func chunkyByteDesc(w, h int) sdk.ImageDesc {
	return sdk.ImageDesc{
		Width: w, Height: h,
		Format:    sdk.FormatRGBA,
		Component: sdk.U8,
		Layout:    sdk.Chunky,
		Alignment: 32,
	}
}

// bufferSet is the chain of buffers the executor moves a frame through:
// the host-facing source and destination textures with their SDK image
// wrappers, the mandatory 8-bit hop in front of the destination texture,
// and the shared staging scratch buffer.
type bufferSet struct {
	// srcTex is the render target the host draws the current source frame
	// into. dstTex receives the enhanced result for final composition.
	srcTex compositor.Texture
	dstTex compositor.Texture

	// srcImg and dstImg wrap the textures for SDK transfers. Re-bound
	// whenever the textures are recreated.
	srcImg sdk.Image
	dstImg sdk.Image

	// dstTmp is the interleaved 8-bit buffer every planar-float stage
	// output passes through before the device-texture destination. The
	// device transfer path cannot take planar float directly even though
	// no format mismatch is declared.
	dstTmp sdk.Image

	// staging is scratch for size- or format-changing transfers, sized to
	// the largest geometry of the generation so per-frame transfers never
	// allocate.
	staging sdk.Image

	srcW, srcH int
	outW, outH int
}

// build creates or in-place resizes the buffer chain for the given
// geometry. Textures cannot resize, so a geometry change recreates them
// and re-binds their image wrappers; owned images realloc in place and
// keep their envelope. On failure the set is left consistent but not
// ready; the caller flags the pipeline stopped.
func (b *bufferSet) build(s sdk.SDK, host compositor.Host, srcW, srcH, outW, outH int) error {
	if err := b.buildTextures(host, srcW, srcH, outW, outH); err != nil {
		return err
	}

	var err error
	if b.srcImg, err = ensureTextureImage(s, b.srcImg, chunkyByteDesc(srcW, srcH), b.srcTex); err != nil {
		return fmt.Errorf("pipeline: wrap source texture: %w", err)
	}

	if b.dstImg, err = ensureTextureImage(s, b.dstImg, chunkyByteDesc(outW, outH), b.dstTex); err != nil {
		return fmt.Errorf("pipeline: wrap destination texture: %w", err)
	}

	if b.dstTmp, err = ensureImage(s, b.dstTmp, chunkyByteDesc(outW, outH)); err != nil {
		return fmt.Errorf("pipeline: destination hop buffer: %w", err)
	}

	// The staging buffer is allocated at the largest size this generation
	// can demand and immediately resized down to its logical size, so
	// later fluctuation within the envelope never reallocates.
	maxW, maxH := srcW, srcH
	if outW > maxW {
		maxW = outW
	}
	if outH > maxH {
		maxH = outH
	}
	if b.staging == nil {
		if b.staging, err = s.CreateImage(chunkyByteDesc(maxW, maxH)); err != nil {
			return fmt.Errorf("pipeline: staging buffer: %w", err)
		}
	}
	if err = b.staging.Realloc(chunkyByteDesc(outW, outH)); err != nil {
		return fmt.Errorf("pipeline: staging buffer: %w", err)
	}

	b.srcW, b.srcH = srcW, srcH
	b.outW, b.outH = outW, outH
	return nil
}

// buildTextures recreates the source and destination render targets when
// their geometry changed.
func (b *bufferSet) buildTextures(host compositor.Host, srcW, srcH, outW, outH int) error {
	if b.srcTex == nil || b.srcW != srcW || b.srcH != srcH {
		if b.srcTex != nil {
			b.srcTex.Destroy()
			b.srcTex = nil
		}
		tex, err := host.CreateTexture(compositor.DefaultTextureDescriptor(srcW, srcH))
		if err != nil {
			return fmt.Errorf("pipeline: source render target: %w", err)
		}
		b.srcTex = tex
	}
	if b.dstTex == nil || b.outW != outW || b.outH != outH {
		if b.dstTex != nil {
			b.dstTex.Destroy()
			b.dstTex = nil
		}
		tex, err := host.CreateTexture(compositor.DefaultTextureDescriptor(outW, outH))
		if err != nil {
			return fmt.Errorf("pipeline: destination render target: %w", err)
		}
		b.dstTex = tex
	}
	return nil
}

// destroy releases everything the set owns. Idempotent.
func (b *bufferSet) destroy() {
	for _, img := range []sdk.Image{b.srcImg, b.dstImg, b.dstTmp, b.staging} {
		if img != nil {
			img.Destroy()
		}
	}
	b.srcImg, b.dstImg, b.dstTmp, b.staging = nil, nil, nil, nil

	if b.srcTex != nil {
		b.srcTex.Destroy()
		b.srcTex = nil
	}
	if b.dstTex != nil {
		b.dstTex.Destroy()
		b.dstTex = nil
	}
	b.srcW, b.srcH, b.outW, b.outH = 0, 0, 0, 0
}

// ensureTextureImage creates the wrapper image on first use and (re)binds
// it to the texture's native handle. Texture-backed wrappers never
// realloc: BindTexture re-derives the descriptor from the texture itself,
// so a recreated texture only needs a rebind.
func ensureTextureImage(s sdk.SDK, img sdk.Image, desc sdk.ImageDesc, tex compositor.Texture) (sdk.Image, error) {
	if img == nil {
		created, err := s.CreateImage(desc)
		if err != nil {
			return nil, err
		}
		img = created
	}
	if err := img.BindTexture(tex.NativeHandle()); err != nil {
		return img, err
	}
	return img, nil
}

// transferScale is the intensity multiplier for a transfer between two
// images, derived from each side's fixed value-range contract: 8-bit
// channels live on [0,255], float channels on [0,1].
func transferScale(src, dst sdk.ImageDesc) float32 {
	switch {
	case src.Component == sdk.U8 && dst.Component == sdk.F32:
		return 1.0 / 255.0
	case src.Component == sdk.F32 && dst.Component == sdk.U8:
		return 255
	default:
		return 1
	}
}

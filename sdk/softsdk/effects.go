package softsdk

import (
	"fmt"
	stdimage "image"

	"golang.org/x/image/draw"

	"github.com/gogpu/vfx"
	"github.com/gogpu/vfx/scale"
	"github.com/gogpu/vfx/sdk"
)

// softEffect is one soft enhancement stage.
type softEffect struct {
	kind     sdk.EffectKind
	mode     sdk.Mode
	strength float32
	modelDir string
	stream   sdk.Stream
	in, out  *softImage

	loaded    bool
	destroyed bool
}

// Kind returns the effect selector.
func (e *softEffect) Kind() sdk.EffectKind { return e.kind }

// SetMode sets the enhancement mode and invalidates the loaded state.
func (e *softEffect) SetMode(m sdk.Mode) error {
	if e.destroyed {
		return sdk.ErrEffectDestroyed
	}
	e.mode = m
	e.loaded = false
	return nil
}

// SetStrength sets the upscale sharpening strength.
func (e *softEffect) SetStrength(s float32) error {
	if e.destroyed {
		return sdk.ErrEffectDestroyed
	}
	if s < 0 || s > 1 {
		return vfx.NewFault(vfx.KindSDKCall, "set strength",
			fmt.Errorf("softsdk: strength %v outside [0,1]", s))
	}
	e.strength = s
	e.loaded = false
	return nil
}

// SetModelDir points the stage at its model assets.
func (e *softEffect) SetModelDir(dir string) error {
	if e.destroyed {
		return sdk.ErrEffectDestroyed
	}
	e.modelDir = dir
	e.loaded = false
	return nil
}

// SetStream binds the shared execution stream.
func (e *softEffect) SetStream(s sdk.Stream) error {
	if e.destroyed {
		return sdk.ErrEffectDestroyed
	}
	e.stream = s
	return nil
}

// SetInput binds the stage input image.
func (e *softEffect) SetInput(img sdk.Image) error {
	return e.bind(&e.in, img)
}

// SetOutput binds the stage output image.
func (e *softEffect) SetOutput(img sdk.Image) error {
	return e.bind(&e.out, img)
}

func (e *softEffect) bind(slot **softImage, img sdk.Image) error {
	if e.destroyed {
		return sdk.ErrEffectDestroyed
	}
	si, ok := img.(*softImage)
	if !ok {
		return vfx.NewFault(vfx.KindSDKCall, "bind image",
			fmt.Errorf("softsdk: image %T is from another backend", img))
	}
	*slot = si
	e.loaded = false
	return nil
}

// needsModels reports whether the stage requires model assets.
func (e *softEffect) needsModels() bool {
	return e.kind == sdk.EffectArtifactReduction || e.kind == sdk.EffectSuperRes
}

// wantsPlanar reports whether the stage operates on planar float images.
func (e *softEffect) wantsPlanar() bool {
	return e.kind != sdk.EffectUpscale
}

// Load validates bindings, parameters, and geometry. Incompatible
// geometry fails with a resolution-unsupported fault; everything else is
// an sdk-call fault.
func (e *softEffect) Load() error {
	if e.destroyed {
		return sdk.ErrEffectDestroyed
	}
	if e.in == nil || e.out == nil || e.stream == nil {
		return vfx.NewFault(vfx.KindSDKCall, "load",
			fmt.Errorf("softsdk: %s effect missing bindings", e.kind))
	}
	if e.needsModels() && e.modelDir == "" {
		return vfx.NewFault(vfx.KindSDKCall, "load",
			fmt.Errorf("softsdk: %s effect requires a model directory", e.kind))
	}

	ind, outd := e.in.desc, e.out.desc
	if e.wantsPlanar() {
		if ind.Layout != sdk.Planar || ind.Component != sdk.F32 ||
			outd.Layout != sdk.Planar || outd.Component != sdk.F32 {
			return vfx.NewFault(vfx.KindSDKCall, "load",
				fmt.Errorf("softsdk: %s effect requires planar float images", e.kind))
		}
	} else if ind.Layout != sdk.Chunky || ind.Component != sdk.U8 ||
		outd.Layout != sdk.Chunky || outd.Component != sdk.U8 {
		return vfx.NewFault(vfx.KindSDKCall, "load",
			fmt.Errorf("softsdk: %s effect requires interleaved 8-bit images", e.kind))
	}

	if err := e.checkGeometry(); err != nil {
		return err
	}

	e.loaded = true
	return nil
}

// checkGeometry enforces the same per-factor bound table the vendor
// models are trained on.
func (e *softEffect) checkGeometry() error {
	ind, outd := e.in.desc, e.out.desc

	if e.kind == sdk.EffectArtifactReduction {
		if ind.Width != outd.Width || ind.Height != outd.Height {
			return &vfx.Fault{
				Kind: vfx.KindResolutionUnsupported,
				Op:   "load",
				Diag: fmt.Sprintf("artifact reduction cannot resize %dx%d to %dx%d",
					ind.Width, ind.Height, outd.Width, outd.Height),
			}
		}
		if _, _, ok := scale.Validate(scale.None, ind.Width, ind.Height); !ok {
			return &vfx.Fault{
				Kind: vfx.KindResolutionUnsupported,
				Op:   "load",
				Diag: fmt.Sprintf("%dx%d outside supported bounds", ind.Width, ind.Height),
			}
		}
		return nil
	}

	// Scaling stages: the output must land exactly on one supported factor
	// and the input must fall inside that factor's bound table.
	for f := scale.X133; f <= scale.X4; f++ {
		outW, outH, ok := scale.Validate(f, ind.Width, ind.Height)
		if outW == outd.Width && outH == outd.Height {
			if ok {
				return nil
			}
			break
		}
	}
	return &vfx.Fault{
		Kind: vfx.KindResolutionUnsupported,
		Op:   "load",
		Diag: fmt.Sprintf("%s cannot scale %dx%d to %dx%d",
			e.kind, ind.Width, ind.Height, outd.Width, outd.Height),
	}
}

// Run executes the stage once.
func (e *softEffect) Run() error {
	if e.destroyed {
		return sdk.ErrEffectDestroyed
	}
	if !e.loaded {
		return vfx.NewFault(vfx.KindSDKCall, "run",
			fmt.Errorf("softsdk: %s effect not loaded", e.kind))
	}
	if err := e.in.ready(); err != nil {
		return vfx.NewFault(vfx.KindSDKCall, "run", err)
	}
	if err := e.out.ready(); err != nil {
		return vfx.NewFault(vfx.KindSDKCall, "run", err)
	}

	switch e.kind {
	case sdk.EffectArtifactReduction:
		e.runArtifactReduction()
	case sdk.EffectSuperRes:
		e.runSuperRes()
	default:
		e.runUpscale()
	}
	return nil
}

// Destroy releases the stage handle. Idempotent.
func (e *softEffect) Destroy() {
	e.destroyed = true
	e.loaded = false
	e.in = nil
	e.out = nil
	e.stream = nil
}

// runArtifactReduction applies a 3x3 mean filter on the planar float
// input. Weak mode blends half of the filtered result back with the
// original; strong mode takes the filtered result outright.
func (e *softEffect) runArtifactReduction() {
	w, h := e.in.desc.Width, e.in.desc.Height
	blend := float32(0.5)
	if e.mode == sdk.ModeStrong {
		blend = 1
	}

	for c := 0; c < 3; c++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var sum float32
				var n float32
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						xx, yy := x+dx, y+dy
						if xx < 0 || xx >= w || yy < 0 || yy >= h {
							continue
						}
						sum += e.in.at(xx, yy, c)
						n++
					}
				}
				orig := e.in.at(x, y, c)
				e.out.set(x, y, c, orig+(sum/n-orig)*blend)
			}
		}
	}
}

// runSuperRes resamples the planar float input to the output size. Weak
// mode uses bilinear, strong mode Catmull-Rom. Precision goes through
// RGBA64 so [0,1] float channels survive the round trip.
func (e *softEffect) runSuperRes() {
	src := e.toRGBA64(e.in)
	dst := stdimage.NewRGBA64(stdimage.Rect(0, 0, e.out.desc.Width, e.out.desc.Height))

	kernel := draw.Interpolator(draw.ApproxBiLinear)
	if e.mode == sdk.ModeStrong {
		kernel = draw.CatmullRom
	}
	kernel.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	e.fromRGBA64(dst, e.out)
}

// runUpscale resamples the interleaved 8-bit input bilinearly, then
// applies strength-weighted unsharp masking.
func (e *softEffect) runUpscale() {
	w, h := e.in.desc.Width, e.in.desc.Height
	ow, oh := e.out.desc.Width, e.out.desc.Height

	src := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := e.in.rgba(x, y)
			i := y*src.Stride + x*4
			src.Pix[i+0] = clampU8(r)
			src.Pix[i+1] = clampU8(g)
			src.Pix[i+2] = clampU8(b)
			src.Pix[i+3] = clampU8(a)
		}
	}

	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, ow, oh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	k := e.strength
	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			i := y*dst.Stride + x*4
			for c := 0; c < 3; c++ {
				base := float32(dst.Pix[i+c])
				v := base
				if k > 0 {
					v = base + k*(base-e.meanAround(dst, x, y, c))
				}
				e.out.set(x, y, c, v)
			}
			e.out.set(x, y, 3, float32(dst.Pix[i+3]))
		}
	}
}

// meanAround is the 3x3 neighborhood mean used by the unsharp mask.
func (e *softEffect) meanAround(img *stdimage.RGBA, x, y, c int) float32 {
	b := img.Bounds()
	var sum float32
	var n float32
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			xx, yy := x+dx, y+dy
			if xx < b.Min.X || xx >= b.Max.X || yy < b.Min.Y || yy >= b.Max.Y {
				continue
			}
			sum += float32(img.Pix[yy*img.Stride+xx*4+c])
			n++
		}
	}
	return sum / n
}

// toRGBA64 expands a planar float image into 16-bit RGBA.
func (e *softEffect) toRGBA64(img *softImage) *stdimage.RGBA64 {
	w, h := img.desc.Width, img.desc.Height
	out := stdimage.NewRGBA64(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.rgba(x, y)
			i := y*out.Stride + x*8
			putU16(out.Pix[i+0:], clampU16(r*65535))
			putU16(out.Pix[i+2:], clampU16(g*65535))
			putU16(out.Pix[i+4:], clampU16(b*65535))
			putU16(out.Pix[i+6:], 65535)
		}
	}
	return out
}

// fromRGBA64 collapses 16-bit RGBA back into a planar float image.
func (e *softEffect) fromRGBA64(src *stdimage.RGBA64, img *softImage) {
	w, h := img.desc.Width, img.desc.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*8
			r := float32(getU16(src.Pix[i+0:])) / 65535
			g := float32(getU16(src.Pix[i+2:])) / 65535
			b := float32(getU16(src.Pix[i+4:])) / 65535
			img.setRGBA(x, y, r, g, b, 1)
		}
	}
}

func putU16(p []byte, v uint16) {
	p[0] = byte(v >> 8)
	p[1] = byte(v)
}

func getU16(p []byte) uint16 {
	return uint16(p[0])<<8 | uint16(p[1])
}

func clampU16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 65535 {
		return 65535
	}
	return uint16(v + 0.5)
}

// Ensure softEffect implements sdk.Effect.
var _ sdk.Effect = (*softEffect)(nil)

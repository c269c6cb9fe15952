// Package softsdk is the CPU reference implementation of the effects SDK
// interface. It exists so hosts without the vendor hardware stack can run
// the full pipeline, and so the pipeline's transfer, lifecycle, and error
// semantics are exercised by tests without a GPU.
//
// The backend registers itself as "soft":
//
//	import _ "github.com/gogpu/vfx/sdk/softsdk"
//	s := sdk.Default()
//
// Enhancement quality is intentionally modest: artifact reduction is a
// small spatial filter, super-resolution is Catmull-Rom resampling, and
// upscaling is bilinear resampling with strength-weighted sharpening. What
// matters is that every stage honors its value-range contract (planar
// float stages on [0,1], interleaved 8-bit stages on [0,255]) and its
// geometry bounds, exactly like the vendor stages.
package softsdk

import (
	"fmt"
	"os"

	"github.com/gogpu/vfx"
	"github.com/gogpu/vfx/sdk"
)

func init() {
	sdk.Register(sdk.BackendSoft, func() sdk.SDK { return New() })
}

// envModelDir overrides the model asset directory when set.
const envModelDir = "VFX_MODEL_DIR"

// SDK is the soft backend.
type SDK struct{}

// New creates a soft backend instance.
func New() *SDK { return &SDK{} }

// Name returns "soft".
func (*SDK) Name() string { return sdk.BackendSoft }

// Info reports every effect kind: the CPU path has no device constraints.
func (*SDK) Info() (string, error) {
	return fmt.Sprintf("%s %s %s",
		sdk.EffectArtifactReduction, sdk.EffectSuperRes, sdk.EffectUpscale), nil
}

// softStream is a no-op execution stream: the soft backend runs
// synchronously on the calling goroutine.
type softStream struct{}

// Destroy implements sdk.Stream.
func (*softStream) Destroy() {}

// CreateStream creates an execution stream.
func (*SDK) CreateStream() (sdk.Stream, error) { return &softStream{}, nil }

// CreateImage allocates an image buffer.
func (*SDK) CreateImage(desc sdk.ImageDesc) (sdk.Image, error) {
	img, err := newSoftImage(desc)
	if err != nil {
		return nil, vfx.NewFault(vfx.KindAllocation, "create image", err)
	}
	return img, nil
}

// CreateEffect creates an effect stage handle.
func (*SDK) CreateEffect(kind sdk.EffectKind) (sdk.Effect, error) {
	switch kind {
	case sdk.EffectArtifactReduction, sdk.EffectSuperRes, sdk.EffectUpscale:
		return &softEffect{kind: kind}, nil
	default:
		return nil, vfx.NewFault(vfx.KindSDKCall, "create effect",
			fmt.Errorf("softsdk: unknown effect kind %q", kind))
	}
}

// ModelDir resolves the model asset directory. The soft effects carry
// their "models" in code, so the directory only has to be a stable path.
func (*SDK) ModelDir() (string, error) {
	if dir := os.Getenv(envModelDir); dir != "" {
		return dir, nil
	}
	return "models", nil
}

// Transfer copies src into dst, converting format and layout as needed and
// multiplying raw channel intensities by scale. Both images must have the
// same logical size; texture-backed endpoints must be mapped. The staging
// image is accepted for interface fidelity but the CPU path converts
// directly.
func (*SDK) Transfer(src, dst sdk.Image, scaleFactor float32, _ sdk.Stream, _ sdk.Image) error {
	s, ok := src.(*softImage)
	if !ok {
		return vfx.NewFault(vfx.KindSDKCall, "transfer",
			fmt.Errorf("softsdk: source image %T is from another backend", src))
	}
	d, ok := dst.(*softImage)
	if !ok {
		return vfx.NewFault(vfx.KindSDKCall, "transfer",
			fmt.Errorf("softsdk: destination image %T is from another backend", dst))
	}

	if err := s.ready(); err != nil {
		return vfx.NewFault(vfx.KindSDKCall, "transfer", err)
	}
	if err := d.ready(); err != nil {
		return vfx.NewFault(vfx.KindSDKCall, "transfer", err)
	}

	sd, dd := s.desc, d.desc
	if sd.Width != dd.Width || sd.Height != dd.Height {
		return vfx.NewFault(vfx.KindSDKCall, "transfer",
			fmt.Errorf("softsdk: size mismatch %dx%d -> %dx%d",
				sd.Width, sd.Height, dd.Width, dd.Height))
	}

	for y := 0; y < sd.Height; y++ {
		for x := 0; x < sd.Width; x++ {
			r, g, b, a := s.rgba(x, y)
			d.setRGBA(x, y, r*scaleFactor, g*scaleFactor, b*scaleFactor, a*scaleFactor)
		}
	}
	return nil
}

// Ensure SDK implements sdk.SDK.
var _ sdk.SDK = (*SDK)(nil)

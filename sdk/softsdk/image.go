package softsdk

import (
	"errors"
	"fmt"
	stdimage "image"

	"github.com/gogpu/vfx/sdk"
)

// Image errors.
var (
	// ErrNotTextureBacked is returned when mapping an image that does not
	// wrap a host texture.
	ErrNotTextureBacked = errors.New("softsdk: image is not texture-backed")

	// ErrNotMapped is returned when transferring to or from an unmapped
	// texture-backed image.
	ErrNotMapped = errors.New("softsdk: texture-backed image is not mapped")

	// ErrBadNativeHandle is returned when BindTexture receives anything but
	// the *image.RGBA the soft backend understands.
	ErrBadNativeHandle = errors.New("softsdk: native handle is not *image.RGBA")
)

// storageClass splits descriptors by backing array type.
func storageClass(c sdk.ComponentType) int {
	if c == sdk.F32 {
		return 1
	}
	return 0
}

// softImage is the soft backend's image buffer.
//
// Chunky U8 images are backed by []uint8, planar F32 images by []float32.
// The backing array is an allocation envelope: Realloc reuses it whenever
// the requested logical size fits, so shrinking within a previously
// allocated envelope never allocates. Not safe for concurrent use; the
// pipeline serializes all image access on the render thread.
type softImage struct {
	desc sdk.ImageDesc

	pix  []uint8   // chunky u8 backing
	fpix []float32 // planar f32 backing

	// capPixels is the envelope in pixels the current backing can hold.
	capPixels int
	class     int

	// grows counts backing allocations, observable via Grows for tests of
	// the envelope policy.
	grows int

	// tex is non-nil for device-texture-backed images.
	tex    *stdimage.RGBA
	mapped bool

	destroyed bool
}

func newSoftImage(desc sdk.ImageDesc) (*softImage, error) {
	img := &softImage{class: -1}
	if err := img.Realloc(desc); err != nil {
		return nil, err
	}
	return img, nil
}

// Desc returns the current logical descriptor.
func (img *softImage) Desc() sdk.ImageDesc { return img.desc }

// Grows returns how many times the backing array had to be allocated.
func (img *softImage) Grows() int { return img.grows }

// Capacity returns the allocation envelope in pixels.
func (img *softImage) Capacity() int { return img.capPixels }

// Realloc resizes or reformats the image in place, allocating a new
// backing array only when the requested size exceeds the envelope or the
// storage class changes.
func (img *softImage) Realloc(desc sdk.ImageDesc) error {
	if img.destroyed {
		return sdk.ErrImageDestroyed
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return fmt.Errorf("softsdk: realloc to invalid size %dx%d", desc.Width, desc.Height)
	}
	if img.tex != nil {
		return errors.New("softsdk: cannot realloc a texture-backed image")
	}

	pixels := desc.Width * desc.Height
	class := storageClass(desc.Component)

	if pixels > img.capPixels || class != img.class {
		switch class {
		case 1:
			img.fpix = make([]float32, pixels*3)
			img.pix = nil
		default:
			img.pix = make([]uint8, pixels*4)
			img.fpix = nil
		}
		img.capPixels = pixels
		img.class = class
		img.grows++
	}

	img.desc = desc
	return nil
}

// BindTexture re-initializes the image as a wrapper around a host texture.
// The soft backend's native handle is the texture's backing *image.RGBA.
func (img *softImage) BindTexture(native any) error {
	if img.destroyed {
		return sdk.ErrImageDestroyed
	}
	rgba, ok := native.(*stdimage.RGBA)
	if !ok || rgba == nil {
		return fmt.Errorf("%w: got %T", ErrBadNativeHandle, native)
	}

	b := rgba.Bounds()
	img.tex = rgba
	img.pix = nil
	img.fpix = nil
	img.capPixels = 0
	img.class = storageClass(sdk.U8)
	img.mapped = false
	img.desc = sdk.ImageDesc{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    sdk.FormatRGBA,
		Component: sdk.U8,
		Layout:    sdk.Chunky,
		Alignment: rgba.Stride - b.Dx()*4,
	}
	return nil
}

// Map prepares a texture-backed image for transfer.
func (img *softImage) Map(_ sdk.Stream) error {
	if img.destroyed {
		return sdk.ErrImageDestroyed
	}
	if img.tex == nil {
		return ErrNotTextureBacked
	}
	img.mapped = true
	return nil
}

// Unmap releases the mapping taken by Map.
func (img *softImage) Unmap(_ sdk.Stream) error {
	if img.destroyed {
		return sdk.ErrImageDestroyed
	}
	if img.tex == nil {
		return ErrNotTextureBacked
	}
	img.mapped = false
	return nil
}

// Destroy releases the backing storage. Idempotent.
func (img *softImage) Destroy() {
	img.destroyed = true
	img.pix = nil
	img.fpix = nil
	img.tex = nil
	img.capPixels = 0
}

// ready reports whether the image can take part in a transfer or stage run.
func (img *softImage) ready() error {
	if img.destroyed {
		return sdk.ErrImageDestroyed
	}
	if img.tex != nil && !img.mapped {
		return ErrNotMapped
	}
	return nil
}

// channels returns the channel count of the image's format.
func (img *softImage) channels() int { return img.desc.Channels() }

// opaque is the raw alpha value synthesized when converting from an
// alpha-less format, per the image's value-range contract.
func (img *softImage) opaque() float32 {
	if img.desc.Component == sdk.F32 {
		return 1
	}
	return 255
}

// at returns the raw channel value at (x, y). Channel indices follow the
// image's format order (RGBA or BGR).
func (img *softImage) at(x, y, c int) float32 {
	switch {
	case img.tex != nil:
		return float32(img.tex.Pix[y*img.tex.Stride+x*4+c])
	case img.desc.Layout == sdk.Planar:
		return img.fpix[c*img.desc.Width*img.desc.Height+y*img.desc.Width+x]
	default:
		return float32(img.pix[(y*img.desc.Width+x)*4+c])
	}
}

// set stores the raw channel value at (x, y), clamping and rounding for
// 8-bit storage.
func (img *softImage) set(x, y, c int, v float32) {
	switch {
	case img.tex != nil:
		img.tex.Pix[y*img.tex.Stride+x*4+c] = clampU8(v)
	case img.desc.Layout == sdk.Planar:
		img.fpix[c*img.desc.Width*img.desc.Height+y*img.desc.Width+x] = v
	default:
		img.pix[(y*img.desc.Width+x)*4+c] = clampU8(v)
	}
}

func clampU8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// rgba reads the pixel at (x, y) as raw (r, g, b, a) in the image's own
// value range. Alpha-less formats report the opaque raw value.
func (img *softImage) rgba(x, y int) (r, g, b, a float32) {
	if img.desc.Format == sdk.FormatBGR {
		return img.at(x, y, 2), img.at(x, y, 1), img.at(x, y, 0), img.opaque()
	}
	return img.at(x, y, 0), img.at(x, y, 1), img.at(x, y, 2), img.at(x, y, 3)
}

// setRGBA writes raw (r, g, b, a) at (x, y), dropping alpha for
// alpha-less formats.
func (img *softImage) setRGBA(x, y int, r, g, b, a float32) {
	if img.desc.Format == sdk.FormatBGR {
		img.set(x, y, 0, b)
		img.set(x, y, 1, g)
		img.set(x, y, 2, r)
		return
	}
	img.set(x, y, 0, r)
	img.set(x, y, 1, g)
	img.set(x, y, 2, b)
	img.set(x, y, 3, a)
}

// Ensure softImage implements sdk.Image.
var _ sdk.Image = (*softImage)(nil)

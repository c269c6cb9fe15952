// Package sdk defines the interface to the vendor video-effects SDK:
// opaque neural effect stages, GPU-resident image buffers, execution
// streams, and inter-image transfers.
//
// Implementations are registered by name (see Register) so a host can
// prefer a hardware backend and fall back to the CPU reference
// implementation in sdk/softsdk. The pipeline core treats every
// implementation as an opaque collaborator: it only sequences calls and
// classifies their failures.
package sdk

import "errors"

// Common sdk errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("sdk: not available")

	// ErrImageDestroyed is returned when operating on a destroyed image.
	ErrImageDestroyed = errors.New("sdk: image has been destroyed")

	// ErrEffectDestroyed is returned when operating on a destroyed effect.
	ErrEffectDestroyed = errors.New("sdk: effect has been destroyed")
)

// EffectKind selects one vendor effect stage. The values double as the
// substrings reported by the SDK capability string (see SDK.Info).
type EffectKind string

const (
	// EffectArtifactReduction removes compression artifacts. Operates on
	// planar float images with channel values in [0,1]. Requires model
	// assets.
	EffectArtifactReduction EffectKind = "ArtifactReduction"

	// EffectSuperRes is neural resolution enhancement. Operates on planar
	// float images with channel values in [0,1]. Requires model assets.
	EffectSuperRes EffectKind = "SuperRes"

	// EffectUpscale is non-neural high-quality upscaling. Operates on
	// interleaved 8-bit images with channel values in [0,255]. Needs no
	// model assets.
	EffectUpscale EffectKind = "SRUpscale"
)

// Mode tunes how aggressively a stage transforms the image.
type Mode uint32

const (
	// ModeWeak favors fidelity to the input.
	ModeWeak Mode = 0

	// ModeStrong favors maximum enhancement.
	ModeStrong Mode = 1
)

// PixelFormat is the channel ordering of an image.
type PixelFormat uint8

const (
	// FormatRGBA is four channels, used by interleaved 8-bit images.
	FormatRGBA PixelFormat = iota

	// FormatBGR is three channels, used by planar float images.
	FormatBGR
)

// ComponentType is the storage type of one channel sample. It fixes the
// value-range contract: U8 images carry [0,255], F32 images carry [0,1].
// Transfers between the two must scale intensities accordingly.
type ComponentType uint8

const (
	// U8 is one byte per channel sample.
	U8 ComponentType = iota

	// F32 is one 32-bit float per channel sample.
	F32
)

// Layout is the memory arrangement of an image's channels.
type Layout uint8

const (
	// Chunky interleaves channels per pixel (RGBARGBA...).
	Chunky Layout = iota

	// Planar stores each channel as a contiguous plane.
	Planar
)

// ImageDesc describes the geometry and storage of an image buffer.
type ImageDesc struct {
	// Width and Height are the logical size in pixels.
	Width, Height int

	// Format is the channel ordering.
	Format PixelFormat

	// Component fixes the per-channel storage and value range.
	Component ComponentType

	// Layout is chunky or planar.
	Layout Layout

	// Alignment is the row byte alignment. 0 and 1 both mean unpadded.
	Alignment int
}

// Channels returns the channel count for the descriptor's format.
func (d ImageDesc) Channels() int {
	if d.Format == FormatBGR {
		return 3
	}
	return 4
}

// Stream is an opaque execution stream. All stage invocations and
// transfers for one pipeline are submitted to a single shared stream.
type Stream interface {
	// Destroy releases the stream. The stream must not be used afterwards.
	Destroy()
}

// Image is a GPU-resident image buffer owned by exactly one pipeline
// component and released exactly once.
type Image interface {
	// Desc returns the current logical descriptor.
	Desc() ImageDesc

	// Realloc resizes or reformats the image in place. Implementations
	// keep the existing backing allocation when it is large enough, so
	// shrinking within a previously allocated envelope must not allocate.
	Realloc(desc ImageDesc) error

	// BindTexture re-initializes the image as a wrapper around a
	// device texture owned by the host compositor. The native handle is
	// backend-specific (a HAL texture for GPU hosts, *image.RGBA for the
	// soft backend). Must be called again whenever the texture is
	// recreated.
	BindTexture(native any) error

	// Map prepares a texture-backed image for transfer on the stream.
	Map(s Stream) error

	// Unmap releases the mapping taken by Map.
	Unmap(s Stream) error

	// Destroy releases the buffer. Idempotent.
	Destroy()
}

// Effect is one opaque vendor effect stage. Creation is cheap; Load is
// the expensive step and must be repeated whenever parameters, bound
// images, or model assets change.
type Effect interface {
	// Kind returns the effect selector this stage was created with.
	Kind() EffectKind

	// SetMode sets the enhancement mode. Not meaningful for EffectUpscale.
	SetMode(m Mode) error

	// SetStrength sets the upscale sharpening strength in [0,1]. Only
	// meaningful for EffectUpscale.
	SetStrength(s float32) error

	// SetModelDir points the stage at its model assets. Required by
	// EffectArtifactReduction and EffectSuperRes before Load.
	SetModelDir(dir string) error

	// SetStream binds the shared execution stream.
	SetStream(s Stream) error

	// SetInput binds the stage's input image.
	SetInput(img Image) error

	// SetOutput binds the stage's output image.
	SetOutput(img Image) error

	// Load validates the bound images and parameters and loads model
	// assets. Fails with a resolution-unsupported error (distinguishable
	// via vfx.IsResolutionUnsupported) when the bound geometry is
	// incompatible with the stage; any other failure is fatal.
	Load() error

	// Run executes the stage once on the bound stream. May fail with a
	// transient device fault (vfx.IsTransient), whose recovery is full
	// stream and stage reconstruction by the caller.
	Run() error

	// Destroy releases the stage handle. Idempotent.
	Destroy()
}

// SDK is one effects-SDK backend.
type SDK interface {
	// Name returns the backend identifier (e.g. "cuda", "soft").
	Name() string

	// Info returns the capability string listing the EffectKind selectors
	// supported on the current device. Queried once at process start; see
	// vfx.Probe.
	Info() (string, error)

	// CreateStream creates an execution stream.
	CreateStream() (Stream, error)

	// CreateImage allocates a GPU image buffer.
	CreateImage(desc ImageDesc) (Image, error)

	// CreateEffect creates an effect stage handle. The handle is unusable
	// until its stream and images are bound and Load succeeds.
	CreateEffect(kind EffectKind) (Effect, error)

	// Transfer copies src into dst on stream s, converting format and
	// layout as needed and multiplying channel intensities by scale.
	// staging, when non-nil, is scratch space for size- or format-changing
	// transfers so they do not allocate per frame.
	Transfer(src, dst Image, scale float32, s Stream, staging Image) error

	// ModelDir resolves the directory holding model assets for stages
	// that require them.
	ModelDir() (string, error)
}

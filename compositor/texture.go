// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compositor

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// Texture errors.
var (
	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("compositor: invalid texture dimensions")
)

// Texture is a render-target texture owned by the host compositor.
//
// The pipeline wraps the texture in an SDK image buffer via its native
// handle (see sdk.Image.BindTexture) and re-binds whenever the host
// recreates the texture. The pipeline destroys textures it created through
// Host.CreateTexture; it never destroys textures the host merely lent it.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() int

	// Height returns the texture height in pixels.
	Height() int

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// NativeHandle returns the backend-specific handle SDK images bind to:
	// a HAL texture for GPU hosts, *image.RGBA for the soft backend.
	NativeHandle() any

	// Destroy releases the texture. Idempotent.
	Destroy()
}

// TextureDescriptor describes a render-target texture to create.
type TextureDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Width and Height are the texture dimensions in pixels.
	Width, Height int

	// Format is the texture pixel format.
	Format gputypes.TextureFormat
}

// DefaultTextureDescriptor returns a descriptor with the format the
// enhancement pipeline produces (8-bit RGBA). Only Width and Height need
// to be set.
func DefaultTextureDescriptor(width, height int) TextureDescriptor {
	return TextureDescriptor{
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
	}
}

// Host is the surface the pipeline consumes from the host compositor.
//
// Implementations must be safe for use from the render thread. SourceSize
// may return zeros before the upstream source is ready; the pipeline
// treats that as not-yet-valid geometry, not an error.
type Host interface {
	// SourceSize returns the live base size of the upstream source.
	SourceSize() (width, height int)

	// CreateTexture creates a render-target texture for the pipeline's
	// final output. Ownership passes to the caller.
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// ColorSpace returns the source's negotiated color space.
	ColorSpace() ColorSpace
}

// PixmapTexture is a CPU-backed Texture over *image.RGBA.
//
// It backs the soft SDK and every test: the pipeline wraps it exactly the
// way it wraps a device texture on GPU hosts, so the device-texture-backed
// buffer path is exercised without hardware.
type PixmapTexture struct {
	img    *image.RGBA
	format gputypes.TextureFormat
}

// NewPixmapTexture creates a CPU-backed texture.
func NewPixmapTexture(width, height int) (*PixmapTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &PixmapTexture{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		format: gputypes.TextureFormatRGBA8Unorm,
	}, nil
}

// NewPixmapTextureFromImage wraps an existing *image.RGBA as a texture.
// The image is used directly without copying.
func NewPixmapTextureFromImage(img *image.RGBA) *PixmapTexture {
	return &PixmapTexture{img: img, format: gputypes.TextureFormatRGBA8Unorm}
}

// Width returns the texture width in pixels.
func (t *PixmapTexture) Width() int {
	if t.img == nil {
		return 0
	}
	return t.img.Bounds().Dx()
}

// Height returns the texture height in pixels.
func (t *PixmapTexture) Height() int {
	if t.img == nil {
		return 0
	}
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTexture) Format() gputypes.TextureFormat { return t.format }

// NativeHandle returns the backing *image.RGBA.
func (t *PixmapTexture) NativeHandle() any {
	if t.img == nil {
		return nil
	}
	return t.img
}

// Image returns the backing *image.RGBA, sharing memory with the texture.
// Returns nil after Destroy.
func (t *PixmapTexture) Image() *image.RGBA { return t.img }

// Destroy releases the backing image. Idempotent.
func (t *PixmapTexture) Destroy() { t.img = nil }

// Ensure PixmapTexture implements Texture.
var _ Texture = (*PixmapTexture)(nil)

// PixmapHost is a CPU-backed Host for tests and the soft backend. The
// source frame is a plain *image.RGBA the caller swaps or repaints between
// frames.
type PixmapHost struct {
	source *image.RGBA
	space  ColorSpace
	device DeviceHandle
}

// NewPixmapHost creates a host whose upstream source is src. A nil src
// models a source that has not produced a frame yet (zero size).
func NewPixmapHost(src *image.RGBA) *PixmapHost {
	return &PixmapHost{source: src, space: SpaceSRGB, device: NullDeviceHandle{}}
}

// SetSource swaps the live source frame. A nil frame makes the source
// report zero size.
func (h *PixmapHost) SetSource(src *image.RGBA) { h.source = src }

// Source returns the current source frame.
func (h *PixmapHost) Source() *image.RGBA { return h.source }

// SourceSize returns the live source size, zeros when no frame exists.
func (h *PixmapHost) SourceSize() (int, int) {
	if h.source == nil {
		return 0, 0
	}
	b := h.source.Bounds()
	return b.Dx(), b.Dy()
}

// CreateTexture creates a CPU-backed render-target texture.
func (h *PixmapHost) CreateTexture(desc TextureDescriptor) (Texture, error) {
	return NewPixmapTexture(desc.Width, desc.Height)
}

// ColorSpace returns the host's negotiated color space.
func (h *PixmapHost) ColorSpace() ColorSpace { return h.space }

// SetColorSpace overrides the negotiated color space.
func (h *PixmapHost) SetColorSpace(s ColorSpace) { h.space = s }

// Device returns the host's device handle (the null handle for CPU hosts).
func (h *PixmapHost) Device() DeviceHandle { return h.device }

// Ensure PixmapHost implements Host.
var _ Host = (*PixmapHost)(nil)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gputex adapts wgpu HAL textures to the compositor texture
// interface so the enhancement pipeline can bind host render targets on
// GPU-backed compositors.
package gputex

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vfx/compositor"
)

// Texture errors.
var (
	// ErrTextureDestroyed is returned when operating on a destroyed texture.
	ErrTextureDestroyed = errors.New("gputex: texture has been destroyed")

	// ErrNilDevice is returned when creating a texture without a device.
	ErrNilDevice = errors.New("gputex: device is nil")

	// ErrInvalidTextureSize is returned when texture dimensions are invalid.
	ErrInvalidTextureSize = errors.New("gputex: invalid texture size")
)

// DefaultUsage is the usage every pipeline-facing texture carries: the
// compositor samples and renders into it, and the effects SDK copies
// through it.
const DefaultUsage = gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst

// Descriptor describes a texture to create.
type Descriptor struct {
	// Label is an optional debug name.
	Label string

	// Width and Height are the texture dimensions in pixels.
	Width, Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used. Zero means DefaultUsage.
	Usage gputypes.TextureUsage
}

// Texture wraps a hal.Texture as a compositor texture.
//
// Texture is safe for concurrent read access; Destroy is idempotent and
// releases the underlying HAL resource exactly once.
type Texture struct {
	mu sync.RWMutex

	// halTexture is the underlying texture handle, nil after Destroy.
	halTexture hal.Texture

	// device is the parent device, retained for destruction.
	device hal.Device

	// descriptor is immutable after creation.
	descriptor Descriptor

	destroyed bool
}

// Create allocates a 2D single-sample texture on device.
func Create(device hal.Device, desc Descriptor) (*Texture, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d",
			ErrInvalidTextureSize, desc.Width, desc.Height)
	}
	if desc.Usage == 0 {
		desc.Usage = DefaultUsage
	}

	halTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gputex: texture creation failed: %w", err)
	}

	return &Texture{halTexture: halTex, device: device, descriptor: desc}, nil
}

// Wrap adopts an externally created HAL texture without taking ownership
// of a device, so Destroy only drops the reference. Used for host render
// targets whose lifetime the compositor controls.
func Wrap(halTexture hal.Texture, desc Descriptor) *Texture {
	return &Texture{halTexture: halTexture, descriptor: desc}
}

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.descriptor.Label }

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return int(t.descriptor.Width) }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return int(t.descriptor.Height) }

// Format returns the texture pixel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.descriptor.Format }

// Usage returns the texture usage flags.
func (t *Texture) Usage() gputypes.TextureUsage { return t.descriptor.Usage }

// Descriptor returns a copy of the texture descriptor.
func (t *Texture) Descriptor() Descriptor { return t.descriptor }

// IsDestroyed returns true if the texture has been destroyed.
func (t *Texture) IsDestroyed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.destroyed
}

// Raw returns the underlying HAL texture handle, or nil after Destroy.
// The caller must ensure the texture outlives any use of the handle.
func (t *Texture) Raw() hal.Texture {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.destroyed {
		return nil
	}
	return t.halTexture
}

// NativeHandle returns the HAL texture for SDK image binding.
func (t *Texture) NativeHandle() any {
	if raw := t.Raw(); raw != nil {
		return raw
	}
	return nil
}

// Destroy releases the texture. Idempotent. Wrapped textures only drop
// their reference; the owning compositor frees the HAL resource.
func (t *Texture) Destroy() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		return
	}
	t.destroyed = true
	device := t.device
	halTex := t.halTexture
	t.halTexture = nil
	t.mu.Unlock()

	if device != nil && halTex != nil {
		device.DestroyTexture(halTex)
	}
}

// Ensure Texture implements compositor.Texture.
var _ compositor.Texture = (*Texture)(nil)

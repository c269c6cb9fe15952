// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gputex

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vfx/compositor"
)

// Host is the GPU-backed compositor host. It allocates pipeline textures
// on a HAL device and reports the source geometry and color space the
// pipeline negotiates against.
type Host struct {
	device hal.Device
	handle compositor.DeviceHandle

	width, height int
	space         compositor.ColorSpace
}

// NewHost creates a host around a HAL device. The device handle is the
// context provider the compositor renders with; it may be nil when the
// caller only allocates textures.
func NewHost(device hal.Device, handle compositor.DeviceHandle) *Host {
	return &Host{device: device, handle: handle, space: compositor.SpaceSRGB}
}

// SetSource updates the source geometry reported to the pipeline.
func (h *Host) SetSource(width, height int) {
	h.width, h.height = width, height
}

// SourceSize implements compositor.Host.
func (h *Host) SourceSize() (int, int) { return h.width, h.height }

// SetColorSpace records the color space of incoming frames.
func (h *Host) SetColorSpace(space compositor.ColorSpace) { h.space = space }

// ColorSpace implements compositor.Host.
func (h *Host) ColorSpace() compositor.ColorSpace { return h.space }

// DeviceHandle returns the compositor device context, if any.
func (h *Host) DeviceHandle() compositor.DeviceHandle { return h.handle }

// CreateTexture implements compositor.Host. Textures carry DefaultUsage
// so both the compositor and the effects SDK can touch them.
func (h *Host) CreateTexture(desc compositor.TextureDescriptor) (compositor.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, compositor.ErrInvalidDimensions
	}
	return Create(h.device, Descriptor{
		Label:  desc.Label,
		Width:  uint32(desc.Width),
		Height: uint32(desc.Height),
		Format: desc.Format,
	})
}

// Ensure Host implements compositor.Host.
var _ compositor.Host = (*Host)(nil)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compositor

import (
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}

	// Compile-time check that DeviceHandle stays compatible with
	// gpucontext.DeviceProvider.
	acceptProvider := func(_ gpucontext.DeviceProvider) {}
	acceptProvider(NullDeviceHandle{})
}

func TestDefaultTextureDescriptor(t *testing.T) {
	desc := DefaultTextureDescriptor(256, 128)

	if desc.Width != 256 || desc.Height != 128 {
		t.Errorf("size = %dx%d, want 256x128", desc.Width, desc.Height)
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want RGBA8Unorm", desc.Format)
	}
}

func TestPixmapTexture(t *testing.T) {
	tex, err := NewPixmapTexture(64, 32)
	if err != nil {
		t.Fatalf("NewPixmapTexture: %v", err)
	}

	if tex.Width() != 64 || tex.Height() != 32 {
		t.Errorf("size = %dx%d, want 64x32", tex.Width(), tex.Height())
	}
	if tex.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want RGBA8Unorm", tex.Format())
	}
	if _, ok := tex.NativeHandle().(*image.RGBA); !ok {
		t.Errorf("NativeHandle() = %T, want *image.RGBA", tex.NativeHandle())
	}

	tex.Destroy()
	tex.Destroy() // idempotent
	if tex.NativeHandle() != nil {
		t.Error("NativeHandle() should be nil after Destroy")
	}
	if tex.Width() != 0 || tex.Height() != 0 {
		t.Error("size should be zero after Destroy")
	}
}

func TestPixmapTextureInvalidSize(t *testing.T) {
	if _, err := NewPixmapTexture(0, 32); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewPixmapTexture(64, -1); err == nil {
		t.Error("expected error for negative height")
	}
}

func TestPixmapHost(t *testing.T) {
	host := NewPixmapHost(nil)

	if w, h := host.SourceSize(); w != 0 || h != 0 {
		t.Errorf("SourceSize with nil source = %dx%d, want 0x0", w, h)
	}

	host.SetSource(image.NewRGBA(image.Rect(0, 0, 1280, 720)))
	if w, h := host.SourceSize(); w != 1280 || h != 720 {
		t.Errorf("SourceSize = %dx%d, want 1280x720", w, h)
	}

	tex, err := host.CreateTexture(DefaultTextureDescriptor(1920, 1080))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if tex.Width() != 1920 || tex.Height() != 1080 {
		t.Errorf("texture size = %dx%d", tex.Width(), tex.Height())
	}

	if host.ColorSpace() != SpaceSRGB {
		t.Errorf("default ColorSpace = %v, want SpaceSRGB", host.ColorSpace())
	}
	host.SetColorSpace(SpaceRec709Extended)
	if host.ColorSpace() != SpaceRec709Extended {
		t.Error("SetColorSpace did not stick")
	}
}

package softsdk

import (
	"image"
	"testing"

	"github.com/gogpu/vfx/sdk"
)

func planarDesc(w, h int) sdk.ImageDesc {
	return sdk.ImageDesc{
		Width: w, Height: h,
		Format:    sdk.FormatBGR,
		Component: sdk.F32,
		Layout:    sdk.Planar,
		Alignment: 1,
	}
}

func chunkyDesc(w, h int) sdk.ImageDesc {
	return sdk.ImageDesc{
		Width: w, Height: h,
		Format:    sdk.FormatRGBA,
		Component: sdk.U8,
		Layout:    sdk.Chunky,
		Alignment: 32,
	}
}

func TestImageEnvelopeRealloc(t *testing.T) {
	img, err := newSoftImage(chunkyDesc(1920, 1080))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if img.Grows() != 1 {
		t.Fatalf("Grows after create = %d, want 1", img.Grows())
	}

	// Shrinking within the envelope must not allocate.
	if err := img.Realloc(chunkyDesc(1280, 720)); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if img.Grows() != 1 {
		t.Errorf("Grows after shrink = %d, want 1", img.Grows())
	}
	if d := img.Desc(); d.Width != 1280 || d.Height != 720 {
		t.Errorf("logical size = %dx%d, want 1280x720", d.Width, d.Height)
	}

	// Growing back within the envelope must not allocate either.
	if err := img.Realloc(chunkyDesc(1920, 1080)); err != nil {
		t.Fatalf("regrow: %v", err)
	}
	if img.Grows() != 1 {
		t.Errorf("Grows after regrow within envelope = %d, want 1", img.Grows())
	}

	// Exceeding the envelope triggers a real reallocation.
	if err := img.Realloc(chunkyDesc(3840, 2160)); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if img.Grows() != 2 {
		t.Errorf("Grows after exceeding envelope = %d, want 2", img.Grows())
	}
}

func TestImageReallocChangesStorageClass(t *testing.T) {
	img, err := newSoftImage(chunkyDesc(640, 360))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Same pixel count, different component type: backing must change.
	if err := img.Realloc(planarDesc(640, 360)); err != nil {
		t.Fatalf("reformat: %v", err)
	}
	if img.Grows() != 2 {
		t.Errorf("Grows after reformat = %d, want 2", img.Grows())
	}
	if d := img.Desc(); d.Component != sdk.F32 || d.Layout != sdk.Planar {
		t.Errorf("desc not updated: %+v", d)
	}
}

func TestImageReallocInvalid(t *testing.T) {
	img, err := newSoftImage(chunkyDesc(16, 16))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := img.Realloc(chunkyDesc(0, 16)); err == nil {
		t.Error("expected error for zero width")
	}

	img.Destroy()
	if err := img.Realloc(chunkyDesc(16, 16)); err == nil {
		t.Error("expected error after Destroy")
	}
	img.Destroy() // idempotent
}

func TestImageBindTexture(t *testing.T) {
	img, err := newSoftImage(chunkyDesc(4, 4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 8, 6))
	if err := img.BindTexture(rgba); err != nil {
		t.Fatalf("BindTexture: %v", err)
	}
	if d := img.Desc(); d.Width != 8 || d.Height != 6 || d.Component != sdk.U8 {
		t.Errorf("bound desc = %+v", d)
	}

	// Texture-backed images cannot be reallocated; the host owns the storage.
	if err := img.Realloc(chunkyDesc(8, 6)); err == nil {
		t.Error("expected realloc of texture-backed image to fail")
	}

	// Map/Unmap gate transfers.
	stream := &softStream{}
	if err := img.Map(stream); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if err := img.ready(); err != nil {
		t.Errorf("ready while mapped: %v", err)
	}
	if err := img.Unmap(stream); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
	if err := img.ready(); err == nil {
		t.Error("expected ready to fail while unmapped")
	}

	if err := img.BindTexture("not a texture"); err == nil {
		t.Error("expected error for wrong native handle type")
	}
}

func TestImageMapRequiresTexture(t *testing.T) {
	img, err := newSoftImage(chunkyDesc(4, 4))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := img.Map(&softStream{}); err == nil {
		t.Error("expected Map on a standalone buffer to fail")
	}
}

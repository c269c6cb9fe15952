package softsdk

import (
	"image"
	"math"
	"testing"
)

func TestTransferU8ToF32(t *testing.T) {
	s := New()
	src, err := newSoftImage(chunkyDesc(2, 2))
	if err != nil {
		t.Fatalf("create src: %v", err)
	}
	dst, err := newSoftImage(planarDesc(2, 2))
	if err != nil {
		t.Fatalf("create dst: %v", err)
	}

	src.setRGBA(0, 0, 255, 128, 0, 255)
	src.setRGBA(1, 1, 51, 51, 51, 255)

	// u8 [0,255] into f32 [0,1] scales by 1/255.
	if err := s.Transfer(src, dst, 1.0/255.0, nil, nil); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	r, g, b, _ := dst.rgba(0, 0)
	if !close32(r, 1) || !close32(g, 128.0/255.0) || !close32(b, 0) {
		t.Errorf("pixel (0,0) = (%v, %v, %v)", r, g, b)
	}
	r, _, _, _ = dst.rgba(1, 1)
	if !close32(r, 0.2) {
		t.Errorf("pixel (1,1) r = %v, want 0.2", r)
	}
}

func TestTransferF32ToU8(t *testing.T) {
	s := New()
	src, err := newSoftImage(planarDesc(1, 1))
	if err != nil {
		t.Fatalf("create src: %v", err)
	}
	dst, err := newSoftImage(chunkyDesc(1, 1))
	if err != nil {
		t.Fatalf("create dst: %v", err)
	}

	src.setRGBA(0, 0, 0.5, 1.0, 0, 1)

	// f32 [0,1] into u8 [0,255] scales by 255. Values clamp and round.
	if err := s.Transfer(src, dst, 255, nil, nil); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	r, g, b, a := dst.rgba(0, 0)
	if r != 128 || g != 255 || b != 0 || a != 255 {
		t.Errorf("pixel = (%v, %v, %v, %v), want (128, 255, 0, 255)", r, g, b, a)
	}
}

func TestTransferTextureEndpoints(t *testing.T) {
	s := New()
	tex := image.NewRGBA(image.Rect(0, 0, 2, 2))
	tex.Pix[0], tex.Pix[1], tex.Pix[2], tex.Pix[3] = 10, 20, 30, 255

	src, err := newSoftImage(chunkyDesc(2, 2))
	if err != nil {
		t.Fatalf("create src: %v", err)
	}
	if err := src.BindTexture(tex); err != nil {
		t.Fatalf("BindTexture: %v", err)
	}
	dst, err := newSoftImage(chunkyDesc(2, 2))
	if err != nil {
		t.Fatalf("create dst: %v", err)
	}

	// Texture-backed endpoints must be mapped before a transfer touches them.
	if err := s.Transfer(src, dst, 1, nil, nil); err == nil {
		t.Fatal("expected transfer from an unmapped texture to fail")
	}

	stream := &softStream{}
	if err := src.Map(stream); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if err := s.Transfer(src, dst, 1, stream, nil); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if err := src.Unmap(stream); err != nil {
		t.Fatalf("Unmap: %v", err)
	}

	r, g, b, _ := dst.rgba(0, 0)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("pixel = (%v, %v, %v), want (10, 20, 30)", r, g, b)
	}
}

func TestTransferSizeMismatch(t *testing.T) {
	s := New()
	src, _ := newSoftImage(chunkyDesc(2, 2))
	dst, _ := newSoftImage(chunkyDesc(4, 4))
	if err := s.Transfer(src, dst, 1, nil, nil); err == nil {
		t.Error("expected size-mismatched transfer to fail")
	}
}

func close32(got, want float32) bool {
	return math.Abs(float64(got-want)) < 1e-5
}

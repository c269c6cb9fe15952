package softsdk

import (
	"testing"

	"github.com/gogpu/vfx"
	"github.com/gogpu/vfx/sdk"
)

func newEffect(t *testing.T, kind sdk.EffectKind) *softEffect {
	t.Helper()
	e, err := New().CreateEffect(kind)
	if err != nil {
		t.Fatalf("CreateEffect(%s): %v", kind, err)
	}
	return e.(*softEffect)
}

func bindStage(t *testing.T, e *softEffect, in, out sdk.ImageDesc) {
	t.Helper()
	s := New()
	stream, err := s.CreateStream()
	if err != nil {
		t.Fatalf("CreateStream: %v", err)
	}
	src, err := s.CreateImage(in)
	if err != nil {
		t.Fatalf("CreateImage(in): %v", err)
	}
	dst, err := s.CreateImage(out)
	if err != nil {
		t.Fatalf("CreateImage(out): %v", err)
	}
	if err := e.SetStream(stream); err != nil {
		t.Fatalf("SetStream: %v", err)
	}
	if err := e.SetInput(src); err != nil {
		t.Fatalf("SetInput: %v", err)
	}
	if err := e.SetOutput(dst); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	if err := e.SetModelDir("models"); err != nil {
		t.Fatalf("SetModelDir: %v", err)
	}
}

func TestEffectLoadGeometry(t *testing.T) {
	tests := []struct {
		name        string
		kind        sdk.EffectKind
		in, out     sdk.ImageDesc
		wantErr     bool
		wantResFail bool
	}{
		{
			name: "superres 720p to 1080p",
			kind: sdk.EffectSuperRes,
			in:   planarDesc(1280, 720), out: planarDesc(1920, 1080),
		},
		{
			name: "superres 4x from 480x270",
			kind: sdk.EffectSuperRes,
			in:   planarDesc(480, 270), out: planarDesc(1920, 1080),
		},
		{
			name: "superres input too small",
			kind: sdk.EffectSuperRes,
			in:   planarDesc(100, 56), out: planarDesc(200, 112),
			wantErr: true, wantResFail: true,
		},
		{
			name: "superres arbitrary factor",
			kind: sdk.EffectSuperRes,
			in:   planarDesc(1280, 720), out: planarDesc(1600, 900),
			wantErr: true, wantResFail: true,
		},
		{
			name: "artifact reduction same size",
			kind: sdk.EffectArtifactReduction,
			in:   planarDesc(1280, 720), out: planarDesc(1280, 720),
		},
		{
			name: "artifact reduction cannot resize",
			kind: sdk.EffectArtifactReduction,
			in:   planarDesc(1280, 720), out: planarDesc(1920, 1080),
			wantErr: true, wantResFail: true,
		},
		{
			name: "artifact reduction above bounds",
			kind: sdk.EffectArtifactReduction,
			in:   planarDesc(2560, 1440), out: planarDesc(2560, 1440),
			wantErr: true, wantResFail: true,
		},
		{
			name: "upscale 2x",
			kind: sdk.EffectUpscale,
			in:   chunkyDesc(960, 540), out: chunkyDesc(1920, 1080),
		},
		{
			name: "upscale wrong storage",
			kind: sdk.EffectUpscale,
			in:   planarDesc(960, 540), out: planarDesc(1920, 1080),
			wantErr: true,
		},
		{
			name: "superres wrong storage",
			kind: sdk.EffectSuperRes,
			in:   chunkyDesc(1280, 720), out: chunkyDesc(1920, 1080),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEffect(t, tt.kind)
			bindStage(t, e, tt.in, tt.out)

			err := e.Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := vfx.IsResolutionUnsupported(err); got != tt.wantResFail {
				t.Errorf("IsResolutionUnsupported = %v, want %v (err: %v)",
					got, tt.wantResFail, err)
			}
		})
	}
}

func TestEffectLoadRequiresModelDir(t *testing.T) {
	e := newEffect(t, sdk.EffectSuperRes)
	bindStage(t, e, planarDesc(1280, 720), planarDesc(1920, 1080))
	if err := e.SetModelDir(""); err != nil {
		t.Fatalf("SetModelDir: %v", err)
	}
	if err := e.Load(); err == nil {
		t.Error("expected Load without a model dir to fail")
	}

	// Upscale does not consume model assets.
	up := newEffect(t, sdk.EffectUpscale)
	bindStage(t, up, chunkyDesc(960, 540), chunkyDesc(1920, 1080))
	if err := up.SetModelDir(""); err != nil {
		t.Fatalf("SetModelDir: %v", err)
	}
	if err := up.Load(); err != nil {
		t.Errorf("upscale Load without model dir: %v", err)
	}
}

func TestEffectSetterInvalidatesLoad(t *testing.T) {
	e := newEffect(t, sdk.EffectSuperRes)
	bindStage(t, e, planarDesc(1280, 720), planarDesc(1920, 1080))
	if err := e.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.SetMode(sdk.ModeStrong); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if err := e.Run(); err == nil {
		t.Error("expected Run after parameter change to require a fresh Load")
	}
	if err := e.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := e.Run(); err != nil {
		t.Errorf("Run after reload: %v", err)
	}
}

func TestEffectRunPreservesConstantPlane(t *testing.T) {
	// A constant image is a fixed point of both the mean filter and the
	// resamplers, so every stage must reproduce it (up to rounding).
	for _, kind := range []sdk.EffectKind{
		sdk.EffectArtifactReduction, sdk.EffectSuperRes, sdk.EffectUpscale,
	} {
		t.Run(string(kind), func(t *testing.T) {
			in, out := planarDesc(1280, 720), planarDesc(1280, 720)
			want := float32(0.25)
			if kind == sdk.EffectSuperRes {
				out = planarDesc(1920, 1080)
			}
			if kind == sdk.EffectUpscale {
				in, out = chunkyDesc(960, 540), chunkyDesc(1920, 1080)
				want = 64
			}

			e := newEffect(t, kind)
			bindStage(t, e, in, out)
			if err := e.Load(); err != nil {
				t.Fatalf("Load: %v", err)
			}

			for y := 0; y < in.Height; y++ {
				for x := 0; x < in.Width; x++ {
					e.in.setRGBA(x, y, want, want, want, e.in.opaque())
				}
			}
			if err := e.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}

			// Spot-check the interior; edges of the unsharp mask are allowed
			// to ring by a step.
			r, g, b, _ := e.out.rgba(out.Width/2, out.Height/2)
			const eps = 0.01
			tol := want * eps
			if tol < 1 && e.out.desc.Component == sdk.U8 {
				tol = 1
			}
			for i, v := range []float32{r, g, b} {
				if v < want-tol || v > want+tol {
					t.Errorf("channel %d = %v, want %v±%v", i, v, want, tol)
				}
			}
		})
	}
}

func TestEffectDestroyIdempotent(t *testing.T) {
	e := newEffect(t, sdk.EffectSuperRes)
	e.Destroy()
	e.Destroy()
	if err := e.Load(); err == nil {
		t.Error("expected Load after Destroy to fail")
	}
	if err := e.SetMode(sdk.ModeWeak); err == nil {
		t.Error("expected SetMode after Destroy to fail")
	}
}

package vfx

import (
	"errors"
	"testing"

	"github.com/gogpu/vfx/sdk"
)

type probeSDK struct {
	sdk.SDK
	info string
	err  error
}

func (p *probeSDK) Name() string          { return "probe" }
func (p *probeSDK) Info() (string, error) { return p.info, p.err }

func TestProbe(t *testing.T) {
	tests := []struct {
		name string
		info string
		err  error
		want Capability
	}{
		{
			name: "all stages",
			info: "ArtifactReduction SuperRes SRUpscale",
			want: Capability{Loaded: true, ArtifactReduction: true, SuperRes: true, Upscale: true},
		},
		{
			name: "superres only",
			info: "SuperRes",
			want: Capability{Loaded: true, SuperRes: true},
		},
		{
			name: "loaded but nothing supported",
			info: "",
			want: Capability{Loaded: true},
		},
		{
			name: "query failure",
			err:  errors.New("driver too old"),
			want: Capability{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Probe(&probeSDK{info: tt.info, err: tt.err})
			got.Info = "" // compare flags only
			if got != tt.want {
				t.Errorf("Probe = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCapabilityAny(t *testing.T) {
	if (Capability{Loaded: true}).Any() {
		t.Error("loaded with no stages should not report Any")
	}
	if (Capability{SuperRes: true}).Any() {
		t.Error("unloaded SDK should not report Any")
	}
	if !(Capability{Loaded: true, Upscale: true}).Any() {
		t.Error("loaded with one stage should report Any")
	}
}

package vfx

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFaultMatchesSentinel(t *testing.T) {
	tests := []struct {
		kind     FaultKind
		sentinel error
	}{
		{KindTransientDevice, ErrTransientDevice},
		{KindResolutionUnsupported, ErrResolutionUnsupported},
		{KindAllocation, ErrAllocation},
		{KindSDKCall, ErrSDKCall},
		{KindInvalidGeometry, ErrInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := NewFault(tt.kind, "run", errors.New("boom"))
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("fault of kind %v should match its sentinel", tt.kind)
			}
			for _, other := range tests {
				if other.kind == tt.kind {
					continue
				}
				if errors.Is(err, other.sentinel) {
					t.Errorf("fault of kind %v must not match %v", tt.kind, other.kind)
				}
			}
		})
	}
}

func TestFaultMatchesThroughWrapping(t *testing.T) {
	inner := NewFault(KindTransientDevice, "run", errors.New("device lost"))
	wrapped := fmt.Errorf("stage 2: %w", inner)

	if !IsTransient(wrapped) {
		t.Error("IsTransient should see through fmt.Errorf wrapping")
	}
	if KindOf(wrapped) != KindTransientDevice {
		t.Errorf("KindOf(wrapped) = %v", KindOf(wrapped))
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain error should classify as unknown")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("nil should classify as unknown")
	}
	if KindOf(ErrResolutionUnsupported) != KindResolutionUnsupported {
		t.Error("bare sentinel should classify as its kind")
	}
	if KindOf(fmt.Errorf("ctx: %w", ErrAllocation)) != KindAllocation {
		t.Error("wrapped sentinel should classify as its kind")
	}
}

func TestFaultError(t *testing.T) {
	f := &Fault{
		Kind: KindResolutionUnsupported,
		Op:   "load",
		Diag: "1280x720 outside bounds",
		Err:  errors.New("stage rejected geometry"),
	}
	msg := f.Error()
	for _, want := range []string{"load", "resolution-unsupported", "1280x720", "stage rejected"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	if !errors.Is(f, f.Err) {
		t.Error("Unwrap should expose the underlying cause")
	}
}

func TestIsHelpersRejectNil(t *testing.T) {
	if IsTransient(nil) || IsResolutionUnsupported(nil) {
		t.Error("helpers must report false for nil")
	}
}

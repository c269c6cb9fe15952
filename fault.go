package vfx

import (
	"errors"
	"fmt"
)

// Sentinel errors for each fault kind. A *Fault matches the sentinel of
// its kind under errors.Is, so call sites can classify failures without
// unwrapping:
//
//	if errors.Is(err, vfx.ErrTransientDevice) { ... }
var (
	// ErrTransientDevice is a recoverable GPU/driver hiccup during stage
	// execution. Recovery is full stream and stage reconstruction, never a
	// per-call retry.
	ErrTransientDevice = errors.New("vfx: transient device fault")

	// ErrResolutionUnsupported is returned by a stage load when the current
	// input geometry is incompatible with that stage. Non-fatal: the stage
	// stays unusable until geometry or configuration changes.
	ErrResolutionUnsupported = errors.New("vfx: resolution unsupported by stage")

	// ErrAllocation is a GPU image allocation or reallocation failure.
	// Fatal to the current pipeline generation.
	ErrAllocation = errors.New("vfx: image allocation failed")

	// ErrSDKCall is any other effects-SDK call failure (transfer, parameter
	// set, stage creation). Fatal to the current pipeline generation.
	ErrSDKCall = errors.New("vfx: sdk call failed")

	// ErrInvalidGeometry marks a source size that fails validation for the
	// selected scale factor. A steady-state condition, not a fault: frames
	// are skipped until the geometry becomes valid.
	ErrInvalidGeometry = errors.New("vfx: invalid source geometry")
)

// FaultKind classifies a pipeline failure. The kind decides the recovery
// path: transient faults rebuild the stream and stages, resolution faults
// surface a warning and skip, everything else stops the pipeline.
type FaultKind uint8

const (
	// KindUnknown is an unclassified failure, treated as fatal.
	KindUnknown FaultKind = iota

	// KindTransientDevice maps to ErrTransientDevice.
	KindTransientDevice

	// KindResolutionUnsupported maps to ErrResolutionUnsupported.
	KindResolutionUnsupported

	// KindAllocation maps to ErrAllocation.
	KindAllocation

	// KindSDKCall maps to ErrSDKCall.
	KindSDKCall

	// KindInvalidGeometry maps to ErrInvalidGeometry.
	KindInvalidGeometry
)

// String returns the kind name for logging.
func (k FaultKind) String() string {
	switch k {
	case KindTransientDevice:
		return "transient-device"
	case KindResolutionUnsupported:
		return "resolution-unsupported"
	case KindAllocation:
		return "allocation"
	case KindSDKCall:
		return "sdk-call"
	case KindInvalidGeometry:
		return "invalid-geometry"
	default:
		return "unknown"
	}
}

// sentinel returns the package sentinel for this kind, or nil for
// KindUnknown.
func (k FaultKind) sentinel() error {
	switch k {
	case KindTransientDevice:
		return ErrTransientDevice
	case KindResolutionUnsupported:
		return ErrResolutionUnsupported
	case KindAllocation:
		return ErrAllocation
	case KindSDKCall:
		return ErrSDKCall
	case KindInvalidGeometry:
		return ErrInvalidGeometry
	default:
		return nil
	}
}

// Fault is a classified pipeline failure. Op names the operation that
// failed (e.g. "transfer", "load"), Diag carries an optional diagnostic
// string from the SDK, and Err is the underlying cause, if any.
type Fault struct {
	Kind FaultKind
	Op   string
	Diag string
	Err  error
}

// NewFault builds a *Fault wrapping err.
func NewFault(kind FaultKind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

// Error implements the error interface.
func (f *Fault) Error() string {
	msg := fmt.Sprintf("vfx: %s: %s fault", f.Op, f.Kind)
	if f.Diag != "" {
		msg += ": " + f.Diag
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (f *Fault) Unwrap() error { return f.Err }

// Is reports whether target is the sentinel for this fault's kind,
// making errors.Is(err, vfx.ErrTransientDevice) work on wrapped faults.
func (f *Fault) Is(target error) bool {
	s := f.Kind.sentinel()
	return s != nil && target == s
}

// KindOf classifies an arbitrary error. Faults report their own kind;
// bare sentinels map to theirs; anything else is KindUnknown.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	for _, k := range []FaultKind{
		KindTransientDevice, KindResolutionUnsupported,
		KindAllocation, KindSDKCall, KindInvalidGeometry,
	} {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}
	return KindUnknown
}

// IsTransient reports whether err is a transient device fault whose
// recovery path is stream and stage reconstruction.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientDevice)
}

// IsResolutionUnsupported reports whether err is the non-fatal
// stage-load failure for an incompatible input geometry.
func IsResolutionUnsupported(err error) bool {
	return errors.Is(err, ErrResolutionUnsupported)
}

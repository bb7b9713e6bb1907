package camera

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when a closed source is started again.
var ErrClosed = errors.New("camera: source closed")

// FailureKind classifies why a camera could not be acquired.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	PermissionDenied
	DeviceBusy
	DeviceAbsent
	Unsupported
)

func (k FailureKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case DeviceBusy:
		return "device_busy"
	case DeviceAbsent:
		return "device_absent"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Reason is the user-facing explanation for a failure kind.
func (k FailureKind) Reason() string {
	switch k {
	case PermissionDenied:
		return "Permission denied. Check browser camera permissions."
	case DeviceBusy:
		return "Camera is busy or blocked by another app."
	case DeviceAbsent:
		return "No camera device found."
	case Unsupported:
		return "Camera not supported on this device."
	default:
		return "Camera could not be started."
	}
}

// AcquireError reports a failed camera acquisition.
type AcquireError struct {
	Kind FailureKind
	Err  error
}

func (e *AcquireError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("camera: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("camera: %s", e.Kind)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// Reason returns the status message shown or spoken to the user.
func (e *AcquireError) Reason() string {
	return e.Kind.Reason()
}

// ParseFailure maps a browser media error name (getUserMedia DOMException)
// to a failure kind.
func ParseFailure(name string) FailureKind {
	switch name {
	case "NotAllowedError", "SecurityError", "PermissionDeniedError":
		return PermissionDenied
	case "NotReadableError", "TrackStartError", "AbortError":
		return DeviceBusy
	case "NotFoundError", "DevicesNotFoundError", "OverconstrainedError":
		return DeviceAbsent
	case "NotSupportedError", "TypeError":
		return Unsupported
	default:
		return FailureUnknown
	}
}

// ReasonFor extracts a user-facing reason from any acquisition error.
func ReasonFor(err error) string {
	var ae *AcquireError
	if errors.As(err, &ae) {
		return ae.Reason()
	}
	return FailureUnknown.Reason()
}

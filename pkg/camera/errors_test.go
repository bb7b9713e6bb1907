package camera

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFailure(t *testing.T) {
	tests := []struct {
		name string
		want FailureKind
	}{
		{"NotAllowedError", PermissionDenied},
		{"NotReadableError", DeviceBusy},
		{"NotFoundError", DeviceAbsent},
		{"NotSupportedError", Unsupported},
		{"Whatever", FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFailure(tt.name))
		})
	}
}

func TestReasonsAreDistinct(t *testing.T) {
	seen := map[string]FailureKind{}
	for _, k := range []FailureKind{PermissionDenied, DeviceBusy, DeviceAbsent, Unsupported, FailureUnknown} {
		r := k.Reason()
		if prev, ok := seen[r]; ok {
			t.Errorf("%s and %s share reason %q", prev, k, r)
		}
		seen[r] = k
	}
}

func TestReasonFor(t *testing.T) {
	err := fmt.Errorf("start: %w", &AcquireError{Kind: PermissionDenied, Err: errors.New("denied")})
	assert.Equal(t, "Permission denied. Check browser camera permissions.", ReasonFor(err))
	assert.Equal(t, FailureUnknown.Reason(), ReasonFor(errors.New("boom")))
}

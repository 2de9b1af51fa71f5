package tensor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Device identifies a compute backend instance by kind and ordinal,
// e.g. {"cpu", 0}. Every Array is permanently bound to the device that owns
// its memory; arrays on different devices never interoperate without an
// explicit transfer.
type Device struct {
	Kind    string
	Ordinal int
}

// String returns the canonical "kind:ordinal" spelling.
func (d Device) String() string {
	return fmt.Sprintf("%s:%d", d.Kind, d.Ordinal)
}

// IsZero reports whether the device is unset.
func (d Device) IsZero() bool {
	return d.Kind == ""
}

// ParseDevice parses "kind" or "kind:ordinal". A bare kind means ordinal 0.
func ParseDevice(s string) (Device, error) {
	kind, ordinal := s, 0
	if idx := strings.Index(s, ":"); idx != -1 {
		kind = s[:idx]
		n, err := strconv.Atoi(s[idx+1:])
		if err != nil || n < 0 {
			return Device{}, errors.Wrapf(ErrInvalidArgument, "malformed device ordinal in %q", s)
		}
		ordinal = n
	}
	if kind == "" {
		return Device{}, errors.Wrapf(ErrInvalidArgument, "malformed device name %q", s)
	}
	return Device{Kind: kind, Ordinal: ordinal}, nil
}

package column

import (
	"fmt"
	"strings"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/correlation"
)

// TrayType enumerates the supported tray designs.
type TrayType int

const (
	// Sieve is a perforated plate tray.
	Sieve TrayType = iota
	// Caps is a bubble-cap tray.
	Caps
)

// String returns the lowercase name used in case files and on the wire.
func (t TrayType) String() string {
	switch t {
	case Sieve:
		return "sieve"
	case Caps:
		return "caps"
	default:
		return fmt.Sprintf("TrayType(%d)", int(t))
	}
}

// ParseTrayType parses "sieve" or "caps" (case-insensitive).
func ParseTrayType(s string) (TrayType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sieve":
		return Sieve, nil
	case "caps", "cap", "bubble-cap":
		return Caps, nil
	}
	return 0, fmt.Errorf("invalid tray type: %q (must be 'sieve' or 'caps')", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TrayType) MarshalText() ([]byte, error) {
	if t != Sieve && t != Caps {
		return nil, fmt.Errorf("invalid tray type: %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TrayType) UnmarshalText(b []byte) error {
	v, err := ParseTrayType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Chart returns the matching correlation selector.
func (t TrayType) Chart() correlation.TrayType {
	if t == Caps {
		return correlation.Caps
	}
	return correlation.Sieve
}

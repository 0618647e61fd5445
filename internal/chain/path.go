package chain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path is malformed or breaks the
// hardening rules of the target curve.
var ErrInvalidPath = errors.New("invalid derivation path")

const (
	// HardenedOffset is added to an index to mark it hardened (BIP32).
	HardenedOffset uint32 = 0x80000000

	// MaxIndex is the largest index a segment may carry before hardening.
	MaxIndex uint32 = HardenedOffset - 1
)

// Segment is one level of a BIP32 path.
type Segment struct {
	Index    uint32
	Hardened bool
}

// Hardened returns a hardened segment for index.
func Hardened(index uint32) Segment {
	return Segment{Index: index, Hardened: true}
}

// Normal returns a non-hardened segment for index.
func Normal(index uint32) Segment {
	return Segment{Index: index}
}

// Value returns the child number used by BIP32 (index + 2^31 when hardened).
func (s Segment) Value() uint32 {
	if s.Hardened {
		return s.Index + HardenedOffset
	}
	return s.Index
}

func (s Segment) String() string {
	if s.Hardened {
		return strconv.FormatUint(uint64(s.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(s.Index), 10)
}

// Path is an ordered BIP32/BIP44 derivation path below the master key.
type Path []Segment

// String formats the path as m/44'/60'/0'/0/0.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// Clone returns a copy that can be modified independently.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Validate checks index bounds and, for ed25519, that every segment is hardened.
func (p Path) Validate(curve Curve) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for depth, s := range p {
		if s.Index > MaxIndex {
			return fmt.Errorf("%w: index %d at depth %d exceeds %d", ErrInvalidPath, s.Index, depth, MaxIndex)
		}
		if curve == CurveEd25519 && !s.Hardened {
			return fmt.Errorf("%w: ed25519 requires hardened segments, got %s at depth %d", ErrInvalidPath, s, depth)
		}
	}
	return nil
}

// ParsePath parses a path such as m/44'/501'/0'/0'. Both ' and h mark hardened
// segments. A bare index of 2^31 or more is rejected rather than silently
// treated as hardened.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q must start with m/", ErrInvalidPath, s)
	}

	path := make(Path, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := false
		if strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") || strings.HasSuffix(part, "H") {
			hardened = true
			part = part[:len(part)-1]
		}
		if part == "" || strings.HasPrefix(part, "+") || strings.HasPrefix(part, "-") {
			return nil, fmt.Errorf("%w: bad segment in %q", ErrInvalidPath, s)
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad segment %q: %v", ErrInvalidPath, part, err)
		}
		if uint32(n) > MaxIndex {
			return nil, fmt.Errorf("%w: index %d exceeds %d", ErrInvalidPath, n, MaxIndex)
		}
		path = append(path, Segment{Index: uint32(n), Hardened: hardened})
	}
	return path, nil
}

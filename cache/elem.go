package cache

import (
	"errors"
	"fmt"
)

// ElemKind identifies the numeric element type of a stored row, inferred
// from the per-element byte width (ItemSizeBytes / MaxRowDim).
type ElemKind int

const (
	// ElemByte — 1 byte per element (quantized rows).
	ElemByte ElemKind = iota
	// ElemFloat16 — 2 bytes per element (half precision).
	ElemFloat16
	// ElemFloat32 — 4 bytes per element (single precision).
	ElemFloat32
	// ElemFloat64 — 8 bytes per element (double precision).
	ElemFloat64
)

// String returns a stable label for the element kind.
func (k ElemKind) String() string {
	switch k {
	case ElemByte:
		return "byte"
	case ElemFloat16:
		return "float16"
	case ElemFloat32:
		return "float32"
	case ElemFloat64:
		return "float64"
	default:
		return fmt.Sprintf("ElemKind(%d)", int(k))
	}
}

// Width returns the byte width of one element of this kind.
func (k ElemKind) Width() int {
	switch k {
	case ElemFloat16:
		return 2
	case ElemFloat32:
		return 4
	case ElemFloat64:
		return 8
	default:
		return 1
	}
}

// ErrUnsupportedElemWidth is returned when the configured row geometry
// implies an element width outside the supported {1, 2, 4, 8} set.
var ErrUnsupportedElemWidth = errors.New("cache: unsupported element byte width")

// elemKindOf maps an element byte width to its kind. Fails closed: any
// width outside the table is an unsupported configuration, not a default.
func elemKindOf(width int) (ElemKind, error) {
	switch width {
	case 1:
		return ElemByte, nil
	case 2:
		return ElemFloat16, nil
	case 4:
		return ElemFloat32, nil
	case 8:
		return ElemFloat64, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedElemWidth, width)
	}
}

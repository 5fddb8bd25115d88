package element

import (
	"encoding/binary"
	"fmt"
)

// DType identifies the value domain of pixels, indices and table columns.
type DType uint8

const (
	// DTypeInvalid represents an invalid dtype.
	DTypeInvalid DType = iota
	// DTypeInt8 is a signed 8-bit integer.
	DTypeInt8
	// DTypeInt16 is a signed 16-bit integer.
	DTypeInt16
	// DTypeInt32 is a signed 32-bit integer.
	DTypeInt32
	// DTypeInt64 is a signed 64-bit integer.
	DTypeInt64
	// DTypeUint8 is an unsigned 8-bit integer.
	DTypeUint8
	// DTypeUint16 is an unsigned 16-bit integer.
	DTypeUint16
	// DTypeUint32 is an unsigned 32-bit integer.
	DTypeUint32
	// DTypeUint64 is an unsigned 64-bit integer.
	DTypeUint64
	// DTypeFloat32 is a 32-bit float.
	DTypeFloat32
	// DTypeFloat64 is a 64-bit float.
	DTypeFloat64
	// DTypeBool is a boolean.
	DTypeBool
	// DTypeString is a textual value.
	DTypeString
)

var dtypeNames = map[DType]string{
	DTypeInt8:    "int8",
	DTypeInt16:   "int16",
	DTypeInt32:   "int32",
	DTypeInt64:   "int64",
	DTypeUint8:   "uint8",
	DTypeUint16:  "uint16",
	DTypeUint32:  "uint32",
	DTypeUint64:  "uint64",
	DTypeFloat32: "float32",
	DTypeFloat64: "float64",
	DTypeBool:    "bool",
	DTypeString:  "string",
}

// String returns the stable name used in persisted attrs.
func (t DType) String() string {
	if s, ok := dtypeNames[t]; ok {
		return s
	}
	return "invalid"
}

// ParseDType resolves a persisted dtype name.
func ParseDType(s string) (DType, error) {
	for dt, name := range dtypeNames {
		if name == s {
			return dt, nil
		}
	}
	return DTypeInvalid, fmt.Errorf("element: unknown dtype %q", s)
}

// IsString reports whether the dtype is textual. The annotation dtype gate
// is fatal only when exactly one of the two compared sides is textual.
func (t DType) IsString() bool { return t == DTypeString }

// IsInteger reports whether the dtype is a (signed or unsigned) integer.
func (t DType) IsInteger() bool {
	return t >= DTypeInt8 && t <= DTypeUint64
}

// Size returns the byte width of fixed-size dtypes, 0 otherwise.
func (t DType) Size() int {
	switch t {
	case DTypeInt8, DTypeUint8, DTypeBool:
		return 1
	case DTypeInt16, DTypeUint16:
		return 2
	case DTypeInt32, DTypeUint32, DTypeFloat32:
		return 4
	case DTypeInt64, DTypeUint64, DTypeFloat64:
		return 8
	default:
		return 0
	}
}

// Uint64At decodes the i-th entry of a little-endian packed payload as an
// unsigned integer. Only valid for integer dtypes.
func (t DType) Uint64At(data []byte, i int) uint64 {
	switch t {
	case DTypeInt8:
		return uint64(int8(data[i]))
	case DTypeUint8:
		return uint64(data[i])
	case DTypeInt16:
		return uint64(int16(binary.LittleEndian.Uint16(data[i*2:])))
	case DTypeUint16:
		return uint64(binary.LittleEndian.Uint16(data[i*2:]))
	case DTypeInt32:
		return uint64(int32(binary.LittleEndian.Uint32(data[i*4:])))
	case DTypeUint32:
		return uint64(binary.LittleEndian.Uint32(data[i*4:]))
	case DTypeInt64, DTypeUint64:
		return binary.LittleEndian.Uint64(data[i*8:])
	default:
		return 0
	}
}

// MarshalText implements encoding.TextMarshaler for attrs serialization.
func (t DType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DType) UnmarshalText(text []byte) error {
	dt, err := ParseDType(string(text))
	if err != nil {
		return err
	}
	*t = dt
	return nil
}

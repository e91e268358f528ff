// Package codec contains the variable-length primitives of the NEO wire format. All length prefixes of the ledger
// types are encoded as compact-size integers which are written and read through a MarshalUtil.
package codec

import (
	"github.com/iotaledger/hive.go/marshalutil"
	"golang.org/x/xerrors"
)

// ErrMalformedEncoding is returned if a byte sequence is truncated or does not contain a canonical encoding.
var ErrMalformedEncoding = xerrors.New("malformed encoding")

const (
	varIntUint16Prefix byte = 0xfd
	varIntUint32Prefix byte = 0xfe
	varIntUint64Prefix byte = 0xff
)

// MaxVarBytesLength is the default upper bound for the length of VarBytes read by ReadVarBytes.
const MaxVarBytesLength = 0x1000000

// region VarInt ///////////////////////////////////////////////////////////////////////////////////////////////////////

// VarIntSize returns the amount of bytes the compact encoding of n occupies.
func VarIntSize(n uint64) int {
	switch {
	case n < uint64(varIntUint16Prefix):
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// WriteVarInt appends the compact encoding of n to the MarshalUtil.
func WriteVarInt(marshalUtil *marshalutil.MarshalUtil, n uint64) *marshalutil.MarshalUtil {
	switch {
	case n < uint64(varIntUint16Prefix):
		marshalUtil.WriteByte(byte(n))
	case n <= 0xffff:
		marshalUtil.WriteByte(varIntUint16Prefix)
		marshalUtil.WriteUint16(uint16(n))
	case n <= 0xffffffff:
		marshalUtil.WriteByte(varIntUint32Prefix)
		marshalUtil.WriteUint32(uint32(n))
	default:
		marshalUtil.WriteByte(varIntUint64Prefix)
		marshalUtil.WriteUint64(n)
	}

	return marshalUtil
}

// ReadVarInt reads a compact encoded integer from the MarshalUtil. Encodings that use a wider form than necessary are
// rejected so that every value has exactly one representation.
func ReadVarInt(marshalUtil *marshalutil.MarshalUtil) (n uint64, err error) {
	prefix, err := marshalUtil.ReadByte()
	if err != nil {
		return 0, xerrors.Errorf("failed to read VarInt prefix (%v): %w", err, ErrMalformedEncoding)
	}

	switch prefix {
	case varIntUint16Prefix:
		value, readErr := marshalUtil.ReadUint16()
		if readErr != nil {
			return 0, xerrors.Errorf("failed to read uint16 VarInt (%v): %w", readErr, ErrMalformedEncoding)
		}
		if value < uint16(varIntUint16Prefix) {
			return 0, xerrors.Errorf("non-canonical uint16 VarInt %d: %w", value, ErrMalformedEncoding)
		}
		return uint64(value), nil
	case varIntUint32Prefix:
		value, readErr := marshalUtil.ReadUint32()
		if readErr != nil {
			return 0, xerrors.Errorf("failed to read uint32 VarInt (%v): %w", readErr, ErrMalformedEncoding)
		}
		if value <= 0xffff {
			return 0, xerrors.Errorf("non-canonical uint32 VarInt %d: %w", value, ErrMalformedEncoding)
		}
		return uint64(value), nil
	case varIntUint64Prefix:
		value, readErr := marshalUtil.ReadUint64()
		if readErr != nil {
			return 0, xerrors.Errorf("failed to read uint64 VarInt (%v): %w", readErr, ErrMalformedEncoding)
		}
		if value <= 0xffffffff {
			return 0, xerrors.Errorf("non-canonical uint64 VarInt %d: %w", value, ErrMalformedEncoding)
		}
		return value, nil
	default:
		return uint64(prefix), nil
	}
}

// EncodeVarInt returns the compact encoding of n.
func EncodeVarInt(n uint64) []byte {
	return WriteVarInt(marshalutil.New(VarIntSize(n)), n).Bytes()
}

// DecodeVarInt decodes a compact encoded integer from the beginning of the given bytes.
func DecodeVarInt(bytes []byte) (n uint64, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if n, err = ReadVarInt(marshalUtil); err != nil {
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region VarBytes /////////////////////////////////////////////////////////////////////////////////////////////////////

// WriteVarBytes appends the VarInt length of data followed by data itself.
func WriteVarBytes(marshalUtil *marshalutil.MarshalUtil, data []byte) *marshalutil.MarshalUtil {
	WriteVarInt(marshalUtil, uint64(len(data)))
	marshalUtil.WriteBytes(data)

	return marshalUtil
}

// ReadVarBytes reads a length prefixed byte slice. The optional maxLength overrides MaxVarBytesLength. The returned
// slice is a copy and does not alias the buffer of the MarshalUtil.
func ReadVarBytes(marshalUtil *marshalutil.MarshalUtil, maxLength ...uint64) (data []byte, err error) {
	limit := uint64(MaxVarBytesLength)
	if len(maxLength) > 0 {
		limit = maxLength[0]
	}

	length, err := ReadVarInt(marshalUtil)
	if err != nil {
		return nil, err
	}
	if length > limit {
		return nil, xerrors.Errorf("VarBytes length %d exceeds limit %d: %w", length, limit, ErrMalformedEncoding)
	}

	raw, err := marshalUtil.ReadBytes(int(length))
	if err != nil {
		return nil, xerrors.Errorf("failed to read %d bytes of VarBytes (%v): %w", length, err, ErrMalformedEncoding)
	}

	data = make([]byte, len(raw))
	copy(data, raw)

	return data, nil
}

// WriteVarString appends the VarBytes encoding of s.
func WriteVarString(marshalUtil *marshalutil.MarshalUtil, s string) *marshalutil.MarshalUtil {
	return WriteVarBytes(marshalUtil, []byte(s))
}

// ReadVarString reads a VarBytes encoded string.
func ReadVarString(marshalUtil *marshalutil.MarshalUtil, maxLength ...uint64) (string, error) {
	data, err := ReadVarBytes(marshalUtil, maxLength...)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ReadFixedBytes reads exactly length bytes and returns a copy of them.
func ReadFixedBytes(marshalUtil *marshalutil.MarshalUtil, length int) ([]byte, error) {
	raw, err := marshalUtil.ReadBytes(length)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %d bytes (%v): %w", length, err, ErrMalformedEncoding)
	}

	data := make([]byte, length)
	copy(data, raw)

	return data, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

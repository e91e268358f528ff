package ledgerstate

import (
	"encoding/hex"

	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"golang.org/x/xerrors"
)

// Uint256Length contains the amount of bytes of a marshaled Uint256.
const Uint256Length = 32

// Uint256 is a 32 byte hash in wire order. It identifies transactions and assets. Its string form is the byte-reversed
// hex representation that nodes and explorers display.
type Uint256 [Uint256Length]byte

// EmptyUint256 is the zero value of a Uint256.
var EmptyUint256 Uint256

// Uint256FromBytes unmarshals a Uint256 from a sequence of bytes in wire order.
func Uint256FromBytes(bytes []byte) (result Uint256, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if result, err = Uint256FromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Uint256 from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// Uint256FromMarshalUtil unmarshals a Uint256 using a MarshalUtil (for easier unmarshaling).
func Uint256FromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (result Uint256, err error) {
	bytes, err := marshalUtil.ReadBytes(Uint256Length)
	if err != nil {
		err = xerrors.Errorf("failed to parse Uint256 (%v): %w", err, ErrMalformedEncoding)
		return
	}
	copy(result[:], bytes)

	return
}

// Uint256FromString parses the byte-reversed hex representation of a Uint256.
func Uint256FromString(s string) (result Uint256, err error) {
	bytes, err := hex.DecodeString(s)
	if err != nil {
		err = xerrors.Errorf("failed to decode hex %q (%v): %w", s, err, cerrors.ErrParseBytesFailed)
		return
	}
	if len(bytes) != Uint256Length {
		err = xerrors.Errorf("expected %d bytes but got %d: %w", Uint256Length, len(bytes), cerrors.ErrParseBytesFailed)
		return
	}
	copy(result[:], reverseBytes(bytes))

	return
}

// Uint256FromDigest returns the Uint256 of a digest that is already in wire order.
func Uint256FromDigest(digest []byte) (result Uint256) {
	copy(result[:], digest)

	return
}

// Bytes returns the wire order bytes.
func (u Uint256) Bytes() []byte {
	return u[:]
}

// String returns the byte-reversed hex representation.
func (u Uint256) String() string {
	return hex.EncodeToString(reverseBytes(u[:]))
}

func reverseBytes(bytes []byte) []byte {
	reversed := make([]byte, len(bytes))
	for i, b := range bytes {
		reversed[len(bytes)-1-i] = b
	}

	return reversed
}

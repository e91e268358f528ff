package keys

import (
	"bytes"

	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/mr-tron/base58"
	"golang.org/x/xerrors"
)

// ChecksumLength is the amount of bytes of the double SHA-256 digest that are appended by base58check.
const ChecksumLength = 4

// ErrInvalidChecksum is returned if the checksum of a base58check string does not match its payload.
var ErrInvalidChecksum = xerrors.New("invalid checksum")

// Base58CheckEncode encodes the payload as base58 after appending the first four bytes of its double SHA-256 digest.
func Base58CheckEncode(payload []byte) string {
	return base58.Encode(byteutils.ConcatBytes(payload, DoubleSha256(payload)[:ChecksumLength]))
}

// Base58CheckDecode decodes a base58check string and returns the payload without the checksum.
func Base58CheckDecode(s string) (payload []byte, err error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return nil, xerrors.Errorf("error while decoding base58 string (%v): %w", err, cerrors.ErrBase58DecodeFailed)
	}
	if len(decoded) <= ChecksumLength {
		return nil, xerrors.Errorf("base58check string too short (%d bytes): %w", len(decoded), ErrInvalidChecksum)
	}

	payload = decoded[:len(decoded)-ChecksumLength]
	if !bytes.Equal(DoubleSha256(payload)[:ChecksumLength], decoded[len(decoded)-ChecksumLength:]) {
		return nil, ErrInvalidChecksum
	}

	return payload, nil
}

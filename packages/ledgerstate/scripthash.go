package ledgerstate

import (
	"encoding/hex"

	"github.com/cityofzion/neon-go/packages/keys"
	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"golang.org/x/xerrors"
)

const (
	// ScriptHashLength contains the amount of bytes of a marshaled ScriptHash.
	ScriptHashLength = 20

	// AddressVersion is the version byte that is prepended to a ScriptHash before it is encoded as an address.
	AddressVersion byte = 0x17
)

// region ScriptHash ///////////////////////////////////////////////////////////////////////////////////////////////////

// ScriptHash is the RIPEMD160(SHA256()) digest of a verification script in wire order. It identifies the owner of an
// Output.
type ScriptHash [ScriptHashLength]byte

// ScriptHashFromMarshalUtil unmarshals a ScriptHash using a MarshalUtil (for easier unmarshaling).
func ScriptHashFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (scriptHash ScriptHash, err error) {
	bytes, err := marshalUtil.ReadBytes(ScriptHashLength)
	if err != nil {
		err = xerrors.Errorf("failed to parse ScriptHash (%v): %w", err, ErrMalformedEncoding)
		return
	}
	copy(scriptHash[:], bytes)

	return
}

// ScriptHashFromString parses the byte-reversed hex representation of a ScriptHash.
func ScriptHashFromString(s string) (scriptHash ScriptHash, err error) {
	bytes, err := hex.DecodeString(s)
	if err != nil {
		err = xerrors.Errorf("failed to decode hex %q (%v): %w", s, err, cerrors.ErrParseBytesFailed)
		return
	}
	if len(bytes) != ScriptHashLength {
		err = xerrors.Errorf("expected %d bytes but got %d: %w", ScriptHashLength, len(bytes), cerrors.ErrParseBytesFailed)
		return
	}
	copy(scriptHash[:], reverseBytes(bytes))

	return
}

// ScriptHashFromScript hashes a verification script.
func ScriptHashFromScript(script []byte) (scriptHash ScriptHash) {
	copy(scriptHash[:], keys.Hash160(script))

	return
}

// ScriptHashFromPublicKey returns the ScriptHash of the single signature verification script of the key.
func ScriptHashFromPublicKey(publicKey *keys.PublicKey) ScriptHash {
	return ScriptHashFromScript(publicKey.VerificationScript())
}

// ScriptHashFromAddress decodes a base58check address.
func ScriptHashFromAddress(address string) (scriptHash ScriptHash, err error) {
	payload, err := keys.Base58CheckDecode(address)
	if err != nil {
		err = xerrors.Errorf("failed to decode address %q (%v): %w", address, err, ErrInvalidAddress)
		return
	}
	if len(payload) != ScriptHashLength+1 || payload[0] != AddressVersion {
		err = xerrors.Errorf("address %q has a wrong version or length: %w", address, ErrInvalidAddress)
		return
	}
	copy(scriptHash[:], payload[1:])

	return
}

// IsAddress returns true if the string is a valid address.
func IsAddress(address string) bool {
	_, err := ScriptHashFromAddress(address)
	return err == nil
}

// Address returns the base58check encoded address of the ScriptHash.
func (s ScriptHash) Address() string {
	return keys.Base58CheckEncode(byteutils.ConcatBytes([]byte{AddressVersion}, s[:]))
}

// Bytes returns the wire order bytes.
func (s ScriptHash) Bytes() []byte {
	return s[:]
}

// String returns the byte-reversed hex representation.
func (s ScriptHash) String() string {
	return hex.EncodeToString(reverseBytes(s[:]))
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

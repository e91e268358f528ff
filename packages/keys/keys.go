// Package keys implements the secp256r1 key material used to own and spend NEO outputs.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

const (
	// PrivateKeySize is the length of a raw private key.
	PrivateKeySize = 32

	// PublicKeySize is the length of a compressed public key.
	PublicKeySize = 33

	// SignatureSize is the length of a signature (r || s).
	SignatureSize = 64

	wifVersion    byte = 0x80
	wifCompressed byte = 0x01

	opPush33   byte = 0x21
	opCheckSig byte = 0xac
	opPush64   byte = 0x40

	uncompressedPublicKeySize = 65
)

// ErrInvalidKey is returned if key material can not be parsed or is out of range.
var ErrInvalidKey = xerrors.New("invalid key")

func curve() elliptic.Curve {
	return elliptic.P256()
}

// region PrivateKey ///////////////////////////////////////////////////////////////////////////////////////////////////

// PrivateKey is a secp256r1 private key.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// NewPrivateKey generates a random PrivateKey.
func NewPrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(curve(), rand.Reader)
	if err != nil {
		return nil, xerrors.Errorf("failed to generate private key: %w", err)
	}

	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a PrivateKey from its 32 byte big endian scalar.
func PrivateKeyFromBytes(bytes []byte) (*PrivateKey, error) {
	if len(bytes) != PrivateKeySize {
		return nil, xerrors.Errorf("private key must be %d bytes, got %d: %w", PrivateKeySize, len(bytes), ErrInvalidKey)
	}

	d := new(big.Int).SetBytes(bytes)
	if d.Sign() == 0 || d.Cmp(curve().Params().N) >= 0 {
		return nil, xerrors.Errorf("private key scalar out of range: %w", ErrInvalidKey)
	}

	key := &ecdsa.PrivateKey{D: d}
	key.PublicKey.Curve = curve()
	key.PublicKey.X, key.PublicKey.Y = curve().ScalarBaseMult(bytes)

	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromHex creates a PrivateKey from its hex representation.
func PrivateKeyFromHex(s string) (*PrivateKey, error) {
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode private key hex (%v): %w", err, ErrInvalidKey)
	}

	return PrivateKeyFromBytes(bytes)
}

// PrivateKeyFromWIF decodes a private key in wallet import format.
func PrivateKeyFromWIF(wif string) (*PrivateKey, error) {
	payload, err := Base58CheckDecode(wif)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode WIF: %w", err)
	}
	if len(payload) != PrivateKeySize+2 || payload[0] != wifVersion || payload[len(payload)-1] != wifCompressed {
		return nil, xerrors.Errorf("malformed WIF payload: %w", ErrInvalidKey)
	}

	return PrivateKeyFromBytes(payload[1 : PrivateKeySize+1])
}

// Bytes returns the 32 byte scalar of the key.
func (p *PrivateKey) Bytes() []byte {
	return p.key.D.FillBytes(make([]byte, PrivateKeySize))
}

// Hex returns the hex representation of the key.
func (p *PrivateKey) Hex() string {
	return hex.EncodeToString(p.Bytes())
}

// WIF returns the key in wallet import format.
func (p *PrivateKey) WIF() string {
	return Base58CheckEncode(byteutils.ConcatBytes([]byte{wifVersion}, p.Bytes(), []byte{wifCompressed}))
}

// PublicKey returns the PublicKey that belongs to this key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: &p.key.PublicKey}
}

// Sign signs the SHA-256 digest of data and returns the 64 byte r || s signature.
func (p *PrivateKey) Sign(data []byte) ([]byte, error) {
	r, s, err := ecdsa.Sign(rand.Reader, p.key, Sha256(data))
	if err != nil {
		return nil, xerrors.Errorf("failed to sign data: %w", err)
	}

	signature := make([]byte, SignatureSize)
	r.FillBytes(signature[:SignatureSize/2])
	s.FillBytes(signature[SignatureSize/2:])

	return signature, nil
}

// String returns a human readable version of the key that does not leak the secret.
func (p *PrivateKey) String() string {
	return stringify.Struct("PrivateKey",
		stringify.StructField("PublicKey", p.PublicKey().Hex()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region PublicKey ////////////////////////////////////////////////////////////////////////////////////////////////////

// PublicKey is a secp256r1 public key.
type PublicKey struct {
	key *ecdsa.PublicKey
}

// PublicKeyFromBytes parses a compressed (33 bytes) or uncompressed (65 bytes) public key.
func PublicKeyFromBytes(bytes []byte) (*PublicKey, error) {
	var x, y *big.Int
	switch len(bytes) {
	case PublicKeySize:
		x, y = elliptic.UnmarshalCompressed(curve(), bytes)
	case uncompressedPublicKeySize:
		x, y = elliptic.Unmarshal(curve(), bytes) //nolint:staticcheck // the key is only used for ECDSA.
	default:
		return nil, xerrors.Errorf("public key must be %d or %d bytes, got %d: %w", PublicKeySize, uncompressedPublicKeySize, len(bytes), ErrInvalidKey)
	}
	if x == nil {
		return nil, xerrors.Errorf("public key is not a point on the curve: %w", ErrInvalidKey)
	}

	return &PublicKey{key: &ecdsa.PublicKey{Curve: curve(), X: x, Y: y}}, nil
}

// PublicKeyFromHex parses the hex representation of a public key.
func PublicKeyFromHex(s string) (*PublicKey, error) {
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode public key hex (%v): %w", err, ErrInvalidKey)
	}

	return PublicKeyFromBytes(bytes)
}

// IsPublicKey returns true if s is the hex representation of a valid public key.
func IsPublicKey(s string) bool {
	_, err := PublicKeyFromHex(s)
	return err == nil
}

// Bytes returns the compressed encoding of the key.
func (p *PublicKey) Bytes() []byte {
	return elliptic.MarshalCompressed(p.key.Curve, p.key.X, p.key.Y)
}

// Hex returns the hex representation of the compressed key.
func (p *PublicKey) Hex() string {
	return hex.EncodeToString(p.Bytes())
}

// Equals returns true if both keys describe the same point.
func (p *PublicKey) Equals(other *PublicKey) bool {
	return other != nil && p.key.X.Cmp(other.key.X) == 0 && p.key.Y.Cmp(other.key.Y) == 0
}

// Verify checks a 64 byte r || s signature of the SHA-256 digest of data.
func (p *PublicKey) Verify(data, signature []byte) bool {
	if len(signature) != SignatureSize {
		return false
	}

	r := new(big.Int).SetBytes(signature[:SignatureSize/2])
	s := new(big.Int).SetBytes(signature[SignatureSize/2:])

	return ecdsa.Verify(p.key, Sha256(data), r, s)
}

// VerificationScript returns the single signature verification script: PUSHBYTES33 <key> CHECKSIG.
func (p *PublicKey) VerificationScript() []byte {
	return byteutils.ConcatBytes([]byte{opPush33}, p.Bytes(), []byte{opCheckSig})
}

// ScriptHash returns the raw hash of the verification script, the owner identifier of outputs.
func (p *PublicKey) ScriptHash() []byte {
	return Hash160(p.VerificationScript())
}

func (p *PublicKey) String() string {
	return stringify.Struct("PublicKey",
		stringify.StructField("Hex", p.Hex()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// InvocationScript returns the script that pushes a signature: PUSHBYTES64 <signature>.
func InvocationScript(signature []byte) []byte {
	return byteutils.ConcatBytes([]byte{opPush64}, signature)
}

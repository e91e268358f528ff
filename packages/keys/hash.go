package keys

import (
	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is fixed by the address format.
)

// Sha256 returns the SHA-256 digest of data.
func Sha256(data []byte) []byte {
	digest := sha256.Sum256(data)
	return digest[:]
}

// DoubleSha256 returns SHA-256(SHA-256(data)). It is the digest used for transaction ids and base58check checksums.
func DoubleSha256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// Hash160 returns RIPEMD-160(SHA-256(data)).
func Hash160(data []byte) []byte {
	first := sha256.Sum256(data)
	hasher := ripemd160.New()
	_, _ = hasher.Write(first[:])
	return hasher.Sum(nil)
}

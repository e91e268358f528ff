package ledgerstate

import (
	"strings"
	"testing"

	"github.com/cityofzion/neon-go/packages/keys"
	"github.com/stretchr/testify/require"
)

const (
	senderPrivateKey = "7d128a6d096f0c14c3a25a2b0c41cf79661bfcb4a8cc95aaaea28bde4d732344"
	senderPublicKey  = "02028a99826edc0c97d18e22b6932373d908d323aa7f92656a77ec26e8861699ef"
	senderAddress    = "ALq7AWrhAueN6mJNqk6FHJjnsEoPRytLdW"
	recipientAddress = "AYLadsx3W1g23kS8GD8UP65MgsS4dSFxhP"
)

var (
	txA = strings.Repeat("a1", 31) + "01"
	txB = strings.Repeat("b2", 32)
	txC = strings.Repeat("c3", 32)
)

func testUint256(t *testing.T, s string) Uint256 {
	result, err := Uint256FromString(s)
	require.NoError(t, err)

	return result
}

func testScriptHash(t *testing.T, address string) ScriptHash {
	scriptHash, err := ScriptHashFromAddress(address)
	require.NoError(t, err)

	return scriptHash
}

func testPrivateKey(t *testing.T) *keys.PrivateKey {
	privateKey, err := keys.PrivateKeyFromHex(senderPrivateKey)
	require.NoError(t, err)

	return privateKey
}

func testBalance(t *testing.T, symbol string, coins ...*Coin) *Balance {
	return NewBalance("TestNet", senderAddress).AddAsset(symbol, NewAssetBalance(coins...))
}

func testCoin(t *testing.T, txID string, index uint16, value int64) *Coin {
	return &Coin{TxID: testUint256(t, txID), Index: index, Value: NewFixed8(value)}
}

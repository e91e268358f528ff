package ledgerstate

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestFixed8(t *testing.T) {
	assert.Equal(t, Fixed8(150000000), NewFixed8(1)+Fixed8(50000000))
	assert.Equal(t, "1.5", Fixed8(150000000).String())
	assert.Equal(t, "0.00000001", Fixed8(1).String())
	assert.Equal(t, "0", Fixed8(0).String())

	value, err := Fixed8FromString("12.34567891")
	require.NoError(t, err)
	assert.Equal(t, Fixed8(1234567891), value)

	_, err = Fixed8FromString("0.000000001")
	assert.True(t, xerrors.Is(err, ErrInvalidAmount))

	_, err = Fixed8FromString("100000000000000")
	assert.True(t, xerrors.Is(err, ErrInvalidAmount))

	_, err = Fixed8FromString("abc")
	assert.True(t, xerrors.Is(err, ErrInvalidAmount))

	assert.Equal(t, Fixed8(10000001), Fixed8FromFloat64(0.10000001))
	assert.True(t, decimal.RequireFromString("2.5").Equal(NewFixed8(2).Decimal().Add(decimal.RequireFromString("0.5"))))
}

func TestFixed8_Add(t *testing.T) {
	sum, err := NewFixed8(1).Add(Fixed8(50000000))
	require.NoError(t, err)
	assert.Equal(t, Fixed8(150000000), sum)

	sum, err = Fixed8(5).Add(-7)
	require.NoError(t, err)
	assert.Equal(t, Fixed8(-2), sum)

	_, err = Fixed8(1 << 62).Add(Fixed8(1 << 62))
	assert.True(t, xerrors.Is(err, ErrInvalidAmount))

	_, err = Fixed8(-(1 << 62)).Add(Fixed8(-(1 << 62) - 1))
	assert.True(t, xerrors.Is(err, ErrInvalidAmount))
}

func TestFixed8_JSON(t *testing.T) {
	var decoded struct {
		Number Fixed8 `json:"number"`
		Quoted Fixed8 `json:"quoted"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"number": 1.25, "quoted": "0.5"}`), &decoded))
	assert.Equal(t, Fixed8(125000000), decoded.Number)
	assert.Equal(t, Fixed8(50000000), decoded.Quoted)

	encoded, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"number": 1.25, "quoted": 0.5}`, string(encoded))
}

func TestUint256(t *testing.T) {
	assert.Equal(t, "c56f33fc6ecfcd0c225c4ab356fee59390af8560be0e930faebe74a6daff7c9b", NEOAssetID.String())
	assert.Equal(t, byte(0x9b), NEOAssetID.Bytes()[0])

	parsed, consumedBytes, err := Uint256FromBytes(NEOAssetID.Bytes())
	require.NoError(t, err)
	assert.Equal(t, Uint256Length, consumedBytes)
	assert.Equal(t, NEOAssetID, parsed)

	_, err = Uint256FromString("abcd")
	assert.Error(t, err)

	_, _, err = Uint256FromBytes([]byte{1, 2, 3})
	assert.True(t, xerrors.Is(err, ErrMalformedEncoding))
}

func TestScriptHash(t *testing.T) {
	scriptHash := testScriptHash(t, senderAddress)
	assert.Equal(t, "cef0c0fdcfe7838eff6ff104f9cdec2922297537", scriptHash.String())
	assert.Equal(t, senderAddress, scriptHash.Address())

	parsed, err := ScriptHashFromString("cef0c0fdcfe7838eff6ff104f9cdec2922297537")
	require.NoError(t, err)
	assert.Equal(t, scriptHash, parsed)

	assert.Equal(t, scriptHash, ScriptHashFromPublicKey(testPrivateKey(t).PublicKey()))

	assert.True(t, IsAddress(recipientAddress))
	assert.False(t, IsAddress("ALq7AWrhAueN6mJNqk6FHJjnsEoPRytLdX"))
	assert.False(t, IsAddress(senderPublicKey))

	_, err = ScriptHashFromAddress("not an address")
	assert.True(t, xerrors.Is(err, ErrInvalidAddress))
}

func TestAssets(t *testing.T) {
	assetID, err := AssetIDFromSymbol(GAS)
	require.NoError(t, err)
	assert.Equal(t, GASAssetID, assetID)

	symbol, err := SymbolFromAssetID(NEOAssetID)
	require.NoError(t, err)
	assert.Equal(t, NEO, symbol)

	_, err = AssetIDFromSymbol("ONT")
	assert.True(t, xerrors.Is(err, ErrUnknownAsset))

	_, err = SymbolFromAssetID(EmptyUint256)
	assert.True(t, xerrors.Is(err, ErrUnknownAsset))

	symbols := []string{"ZZZ", GAS, "ABC", NEO}
	SortSymbols(symbols)
	assert.Equal(t, []string{NEO, GAS, "ABC", "ZZZ"}, symbols)
}

package ledgerstate

import (
	"encoding/hex"
	"testing"

	"github.com/cityofzion/neon-go/packages/keys"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

const (
	contractTxHex  = "8000000101a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a10000029b7cffdaa674beae0f930ebe6085af9093e5fe56b34a5c220ccdcf6efc336fc500a3e11100000000b5b18a1ba170a3fb01da3de04273571847e66e649b7cffdaa674beae0f930ebe6085af9093e5fe56b34a5c220ccdcf6efc336fc500c2eb0b000000003775292229eccdf904f16fff8e83e7cffdc0f0ce"
	contractTxHash = "269eeab2d0524468be61445820ded77d1a88f36cec6d7d1f09be6e9a8925e79a"
	remarkTxHex    = "800001f0060568656c6c6f0101a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a10000029b7cffdaa674beae0f930ebe6085af9093e5fe56b34a5c220ccdcf6efc336fc500a3e11100000000b5b18a1ba170a3fb01da3de04273571847e66e649b7cffdaa674beae0f930ebe6085af9093e5fe56b34a5c220ccdcf6efc336fc500c2eb0b000000003775292229eccdf904f16fff8e83e7cffdc0f0ce"
	claimTxHex     = "020002b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b2b20100c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c3c30000000001e72d286979ee6cb1b7e65dfddfb2e384100b8d148e7758de42e4168b71792c6000e1f505000000003775292229eccdf904f16fff8e83e7cffdc0f0ce"
	claimTxHash    = "18a98fde29a1cddaa13ce0887a3e3352668635545b26f52c9b262aef8ea38bb4"
	invocationHex  = "d1010700c1046e616d650000000000000000000000"
	invocationHash = "08089bfccf8fb3eeefa07d0d4384f37b146422ffc5af4597c9629b1e92197823"
)

func testContractTx(t *testing.T) *Transaction {
	balance := testBalance(t, NEO, testCoin(t, txA, 0, 5))
	intent, err := CreateOutput(NEO, NewFixed8(3), recipientAddress)
	require.NoError(t, err)

	transaction, err := CreateContractTx(balance, []*Output{intent})
	require.NoError(t, err)

	return transaction
}

func TestNewTransaction(t *testing.T) {
	transaction, err := NewTransaction(ContractType, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, &ContractExclusive{}, transaction.ExclusiveData())
	assert.Equal(t, "8000000000", transaction.Serialize(false))

	_, err = NewTransaction(TransactionType(0x40), 0, nil)
	assert.True(t, xerrors.Is(err, ErrUnsupportedTransactionType))

	_, err = NewTransaction(ContractType, 0, &InvocationExclusive{})
	assert.True(t, xerrors.Is(err, ErrUnsupportedTransactionType))

	_, err = NewTransaction(ClaimType, 1, nil)
	assert.True(t, xerrors.Is(err, ErrIncompatibleVersion))

	_, err = NewTransaction(InvocationType, 2, nil)
	assert.True(t, xerrors.Is(err, ErrIncompatibleVersion))
}

func TestTransaction_CalculateFailure(t *testing.T) {
	transaction, err := NewTransaction(ContractType, 0, nil)
	require.NoError(t, err)

	err = transaction.Calculate(NewBalance("TestNet", ""))
	assert.True(t, xerrors.Is(err, ErrInvalidAddress))
	assert.Empty(t, transaction.Inputs())
	assert.Empty(t, transaction.Outputs())

	balance := testBalance(t, NEO, testCoin(t, txA, 0, 5))
	transaction.AddOutput(NewOutput(NEOAssetID, NewFixed8(3), testScriptHash(t, recipientAddress)))
	require.NoError(t, transaction.Calculate(balance))
	assert.Len(t, transaction.Inputs(), 1)
	assert.Len(t, transaction.Outputs(), 2)

	assert.True(t, xerrors.Is(transaction.Calculate(balance), ErrAlreadyCalculated))
}

func TestTransaction_Serialize(t *testing.T) {
	transaction := testContractTx(t)
	assert.Equal(t, contractTxHex, transaction.Serialize(false))
	assert.Equal(t, contractTxHex+"00", transaction.Serialize(true))
	assert.Equal(t, contractTxHash, transaction.Hash())
	assert.Equal(t, contractTxHash, transaction.ID().String())
}

func TestTransaction_AddRemark(t *testing.T) {
	balance := testBalance(t, NEO, testCoin(t, txA, 0, 5))
	intent, err := CreateOutput(NEO, NewFixed8(3), recipientAddress)
	require.NoError(t, err)

	transaction, err := CreateContractTx(balance, []*Output{intent}, WithRemark("hello"))
	require.NoError(t, err)
	assert.Equal(t, remarkTxHex, transaction.Serialize(false))
	require.Len(t, transaction.Attributes(), 1)
	assert.Equal(t, RemarkUsage, transaction.Attributes()[0].Usage())
	assert.Equal(t, append([]byte{0x05}, "hello"...), transaction.Attributes()[0].Data())
}

func TestTransaction_Deserialize(t *testing.T) {
	for _, encoded := range []string{contractTxHex, remarkTxHex, claimTxHex, invocationHex} {
		transaction, err := Deserialize(encoded)
		require.NoError(t, err)
		assert.Equal(t, encoded, transaction.Serialize(false))
		assert.Empty(t, transaction.Witnesses())
	}

	claim, err := Deserialize(claimTxHex)
	require.NoError(t, err)
	assert.Equal(t, ClaimType, claim.Type())
	assert.Equal(t, claimTxHash, claim.Hash())
	require.Len(t, claim.ExclusiveData().(*ClaimExclusive).Claims, 2)

	invocation, err := Deserialize(invocationHex)
	require.NoError(t, err)
	assert.Equal(t, byte(1), invocation.Version())
	assert.Equal(t, invocationHash, invocation.Hash())
	assert.Equal(t, []byte{0x00, 0xc1, 0x04, 'n', 'a', 'm', 'e'}, invocation.ExclusiveData().(*InvocationExclusive).Script)
}

func TestTransaction_DeserializeMalformed(t *testing.T) {
	_, err := Deserialize(contractTxHex[:len(contractTxHex)-2])
	assert.True(t, xerrors.Is(err, ErrMalformedEncoding))

	_, err = Deserialize(contractTxHex + "0000")
	assert.True(t, xerrors.Is(err, ErrMalformedEncoding))

	_, err = Deserialize("4000000000")
	assert.True(t, xerrors.Is(err, ErrUnsupportedTransactionType))

	_, err = Deserialize("zz")
	assert.Error(t, err)
}

func TestTransaction_SignRoundTrip(t *testing.T) {
	privateKey := testPrivateKey(t)
	transaction := testContractTx(t)
	hashBeforeSigning := transaction.Hash()

	require.NoError(t, transaction.Sign(privateKey))
	assert.Equal(t, hashBeforeSigning, transaction.Hash())

	witnesses := transaction.Witnesses()
	require.Len(t, witnesses, 1)
	assert.Len(t, witnesses[0].InvocationScript(), 65)
	assert.Equal(t, byte(0x40), witnesses[0].InvocationScript()[0])
	assert.Equal(t, "21"+senderPublicKey+"ac", hex.EncodeToString(witnesses[0].VerificationScript()))
	assert.Equal(t, senderAddress, witnesses[0].ScriptHash().Address())
	assert.True(t, privateKey.PublicKey().Verify(transaction.UnsignedBytes(), witnesses[0].InvocationScript()[1:]))

	// signing again with the same key replaces the witness
	require.NoError(t, transaction.Sign(privateKey))
	assert.Len(t, transaction.Witnesses(), 1)

	decoded, err := Deserialize(transaction.Serialize(true))
	require.NoError(t, err)
	assert.Equal(t, transaction.Serialize(true), decoded.Serialize(true))
	assert.Equal(t, transaction.Type(), decoded.Type())
	assert.Equal(t, transaction.Version(), decoded.Version())
	assert.Equal(t, transaction.Inputs(), decoded.Inputs())
	assert.Equal(t, transaction.Outputs(), decoded.Outputs())
	assert.Equal(t, transaction.Witnesses(), decoded.Witnesses())
	assert.Equal(t, hashBeforeSigning, decoded.Hash())
}

func TestTransaction_AddSignature(t *testing.T) {
	privateKey := testPrivateKey(t)
	transaction := testContractTx(t)

	signature, err := privateKey.Sign(transaction.UnsignedBytes())
	require.NoError(t, err)
	require.NoError(t, transaction.AddSignature(privateKey.PublicKey(), signature))

	otherKey, err := keys.NewPrivateKey()
	require.NoError(t, err)
	err = transaction.AddSignature(otherKey.PublicKey(), signature)
	assert.True(t, xerrors.Is(err, keys.ErrInvalidKey))
	assert.Len(t, transaction.Witnesses(), 1)
}

func TestTransaction_AddOutputFromSymbol(t *testing.T) {
	transaction, err := NewTransaction(ContractType, 0, nil)
	require.NoError(t, err)

	require.NoError(t, transaction.AddOutputFromSymbol(GAS, NewFixed8(2), recipientAddress))
	assert.True(t, xerrors.Is(transaction.AddOutputFromSymbol("XYZ", 1, recipientAddress), ErrUnknownAsset))
	require.Len(t, transaction.Outputs(), 1)
	assert.Equal(t, GASAssetID, transaction.Outputs()[0].AssetID())
}

func TestTransactionFromMarshalUtil_Embedded(t *testing.T) {
	transaction := testContractTx(t)
	marshalUtil := marshalutil.New(transaction.Bytes())

	decoded, err := TransactionFromMarshalUtil(marshalUtil)
	require.NoError(t, err)
	assert.Equal(t, len(transaction.Bytes()), marshalUtil.ReadOffset())
	assert.Equal(t, contractTxHash, decoded.Hash())
}

func TestTransaction_String(t *testing.T) {
	assert.Contains(t, testContractTx(t).String(), contractTxHash)
}

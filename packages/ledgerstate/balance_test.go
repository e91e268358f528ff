package ledgerstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestBalance_ApplyTx(t *testing.T) {
	balance := NewBalance("TestNet", senderAddress).
		AddAsset(NEO, NewAssetBalance(testCoin(t, txA, 0, 5), testCoin(t, txB, 0, 1)))
	assert.Equal(t, NewFixed8(6), balance.Asset(NEO).Balance)

	intent, err := CreateOutput(NEO, NewFixed8(3), recipientAddress)
	require.NoError(t, err)
	transaction, err := CreateContractTx(balance, []*Output{intent})
	require.NoError(t, err)

	neo := balance.Asset(NEO)
	assert.Equal(t, NewFixed8(0), neo.Balance)
	assert.Empty(t, neo.Unspent)
	assert.Len(t, neo.Spent, 2)
	require.Len(t, neo.Unconfirmed, 1)

	require.NoError(t, balance.ApplyTx(transaction, false))
	assert.Len(t, neo.Spent, 2)
	assert.Len(t, neo.Unconfirmed, 1)

	require.NoError(t, balance.ApplyTx(transaction, true))
	assert.Empty(t, neo.Unconfirmed)
	require.Len(t, neo.Unspent, 1)
	assert.Equal(t, NewFixed8(3), neo.Unspent[0].Value)
	assert.Equal(t, NewFixed8(3), neo.Balance)

	require.NoError(t, balance.ApplyTx(transaction, true))
	require.NoError(t, balance.ApplyTx(transaction, false))
	assert.Len(t, neo.Unspent, 1)
	assert.Empty(t, neo.Unconfirmed)
	assert.Len(t, neo.Spent, 2)
}

func TestBalance_ApplyTxNewAsset(t *testing.T) {
	claims := NewClaims("TestNet", senderAddress, &Claim{TxID: testUint256(t, txB), Index: 1, Claim: 5})
	transaction, err := CreateClaimTx(senderAddress, claims)
	require.NoError(t, err)

	balance := NewBalance("TestNet", senderAddress)
	require.NoError(t, balance.ApplyTx(transaction, true))
	require.NotNil(t, balance.Asset(GAS))
	assert.Equal(t, Fixed8(5), balance.Asset(GAS).Balance)
	assert.Equal(t, []string{GAS}, balance.AssetSymbols())

	foreign := NewBalance("TestNet", recipientAddress)
	require.NoError(t, foreign.ApplyTx(transaction, true))
	assert.Nil(t, foreign.Asset(GAS))

	err = NewBalance("TestNet", "").ApplyTx(transaction, true)
	assert.True(t, xerrors.Is(err, ErrInvalidAddress))
}

func TestBalance_ApplyTxUnknownAsset(t *testing.T) {
	balance := testBalance(t, NEO, testCoin(t, txA, 0, 5))
	transaction, err := NewTransaction(ContractType, 0, nil)
	require.NoError(t, err)
	transaction.AddInput(NewInput(testUint256(t, txA), 0))
	transaction.AddOutput(NewOutput(NEOAssetID, NewFixed8(2), testScriptHash(t, senderAddress)))
	transaction.AddOutput(NewOutput(testUint256(t, txC), NewFixed8(3), testScriptHash(t, senderAddress)))

	err = balance.ApplyTx(transaction, false)
	assert.True(t, xerrors.Is(err, ErrUnknownAsset))

	neo := balance.Asset(NEO)
	assert.Len(t, neo.Unspent, 1)
	assert.Empty(t, neo.Spent)
	assert.Empty(t, neo.Unconfirmed)
	assert.Equal(t, NewFixed8(5), neo.Balance)
}

func TestBalance_String(t *testing.T) {
	balance := testBalance(t, NEO, testCoin(t, txA, 0, 5))
	assert.Contains(t, balance.String(), senderAddress)
	assert.Contains(t, NewClaims("TestNet", senderAddress).String(), senderAddress)
}

func TestClaims_Total(t *testing.T) {
	claims := NewClaims("TestNet", senderAddress, &Claim{Claim: 3}, &Claim{Claim: 4})
	assert.Equal(t, Fixed8(7), claims.Total())
}

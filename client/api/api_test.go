package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cityofzion/neon-go/client/provider"
	"github.com/cityofzion/neon-go/packages/config"
	"github.com/cityofzion/neon-go/packages/keys"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
	"github.com/cityofzion/neon-go/packages/metrics"
)

const (
	senderPrivateKey = "7d128a6d096f0c14c3a25a2b0c41cf79661bfcb4a8cc95aaaea28bde4d732344"
	senderAddress    = "ALq7AWrhAueN6mJNqk6FHJjnsEoPRytLdW"
	recipientAddress = "AYLadsx3W1g23kS8GD8UP65MgsS4dSFxhP"
	testNet          = "TestNet"
)

var (
	txA = strings.Repeat("a1", 32)
	txB = strings.Repeat("b2", 32)
)

// region test node ////////////////////////////////////////////////////////////////////////////////////////////////////

type testNode struct {
	*httptest.Server

	mutex     sync.Mutex
	submitted []string
}

func newTestNode(t *testing.T, accept bool) *testNode {
	node := &testNode{}
	node.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := struct {
			ID     int      `json:"id"`
			Method string   `json:"method"`
			Params []string `json:"params"`
		}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "sendrawtransaction", request.Method)

		node.mutex.Lock()
		node.submitted = append(node.submitted, request.Params...)
		node.mutex.Unlock()

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": request.ID, "result": accept}))
	}))
	t.Cleanup(node.Close)

	return node
}

func (n *testNode) Submitted() []string {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	return append([]string{}, n.submitted...)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region helpers //////////////////////////////////////////////////////////////////////////////////////////////////////

func testPrivateKey(t *testing.T) *keys.PrivateKey {
	privateKey, err := keys.PrivateKeyFromHex(senderPrivateKey)
	require.NoError(t, err)

	return privateKey
}

func testUint256(t *testing.T, s string) ledgerstate.Uint256 {
	hash, err := ledgerstate.Uint256FromString(s)
	require.NoError(t, err)

	return hash
}

// testBalance holds 5 NEO in txA:0 and 2 GAS in txB:0.
func testBalance(t *testing.T) *ledgerstate.Balance {
	return ledgerstate.NewBalance(testNet, senderAddress).
		AddAsset(ledgerstate.NEO, ledgerstate.NewAssetBalance(&ledgerstate.Coin{TxID: testUint256(t, txA), Index: 0, Value: ledgerstate.NewFixed8(5)})).
		AddAsset(ledgerstate.GAS, ledgerstate.NewAssetBalance(&ledgerstate.Coin{TxID: testUint256(t, txB), Index: 0, Value: ledgerstate.NewFixed8(2)}))
}

func testClaims(t *testing.T) *ledgerstate.Claims {
	return ledgerstate.NewClaims(testNet, senderAddress, &ledgerstate.Claim{
		TxID:  testUint256(t, txA),
		Index: 0,
		Claim: ledgerstate.Fixed8(12345678),
		Value: ledgerstate.NewFixed8(5),
		Start: 100,
		End:   200,
	})
}

func testIntents(t *testing.T) []*ledgerstate.Output {
	intents, err := MakeIntent(map[string]ledgerstate.Fixed8{ledgerstate.NEO: ledgerstate.NewFixed8(1)}, recipientAddress)
	require.NoError(t, err)

	return intents
}

func healthyProvider(t *testing.T, name, url string, balance *ledgerstate.Balance) *provider.MockProvider {
	prov := provider.NewMockProvider(t, name)
	prov.On("GetBalance", mock.Anything, testNet, senderAddress).Return(balance, nil)
	prov.On("GetRPCEndpoint", mock.Anything, testNet).Return(url, nil)

	return prov
}

func failingProvider(t *testing.T, name string) *provider.MockProvider {
	prov := provider.NewMockProvider(t, name)
	prov.On("GetBalance", mock.Anything, testNet, senderAddress).Return(nil, provider.ErrInternalServerError).Maybe()
	prov.On("GetClaims", mock.Anything, testNet, senderAddress).Return(nil, provider.ErrInternalServerError).Maybe()
	prov.On("GetRPCEndpoint", mock.Anything, testNet).Return("http://primary.invalid", nil).Maybe()

	return prov
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

func TestSendAsset(t *testing.T) {
	node := newTestNode(t, true)
	balance := testBalance(t)
	primary := healthyProvider(t, "primary", node.URL, balance)
	secondary := provider.NewMockProvider(t, "secondary")

	pipeline := New(WithPrimary(primary), WithSecondary(secondary))
	result, err := pipeline.SendAsset(context.Background(), &Config{
		Net:        testNet,
		PrivateKey: testPrivateKey(t),
		Intents:    testIntents(t),
	})
	require.NoError(t, err)

	assert.Equal(t, senderAddress, result.Address)
	assert.Equal(t, node.URL, result.URL)
	require.NotNil(t, result.Response)
	assert.True(t, result.Response.Result)
	assert.Equal(t, result.Tx.Hash(), result.Response.TxID)
	assert.Equal(t, []string{result.Tx.Serialize(true)}, node.Submitted())

	neo := balance.Asset(ledgerstate.NEO)
	require.Len(t, neo.Unspent, 1)
	assert.Equal(t, result.Tx.ID(), neo.Unspent[0].TxID)
	assert.Equal(t, ledgerstate.NewFixed8(4), neo.Balance)
	assert.Empty(t, neo.Unconfirmed)
	assert.Len(t, neo.Spent, 1)

	primary.AssertExpectations(t)
	secondary.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendAsset_Fallback(t *testing.T) {
	node := newTestNode(t, true)
	m := metrics.New("test")
	primary := failingProvider(t, "primary")
	secondary := healthyProvider(t, "secondary", node.URL, testBalance(t))

	pipeline := New(WithPrimary(primary), WithSecondary(secondary), WithMetrics(m))
	result, err := pipeline.SendAsset(context.Background(), &Config{
		Net:        testNet,
		Address:    senderAddress,
		PrivateKey: testPrivateKey(t),
		Intents:    testIntents(t),
	})
	require.NoError(t, err)

	assert.Equal(t, node.URL, result.URL)
	assert.True(t, result.Response.Result)
	assert.Len(t, node.Submitted(), 1)
	secondary.AssertExpectations(t)

	expected := `
		# HELP test_provider_fallbacks_total Number of times the secondary provider was asked because the primary failed.
		# TYPE test_provider_fallbacks_total counter
		test_provider_fallbacks_total{operation="sendAsset"} 1
	`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_provider_fallbacks_total"))
}

func TestSendAsset_BothProvidersFail(t *testing.T) {
	pipeline := New(WithPrimary(failingProvider(t, "primary")), WithSecondary(failingProvider(t, "secondary")))
	_, err := pipeline.SendAsset(context.Background(), &Config{
		Net:        testNet,
		PrivateKey: testPrivateKey(t),
		Intents:    testIntents(t),
	})
	assert.True(t, errors.Is(err, provider.ErrInternalServerError))
}

func TestSendAsset_ValidationBeforeNetwork(t *testing.T) {
	otherKey, err := keys.NewPrivateKey()
	require.NoError(t, err)

	for name, testCase := range map[string]struct {
		config   *Config
		expected error
	}{
		"address mismatch": {
			config:   &Config{Net: testNet, Address: senderAddress, PrivateKey: otherKey, Intents: testIntents(t)},
			expected: ErrAddressMismatch,
		},
		"no signing method": {
			config:   &Config{Net: testNet, Address: senderAddress, Intents: testIntents(t)},
			expected: ErrNoSigningMethod,
		},
		"signing function without public key": {
			config: &Config{Net: testNet, Address: senderAddress, Intents: testIntents(t),
				SigningFunction: func(context.Context, []byte, *keys.PublicKey) ([]byte, error) { return nil, nil }},
			expected: ErrMissingProperty,
		},
		"no intents": {
			config:   &Config{Net: testNet, PrivateKey: testPrivateKey(t)},
			expected: ErrMissingProperty,
		},
		"no net": {
			config:   &Config{PrivateKey: testPrivateKey(t), Intents: testIntents(t)},
			expected: ErrMissingProperty,
		},
	} {
		t.Run(name, func(t *testing.T) {
			primary := provider.NewMockProvider(t, "primary")
			secondary := provider.NewMockProvider(t, "secondary")

			_, err := New(WithPrimary(primary), WithSecondary(secondary)).SendAsset(context.Background(), testCase.config)
			assert.True(t, errors.Is(err, testCase.expected), "unexpected error %v", err)

			primary.AssertExpectations(t)
			secondary.AssertExpectations(t)
		})
	}
}

func TestSendAsset_NoProvider(t *testing.T) {
	_, err := New().SendAsset(context.Background(), &Config{Net: testNet, PrivateKey: testPrivateKey(t), Intents: testIntents(t)})
	assert.True(t, errors.Is(err, provider.ErrInvalidProvider))
}

func TestSendAsset_Rejected(t *testing.T) {
	node := newTestNode(t, false)
	balance := testBalance(t)

	result, err := New(WithPrimary(healthyProvider(t, "primary", node.URL, balance))).SendAsset(context.Background(), &Config{
		Net:        testNet,
		PrivateKey: testPrivateKey(t),
		Intents:    testIntents(t),
	})
	require.NoError(t, err)

	assert.False(t, result.Response.Result)
	assert.Empty(t, result.Response.TxID)

	neo := balance.Asset(ledgerstate.NEO)
	assert.Empty(t, neo.Unspent)
	assert.Len(t, neo.Unconfirmed, 1)
}

func TestSendTx_Idempotent(t *testing.T) {
	node := newTestNode(t, true)
	pipeline := New()

	created, err := pipeline.CreateTx(&Config{
		Net:     testNet,
		Address: senderAddress,
		URL:     node.URL,
		Balance: testBalance(t),
		Intents: testIntents(t),
	}, ledgerstate.ContractType)
	require.NoError(t, err)

	signed, err := pipeline.SignTx(context.Background(), &Config{Address: senderAddress, PrivateKey: testPrivateKey(t), Tx: created.Tx, URL: created.URL, Balance: created.Balance})
	require.NoError(t, err)

	first, err := pipeline.SendTx(context.Background(), signed)
	require.NoError(t, err)
	snapshot := first.Balance.String()

	second, err := pipeline.SendTx(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, first.Response, second.Response)
	assert.Equal(t, snapshot, second.Balance.String())
	assert.Len(t, node.Submitted(), 2)
}

func TestSendTx_MissingProperty(t *testing.T) {
	_, err := New().SendTx(context.Background(), &Config{URL: "http://localhost:10332"})
	assert.True(t, errors.Is(err, ErrMissingProperty))
	assert.Contains(t, err.Error(), "tx")

	tx, err := ledgerstate.NewTransaction(ledgerstate.ContractType, 0, nil)
	require.NoError(t, err)
	_, err = New().SendTx(context.Background(), &Config{Tx: tx})
	assert.True(t, errors.Is(err, ErrMissingProperty))
	assert.Contains(t, err.Error(), "url")
}

func TestSignTx_SigningFunction(t *testing.T) {
	privateKey := testPrivateKey(t)
	tx, err := ledgerstate.CreateClaimTx(senderAddress, testClaims(t))
	require.NoError(t, err)

	calls := 0
	signed, err := New().SignTx(context.Background(), &Config{
		Address:   senderAddress,
		PublicKey: privateKey.PublicKey(),
		SigningFunction: func(_ context.Context, message []byte, publicKey *keys.PublicKey) ([]byte, error) {
			calls++
			assert.True(t, publicKey.Equals(privateKey.PublicKey()))
			return privateKey.Sign(message)
		},
		Tx: tx,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	require.Len(t, signed.Tx.Witnesses(), 1)
	assert.Equal(t, privateKey.PublicKey().VerificationScript(), signed.Tx.Witnesses()[0].VerificationScript())
}

func TestSignTx_InvalidSignature(t *testing.T) {
	privateKey := testPrivateKey(t)
	tx, err := ledgerstate.CreateClaimTx(senderAddress, testClaims(t))
	require.NoError(t, err)

	_, err = New().SignTx(context.Background(), &Config{
		PublicKey: privateKey.PublicKey(),
		SigningFunction: func(context.Context, []byte, *keys.PublicKey) ([]byte, error) {
			return make([]byte, keys.SignatureSize), nil
		},
		Tx: tx,
	})
	assert.True(t, errors.Is(err, keys.ErrInvalidKey))
}

func TestSignTx_AddressMismatch(t *testing.T) {
	tx, err := ledgerstate.CreateClaimTx(senderAddress, testClaims(t))
	require.NoError(t, err)

	_, err = New().SignTx(context.Background(), &Config{Address: recipientAddress, PrivateKey: testPrivateKey(t), Tx: tx})
	assert.True(t, errors.Is(err, ErrAddressMismatch))
}

func TestClaimGas(t *testing.T) {
	node := newTestNode(t, true)
	primary := failingProvider(t, "primary")
	secondary := provider.NewMockProvider(t, "secondary")
	secondary.On("GetClaims", mock.Anything, testNet, senderAddress).Return(testClaims(t), nil)
	secondary.On("GetRPCEndpoint", mock.Anything, testNet).Return(node.URL, nil)

	result, err := New(WithPrimary(primary), WithSecondary(secondary)).ClaimGas(context.Background(), &Config{
		Net:        testNet,
		PrivateKey: testPrivateKey(t),
	})
	require.NoError(t, err)

	assert.Equal(t, ledgerstate.ClaimType, result.Tx.Type())
	require.Len(t, result.Tx.Outputs(), 1)
	assert.Equal(t, ledgerstate.GASAssetID, result.Tx.Outputs()[0].AssetID())
	assert.Equal(t, ledgerstate.Fixed8(12345678), result.Tx.Outputs()[0].Value())
	assert.True(t, result.Response.Result)
	secondary.AssertExpectations(t)
}

func TestDoInvoke(t *testing.T) {
	node := newTestNode(t, true)
	balance := testBalance(t)

	result, err := New(WithPrimary(healthyProvider(t, "primary", node.URL, balance))).DoInvoke(context.Background(), &Config{
		Net:        testNet,
		PrivateKey: testPrivateKey(t),
		Script:     ledgerstate.RawScript("00c1046e616d65"),
		Gas:        ledgerstate.Fixed8(50000000),
	})
	require.NoError(t, err)

	assert.Equal(t, ledgerstate.InvocationType, result.Tx.Type())
	assert.Equal(t, ledgerstate.Fixed8(50000000), result.Tx.Gas())
	assert.True(t, result.Response.Result)

	gas := balance.Asset(ledgerstate.GAS)
	require.Len(t, gas.Unspent, 1)
	assert.Equal(t, ledgerstate.Fixed8(1_50000000), gas.Balance)
}

func TestDoInvoke_MissingScript(t *testing.T) {
	primary := provider.NewMockProvider(t, "primary")
	_, err := New(WithPrimary(primary)).DoInvoke(context.Background(), &Config{Net: testNet, PrivateKey: testPrivateKey(t)})
	assert.True(t, errors.Is(err, ErrMissingProperty))
	primary.AssertExpectations(t)
}

func TestGetBalanceFrom(t *testing.T) {
	balance := testBalance(t)
	prov := healthyProvider(t, "primary", "http://seed1.neo.org:20332", balance)
	pipeline := New()

	input := &Config{Net: testNet, Address: senderAddress}
	result, err := pipeline.GetBalanceFrom(context.Background(), input, prov)
	require.NoError(t, err)
	assert.Same(t, balance, result.Balance)
	assert.Equal(t, "http://seed1.neo.org:20332", result.URL)
	assert.Nil(t, input.Balance)

	result, err = pipeline.GetBalanceFrom(context.Background(), &Config{Net: testNet, Address: senderAddress, URL: "http://localhost:10332"}, prov)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:10332", result.URL)

	_, err = pipeline.GetBalanceFrom(context.Background(), input, nil)
	assert.True(t, errors.Is(err, provider.ErrInvalidProvider))

	_, err = pipeline.GetBalanceFrom(context.Background(), &Config{Net: testNet}, prov)
	assert.True(t, errors.Is(err, ErrMissingProperty))
}

func TestGetBalanceFrom_EndpointFailure(t *testing.T) {
	prov := provider.NewMockProvider(t, "primary")
	prov.On("GetBalance", mock.Anything, testNet, senderAddress).Return(testBalance(t), nil).Maybe()
	prov.On("GetRPCEndpoint", mock.Anything, testNet).Return("", provider.ErrBadResponse)

	input := &Config{Net: testNet, Address: senderAddress}
	_, err := New().GetBalanceFrom(context.Background(), input, prov)
	assert.True(t, errors.Is(err, provider.ErrBadResponse))
	assert.Nil(t, input.Balance)
	assert.Empty(t, input.URL)
}

func TestCreateTxByName(t *testing.T) {
	pipeline := New()
	cfg := func() *Config {
		return &Config{Address: senderAddress, Balance: testBalance(t), Intents: testIntents(t), Claims: testClaims(t)}
	}

	for name, expected := range map[string]ledgerstate.TransactionType{
		"contract":            ledgerstate.ContractType,
		"ContractTransaction": ledgerstate.ContractType,
		"128":                 ledgerstate.ContractType,
		"0x02":                ledgerstate.ClaimType,
		"claim":               ledgerstate.ClaimType,
	} {
		result, err := pipeline.CreateTxByName(cfg(), name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, result.Tx.Type(), name)
	}

	_, err := pipeline.CreateTxByName(cfg(), "enrollment")
	assert.True(t, errors.Is(err, ledgerstate.ErrUnsupportedTransactionType))

	_, err = pipeline.CreateTxByName(cfg(), "0x40")
	assert.True(t, errors.Is(err, ledgerstate.ErrUnsupportedTransactionType))
}

func TestCreateTx_MissingProperty(t *testing.T) {
	pipeline := New()

	_, err := pipeline.CreateTx(&Config{Intents: testIntents(t)}, ledgerstate.ContractType)
	assert.True(t, errors.Is(err, ErrMissingProperty))
	assert.Contains(t, err.Error(), "balance")

	_, err = pipeline.CreateTx(&Config{Address: senderAddress}, ledgerstate.ClaimType)
	assert.True(t, errors.Is(err, ErrMissingProperty))
	assert.Contains(t, err.Error(), "claims")

	_, err = pipeline.CreateTx(&Config{Balance: testBalance(t)}, ledgerstate.InvocationType)
	assert.True(t, errors.Is(err, ErrMissingProperty))
	assert.Contains(t, err.Error(), "script")
}

func TestCreateTx_InsufficientFunds(t *testing.T) {
	intents, err := MakeIntent(map[string]ledgerstate.Fixed8{ledgerstate.GAS: ledgerstate.NewFixed8(3)}, recipientAddress)
	require.NoError(t, err)

	balance := testBalance(t)
	_, err = New().CreateTx(&Config{Balance: balance, Intents: intents}, ledgerstate.ContractType)
	assert.True(t, errors.Is(err, ledgerstate.ErrInsufficientFunds))
	assert.Len(t, balance.Asset(ledgerstate.GAS).Unspent, 1)
}

func TestMakeIntent(t *testing.T) {
	intents, err := MakeIntent(map[string]ledgerstate.Fixed8{
		ledgerstate.GAS: ledgerstate.NewFixed8(2),
		ledgerstate.NEO: ledgerstate.NewFixed8(1),
	}, recipientAddress)
	require.NoError(t, err)

	require.Len(t, intents, 2)
	assert.Equal(t, ledgerstate.NEOAssetID, intents[0].AssetID())
	assert.Equal(t, ledgerstate.GASAssetID, intents[1].AssetID())

	_, err = MakeIntent(map[string]ledgerstate.Fixed8{"RPX": ledgerstate.NewFixed8(1)}, recipientAddress)
	assert.True(t, errors.Is(err, ledgerstate.ErrUnknownAsset))

	_, err = MakeIntent(map[string]ledgerstate.Fixed8{ledgerstate.NEO: ledgerstate.NewFixed8(1)}, "not an address")
	assert.True(t, errors.Is(err, ledgerstate.ErrInvalidAddress))
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default()

	for _, name := range []string{"neondb", "neonDB", "NEOSCAN"} {
		prov, err := NewProvider(name, cfg, nil, nil)
		require.NoError(t, err, name)
		assert.True(t, strings.EqualFold(name, prov.Name()))
		assert.NoError(t, closeProvider(prov))
	}

	_, err := NewProvider("etherscan", cfg, nil, nil)
	assert.True(t, errors.Is(err, provider.ErrInvalidProvider))
}

func TestNewFromConfig(t *testing.T) {
	pipeline, err := NewFromConfig(config.Default(), nil, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, pipeline.Close()) }()

	assert.Equal(t, "neonDB", pipeline.Primary().Name())
	assert.Equal(t, "neoscan", pipeline.Secondary().Name())

	cfg := config.Default()
	cfg.Provider.Secondary = "unknown"
	_, err = NewFromConfig(cfg, nil, nil)
	assert.True(t, errors.Is(err, provider.ErrInvalidProvider))
}

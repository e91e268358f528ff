package ledgerstate

import (
	"strconv"

	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// region Coin /////////////////////////////////////////////////////////////////////////////////////////////////////////

// Coin is an Output that belongs to the address of a Balance.
type Coin struct {
	TxID  Uint256
	Index uint16
	Value Fixed8
}

// Input returns the Input that spends the Coin.
func (c *Coin) Input() *Input {
	return NewInput(c.TxID, c.Index)
}

// Key returns the "txid:index" identifier of the Coin.
func (c *Coin) Key() string {
	return coinKey(c.TxID, c.Index)
}

func (c *Coin) String() string {
	return stringify.Struct("Coin",
		stringify.StructField("TxID", c.TxID.String()),
		stringify.StructField("Index", c.Index),
		stringify.StructField("Value", c.Value.String()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region AssetBalance /////////////////////////////////////////////////////////////////////////////////////////////////

// AssetBalance holds the coins of a single asset.
type AssetBalance struct {
	// Balance is the amount that the coins in Unspent sum up to.
	Balance Fixed8

	// Unspent coins can be used as inputs.
	Unspent []*Coin

	// Spent coins were consumed by a transaction that was applied to the Balance.
	Spent []*Coin

	// Unconfirmed coins were produced by a transaction that was built but not yet accepted by a node.
	Unconfirmed []*Coin
}

// NewAssetBalance creates an AssetBalance from the unspent coins reported by a provider.
func NewAssetBalance(unspent ...*Coin) *AssetBalance {
	assetBalance := &AssetBalance{
		Unspent:     append([]*Coin{}, unspent...),
		Spent:       make([]*Coin, 0),
		Unconfirmed: make([]*Coin, 0),
	}
	assetBalance.Balance = assetBalance.Available()

	return assetBalance
}

// Available returns the sum of all unspent coins.
func (a *AssetBalance) Available() (total Fixed8) {
	for _, coin := range a.Unspent {
		total += coin.Value
	}

	return
}

func (a *AssetBalance) spend(key string) bool {
	index := indexOfCoin(a.Unspent, key)
	if index < 0 {
		return false
	}

	if indexOfCoin(a.Spent, key) < 0 {
		a.Spent = append(a.Spent, a.Unspent[index])
	}
	a.Unspent = append(a.Unspent[:index], a.Unspent[index+1:]...)

	return true
}

func (a *AssetBalance) receive(coin *Coin, confirmed bool) {
	key := coin.Key()
	if indexOfCoin(a.Spent, key) >= 0 {
		return
	}

	if !confirmed {
		if indexOfCoin(a.Unconfirmed, key) < 0 && indexOfCoin(a.Unspent, key) < 0 {
			a.Unconfirmed = append(a.Unconfirmed, coin)
		}
		return
	}

	if index := indexOfCoin(a.Unconfirmed, key); index >= 0 {
		a.Unconfirmed = append(a.Unconfirmed[:index], a.Unconfirmed[index+1:]...)
	}
	if indexOfCoin(a.Unspent, key) < 0 {
		a.Unspent = append(a.Unspent, coin)
	}
}

func (a *AssetBalance) String() string {
	return stringify.Struct("AssetBalance",
		stringify.StructField("Balance", a.Balance.String()),
		stringify.StructField("Unspent", len(a.Unspent)),
		stringify.StructField("Spent", len(a.Spent)),
		stringify.StructField("Unconfirmed", len(a.Unconfirmed)),
	)
}

func indexOfCoin(coins []*Coin, key string) int {
	for i, coin := range coins {
		if coin.Key() == key {
			return i
		}
	}

	return -1
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Balance //////////////////////////////////////////////////////////////////////////////////////////////////////

// Balance is the snapshot of the coins of an address as reported by a provider. It is owned by a single pipeline and
// not safe for concurrent use.
type Balance struct {
	Net     string
	Address string
	Assets  map[string]*AssetBalance
}

// NewBalance creates an empty Balance.
func NewBalance(net, address string) *Balance {
	return &Balance{
		Net:     net,
		Address: address,
		Assets:  make(map[string]*AssetBalance),
	}
}

// AddAsset sets the AssetBalance of a symbol.
func (b *Balance) AddAsset(symbol string, assetBalance *AssetBalance) *Balance {
	if b.Assets == nil {
		b.Assets = make(map[string]*AssetBalance)
	}
	b.Assets[symbol] = assetBalance

	return b
}

// Asset returns the AssetBalance of a symbol or nil.
func (b *Balance) Asset(symbol string) *AssetBalance {
	return b.Assets[symbol]
}

// AssetSymbols returns the symbols of the Balance, NEO and GAS first.
func (b *Balance) AssetSymbols() []string {
	symbols := make([]string, 0, len(b.Assets))
	for symbol := range b.Assets {
		symbols = append(symbols, symbol)
	}
	SortSymbols(symbols)

	return symbols
}

// ApplyTx updates the Balance with the effects of a Transaction: coins referenced by its inputs move from unspent to
// spent and outputs that pay the address of the Balance are added as unconfirmed coins, or as unspent coins if the
// Transaction is confirmed. Applying the same Transaction twice has no further effect.
func (b *Balance) ApplyTx(transaction *Transaction, confirmed bool) error {
	owner, err := ScriptHashFromAddress(b.Address)
	if err != nil {
		return xerrors.Errorf("failed to resolve balance address: %w", err)
	}

	symbols := make(map[int]string)
	for i, output := range transaction.outputs {
		if output.scriptHash != owner {
			continue
		}

		symbol, symbolErr := SymbolFromAssetID(output.assetID)
		if symbolErr != nil {
			return symbolErr
		}
		symbols[i] = symbol
	}

	for _, input := range transaction.inputs {
		key := input.Key()
		for _, symbol := range b.AssetSymbols() {
			if b.Assets[symbol].spend(key) {
				break
			}
		}
	}

	txID := transaction.ID()
	for i, output := range transaction.outputs {
		symbol, owned := symbols[i]
		if !owned {
			continue
		}

		assetBalance := b.Asset(symbol)
		if assetBalance == nil {
			assetBalance = NewAssetBalance()
			b.AddAsset(symbol, assetBalance)
		}
		assetBalance.receive(&Coin{TxID: txID, Index: uint16(i), Value: output.value}, confirmed)
	}

	for _, assetBalance := range b.Assets {
		assetBalance.Balance = assetBalance.Available()
	}

	return nil
}

func (b *Balance) String() string {
	structBuilder := stringify.StructBuilder("Balance",
		stringify.StructField("Net", b.Net),
		stringify.StructField("Address", b.Address),
	)
	for _, symbol := range b.AssetSymbols() {
		structBuilder.AddField(stringify.StructField(symbol, b.Assets[symbol]))
	}

	return structBuilder.String()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Claims ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Claim is an unclaimed amount of GAS generated by a NEO output between two block heights.
type Claim struct {
	TxID  Uint256
	Index uint16
	// Claim is the claimable GAS in raw Fixed8 units.
	Claim Fixed8
	// Value is the NEO amount of the referenced output.
	Value Fixed8
	Start uint32
	End   uint32
}

// Input returns the Input that references the claimed output.
func (c *Claim) Input() *Input {
	return NewInput(c.TxID, c.Index)
}

func (c *Claim) String() string {
	return stringify.Struct("Claim",
		stringify.StructField("TxID", c.TxID.String()),
		stringify.StructField("Index", c.Index),
		stringify.StructField("Claim", c.Claim.String()),
		stringify.StructField("Value", c.Value.String()),
		stringify.StructField("Start", c.Start),
		stringify.StructField("End", c.End),
	)
}

// Claims is the list of claimable GAS of an address as reported by a provider.
type Claims struct {
	Net     string
	Address string
	Claims  []*Claim
}

// NewClaims creates a Claims object.
func NewClaims(net, address string, claims ...*Claim) *Claims {
	return &Claims{
		Net:     net,
		Address: address,
		Claims:  append([]*Claim{}, claims...),
	}
}

// Total returns the sum of all claimable GAS.
func (c *Claims) Total() (total Fixed8) {
	for _, claim := range c.Claims {
		total += claim.Claim
	}

	return
}

func (c *Claims) String() string {
	structBuilder := stringify.StructBuilder("Claims",
		stringify.StructField("Net", c.Net),
		stringify.StructField("Address", c.Address),
	)
	for i, claim := range c.Claims {
		structBuilder.AddField(stringify.StructField("Claim"+strconv.Itoa(i), claim))
	}

	return structBuilder.String()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

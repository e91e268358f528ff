package ledgerstate

import (
	"sort"

	"golang.org/x/xerrors"
)

const (
	// NEO is the symbol of the governing asset.
	NEO = "NEO"

	// GAS is the symbol of the utility asset that pays for fees and invocations.
	GAS = "GAS"
)

var (
	// NEOAssetID is the id of the NEO asset.
	NEOAssetID = mustUint256FromString("c56f33fc6ecfcd0c225c4ab356fee59390af8560be0e930faebe74a6daff7c9b")

	// GASAssetID is the id of the GAS asset.
	GASAssetID = mustUint256FromString("602c79718b16e442de58778e148d0b1084e3b2dffd5de6b7b16cee7969282de7")

	assetIDsBySymbol = map[string]Uint256{
		NEO: NEOAssetID,
		GAS: GASAssetID,
	}

	symbolsByAssetID = map[Uint256]string{
		NEOAssetID: NEO,
		GASAssetID: GAS,
	}
)

// AssetIDFromSymbol resolves the id of an asset symbol.
func AssetIDFromSymbol(symbol string) (Uint256, error) {
	assetID, exists := assetIDsBySymbol[symbol]
	if !exists {
		return EmptyUint256, xerrors.Errorf("symbol %q: %w", symbol, ErrUnknownAsset)
	}

	return assetID, nil
}

// SymbolFromAssetID resolves the symbol of an asset id.
func SymbolFromAssetID(assetID Uint256) (string, error) {
	symbol, exists := symbolsByAssetID[assetID]
	if !exists {
		return "", xerrors.Errorf("asset id %s: %w", assetID, ErrUnknownAsset)
	}

	return symbol, nil
}

// SortSymbols orders asset symbols NEO first, GAS second and everything else alphabetically.
func SortSymbols(symbols []string) {
	rank := func(symbol string) int {
		switch symbol {
		case NEO:
			return 0
		case GAS:
			return 1
		default:
			return 2
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool {
		if rank(symbols[i]) != rank(symbols[j]) {
			return rank(symbols[i]) < rank(symbols[j])
		}

		return symbols[i] < symbols[j]
	})
}

func mustUint256FromString(s string) Uint256 {
	result, err := Uint256FromString(s)
	if err != nil {
		panic(err)
	}

	return result
}

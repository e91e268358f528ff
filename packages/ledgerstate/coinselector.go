package ledgerstate

import (
	"sort"

	"golang.org/x/xerrors"
)

// CalculateInputs selects the unspent coins of the Balance that fund the given outputs plus the gas of an invocation.
//
// Per asset (in order of first appearance in the outputs, GAS last if it only appears through the gas) the coins are
// consumed in ascending order of their value until the requirement is met. Coins with equal values keep the order in
// which the provider reported them. Any surplus is returned to the address of the Balance as a change Output.
func CalculateInputs(balance *Balance, outputs []*Output, gas Fixed8) (inputs []*Input, change []*Output, err error) {
	if gas < 0 {
		return nil, nil, xerrors.Errorf("gas %s is negative: %w", gas, ErrInvalidAmount)
	}

	assetIDs := make([]Uint256, 0)
	required := make(map[Uint256]Fixed8)
	addRequirement := func(assetID Uint256, value Fixed8) error {
		if _, exists := required[assetID]; !exists {
			assetIDs = append(assetIDs, assetID)
		}
		sum, addErr := required[assetID].Add(value)
		if addErr != nil {
			return xerrors.Errorf("failed to sum required amounts: %w", addErr)
		}
		required[assetID] = sum

		return nil
	}

	for _, output := range outputs {
		if output.value < 0 {
			return nil, nil, xerrors.Errorf("output value %s is negative: %w", output.value, ErrInvalidAmount)
		}
		if err = addRequirement(output.assetID, output.value); err != nil {
			return nil, nil, err
		}
	}
	if gas > 0 {
		if err = addRequirement(GASAssetID, gas); err != nil {
			return nil, nil, err
		}
	}

	inputs = make([]*Input, 0)
	change = make([]*Output, 0)
	if len(assetIDs) == 0 {
		return inputs, change, nil
	}
	if balance == nil {
		return nil, nil, xerrors.Errorf("no balance to fund %d assets: %w", len(assetIDs), ErrInsufficientFunds)
	}

	changeScriptHash, err := ScriptHashFromAddress(balance.Address)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to resolve change address: %w", err)
	}

	for _, assetID := range assetIDs {
		symbol, symbolErr := SymbolFromAssetID(assetID)
		if symbolErr != nil {
			return nil, nil, symbolErr
		}

		selected, surplus, selectErr := selectCoins(symbol, balance.Asset(symbol), required[assetID])
		if selectErr != nil {
			return nil, nil, selectErr
		}
		for _, coin := range selected {
			inputs = append(inputs, coin.Input())
		}
		if surplus > 0 {
			change = append(change, NewOutput(assetID, surplus, changeScriptHash))
		}
	}

	return inputs, change, nil
}

func selectCoins(symbol string, assetBalance *AssetBalance, required Fixed8) (selected []*Coin, surplus Fixed8, err error) {
	if required == 0 {
		return nil, 0, nil
	}
	if assetBalance == nil {
		return nil, 0, xerrors.Errorf("no %s in balance, need %s: %w", symbol, required, ErrInsufficientFunds)
	}
	if available := assetBalance.Available(); available < required {
		return nil, 0, xerrors.Errorf("%s available but %s %s required: %w", available, required, symbol, ErrInsufficientFunds)
	}

	coins := append([]*Coin{}, assetBalance.Unspent...)
	sort.SliceStable(coins, func(i, j int) bool {
		return coins[i].Value < coins[j].Value
	})

	var total Fixed8
	for _, coin := range coins {
		if total >= required {
			break
		}
		selected = append(selected, coin)
		if total, err = total.Add(coin.Value); err != nil {
			return nil, 0, err
		}
	}

	return selected, total - required, nil
}

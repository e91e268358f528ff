package api

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/cityofzion/neon-go/client/provider"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
)

type fetchStage func(ctx context.Context, cfg *Config, prov provider.Provider) (*Config, error)

// SendAsset transfers the Intents. The Balance is fetched from the primary provider or, if that fails, from the
// secondary provider.
func (p *Pipeline) SendAsset(ctx context.Context, cfg *Config) (*Config, error) {
	checked, err := p.prepare(cfg, "net", "intents")
	if err != nil {
		return nil, err
	}

	return p.run(ctx, "sendAsset", checked, p.GetBalanceFrom, ledgerstate.ContractType)
}

// ClaimGas claims the claimable GAS of Address. The Claims are fetched from the primary provider or, if that fails,
// from the secondary provider.
func (p *Pipeline) ClaimGas(ctx context.Context, cfg *Config) (*Config, error) {
	checked, err := p.prepare(cfg, "net")
	if err != nil {
		return nil, err
	}

	return p.run(ctx, "claimGas", checked, p.GetClaimsFrom, ledgerstate.ClaimType)
}

// DoInvoke runs the Script and pays Gas for it. The Balance is fetched from the primary provider or, if that fails,
// from the secondary provider.
func (p *Pipeline) DoInvoke(ctx context.Context, cfg *Config) (*Config, error) {
	checked, err := p.prepare(cfg, "net", "script")
	if err != nil {
		return nil, err
	}

	return p.run(ctx, "doInvoke", checked, p.GetBalanceFrom, ledgerstate.InvocationType)
}

// FetchBalance runs GetBalanceFrom against the primary provider and, if that fails, against the secondary provider.
func (p *Pipeline) FetchBalance(ctx context.Context, cfg *Config) (*Config, error) {
	if p.primary == nil {
		return nil, provider.ErrInvalidProvider
	}

	return p.fetchWithFallback(ctx, "getBalance", cfg, p.GetBalanceFrom)
}

// FetchClaims runs GetClaimsFrom against the primary provider and, if that fails, against the secondary provider.
func (p *Pipeline) FetchClaims(ctx context.Context, cfg *Config) (*Config, error) {
	if p.primary == nil {
		return nil, provider.ErrInvalidProvider
	}

	return p.fetchWithFallback(ctx, "getClaims", cfg, p.GetClaimsFrom)
}

// prepare runs every check that does not need a service, so that invalid requests never reach a provider.
func (p *Pipeline) prepare(cfg *Config, fields ...string) (*Config, error) {
	if p.primary == nil {
		return nil, provider.ErrInvalidProvider
	}

	checked := cfg.clone()
	if err := checked.checkSigner(); err != nil {
		return nil, err
	}
	if err := checked.requireFields(fields...); err != nil {
		return nil, err
	}

	return checked, nil
}

func (p *Pipeline) run(ctx context.Context, operation string, cfg *Config, fetch fetchStage, transactionType ledgerstate.TransactionType) (*Config, error) {
	fetched, err := p.fetchWithFallback(ctx, operation, cfg, fetch)
	if err != nil {
		return nil, err
	}

	created, err := p.CreateTx(fetched, transactionType)
	if err != nil {
		return nil, err
	}

	signed, err := p.SignTx(ctx, created)
	if err != nil {
		return nil, err
	}

	return p.SendTx(ctx, signed)
}

// fetchWithFallback asks the secondary provider only if the primary one failed. The result of exactly one provider
// is used.
func (p *Pipeline) fetchWithFallback(ctx context.Context, operation string, cfg *Config, fetch fetchStage) (*Config, error) {
	fetched, err := fetch(ctx, cfg, p.primary)
	if err == nil {
		return fetched, nil
	}
	if p.secondary == nil || ctx.Err() != nil || errors.Is(err, ErrMissingProperty) {
		return nil, err
	}

	p.log.Warnw("primary provider failed, falling back", "operation", operation, "primary", p.primary.Name(),
		"secondary", p.secondary.Name(), "err", err)
	p.metrics.ProviderFallback(operation)

	fetched, secondaryErr := fetch(ctx, cfg, p.secondary)
	if secondaryErr != nil {
		return nil, errors.CombineErrors(secondaryErr, err)
	}

	return fetched, nil
}

// MakeIntent creates one output per asset that pays the amount to the address. The outputs are ordered NEO, GAS and
// then by symbol.
func MakeIntent(assetAmounts map[string]ledgerstate.Fixed8, address string) ([]*ledgerstate.Output, error) {
	symbols := make([]string, 0, len(assetAmounts))
	for symbol := range assetAmounts {
		symbols = append(symbols, symbol)
	}
	ledgerstate.SortSymbols(symbols)

	intents := make([]*ledgerstate.Output, 0, len(symbols))
	for _, symbol := range symbols {
		output, err := ledgerstate.CreateOutput(symbol, assetAmounts[symbol], address)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create intent for %s", symbol)
		}
		intents = append(intents, output)
	}

	return intents, nil
}

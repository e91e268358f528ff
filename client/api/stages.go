package api

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cityofzion/neon-go/client/provider"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
)

// GetBalanceFrom fetches the Balance of Address and an RPC endpoint from the provider. Both requests run concurrently
// and both have to succeed. A preset URL is kept.
func (p *Pipeline) GetBalanceFrom(ctx context.Context, cfg *Config, prov provider.Provider) (*Config, error) {
	if prov == nil {
		return nil, provider.ErrInvalidProvider
	}
	if err := cfg.requireFields("net", "address"); err != nil {
		return nil, err
	}

	var balance *ledgerstate.Balance
	var endpoint string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		balance, err = prov.GetBalance(groupCtx, cfg.Net, cfg.Address)
		return errors.Wrapf(err, "failed to get balance from %s", prov.Name())
	})
	group.Go(func() (err error) {
		endpoint, err = prov.GetRPCEndpoint(groupCtx, cfg.Net)
		return errors.Wrapf(err, "failed to get rpc endpoint from %s", prov.Name())
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	enriched := cfg.clone()
	enriched.Balance = balance
	if enriched.URL == "" {
		enriched.URL = endpoint
	}
	p.log.Debugw("retrieved balance", "provider", prov.Name(), "net", cfg.Net, "address", cfg.Address, "url", enriched.URL)

	return enriched, nil
}

// GetClaimsFrom fetches the Claims of Address and an RPC endpoint from the provider. Both requests run concurrently and
// both have to succeed. A preset URL is kept.
func (p *Pipeline) GetClaimsFrom(ctx context.Context, cfg *Config, prov provider.Provider) (*Config, error) {
	if prov == nil {
		return nil, provider.ErrInvalidProvider
	}
	if err := cfg.requireFields("net", "address"); err != nil {
		return nil, err
	}

	var claims *ledgerstate.Claims
	var endpoint string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		claims, err = prov.GetClaims(groupCtx, cfg.Net, cfg.Address)
		return errors.Wrapf(err, "failed to get claims from %s", prov.Name())
	})
	group.Go(func() (err error) {
		endpoint, err = prov.GetRPCEndpoint(groupCtx, cfg.Net)
		return errors.Wrapf(err, "failed to get rpc endpoint from %s", prov.Name())
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	enriched := cfg.clone()
	enriched.Claims = claims
	if enriched.URL == "" {
		enriched.URL = endpoint
	}
	p.log.Debugw("retrieved claims", "provider", prov.Name(), "net", cfg.Net, "address", cfg.Address, "url", enriched.URL)

	return enriched, nil
}

// CreateTx builds a transaction of the given type from the fields of the Config.
func (p *Pipeline) CreateTx(cfg *Config, transactionType ledgerstate.TransactionType) (*Config, error) {
	var tx *ledgerstate.Transaction
	var err error

	switch transactionType {
	case ledgerstate.ClaimType:
		if err = cfg.requireFields("claims", "address"); err != nil {
			return nil, err
		}
		tx, err = ledgerstate.CreateClaimTx(cfg.Address, cfg.Claims, cfg.Override...)
	case ledgerstate.ContractType:
		if err = cfg.requireFields("balance", "intents"); err != nil {
			return nil, err
		}
		tx, err = ledgerstate.CreateContractTx(cfg.Balance, cfg.Intents, cfg.Override...)
	case ledgerstate.InvocationType:
		if err = cfg.requireFields("balance", "script"); err != nil {
			return nil, err
		}
		tx, err = ledgerstate.CreateInvocationTx(cfg.Balance, cfg.Intents, cfg.Script, cfg.Gas, cfg.Override...)
	default:
		return nil, errors.Wrapf(ledgerstate.ErrUnsupportedTransactionType, "type 0x%02x", byte(transactionType))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s transaction", transactionType)
	}

	p.metrics.TransactionBuilt(transactionType.String())
	p.log.Debugw("created transaction", "type", transactionType.String(), "hash", tx.Hash())

	enriched := cfg.clone()
	enriched.Tx = tx

	return enriched, nil
}

// CreateTxByName builds a transaction whose type is given by name ("contract", "ContractTransaction", ...) or by its
// decimal or 0x prefixed hex number.
func (p *Pipeline) CreateTxByName(cfg *Config, name string) (*Config, error) {
	transactionType, err := ledgerstate.TransactionTypeFromName(name)
	if err != nil {
		number, parseErr := strconv.ParseUint(name, 0, 8)
		if parseErr != nil {
			return nil, err
		}
		transactionType = ledgerstate.TransactionType(number)
	}

	return p.CreateTx(cfg, transactionType)
}

// SignTx adds the witness of Address to the transaction. A signing function takes precedence over the private key.
func (p *Pipeline) SignTx(ctx context.Context, cfg *Config) (*Config, error) {
	if err := cfg.requireFields("tx"); err != nil {
		return nil, err
	}

	checked := cfg.clone()
	if err := checked.checkSigner(); err != nil {
		return nil, err
	}

	if checked.SigningFunction != nil {
		signature, err := checked.SigningFunction(ctx, checked.Tx.UnsignedBytes(), checked.PublicKey)
		if err != nil {
			return nil, errors.Wrap(err, "signing function failed")
		}
		if err := checked.Tx.AddSignature(checked.PublicKey, signature); err != nil {
			return nil, errors.Wrap(err, "signing function returned an invalid signature")
		}
	} else if err := checked.Tx.Sign(checked.PrivateKey); err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}
	p.log.Debugw("signed transaction", "hash", checked.Tx.Hash(), "address", checked.Address)

	return checked, nil
}

// SendTx submits the signed transaction to URL. If the node accepts it, the transaction is applied as confirmed to the
// Balance.
func (p *Pipeline) SendTx(ctx context.Context, cfg *Config) (*Config, error) {
	if err := cfg.requireFields("tx", "url"); err != nil {
		return nil, err
	}

	transactionType := cfg.Tx.Type().String()
	accepted, err := p.rpc.SendRawTransaction(ctx, cfg.URL, cfg.Tx.Serialize(true))
	if err != nil {
		p.metrics.TransactionSubmitted(transactionType, false)
		return nil, errors.Wrapf(err, "failed to submit transaction %s", cfg.Tx.Hash())
	}
	p.metrics.TransactionSubmitted(transactionType, accepted)

	enriched := cfg.clone()
	enriched.Response = &Response{Result: accepted}
	if !accepted {
		p.log.Warnw("node rejected transaction", "hash", cfg.Tx.Hash(), "url", cfg.URL)
		return enriched, nil
	}

	enriched.Response.TxID = cfg.Tx.Hash()
	if enriched.Balance != nil {
		if err := enriched.Balance.ApplyTx(cfg.Tx, true); err != nil {
			return nil, errors.Wrap(err, "failed to apply transaction to balance")
		}
	}
	p.log.Infow("transaction accepted", "hash", enriched.Response.TxID, "url", cfg.URL)

	return enriched, nil
}

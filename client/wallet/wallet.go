// Package wallet offers the transfers, claims and invocations of a single account on top of the build pipeline.
package wallet

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/cityofzion/neon-go/client/api"
	"github.com/cityofzion/neon-go/client/wallet/packages/sendoptions"
	"github.com/cityofzion/neon-go/packages/config"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
	"github.com/cityofzion/neon-go/packages/wallet"
)

// region Wallet ///////////////////////////////////////////////////////////////////////////////////////////////////////

// ErrNoPipeline is returned if a Wallet is created without a pipeline.
var ErrNoPipeline = errors.New("you need to provide a pipeline for your wallet")

// Wallet issues transactions for an Account on a network.
type Wallet struct {
	account         *wallet.Account
	net             string
	pipeline        *api.Pipeline
	signingFunction api.SigningFunction
}

// New is the factory method of the wallet.
func New(options ...Option) (*Wallet, error) {
	w := &Wallet{}
	for _, option := range options {
		option(w)
	}

	if w.pipeline == nil {
		return nil, ErrNoPipeline
	}
	if w.account == nil {
		return nil, errors.Wrap(api.ErrMissingProperty, "account")
	}
	if w.net == "" {
		w.net = config.MainNet
	}

	return w, nil
}

// Address returns the address of the account.
func (w *Wallet) Address() string {
	return w.account.Address()
}

// Net returns the network of the wallet.
func (w *Wallet) Net() string {
	return w.net
}

// Balance fetches the current Balance of the account.
func (w *Wallet) Balance(ctx context.Context) (*ledgerstate.Balance, error) {
	fetched, err := w.pipeline.FetchBalance(ctx, &api.Config{Net: w.net, Address: w.Address()})
	if err != nil {
		return nil, err
	}

	return fetched.Balance, nil
}

// Claims fetches the claimable GAS of the account.
func (w *Wallet) Claims(ctx context.Context) (*ledgerstate.Claims, error) {
	fetched, err := w.pipeline.FetchClaims(ctx, &api.Config{Net: w.net, Address: w.Address()})
	if err != nil {
		return nil, err
	}

	return fetched.Claims, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region SendFunds ////////////////////////////////////////////////////////////////////////////////////////////////////

// SendFunds issues a transfer of the destinations of the options.
func (w *Wallet) SendFunds(ctx context.Context, options ...sendoptions.SendFundsOption) (*api.Config, error) {
	sendOptions, err := sendoptions.Build(options...)
	if err != nil {
		return nil, err
	}

	cfg, err := w.config()
	if err != nil {
		return nil, err
	}
	for _, address := range sendOptions.Addresses() {
		intents, err := api.MakeIntent(sendOptions.Destinations[address], address)
		if err != nil {
			return nil, err
		}
		cfg.Intents = append(cfg.Intents, intents...)
	}
	cfg.Override = sendOptions.TransactionOptions()

	return w.pipeline.SendAsset(ctx, cfg)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ClaimGas /////////////////////////////////////////////////////////////////////////////////////////////////////

// ClaimGas claims the claimable GAS of the account.
func (w *Wallet) ClaimGas(ctx context.Context, options ...ledgerstate.Option) (*api.Config, error) {
	cfg, err := w.config()
	if err != nil {
		return nil, err
	}
	cfg.Override = options

	return w.pipeline.ClaimGas(ctx, cfg)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Invoke ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Invoke runs a script and pays gas for its execution.
func (w *Wallet) Invoke(ctx context.Context, script ledgerstate.Script, gas ledgerstate.Fixed8, options ...ledgerstate.Option) (*api.Config, error) {
	cfg, err := w.config()
	if err != nil {
		return nil, err
	}
	cfg.Script = script
	cfg.Gas = gas
	cfg.Override = options

	return w.pipeline.DoInvoke(ctx, cfg)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// config returns the build context with the key material of the account.
func (w *Wallet) config() (*api.Config, error) {
	cfg := &api.Config{Net: w.net, Address: w.Address()}

	if w.signingFunction != nil {
		publicKey, err := w.account.PublicKey()
		if err != nil {
			return nil, err
		}
		cfg.PublicKey = publicKey
		cfg.SigningFunction = w.signingFunction

		return cfg, nil
	}

	privateKey, err := w.account.PrivateKey()
	if err != nil {
		return nil, err
	}
	cfg.PrivateKey = privateKey

	return cfg, nil
}

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// Option represents an optional parameter of the Wallet.
type Option func(*Wallet)

// Account sets the account whose coins the wallet spends.
func Account(account *wallet.Account) Option {
	return func(w *Wallet) {
		w.account = account
	}
}

// Net sets the network of the wallet. It defaults to MainNet.
func Net(net string) Option {
	return func(w *Wallet) {
		w.net = net
	}
}

// Pipeline sets the pipeline that builds and submits the transactions.
func Pipeline(pipeline *api.Pipeline) Option {
	return func(w *Wallet) {
		w.pipeline = pipeline
	}
}

// SigningFunction makes the wallet sign with an external function instead of the private key of the account.
func SigningFunction(signingFunction api.SigningFunction) Option {
	return func(w *Wallet) {
		w.signingFunction = signingFunction
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

package api

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/cityofzion/neon-go/packages/keys"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
)

// SigningFunction produces the 64 byte signature of message for the given public key, e.g. on a hardware wallet.
type SigningFunction func(ctx context.Context, message []byte, publicKey *keys.PublicKey) (signature []byte, err error)

// Response is the answer of the node that a transaction was submitted to.
type Response struct {
	// Result is true if the node accepted the transaction.
	Result bool

	// TxID is the hash of the accepted transaction.
	TxID string
}

// Config is the build context that is passed through the stages of the pipeline. Every stage returns a copy that
// holds the fields it added.
type Config struct {
	Net     string
	Address string

	PrivateKey      *keys.PrivateKey
	PublicKey       *keys.PublicKey
	SigningFunction SigningFunction

	// URL is the RPC endpoint that transactions are submitted to. Stages that resolve an endpoint keep a preset URL.
	URL string

	Intents []*ledgerstate.Output
	Script  ledgerstate.Script
	Gas     ledgerstate.Fixed8

	// Override holds the options that are passed to the transaction factories.
	Override []ledgerstate.Option

	Balance  *ledgerstate.Balance
	Claims   *ledgerstate.Claims
	Tx       *ledgerstate.Transaction
	Response *Response
}

func (c *Config) clone() *Config {
	cloned := *c

	return &cloned
}

// requireFields fails with ErrMissingProperty naming the first of the given fields that is not set.
func (c *Config) requireFields(fields ...string) error {
	for _, field := range fields {
		if !c.has(field) {
			return errors.Wrapf(ErrMissingProperty, "%s", field)
		}
	}

	return nil
}

func (c *Config) has(field string) bool {
	switch field {
	case "net":
		return c.Net != ""
	case "address":
		return c.Address != ""
	case "url":
		return c.URL != ""
	case "intents":
		return len(c.Intents) > 0
	case "script":
		return c.Script != nil
	case "balance":
		return c.Balance != nil
	case "claims":
		return c.Claims != nil
	case "tx":
		return c.Tx != nil
	case "publicKey":
		return c.PublicKey != nil
	}

	panic("unknown config field " + field)
}

// signerAddress returns the address of the configured key material or an empty string.
func (c *Config) signerAddress() string {
	switch {
	case c.SigningFunction != nil && c.PublicKey != nil:
		return ledgerstate.ScriptHashFromPublicKey(c.PublicKey).Address()
	case c.PrivateKey != nil:
		return ledgerstate.ScriptHashFromPublicKey(c.PrivateKey.PublicKey()).Address()
	}

	return ""
}

// checkSigner verifies that the transaction can be signed for Address without contacting any service. An empty
// Address is derived from the key material.
func (c *Config) checkSigner() error {
	if c.SigningFunction == nil && c.PrivateKey == nil {
		return ErrNoSigningMethod
	}
	if c.SigningFunction != nil && c.PublicKey == nil {
		return errors.Wrap(ErrMissingProperty, "publicKey")
	}

	signer := c.signerAddress()
	if c.Address == "" {
		c.Address = signer
	}
	if signer != c.Address {
		return errors.Wrapf(ErrAddressMismatch, "key belongs to %s but address is %s", signer, c.Address)
	}

	return nil
}

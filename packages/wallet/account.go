// Package wallet contains the Account that identifies the sender of transactions.
package wallet

import (
	"github.com/cityofzion/neon-go/packages/keys"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/stringify"
)

var (
	// ErrUnknownKeyFormat is returned if a string is neither a WIF, a private key, a public key, a script hash nor an
	// address.
	ErrUnknownKeyFormat = errors.New("unknown key format")

	// ErrNoPrivateKey is returned if an Account that was created from public information is asked for its secret.
	ErrNoPrivateKey = errors.New("account has no private key")

	// ErrNoPublicKey is returned if an Account that was created from an address or script hash is asked for its key.
	ErrNoPublicKey = errors.New("account has no public key")
)

// Account is the owner of coins. Depending on what it was created from it knows its private key, its public key or
// only its address.
type Account struct {
	privateKey *keys.PrivateKey
	publicKey  *keys.PublicKey
	scriptHash ledgerstate.ScriptHash
}

// NewAccount creates an Account from a WIF, a hex private key, a hex public key, a hex script hash or an address.
func NewAccount(key string) (*Account, error) {
	if privateKey, err := keys.PrivateKeyFromWIF(key); err == nil {
		return AccountFromPrivateKey(privateKey), nil
	}

	switch len(key) {
	case 2 * keys.PrivateKeySize:
		privateKey, err := keys.PrivateKeyFromHex(key)
		if err != nil {
			return nil, errors.Wrapf(ErrUnknownKeyFormat, "invalid private key: %v", err)
		}
		return AccountFromPrivateKey(privateKey), nil
	case 2 * keys.PublicKeySize, 2 * 65:
		publicKey, err := keys.PublicKeyFromHex(key)
		if err != nil {
			return nil, errors.Wrapf(ErrUnknownKeyFormat, "invalid public key: %v", err)
		}
		return AccountFromPublicKey(publicKey), nil
	case 2 * ledgerstate.ScriptHashLength:
		scriptHash, err := ledgerstate.ScriptHashFromString(key)
		if err != nil {
			return nil, errors.Wrapf(ErrUnknownKeyFormat, "invalid script hash: %v", err)
		}
		return AccountFromScriptHash(scriptHash), nil
	}

	scriptHash, err := ledgerstate.ScriptHashFromAddress(key)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownKeyFormat, "%q", key)
	}

	return AccountFromScriptHash(scriptHash), nil
}

// AccountFromPrivateKey creates an Account that can sign.
func AccountFromPrivateKey(privateKey *keys.PrivateKey) *Account {
	publicKey := privateKey.PublicKey()

	return &Account{
		privateKey: privateKey,
		publicKey:  publicKey,
		scriptHash: ledgerstate.ScriptHashFromPublicKey(publicKey),
	}
}

// AccountFromPublicKey creates an Account that knows its verification script but can not sign.
func AccountFromPublicKey(publicKey *keys.PublicKey) *Account {
	return &Account{
		publicKey:  publicKey,
		scriptHash: ledgerstate.ScriptHashFromPublicKey(publicKey),
	}
}

// AccountFromScriptHash creates a watch-only Account.
func AccountFromScriptHash(scriptHash ledgerstate.ScriptHash) *Account {
	return &Account{scriptHash: scriptHash}
}

// Address returns the base58check address.
func (a *Account) Address() string {
	return a.scriptHash.Address()
}

// ScriptHash returns the script hash that owns the outputs of the Account.
func (a *Account) ScriptHash() ledgerstate.ScriptHash {
	return a.scriptHash
}

// HasPrivateKey returns true if the Account can sign.
func (a *Account) HasPrivateKey() bool {
	return a.privateKey != nil
}

// PrivateKey returns the private key.
func (a *Account) PrivateKey() (*keys.PrivateKey, error) {
	if a.privateKey == nil {
		return nil, errors.Wrapf(ErrNoPrivateKey, "account %s", a.Address())
	}

	return a.privateKey, nil
}

// PublicKey returns the public key.
func (a *Account) PublicKey() (*keys.PublicKey, error) {
	if a.publicKey == nil {
		return nil, errors.Wrapf(ErrNoPublicKey, "account %s", a.Address())
	}

	return a.publicKey, nil
}

// WIF returns the private key in wallet import format.
func (a *Account) WIF() (string, error) {
	privateKey, err := a.PrivateKey()
	if err != nil {
		return "", err
	}

	return privateKey.WIF(), nil
}

func (a *Account) String() string {
	return stringify.Struct("Account",
		stringify.StructField("Address", a.Address()),
		stringify.StructField("ScriptHash", a.scriptHash.String()),
		stringify.StructField("HasPrivateKey", a.HasPrivateKey()),
	)
}

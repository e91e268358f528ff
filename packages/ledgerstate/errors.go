package ledgerstate

import (
	"github.com/cityofzion/neon-go/packages/binary/codec"
	"golang.org/x/xerrors"
)

var (
	// ErrMalformedEncoding is returned if a byte sequence can not be parsed into a ledger object.
	ErrMalformedEncoding = codec.ErrMalformedEncoding

	// ErrUnsupportedTransactionType is returned if no exclusive data is registered for a transaction type or if the
	// exclusive data does not belong to the type of its transaction.
	ErrUnsupportedTransactionType = xerrors.New("unsupported transaction type")

	// ErrIncompatibleVersion is returned if a transaction version is not defined for its type.
	ErrIncompatibleVersion = xerrors.New("incompatible transaction version")

	// ErrEmptyIntent is returned if a transaction that moves assets is created without any outputs.
	ErrEmptyIntent = xerrors.New("empty intent")

	// ErrInsufficientFunds is returned if the unspent coins of a balance can not cover the requested amount.
	ErrInsufficientFunds = xerrors.New("insufficient funds")

	// ErrUnknownAsset is returned for asset symbols and ids that are not part of the asset registry.
	ErrUnknownAsset = xerrors.New("unknown asset")

	// ErrInvalidAddress is returned if an address is not a valid base58check encoded script hash.
	ErrInvalidAddress = xerrors.New("invalid address")

	// ErrInvalidAmount is returned for negative or unrepresentable amounts.
	ErrInvalidAmount = xerrors.New("invalid amount")

	// ErrAlreadyCalculated is returned if inputs are selected a second time for the same transaction.
	ErrAlreadyCalculated = xerrors.New("transaction inputs already calculated")
)

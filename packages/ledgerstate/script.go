package ledgerstate

import (
	"encoding/hex"

	"github.com/iotaledger/hive.go/cerrors"
	"golang.org/x/xerrors"
)

// Script is the program that an invocation Transaction runs.
type Script interface {
	// Bytes returns the compiled script.
	Bytes() ([]byte, error)
}

// RawScript is an already compiled script in hex representation.
type RawScript string

// Bytes decodes the hex representation.
func (r RawScript) Bytes() ([]byte, error) {
	bytes, err := hex.DecodeString(string(r))
	if err != nil {
		return nil, xerrors.Errorf("failed to decode script hex (%v): %w", err, cerrors.ErrParseBytesFailed)
	}

	return bytes, nil
}

package smartcontract

import (
	"github.com/cityofzion/neon-go/packages/ledgerstate"
	"golang.org/x/xerrors"
)

// Invocation describes a call of a deployed contract. It compiles to an APPCALL (or TAILCALL) script and can be used
// wherever a ledgerstate.Script is expected.
type Invocation struct {
	// ScriptHash is the byte-reversed hex hash of the called contract.
	ScriptHash string

	// Operation is the name of the called method. It is omitted if empty.
	Operation string

	// Args are pushed as a packed array. A nil slice pushes false instead.
	Args []interface{}

	UseTailCall bool
}

// Bytes compiles the Invocation.
func (i Invocation) Bytes() ([]byte, error) {
	builder := NewScriptBuilder()
	if err := i.emit(builder); err != nil {
		return nil, err
	}

	return builder.Bytes(), nil
}

func (i Invocation) emit(builder *ScriptBuilder) error {
	scriptHash, err := ledgerstate.ScriptHashFromString(i.ScriptHash)
	if err != nil {
		return xerrors.Errorf("invalid contract script hash %q: %w", i.ScriptHash, err)
	}
	if _, err = builder.EmitAppCall(scriptHash, i.Operation, i.Args, i.UseTailCall); err != nil {
		return xerrors.Errorf("failed to emit call of %s: %w", i.ScriptHash, err)
	}

	return nil
}

// Invocations compiles several calls into a single script.
type Invocations []Invocation

// Bytes compiles all Invocations in order.
func (i Invocations) Bytes() ([]byte, error) {
	builder := NewScriptBuilder()
	for _, invocation := range i {
		if err := invocation.emit(builder); err != nil {
			return nil, err
		}
	}

	return builder.Bytes(), nil
}

var (
	_ ledgerstate.Script = Invocation{}
	_ ledgerstate.Script = Invocations{}
)

package ledgerstate

import (
	"encoding/hex"

	"github.com/cityofzion/neon-go/packages/binary/codec"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// MaxScriptLength limits the size of scripts read from the wire.
const MaxScriptLength = 65536

// Witness proves the right to spend the inputs of a Transaction. The invocation script pushes the signatures that the
// verification script checks.
type Witness struct {
	invocationScript   []byte
	verificationScript []byte
}

// NewWitness creates a Witness from its two scripts.
func NewWitness(invocationScript, verificationScript []byte) *Witness {
	return &Witness{
		invocationScript:   invocationScript,
		verificationScript: verificationScript,
	}
}

// WitnessFromBytes unmarshals a Witness from a sequence of bytes.
func WitnessFromBytes(bytes []byte) (witness *Witness, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if witness, err = WitnessFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Witness from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// WitnessFromMarshalUtil unmarshals a Witness using a MarshalUtil (for easier unmarshaling).
func WitnessFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (witness *Witness, err error) {
	witness = &Witness{}
	if witness.invocationScript, err = codec.ReadVarBytes(marshalUtil, MaxScriptLength); err != nil {
		return nil, xerrors.Errorf("failed to parse InvocationScript of Witness: %w", err)
	}
	if witness.verificationScript, err = codec.ReadVarBytes(marshalUtil, MaxScriptLength); err != nil {
		return nil, xerrors.Errorf("failed to parse VerificationScript of Witness: %w", err)
	}

	return witness, nil
}

// InvocationScript returns the script that pushes the signatures.
func (w *Witness) InvocationScript() []byte {
	return w.invocationScript
}

// VerificationScript returns the script that checks the signatures.
func (w *Witness) VerificationScript() []byte {
	return w.verificationScript
}

// ScriptHash returns the hash of the verification script.
func (w *Witness) ScriptHash() ScriptHash {
	return ScriptHashFromScript(w.verificationScript)
}

// Bytes returns a marshaled version of the Witness.
func (w *Witness) Bytes() []byte {
	marshalUtil := marshalutil.New()
	codec.WriteVarBytes(marshalUtil, w.invocationScript)
	codec.WriteVarBytes(marshalUtil, w.verificationScript)

	return marshalUtil.Bytes()
}

// String returns a human readable version of the Witness.
func (w *Witness) String() string {
	return stringify.Struct("Witness",
		stringify.StructField("InvocationScript", hex.EncodeToString(w.invocationScript)),
		stringify.StructField("VerificationScript", hex.EncodeToString(w.verificationScript)),
	)
}

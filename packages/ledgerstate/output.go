package ledgerstate

import (
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// OutputLength contains the amount of bytes of a marshaled Output.
const OutputLength = Uint256Length + marshalutil.Int64Size + ScriptHashLength

// Output assigns an amount of an asset to the owner of a ScriptHash.
type Output struct {
	assetID    Uint256
	value      Fixed8
	scriptHash ScriptHash
}

// NewOutput creates an Output.
func NewOutput(assetID Uint256, value Fixed8, scriptHash ScriptHash) *Output {
	return &Output{
		assetID:    assetID,
		value:      value,
		scriptHash: scriptHash,
	}
}

// CreateOutput creates an Output from an asset symbol, an amount and a base58 address.
func CreateOutput(symbol string, value Fixed8, address string) (*Output, error) {
	assetID, err := AssetIDFromSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if value < 0 {
		return nil, xerrors.Errorf("output value %s is negative: %w", value, ErrInvalidAmount)
	}
	scriptHash, err := ScriptHashFromAddress(address)
	if err != nil {
		return nil, err
	}

	return NewOutput(assetID, value, scriptHash), nil
}

// OutputFromBytes unmarshals an Output from a sequence of bytes.
func OutputFromBytes(bytes []byte) (output *Output, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if output, err = OutputFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Output from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// OutputFromMarshalUtil unmarshals an Output using a MarshalUtil (for easier unmarshaling).
func OutputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (output *Output, err error) {
	output = &Output{}
	if output.assetID, err = Uint256FromMarshalUtil(marshalUtil); err != nil {
		return nil, xerrors.Errorf("failed to parse AssetID of Output: %w", err)
	}
	value, err := marshalUtil.ReadInt64()
	if err != nil {
		return nil, xerrors.Errorf("failed to parse Value of Output (%v): %w", err, ErrMalformedEncoding)
	}
	if value < 0 {
		return nil, xerrors.Errorf("negative Output value %d: %w", value, ErrMalformedEncoding)
	}
	output.value = Fixed8(value)
	if output.scriptHash, err = ScriptHashFromMarshalUtil(marshalUtil); err != nil {
		return nil, xerrors.Errorf("failed to parse ScriptHash of Output: %w", err)
	}

	return output, nil
}

// AssetID returns the id of the transferred asset.
func (o *Output) AssetID() Uint256 {
	return o.assetID
}

// Value returns the transferred amount.
func (o *Output) Value() Fixed8 {
	return o.value
}

// ScriptHash returns the owner of the Output.
func (o *Output) ScriptHash() ScriptHash {
	return o.scriptHash
}

// Bytes returns a marshaled version of the Output.
func (o *Output) Bytes() []byte {
	return marshalutil.New(OutputLength).
		WriteBytes(o.assetID.Bytes()).
		WriteInt64(int64(o.value)).
		WriteBytes(o.scriptHash.Bytes()).
		Bytes()
}

// String returns a human readable version of the Output.
func (o *Output) String() string {
	return stringify.Struct("Output",
		stringify.StructField("AssetID", o.assetID.String()),
		stringify.StructField("Value", o.value.String()),
		stringify.StructField("ScriptHash", o.scriptHash.String()),
	)
}

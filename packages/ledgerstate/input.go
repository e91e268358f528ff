package ledgerstate

import (
	"strconv"

	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// InputLength contains the amount of bytes of a marshaled Input.
const InputLength = Uint256Length + marshalutil.Uint16Size

// Input references an Output of a previous Transaction that is consumed.
type Input struct {
	prevHash  Uint256
	prevIndex uint16
}

// NewInput creates an Input that references the Output at prevIndex of the Transaction with the hash prevHash.
func NewInput(prevHash Uint256, prevIndex uint16) *Input {
	return &Input{
		prevHash:  prevHash,
		prevIndex: prevIndex,
	}
}

// InputFromBytes unmarshals an Input from a sequence of bytes.
func InputFromBytes(bytes []byte) (input *Input, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if input, err = InputFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Input from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// InputFromMarshalUtil unmarshals an Input using a MarshalUtil (for easier unmarshaling).
func InputFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (input *Input, err error) {
	input = &Input{}
	if input.prevHash, err = Uint256FromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse PrevHash of Input: %w", err)
		return nil, err
	}
	if input.prevIndex, err = marshalUtil.ReadUint16(); err != nil {
		err = xerrors.Errorf("failed to parse PrevIndex of Input (%v): %w", err, ErrMalformedEncoding)
		return nil, err
	}

	return input, nil
}

// PrevHash returns the hash of the referenced Transaction.
func (i *Input) PrevHash() Uint256 {
	return i.prevHash
}

// PrevIndex returns the index of the referenced Output.
func (i *Input) PrevIndex() uint16 {
	return i.prevIndex
}

// Key returns the "txid:index" identifier of the referenced Output.
func (i *Input) Key() string {
	return coinKey(i.prevHash, i.prevIndex)
}

// Bytes returns a marshaled version of the Input.
func (i *Input) Bytes() []byte {
	return marshalutil.New(InputLength).
		WriteBytes(i.prevHash.Bytes()).
		WriteUint16(i.prevIndex).
		Bytes()
}

// String returns a human readable version of the Input.
func (i *Input) String() string {
	return stringify.Struct("Input",
		stringify.StructField("PrevHash", i.prevHash.String()),
		stringify.StructField("PrevIndex", i.prevIndex),
	)
}

func coinKey(txID Uint256, index uint16) string {
	return txID.String() + ":" + strconv.Itoa(int(index))
}

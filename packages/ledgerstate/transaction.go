package ledgerstate

import (
	"bytes"
	"encoding/hex"
	"strconv"

	"github.com/cityofzion/neon-go/packages/binary/codec"
	"github.com/cityofzion/neon-go/packages/keys"
	"github.com/iotaledger/hive.go/cerrors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// MaxItemsPerList is the upper bound for the element count of every list that is read from the wire.
const MaxItemsPerList = 0xffff

// region Transaction //////////////////////////////////////////////////////////////////////////////////////////////////

// Transaction is a NEO transaction. It consists of a header (type and version), ExclusiveData that depends on the
// type, attributes, inputs, outputs and the witnesses that authorize the spending of the inputs.
type Transaction struct {
	transactionType TransactionType
	version         byte
	exclusive       ExclusiveData
	attributes      []*Attribute
	inputs          []*Input
	outputs         []*Output
	witnesses       []*Witness
	calculated      bool
}

// NewTransaction creates an empty Transaction of the given type. A nil exclusive receives the empty ExclusiveData of
// the type.
func NewTransaction(transactionType TransactionType, version byte, exclusive ExclusiveData) (*Transaction, error) {
	definition, err := TransactionTypeDefinitionOf(transactionType)
	if err != nil {
		return nil, err
	}
	if version > definition.MaxVersion {
		return nil, xerrors.Errorf("version %d of %s transaction: %w", version, definition.Name, ErrIncompatibleVersion)
	}
	if exclusive == nil {
		exclusive = definition.New()
	}
	if exclusive.Type() != transactionType {
		return nil, xerrors.Errorf("exclusive data of type %s can not be used for %s transaction: %w", exclusive.Type(), definition.Name, ErrUnsupportedTransactionType)
	}

	return &Transaction{
		transactionType: transactionType,
		version:         version,
		exclusive:       exclusive,
		attributes:      make([]*Attribute, 0),
		inputs:          make([]*Input, 0),
		outputs:         make([]*Output, 0),
		witnesses:       make([]*Witness, 0),
	}, nil
}

// TransactionFromBytes unmarshals a Transaction from a sequence of bytes.
func TransactionFromBytes(bytes []byte) (transaction *Transaction, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if transaction, err = TransactionFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Transaction from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// Deserialize parses the hex representation of a Transaction. The whole string has to be consumed.
func Deserialize(s string) (*Transaction, error) {
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode transaction hex (%v): %w", err, cerrors.ErrParseBytesFailed)
	}

	transaction, consumedBytes, err := TransactionFromBytes(bytes)
	if err != nil {
		return nil, err
	}
	if consumedBytes != len(bytes) {
		return nil, xerrors.Errorf("%d trailing bytes after transaction: %w", len(bytes)-consumedBytes, ErrMalformedEncoding)
	}

	return transaction, nil
}

// TransactionFromMarshalUtil unmarshals a Transaction using a MarshalUtil (for easier unmarshaling). The witnesses are
// optional: if the buffer ends after the outputs the Transaction is returned unsigned.
func TransactionFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (transaction *Transaction, err error) {
	typeByte, err := marshalUtil.ReadByte()
	if err != nil {
		return nil, xerrors.Errorf("failed to parse TransactionType (%v): %w", err, ErrMalformedEncoding)
	}
	version, err := marshalUtil.ReadByte()
	if err != nil {
		return nil, xerrors.Errorf("failed to parse version (%v): %w", err, ErrMalformedEncoding)
	}

	definition, err := TransactionTypeDefinitionOf(TransactionType(typeByte))
	if err != nil {
		return nil, err
	}
	exclusive, err := definition.Unmarshaler(marshalUtil, version)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse exclusive data of %s transaction: %w", definition.Name, err)
	}
	if transaction, err = NewTransaction(TransactionType(typeByte), version, exclusive); err != nil {
		return nil, err
	}

	if transaction.attributes, err = readList(marshalUtil, AttributeFromMarshalUtil); err != nil {
		return nil, xerrors.Errorf("failed to parse attributes: %w", err)
	}
	if transaction.inputs, err = readList(marshalUtil, InputFromMarshalUtil); err != nil {
		return nil, xerrors.Errorf("failed to parse inputs: %w", err)
	}
	if transaction.outputs, err = readList(marshalUtil, OutputFromMarshalUtil); err != nil {
		return nil, xerrors.Errorf("failed to parse outputs: %w", err)
	}

	if _, peekErr := marshalUtil.ReadByte(); peekErr != nil {
		return transaction, nil
	}
	marshalUtil.ReadSeek(-1)

	if transaction.witnesses, err = readList(marshalUtil, WitnessFromMarshalUtil); err != nil {
		return nil, xerrors.Errorf("failed to parse witnesses: %w", err)
	}

	return transaction, nil
}

// Type returns the TransactionType.
func (t *Transaction) Type() TransactionType {
	return t.transactionType
}

// Version returns the version of the Transaction format of its type.
func (t *Transaction) Version() byte {
	return t.version
}

// ExclusiveData returns the type specific data.
func (t *Transaction) ExclusiveData() ExclusiveData {
	return t.exclusive
}

// ExclusiveDataBytes returns the marshaled type specific data.
func (t *Transaction) ExclusiveDataBytes() []byte {
	return t.exclusive.Bytes(t.version)
}

// Attributes returns the attributes in insertion order.
func (t *Transaction) Attributes() []*Attribute {
	return append([]*Attribute{}, t.attributes...)
}

// Inputs returns the consumed outputs in selection order.
func (t *Transaction) Inputs() []*Input {
	return append([]*Input{}, t.inputs...)
}

// Outputs returns the outputs in insertion order.
func (t *Transaction) Outputs() []*Output {
	return append([]*Output{}, t.outputs...)
}

// Witnesses returns the witnesses in signing order.
func (t *Transaction) Witnesses() []*Witness {
	return append([]*Witness{}, t.witnesses...)
}

// AddAttribute appends an Attribute.
func (t *Transaction) AddAttribute(attribute *Attribute) *Transaction {
	t.attributes = append(t.attributes, attribute)

	return t
}

// AddRemark appends a remark Attribute that carries the given text.
func (t *Transaction) AddRemark(remark string) error {
	attribute, err := NewRemarkAttribute(remark)
	if err != nil {
		return err
	}
	t.AddAttribute(attribute)

	return nil
}

// AddInput appends an Input.
func (t *Transaction) AddInput(input *Input) *Transaction {
	t.inputs = append(t.inputs, input)

	return t
}

// AddOutput appends an Output.
func (t *Transaction) AddOutput(output *Output) *Transaction {
	t.outputs = append(t.outputs, output)

	return t
}

// AddOutputFromSymbol creates an Output from an asset symbol and an address and appends it.
func (t *Transaction) AddOutputFromSymbol(symbol string, value Fixed8, address string) error {
	output, err := CreateOutput(symbol, value, address)
	if err != nil {
		return err
	}
	t.AddOutput(output)

	return nil
}

// AddWitness appends a Witness. A Witness with the same verification script replaces the existing one.
func (t *Transaction) AddWitness(witness *Witness) *Transaction {
	for i, existing := range t.witnesses {
		if bytes.Equal(existing.verificationScript, witness.verificationScript) {
			t.witnesses[i] = witness
			return t
		}
	}
	t.witnesses = append(t.witnesses, witness)

	return t
}

// Gas returns the GAS that an invocation pays for its execution. It is zero for all other types.
func (t *Transaction) Gas() Fixed8 {
	if invocation, ok := t.exclusive.(*InvocationExclusive); ok {
		return invocation.Gas
	}

	return 0
}

// Calculate selects the inputs that fund the outputs (and the invocation gas) from the Balance, appends the change
// and applies the Transaction to the Balance as unconfirmed.
func (t *Transaction) Calculate(balance *Balance) error {
	if t.calculated {
		return ErrAlreadyCalculated
	}

	inputs, change, err := CalculateInputs(balance, t.outputs, t.Gas())
	if err != nil {
		return xerrors.Errorf("failed to calculate inputs: %w", err)
	}

	inputCount, outputCount := len(t.inputs), len(t.outputs)
	t.inputs = append(t.inputs, inputs...)
	t.outputs = append(t.outputs, change...)

	if balance != nil {
		if err = balance.ApplyTx(t, false); err != nil {
			t.inputs, t.outputs = t.inputs[:inputCount], t.outputs[:outputCount]

			return xerrors.Errorf("failed to apply transaction to balance: %w", err)
		}
	}
	t.calculated = true

	return nil
}

// Sign signs the unsigned serialization with the PrivateKey and appends the resulting Witness.
func (t *Transaction) Sign(privateKey *keys.PrivateKey) error {
	signature, err := privateKey.Sign(t.UnsignedBytes())
	if err != nil {
		return xerrors.Errorf("failed to sign transaction: %w", err)
	}

	return t.AddSignature(privateKey.PublicKey(), signature)
}

// AddSignature appends the Witness of an externally produced signature after checking it against the PublicKey.
func (t *Transaction) AddSignature(publicKey *keys.PublicKey, signature []byte) error {
	if !publicKey.Verify(t.UnsignedBytes(), signature) {
		return xerrors.Errorf("signature does not match public key %s: %w", publicKey.Hex(), keys.ErrInvalidKey)
	}
	t.AddWitness(NewWitness(keys.InvocationScript(signature), publicKey.VerificationScript()))

	return nil
}

// ID returns the double SHA-256 digest of the unsigned serialization.
func (t *Transaction) ID() Uint256 {
	return Uint256FromDigest(keys.DoubleSha256(t.UnsignedBytes()))
}

// Hash returns the display form of the ID, the transaction hash that nodes report.
func (t *Transaction) Hash() string {
	return t.ID().String()
}

// UnsignedBytes returns the serialization without witnesses. It is the message that is signed and hashed.
func (t *Transaction) UnsignedBytes() []byte {
	return t.marshal(false)
}

// Bytes returns the serialization including the witnesses.
func (t *Transaction) Bytes() []byte {
	return t.marshal(true)
}

// Serialize returns the hex representation of the Transaction with or without witnesses.
func (t *Transaction) Serialize(signed bool) string {
	return hex.EncodeToString(t.marshal(signed))
}

// String returns a human readable version of the Transaction.
func (t *Transaction) String() string {
	structBuilder := stringify.StructBuilder("Transaction",
		stringify.StructField("Hash", t.Hash()),
		stringify.StructField("Type", t.transactionType.String()),
		stringify.StructField("Version", t.version),
		stringify.StructField("ExclusiveData", t.exclusive),
	)
	for i, attribute := range t.attributes {
		structBuilder.AddField(stringify.StructField("Attribute"+strconv.Itoa(i), attribute))
	}
	for i, input := range t.inputs {
		structBuilder.AddField(stringify.StructField("Input"+strconv.Itoa(i), input))
	}
	for i, output := range t.outputs {
		structBuilder.AddField(stringify.StructField("Output"+strconv.Itoa(i), output))
	}
	for i, witness := range t.witnesses {
		structBuilder.AddField(stringify.StructField("Witness"+strconv.Itoa(i), witness))
	}

	return structBuilder.String()
}

func (t *Transaction) marshal(signed bool) []byte {
	marshalUtil := marshalutil.New().
		WriteByte(byte(t.transactionType)).
		WriteByte(t.version).
		WriteBytes(t.exclusive.Bytes(t.version))

	writeList(marshalUtil, t.attributes)
	writeList(marshalUtil, t.inputs)
	writeList(marshalUtil, t.outputs)
	if signed {
		writeList(marshalUtil, t.witnesses)
	}

	return marshalUtil.Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region list codec ///////////////////////////////////////////////////////////////////////////////////////////////////

type binaryMarshaler interface {
	Bytes() []byte
}

func writeList[T binaryMarshaler](marshalUtil *marshalutil.MarshalUtil, elements []T) {
	codec.WriteVarInt(marshalUtil, uint64(len(elements)))
	for _, element := range elements {
		marshalUtil.WriteBytes(element.Bytes())
	}
}

func readList[T any](marshalUtil *marshalutil.MarshalUtil, unmarshal func(*marshalutil.MarshalUtil) (T, error)) ([]T, error) {
	count, err := codec.ReadVarInt(marshalUtil)
	if err != nil {
		return nil, err
	}
	if count > MaxItemsPerList {
		return nil, xerrors.Errorf("list length %d exceeds %d: %w", count, MaxItemsPerList, ErrMalformedEncoding)
	}

	elements := make([]T, 0)
	for i := uint64(0); i < count; i++ {
		element, elementErr := unmarshal(marshalUtil)
		if elementErr != nil {
			return nil, xerrors.Errorf("failed to parse element %d: %w", i, elementErr)
		}
		elements = append(elements, element)
	}

	return elements, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

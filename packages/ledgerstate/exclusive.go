package ledgerstate

import (
	"encoding/hex"
	"strconv"
	"strings"
	"sync"

	"github.com/cityofzion/neon-go/packages/binary/codec"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// region TransactionType //////////////////////////////////////////////////////////////////////////////////////////////

// TransactionType is the first byte of a serialized Transaction. It selects the ExclusiveData that follows the header.
type TransactionType uint8

const (
	// ClaimType is the type of transactions that claim the GAS generated by spent NEO outputs.
	ClaimType TransactionType = 0x02

	// ContractType is the type of plain asset transfers.
	ContractType TransactionType = 0x80

	// InvocationType is the type of transactions that run a script on the virtual machine.
	InvocationType TransactionType = 0xd1
)

// ExclusiveDataUnmarshaler parses the ExclusiveData of a Transaction with the given version.
type ExclusiveDataUnmarshaler func(marshalUtil *marshalutil.MarshalUtil, version byte) (ExclusiveData, error)

// TransactionTypeDefinition describes how the ExclusiveData of a TransactionType is created and parsed.
type TransactionTypeDefinition struct {
	// Name is the lower case name that CreateTx style lookups use.
	Name string

	// DefaultVersion is the version that new transactions of this type receive.
	DefaultVersion byte

	// MaxVersion is the highest version that is defined for this type.
	MaxVersion byte

	// New returns empty ExclusiveData for the type.
	New func() ExclusiveData

	// Unmarshaler parses the ExclusiveData from the wire.
	Unmarshaler ExclusiveDataUnmarshaler
}

var (
	// transactionTypeRegister contains all TransactionTypes that can be built and parsed.
	transactionTypeRegister = make(map[TransactionType]*TransactionTypeDefinition)

	// transactionTypeRegisterMutex synchronizes the access to the transactionTypeRegister.
	transactionTypeRegisterMutex sync.RWMutex
)

func init() {
	RegisterTransactionType(ClaimType, &TransactionTypeDefinition{
		Name: "claim",
		New:  func() ExclusiveData { return &ClaimExclusive{} },
		Unmarshaler: func(marshalUtil *marshalutil.MarshalUtil, _ byte) (ExclusiveData, error) {
			return ClaimExclusiveFromMarshalUtil(marshalUtil)
		},
	})
	RegisterTransactionType(ContractType, &TransactionTypeDefinition{
		Name: "contract",
		New:  func() ExclusiveData { return &ContractExclusive{} },
		Unmarshaler: func(*marshalutil.MarshalUtil, byte) (ExclusiveData, error) {
			return &ContractExclusive{}, nil
		},
	})
	RegisterTransactionType(InvocationType, &TransactionTypeDefinition{
		Name:           "invocation",
		DefaultVersion: 1,
		MaxVersion:     1,
		New:            func() ExclusiveData { return &InvocationExclusive{} },
		Unmarshaler:    InvocationExclusiveFromMarshalUtil,
	})
}

// RegisterTransactionType makes a TransactionType known to the Transaction codec. It panics if the type is already
// registered.
func RegisterTransactionType(transactionType TransactionType, definition *TransactionTypeDefinition) {
	transactionTypeRegisterMutex.Lock()
	defer transactionTypeRegisterMutex.Unlock()

	if registered, exists := transactionTypeRegister[transactionType]; exists {
		panic("transaction type " + definition.Name + "(" + strconv.Itoa(int(transactionType)) + ")" +
			" tries to overwrite previously registered type " + registered.Name)
	}

	transactionTypeRegister[transactionType] = definition
}

// TransactionTypeDefinitionOf returns the definition of a registered TransactionType.
func TransactionTypeDefinitionOf(transactionType TransactionType) (*TransactionTypeDefinition, error) {
	transactionTypeRegisterMutex.RLock()
	defer transactionTypeRegisterMutex.RUnlock()

	definition, exists := transactionTypeRegister[transactionType]
	if !exists {
		return nil, xerrors.Errorf("type 0x%02x: %w", byte(transactionType), ErrUnsupportedTransactionType)
	}

	return definition, nil
}

// TransactionTypeFromName resolves a registered TransactionType by its name. The lookup ignores case and accepts an
// optional "Transaction" suffix, so "claim", "Claim" and "ClaimTransaction" all resolve to ClaimType.
func TransactionTypeFromName(name string) (TransactionType, error) {
	normalized := strings.TrimSuffix(strings.ToLower(name), "transaction")

	transactionTypeRegisterMutex.RLock()
	defer transactionTypeRegisterMutex.RUnlock()

	for transactionType, definition := range transactionTypeRegister {
		if definition.Name == normalized {
			return transactionType, nil
		}
	}

	return 0, xerrors.Errorf("type %q: %w", name, ErrUnsupportedTransactionType)
}

// String returns the registered name of the type.
func (t TransactionType) String() string {
	definition, err := TransactionTypeDefinitionOf(t)
	if err != nil {
		return "TransactionType(" + strconv.Itoa(int(t)) + ")"
	}

	return definition.Name
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ExclusiveData ////////////////////////////////////////////////////////////////////////////////////////////////

// ExclusiveData is the type specific part of a Transaction that is serialized between the version and the attributes.
type ExclusiveData interface {
	// Type returns the TransactionType the data belongs to.
	Type() TransactionType

	// Bytes returns the marshaled data for the given Transaction version.
	Bytes(version byte) []byte

	// String returns a human readable version of the data.
	String() string
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ClaimExclusive ///////////////////////////////////////////////////////////////////////////////////////////////

// MaxClaimsPerTransaction is the maximum amount of claims that CreateClaimTx puts into a single Transaction.
const MaxClaimsPerTransaction = 255

// ClaimExclusive lists the spent outputs whose generated GAS is claimed.
type ClaimExclusive struct {
	Claims []*Input
}

// ClaimExclusiveFromMarshalUtil unmarshals a ClaimExclusive using a MarshalUtil (for easier unmarshaling).
func ClaimExclusiveFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (*ClaimExclusive, error) {
	count, err := codec.ReadVarInt(marshalUtil)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse claim count: %w", err)
	}
	if count > MaxItemsPerList {
		return nil, xerrors.Errorf("claim count %d exceeds %d: %w", count, MaxItemsPerList, ErrMalformedEncoding)
	}

	claims := make([]*Input, 0)
	for i := uint64(0); i < count; i++ {
		claim, claimErr := InputFromMarshalUtil(marshalUtil)
		if claimErr != nil {
			return nil, xerrors.Errorf("failed to parse claim %d: %w", i, claimErr)
		}
		claims = append(claims, claim)
	}

	return &ClaimExclusive{Claims: claims}, nil
}

// Type returns ClaimType.
func (c *ClaimExclusive) Type() TransactionType {
	return ClaimType
}

// Bytes returns the count prefixed claims.
func (c *ClaimExclusive) Bytes(byte) []byte {
	marshalUtil := marshalutil.New(codec.VarIntSize(uint64(len(c.Claims))) + len(c.Claims)*InputLength)
	codec.WriteVarInt(marshalUtil, uint64(len(c.Claims)))
	for _, claim := range c.Claims {
		marshalUtil.Write(claim)
	}

	return marshalUtil.Bytes()
}

func (c *ClaimExclusive) String() string {
	structBuilder := stringify.StructBuilder("ClaimExclusive")
	for i, claim := range c.Claims {
		structBuilder.AddField(stringify.StructField("Claim"+strconv.Itoa(i), claim))
	}

	return structBuilder.String()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ContractExclusive ////////////////////////////////////////////////////////////////////////////////////////////

// ContractExclusive is the empty ExclusiveData of a plain transfer.
type ContractExclusive struct{}

// Type returns ContractType.
func (c *ContractExclusive) Type() TransactionType {
	return ContractType
}

// Bytes returns no bytes.
func (c *ContractExclusive) Bytes(byte) []byte {
	return []byte{}
}

func (c *ContractExclusive) String() string {
	return stringify.Struct("ContractExclusive")
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region InvocationExclusive //////////////////////////////////////////////////////////////////////////////////////////

// InvocationExclusive holds the script that is run by an invocation Transaction and the GAS that is paid for it.
type InvocationExclusive struct {
	Script []byte
	Gas    Fixed8
}

// InvocationExclusiveFromMarshalUtil unmarshals an InvocationExclusive using a MarshalUtil. The gas field only exists
// from version 1 on.
func InvocationExclusiveFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil, version byte) (ExclusiveData, error) {
	script, err := codec.ReadVarBytes(marshalUtil, MaxScriptLength)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse invocation script: %w", err)
	}

	invocation := &InvocationExclusive{Script: script}
	if version >= 1 {
		gas, gasErr := marshalUtil.ReadInt64()
		if gasErr != nil {
			return nil, xerrors.Errorf("failed to parse invocation gas (%v): %w", gasErr, ErrMalformedEncoding)
		}
		if gas < 0 {
			return nil, xerrors.Errorf("negative invocation gas %d: %w", gas, ErrMalformedEncoding)
		}
		invocation.Gas = Fixed8(gas)
	}

	return invocation, nil
}

// Type returns InvocationType.
func (i *InvocationExclusive) Type() TransactionType {
	return InvocationType
}

// Bytes returns the length prefixed script followed by the gas if the version is at least 1.
func (i *InvocationExclusive) Bytes(version byte) []byte {
	marshalUtil := marshalutil.New()
	codec.WriteVarBytes(marshalUtil, i.Script)
	if version >= 1 {
		marshalUtil.WriteInt64(int64(i.Gas))
	}

	return marshalUtil.Bytes()
}

func (i *InvocationExclusive) String() string {
	return stringify.Struct("InvocationExclusive",
		stringify.StructField("Script", hex.EncodeToString(i.Script)),
		stringify.StructField("Gas", i.Gas.String()),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

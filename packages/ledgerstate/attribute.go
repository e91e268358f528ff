package ledgerstate

import (
	"encoding/hex"

	"github.com/cityofzion/neon-go/packages/binary/codec"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"golang.org/x/xerrors"
)

// region AttributeUsage ///////////////////////////////////////////////////////////////////////////////////////////////

// AttributeUsage is the tag of an Attribute. It determines how the payload of the Attribute is length prefixed.
type AttributeUsage byte

const (
	// ContractHashUsage carries the hash of a contract.
	ContractHashUsage AttributeUsage = 0x00

	// ECDH02Usage carries the x coordinate of a public key with an even y coordinate.
	ECDH02Usage AttributeUsage = 0x02

	// ECDH03Usage carries the x coordinate of a public key with an odd y coordinate.
	ECDH03Usage AttributeUsage = 0x03

	// ScriptUsage carries an additional script hash that has to sign the transaction.
	ScriptUsage AttributeUsage = 0x20

	// VoteUsage carries a vote.
	VoteUsage AttributeUsage = 0x30

	// DescriptionURLUsage carries an url that describes the transaction.
	DescriptionURLUsage AttributeUsage = 0x81

	// DescriptionUsage carries a description of the transaction.
	DescriptionUsage AttributeUsage = 0x90

	// Hash1Usage is the first of the 15 free hash slots (0xa1-0xaf).
	Hash1Usage AttributeUsage = 0xa1

	// Hash15Usage is the last of the 15 free hash slots.
	Hash15Usage AttributeUsage = 0xaf

	// RemarkUsage is the first of the 16 free text slots (0xf0-0xff).
	RemarkUsage AttributeUsage = 0xf0

	// Remark15Usage is the last of the 16 free text slots.
	Remark15Usage AttributeUsage = 0xff
)

// MaxAttributeDataLength is the maximum payload size of variable length attributes.
const MaxAttributeDataLength = 65535

type attributeEncoding uint8

const (
	attributeEncodingUnknown attributeEncoding = iota
	attributeEncodingHash256
	attributeEncodingHash160
	attributeEncodingShortBytes
	attributeEncodingVarBytes
)

func (a AttributeUsage) encoding() attributeEncoding {
	switch {
	case a == ContractHashUsage, a == ECDH02Usage, a == ECDH03Usage, a == VoteUsage, a >= Hash1Usage && a <= Hash15Usage:
		return attributeEncodingHash256
	case a == ScriptUsage:
		return attributeEncodingHash160
	case a == DescriptionURLUsage:
		return attributeEncodingShortBytes
	case a == DescriptionUsage, a >= RemarkUsage:
		return attributeEncodingVarBytes
	default:
		return attributeEncodingUnknown
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Attribute ////////////////////////////////////////////////////////////////////////////////////////////////////

// Attribute is a tagged payload that is attached to a Transaction.
type Attribute struct {
	usage AttributeUsage
	data  []byte
}

// NewAttribute creates an Attribute and checks that the payload fits the encoding of its usage.
func NewAttribute(usage AttributeUsage, data []byte) (*Attribute, error) {
	if err := checkAttributeData(usage, data); err != nil {
		return nil, err
	}

	return &Attribute{
		usage: usage,
		data:  append([]byte{}, data...),
	}, nil
}

// NewRemarkAttribute creates a remark Attribute. Its payload is the text prefixed with its own VarInt length, which
// comes on top of the length prefix of the attribute encoding.
func NewRemarkAttribute(remark string) (*Attribute, error) {
	return NewAttribute(RemarkUsage, append(codec.EncodeVarInt(uint64(len(remark))), remark...))
}

// AttributeFromBytes unmarshals an Attribute from a sequence of bytes.
func AttributeFromBytes(bytes []byte) (attribute *Attribute, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	if attribute, err = AttributeFromMarshalUtil(marshalUtil); err != nil {
		err = xerrors.Errorf("failed to parse Attribute from MarshalUtil: %w", err)
		return
	}
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// AttributeFromMarshalUtil unmarshals an Attribute using a MarshalUtil (for easier unmarshaling).
func AttributeFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (attribute *Attribute, err error) {
	usageByte, err := marshalUtil.ReadByte()
	if err != nil {
		err = xerrors.Errorf("failed to parse AttributeUsage (%v): %w", err, ErrMalformedEncoding)
		return
	}

	attribute = &Attribute{usage: AttributeUsage(usageByte)}
	switch attribute.usage.encoding() {
	case attributeEncodingHash256:
		attribute.data, err = codec.ReadFixedBytes(marshalUtil, Uint256Length)
	case attributeEncodingHash160:
		attribute.data, err = codec.ReadFixedBytes(marshalUtil, ScriptHashLength)
	case attributeEncodingShortBytes:
		var length byte
		if length, err = marshalUtil.ReadByte(); err != nil {
			err = xerrors.Errorf("failed to parse Attribute length (%v): %w", err, ErrMalformedEncoding)
			return nil, err
		}
		attribute.data, err = codec.ReadFixedBytes(marshalUtil, int(length))
	case attributeEncodingVarBytes:
		attribute.data, err = codec.ReadVarBytes(marshalUtil, MaxAttributeDataLength)
	default:
		return nil, xerrors.Errorf("unsupported AttributeUsage 0x%02x: %w", usageByte, ErrMalformedEncoding)
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to parse data of Attribute with usage 0x%02x: %w", usageByte, err)
	}

	return attribute, nil
}

// Usage returns the tag of the Attribute.
func (a *Attribute) Usage() AttributeUsage {
	return a.usage
}

// Data returns the payload of the Attribute.
func (a *Attribute) Data() []byte {
	return a.data
}

// Bytes returns a marshaled version of the Attribute.
func (a *Attribute) Bytes() []byte {
	marshalUtil := marshalutil.New(1 + codec.VarIntSize(uint64(len(a.data))) + len(a.data))
	marshalUtil.WriteByte(byte(a.usage))

	switch a.usage.encoding() {
	case attributeEncodingShortBytes:
		marshalUtil.WriteByte(byte(len(a.data)))
		marshalUtil.WriteBytes(a.data)
	case attributeEncodingVarBytes:
		codec.WriteVarBytes(marshalUtil, a.data)
	default:
		marshalUtil.WriteBytes(a.data)
	}

	return marshalUtil.Bytes()
}

// String returns a human readable version of the Attribute.
func (a *Attribute) String() string {
	return stringify.Struct("Attribute",
		stringify.StructField("Usage", byte(a.usage)),
		stringify.StructField("Data", hex.EncodeToString(a.data)),
	)
}

func checkAttributeData(usage AttributeUsage, data []byte) error {
	switch usage.encoding() {
	case attributeEncodingHash256:
		if len(data) != Uint256Length {
			return xerrors.Errorf("attribute 0x%02x requires %d bytes but got %d: %w", byte(usage), Uint256Length, len(data), ErrMalformedEncoding)
		}
	case attributeEncodingHash160:
		if len(data) != ScriptHashLength {
			return xerrors.Errorf("attribute 0x%02x requires %d bytes but got %d: %w", byte(usage), ScriptHashLength, len(data), ErrMalformedEncoding)
		}
	case attributeEncodingShortBytes:
		if len(data) > 0xff {
			return xerrors.Errorf("attribute 0x%02x data exceeds 255 bytes: %w", byte(usage), ErrMalformedEncoding)
		}
	case attributeEncodingVarBytes:
		if len(data) > MaxAttributeDataLength {
			return xerrors.Errorf("attribute 0x%02x data exceeds %d bytes: %w", byte(usage), MaxAttributeDataLength, ErrMalformedEncoding)
		}
	default:
		return xerrors.Errorf("unsupported AttributeUsage 0x%02x: %w", byte(usage), ErrMalformedEncoding)
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

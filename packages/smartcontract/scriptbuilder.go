// Package smartcontract assembles the virtual machine scripts that invocation transactions run.
package smartcontract

import (
	"encoding/hex"
	"math/big"

	"github.com/cityofzion/neon-go/packages/binary/codec"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
	"github.com/iotaledger/hive.go/marshalutil"
	"golang.org/x/xerrors"
)

// ErrUnsupportedParameter is returned if an argument can not be pushed onto the stack.
var ErrUnsupportedParameter = xerrors.New("unsupported parameter")

// ScriptBuilder emits opcodes and push instructions into a script.
type ScriptBuilder struct {
	marshalUtil *marshalutil.MarshalUtil
}

// NewScriptBuilder creates an empty ScriptBuilder.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{
		marshalUtil: marshalutil.New(),
	}
}

// Emit appends an opcode followed by its raw operand.
func (s *ScriptBuilder) Emit(op OpCode, operand ...byte) *ScriptBuilder {
	s.marshalUtil.WriteByte(byte(op))
	s.marshalUtil.WriteBytes(operand)

	return s
}

// EmitPushBytes pushes a byte array with the shortest push instruction.
func (s *ScriptBuilder) EmitPushBytes(data []byte) *ScriptBuilder {
	switch length := len(data); {
	case length <= int(PUSHBYTES75):
		s.marshalUtil.WriteByte(byte(length))
	case length <= 0xff:
		s.marshalUtil.WriteByte(byte(PUSHDATA1))
		s.marshalUtil.WriteByte(byte(length))
	case length <= 0xffff:
		s.marshalUtil.WriteByte(byte(PUSHDATA2))
		s.marshalUtil.WriteUint16(uint16(length))
	default:
		s.marshalUtil.WriteByte(byte(PUSHDATA4))
		s.marshalUtil.WriteUint32(uint32(length))
	}
	s.marshalUtil.WriteBytes(data)

	return s
}

// EmitPushString pushes the UTF-8 bytes of a string.
func (s *ScriptBuilder) EmitPushString(value string) *ScriptBuilder {
	return s.EmitPushBytes([]byte(value))
}

// EmitPushBool pushes a boolean.
func (s *ScriptBuilder) EmitPushBool(value bool) *ScriptBuilder {
	if value {
		return s.Emit(PUSHT)
	}

	return s.Emit(PUSHF)
}

// EmitPushInt pushes an integer. Small values use the dedicated opcodes, everything else is pushed as little endian
// two's complement byte array.
func (s *ScriptBuilder) EmitPushInt(value *big.Int) *ScriptBuilder {
	switch {
	case value.Sign() == 0:
		return s.Emit(PUSH0)
	case value.IsInt64() && value.Int64() == -1:
		return s.Emit(PUSHM1)
	case value.Sign() > 0 && value.Cmp(big.NewInt(16)) <= 0:
		return s.Emit(PUSH1 - 1 + OpCode(value.Int64()))
	default:
		return s.EmitPushBytes(twosComplementLE(value))
	}
}

// EmitPush pushes a Go value. Supported are bool, integers, *big.Int, string, []byte, ledgerstate.ScriptHash,
// ledgerstate.Fixed8 and []interface{} (pushed as a packed array).
func (s *ScriptBuilder) EmitPush(value interface{}) (*ScriptBuilder, error) {
	switch typedValue := value.(type) {
	case nil:
		s.EmitPushBool(false)
	case bool:
		s.EmitPushBool(typedValue)
	case int:
		s.EmitPushInt(big.NewInt(int64(typedValue)))
	case int64:
		s.EmitPushInt(big.NewInt(typedValue))
	case uint64:
		s.EmitPushInt(new(big.Int).SetUint64(typedValue))
	case *big.Int:
		s.EmitPushInt(typedValue)
	case ledgerstate.Fixed8:
		s.EmitPushInt(big.NewInt(int64(typedValue)))
	case string:
		s.EmitPushString(typedValue)
	case []byte:
		s.EmitPushBytes(typedValue)
	case ledgerstate.ScriptHash:
		s.EmitPushBytes(typedValue.Bytes())
	case []interface{}:
		return s.EmitPushArray(typedValue)
	default:
		return nil, xerrors.Errorf("can not push %T: %w", value, ErrUnsupportedParameter)
	}

	return s, nil
}

// EmitPushArray pushes the elements in reverse order followed by their count and PACK.
func (s *ScriptBuilder) EmitPushArray(elements []interface{}) (*ScriptBuilder, error) {
	for i := len(elements) - 1; i >= 0; i-- {
		if _, err := s.EmitPush(elements[i]); err != nil {
			return nil, xerrors.Errorf("failed to push array element %d: %w", i, err)
		}
	}
	s.EmitPushInt(big.NewInt(int64(len(elements))))

	return s.Emit(PACK), nil
}

// EmitAppCall calls a deployed contract. A nil args pushes false, an empty operation is omitted.
func (s *ScriptBuilder) EmitAppCall(scriptHash ledgerstate.ScriptHash, operation string, args []interface{}, useTailCall bool) (*ScriptBuilder, error) {
	if args == nil {
		s.EmitPushBool(false)
	} else if _, err := s.EmitPushArray(args); err != nil {
		return nil, err
	}
	if operation != "" {
		s.EmitPushString(operation)
	}

	op := APPCALL
	if useTailCall {
		op = TAILCALL
	}

	return s.Emit(op, scriptHash.Bytes()...), nil
}

// EmitSysCall calls an interop service by name.
func (s *ScriptBuilder) EmitSysCall(api string) *ScriptBuilder {
	marshalUtil := marshalutil.New()
	codec.WriteVarString(marshalUtil, api)

	return s.Emit(SYSCALL, marshalUtil.Bytes()...)
}

// Bytes returns the assembled script.
func (s *ScriptBuilder) Bytes() []byte {
	return s.marshalUtil.Bytes()
}

// String returns the hex representation of the assembled script.
func (s *ScriptBuilder) String() string {
	return hex.EncodeToString(s.Bytes())
}

func twosComplementLE(value *big.Int) []byte {
	bitLength := value.BitLen()
	byteLength := bitLength/8 + 1

	encoded := new(big.Int).Set(value)
	if value.Sign() < 0 {
		encoded.Add(encoded, new(big.Int).Lsh(big.NewInt(1), uint(byteLength*8)))
	}

	bigEndian := encoded.FillBytes(make([]byte, byteLength))
	littleEndian := make([]byte, byteLength)
	for i, b := range bigEndian {
		littleEndian[byteLength-1-i] = b
	}

	return littleEndian
}

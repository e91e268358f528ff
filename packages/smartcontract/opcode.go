package smartcontract

// OpCode is an instruction of the NEO virtual machine.
type OpCode byte

// OpCodes emitted by the ScriptBuilder.
const (
	PUSH0       OpCode = 0x00
	PUSHBYTES75 OpCode = 0x4b
	PUSHDATA1   OpCode = 0x4c
	PUSHDATA2   OpCode = 0x4d
	PUSHDATA4   OpCode = 0x4e
	PUSHM1      OpCode = 0x4f
	PUSH1       OpCode = 0x51
	PUSH16      OpCode = 0x60
	NOP         OpCode = 0x61
	APPCALL     OpCode = 0x67
	TAILCALL    OpCode = 0x69
	SYSCALL     OpCode = 0x68
	PACK        OpCode = 0xc1

	// PUSHF and PUSHT are aliases that push the boolean values.
	PUSHF = PUSH0
	PUSHT = PUSH1
)

package insn

import "fmt"

// Represents the kind of operand (Register, immediate, etc)
type OperandKind uint

const (
	OperandKind_Immediate OperandKind = iota
	OperandKind_Register
	OperandKind_Memory
)

func (o OperandKind) String() string {
	switch o {
	case OperandKind_Immediate:
		return "Immediate"
	case OperandKind_Register:
		return "Register"
	case OperandKind_Memory:
		return "Memory"
	}

	panic("unreachable")
}

// Operand is the value of an instruction operand. It is implemented only by
// ImmediateOperand, RegisterOperand and MemoryOperand, so encoders type switch
// over those three and treat anything else (nil included) as an encoding error.
type Operand interface {
	Kind() OperandKind
	String() string

	isOperand()
}

// Immediate operand value
type ImmediateOperand uint32

// Register operand value
type RegisterOperand Register

// AddressingMode selects how a memory operand computes its address
type AddressingMode uint

const (
	// Address is base register plus signed index, base register not updated
	AddressingMode_Offset AddressingMode = iota
)

func (m AddressingMode) String() string {
	switch m {
	case AddressingMode_Offset:
		return "offset"
	}

	return fmt.Sprintf("AddressingMode(%d)", uint(m))
}

// Memory operand value. The base register is passed to the encoder separately.
type MemoryOperand struct {
	Mode AddressingMode
	// Signed byte displacement. Its magnitude is encoded and its sign selects the U (add) bit
	Index int32
}

// Returns an immediate operand
func Imm(value uint32) Operand {
	return ImmediateOperand(value)
}

// Returns a register operand
func Reg(register Register) Operand {
	return RegisterOperand(register)
}

// Returns a memory operand
func Mem(mode AddressingMode, index int32) Operand {
	return MemoryOperand{Mode: mode, Index: index}
}

func (ImmediateOperand) Kind() OperandKind { return OperandKind_Immediate }
func (RegisterOperand) Kind() OperandKind  { return OperandKind_Register }
func (MemoryOperand) Kind() OperandKind    { return OperandKind_Memory }

func (o ImmediateOperand) String() string { return fmt.Sprintf("#%#x", uint32(o)) }
func (o RegisterOperand) String() string  { return Register(o).String() }
func (o MemoryOperand) String() string    { return fmt.Sprintf("[%v #%d]", o.Mode, o.Index) }

func (ImmediateOperand) isOperand() {}
func (RegisterOperand) isOperand()  {}
func (MemoryOperand) isOperand()    {}

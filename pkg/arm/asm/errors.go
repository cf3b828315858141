package asm

import "errors"

var (
	ErrSyntax          = errors.New("syntax error")
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
	ErrOperand         = errors.New("invalid operand")
	ErrOutOfRange      = errors.New("immediate out of range")
	ErrUnreachable     = errors.New("branch target out of reach")
	ErrUnknownLabel    = errors.New("unknown label")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrUnknownISA      = errors.New("unknown instruction set")
	ErrMisaligned      = errors.New("misaligned address")
	ErrEncoding        = errors.New("instruction not encodable")
)

package insn

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Manu343726/armemit/pkg/utils"
)

// Register is the index of an ARM core register as encoded in instruction fields
type Register uint8

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	FP = R11
	IP = R12
	SP = R13
	LR = R14
	PC = R15
)

var ErrUnknownRegister = errors.New("unknown register")

func (r Register) String() string {
	switch r {
	case SP:
		return "sp"
	case LR:
		return "lr"
	case PC:
		return "pc"
	}

	return "r" + strconv.Itoa(int(r))
}

// IsLow returns true for r0-r7, the only registers reachable from most 16 bit
// Thumb encodings
func (r Register) IsLow() bool {
	return r <= R7
}

// ParseRegister parses a core register name (r0-r15, fp, ip, sp, lr, pc), case insensitive
func ParseRegister(name string) (Register, error) {
	lower := strings.ToLower(strings.TrimSpace(name))

	switch lower {
	case "fp":
		return FP, nil
	case "ip":
		return IP, nil
	case "sp":
		return SP, nil
	case "lr":
		return LR, nil
	case "pc":
		return PC, nil
	}

	if index, found := strings.CutPrefix(lower, "r"); found {
		if value, err := strconv.ParseUint(index, 10, 8); err == nil && value <= uint64(R15) {
			return Register(value), nil
		}
	}

	return 0, utils.MakeError(ErrUnknownRegister, "'%v'", name)
}

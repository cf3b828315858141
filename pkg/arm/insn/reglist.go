package insn

import "github.com/Manu343726/armemit/pkg/utils"

// RegisterList is a multi-register transfer mask. Bit n selects register rn.
type RegisterList uint16

// RegisterListMask returns a list with registers r(from) to r(from+length-1)
// set, merged with the extra bits (for example 1 << LR)
func RegisterListMask(from int, length int, extra RegisterList) RegisterList {
	return utils.RepeatBit(RegisterList(1), from, length) | extra
}

// Returns a list containing the given registers
func Registers(registers ...Register) RegisterList {
	var list RegisterList

	for _, r := range registers {
		list |= 1 << r
	}

	return list
}

// Has returns true if the register is in the list
func (l RegisterList) Has(r Register) bool {
	return l&(1<<r) != 0
}

// Without returns the list with the given registers removed
func (l RegisterList) Without(registers ...Register) RegisterList {
	return l &^ Registers(registers...)
}

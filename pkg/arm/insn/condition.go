package insn

import (
	"errors"
	"strings"

	"github.com/Manu343726/armemit/pkg/utils"
)

// ConditionCode is the 4 bit execution predicate of ARM and conditional Thumb
// instructions
type ConditionCode uint8

const (
	CC_EQ ConditionCode = iota // 0 - Equal (Z=1)
	CC_NE                      // 1 - Not Equal (Z=0)
	CC_CS                      // 2 - Carry Set (C=1, unsigned >=)
	CC_CC                      // 3 - Carry Clear (C=0, unsigned <)
	CC_MI                      // 4 - Minus (N=1)
	CC_PL                      // 5 - Plus (N=0)
	CC_VS                      // 6 - Overflow Set (V=1)
	CC_VC                      // 7 - Overflow Clear (V=0)
	CC_HI                      // 8 - Unsigned Higher (C=1 AND Z=0)
	CC_LS                      // 9 - Unsigned Lower or Same (C=0 OR Z=1)
	CC_GE                      // 10 - Signed Greater or Equal (N=V)
	CC_LT                      // 11 - Signed Less Than (N!=V)
	CC_GT                      // 12 - Signed Greater (Z=0 AND N=V)
	CC_LE                      // 13 - Signed Less or Equal (Z=1 OR N!=V)
	CC_AL                      // 14 - Always
	// Reserved value. ARM uses it for the unconditional instruction space
	// (immediate BLX, DMB, ...)
	CC_NV
)

var conditionNames = [...]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL", "NV",
}

var ErrUnknownCondition = errors.New("unknown condition code")

// String returns the condition code name
func (cc ConditionCode) String() string {
	if int(cc) < len(conditionNames) {
		return conditionNames[cc]
	}
	return "UNKNOWN"
}

// Opposite returns the condition that holds exactly when cc does not. AL and
// NV have no opposite and are returned unchanged.
func (cc ConditionCode) Opposite() ConditionCode {
	if cc >= CC_AL {
		return cc
	}

	return cc ^ 1
}

// ParseCondition parses a condition code name, case insensitive. HS and LO are
// accepted as aliases of CS and CC.
func ParseCondition(name string) (ConditionCode, error) {
	upper := strings.ToUpper(name)

	switch upper {
	case "HS":
		return CC_CS, nil
	case "LO":
		return CC_CC, nil
	}

	for i, conditionName := range conditionNames {
		if conditionName == upper {
			return ConditionCode(i), nil
		}
	}

	return CC_AL, utils.MakeError(ErrUnknownCondition, "'%v'", name)
}

package asm

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Manu343726/armemit/pkg/arm/insn"
	"github.com/Manu343726/armemit/pkg/utils"
)

// One source line: an optional label followed by an optional instruction
type statement struct {
	// 1-based position in the program
	line   int
	source string
	label  string

	// Table key, lower case, with the condition stripped and the .w suffix kept
	mnemonic string
	cond     insn.ConditionCode
	hasCond  bool
	operands []string

	address uint32
	// Code units, computed in the first pass
	size int
}

var commentMarkers = []string{";", "//", "@"}

func stripComment(line string) string {
	for _, marker := range commentMarkers {
		if i := strings.Index(line, marker); i >= 0 {
			line = line[:i]
		}
	}

	return strings.TrimSpace(line)
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		if r != '_' && r != '.' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}

	return true
}

// Splits operands on the commas outside of [] and {}
func splitOperands(text string) ([]string, error) {
	var (
		operands []string
		depth    int
		current  strings.Builder
	)

	flush := func() error {
		operand := strings.TrimSpace(current.String())
		if operand == "" {
			return utils.MakeError(ErrSyntax, "empty operand in '%v'", text)
		}

		operands = append(operands, operand)
		current.Reset()
		return nil
	}

	for _, r := range text {
		switch r {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth < 0 {
				return nil, utils.MakeError(ErrSyntax, "unbalanced '%c' in '%v'", r, text)
			}
		case ',':
			if depth == 0 {
				if err := flush(); err != nil {
					return nil, err
				}
				continue
			}
		}

		current.WriteRune(r)
	}

	if depth != 0 {
		return nil, utils.MakeError(ErrSyntax, "unbalanced brackets in '%v'", text)
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return operands, nil
}

// Resolves a mnemonic as written in the source (for example "bne.w") to its
// table key ("b.w") and condition
func resolveMnemonic[T insn.Unit](table encoderTable[T], mnemonic string) (string, insn.ConditionCode, bool, error) {
	name := strings.ToLower(mnemonic)
	base, wide := strings.CutSuffix(name, ".w")

	key := func(base string) string {
		if wide {
			return base + ".w"
		}
		return base
	}

	if _, found := table[key(base)]; found {
		return key(base), insn.CC_AL, false, nil
	}

	if len(base) > 2 {
		if cond, err := insn.ParseCondition(base[len(base)-2:]); err == nil {
			if encoder, found := table[key(base[:len(base)-2])]; found {
				if !encoder.conditional {
					return "", 0, false, utils.MakeError(ErrSyntax, "'%v' cannot be conditional", mnemonic)
				}

				// 0xF selects the unconditional instruction space
				if cond == insn.CC_NV {
					return "", 0, false, utils.MakeError(ErrSyntax, "'%v': condition nv is not allowed", mnemonic)
				}

				return key(base[:len(base)-2]), cond, true, nil
			}
		}
	}

	return "", 0, false, utils.MakeError(ErrUnknownMnemonic, "'%v'", mnemonic)
}

// Parses one source line. Returns nil for blank and comment only lines.
func parseStatement[T insn.Unit](table encoderTable[T], line int, source string) (*statement, error) {
	text := stripComment(source)
	if text == "" {
		return nil, nil
	}

	result := &statement{
		line:   line,
		source: strings.TrimSpace(source),
		cond:   insn.CC_AL,
	}

	if label, rest, found := strings.Cut(text, ":"); found && isIdentifier(strings.TrimSpace(label)) {
		result.label = strings.TrimSpace(label)
		text = strings.TrimSpace(rest)
	}

	if text == "" {
		return result, nil
	}

	mnemonic, rest := text, ""
	if space := strings.IndexFunc(text, unicode.IsSpace); space >= 0 {
		mnemonic, rest = text[:space], text[space+1:]
	}

	var err error

	result.mnemonic, result.cond, result.hasCond, err = resolveMnemonic(table, mnemonic)
	if err != nil {
		return nil, err
	}

	result.operands, err = splitOperands(rest)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *statement) expectOperands(count int) error {
	if len(s.operands) != count {
		return utils.MakeError(ErrSyntax, "'%v' expects %v operands, got %v", s.mnemonic, count, len(s.operands))
	}

	return nil
}

// Parses an integer literal (decimal, 0x hex, 0b binary), returning negative
// values in two's complement
func parseNumber(text string) (uint32, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(text), 0, 64)
	if err != nil {
		return 0, utils.MakeError(ErrOperand, "'%v' is not a number", text)
	}

	if value < -(1<<31) || value > 0xFFFFFFFF {
		return 0, utils.MakeError(ErrOutOfRange, "'%v' does not fit in 32 bits", text)
	}

	return uint32(value), nil
}

// Parses an immediate operand of the form #value
func parseImmediate(text string) (uint32, error) {
	value, found := strings.CutPrefix(strings.TrimSpace(text), "#")
	if !found {
		return 0, utils.MakeError(ErrOperand, "expected an immediate, got '%v'", text)
	}

	return parseNumber(value)
}

func parseRegister(text string) (insn.Register, error) {
	r, err := insn.ParseRegister(text)
	if err != nil {
		return 0, utils.MakeError(ErrOperand, "%w", err)
	}

	return r, nil
}

func parseLowRegister(text string) (insn.Register, error) {
	r, err := parseRegister(text)
	if err != nil {
		return 0, err
	}

	if !r.IsLow() {
		return 0, utils.MakeError(ErrOperand, "'%v' is not a low register (r0-r7)", text)
	}

	return r, nil
}

// Parses a memory operand: [rn] or [rn, #offset]
func parseMemory(text string) (insn.Register, int32, error) {
	inner, found := strings.CutPrefix(strings.TrimSpace(text), "[")
	if !found {
		return 0, 0, utils.MakeError(ErrOperand, "expected a memory operand, got '%v'", text)
	}

	inner, found = strings.CutSuffix(inner, "]")
	if !found {
		return 0, 0, utils.MakeError(ErrOperand, "expected a memory operand, got '%v'", text)
	}

	base, offset, hasOffset := strings.Cut(inner, ",")

	rn, err := parseRegister(base)
	if err != nil {
		return 0, 0, err
	}

	if !hasOffset {
		return rn, 0, nil
	}

	value, err := parseImmediate(offset)
	if err != nil {
		return 0, 0, err
	}

	return rn, int32(value), nil
}

// Splits the items of a {a, b-c} list
func listItems(text string) ([]string, error) {
	inner, found := strings.CutPrefix(strings.TrimSpace(text), "{")
	if found {
		inner, found = strings.CutSuffix(inner, "}")
	}

	if !found {
		return nil, utils.MakeError(ErrOperand, "expected a register list, got '%v'", text)
	}

	items := strings.Split(inner, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])

		if items[i] == "" {
			return nil, utils.MakeError(ErrOperand, "empty item in register list '%v'", text)
		}
	}

	return items, nil
}

// Parses a core register list such as {r0-r3, r12, lr}
func parseRegisterList(text string) (insn.RegisterList, error) {
	items, err := listItems(text)
	if err != nil {
		return 0, err
	}

	var list insn.RegisterList

	for _, item := range items {
		first, last, isRange := strings.Cut(item, "-")

		from, err := parseRegister(first)
		if err != nil {
			return 0, err
		}

		to := from
		if isRange {
			if to, err = parseRegister(last); err != nil {
				return 0, err
			}

			if to < from {
				return 0, utils.MakeError(ErrOperand, "descending register range '%v'", item)
			}
		}

		list |= insn.RegisterListMask(int(from), int(to-from)+1, 0)
	}

	return list, nil
}

func parseVectorRegister(text string) (uint8, error) {
	index, found := strings.CutPrefix(strings.ToLower(strings.TrimSpace(text)), "d")
	if found {
		if value, err := strconv.ParseUint(index, 10, 8); err == nil && value < 32 {
			return uint8(value), nil
		}
	}

	return 0, utils.MakeError(ErrOperand, "'%v' is not a double-word register (d0-d31)", text)
}

// Parses a contiguous double-word register list such as {d8-d15}, returning
// the first register and the register count
func parseVectorList(text string) (uint8, uint8, error) {
	items, err := listItems(text)
	if err != nil {
		return 0, 0, err
	}

	if len(items) != 1 {
		return 0, 0, utils.MakeError(ErrOperand, "'%v' must be a single register or range", text)
	}

	first, last, isRange := strings.Cut(items[0], "-")

	from, err := parseVectorRegister(first)
	if err != nil {
		return 0, 0, err
	}

	to := from
	if isRange {
		if to, err = parseVectorRegister(last); err != nil {
			return 0, 0, err
		}
	}

	if to < from || to-from >= 16 {
		return 0, 0, utils.MakeError(ErrOperand, "'%v' must list 1 to 16 ascending registers", text)
	}

	return from, to - from + 1, nil
}

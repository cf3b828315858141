// Package asm assembles short ARM and Thumb instruction sequences, such as
// tracepoint trampolines, from text.
//
// Branch targets are labels or absolute addresses. The assembler computes the
// relative immediates with package branch, rejects unreachable targets, and
// encodes every instruction with package insn.
package asm

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Manu343726/armemit/pkg/arm/insn"
	"github.com/Manu343726/armemit/pkg/utils"
)

type Options struct {
	// Reject immediates wider than their encoding field instead of truncating them
	Strict bool
	// Receives a debug record per instruction and a warning per truncated
	// immediate. Defaults to discarding everything.
	Logger *slog.Logger
}

type emitFunc[T insn.Unit] func(c *context, s *statement, buf []T) (int, error)

type encoder[T insn.Unit] struct {
	// Accepts a condition suffix
	conditional bool
	// Code units the statement will emit
	size func(s *statement) (int, error)
	emit emitFunc[T]
}

type encoderTable[T insn.Unit] map[string]*encoder[T]

func fixedSize(units int) func(s *statement) (int, error) {
	return func(*statement) (int, error) {
		return units, nil
	}
}

// Line is an assembled source line
type Line struct {
	// 1-based position in the program
	Number  int
	Address uint32
	Label   string
	Source  string
	// Code units emitted by the line, starting at Offset
	Offset int
	Count  int
}

// Assembled is the output of the assembler. Arm holds the words of ARM
// programs and Thumb the half-words of Thumb programs.
type Assembled struct {
	ISA    insn.ISA
	Origin uint32
	Arm    []uint32
	Thumb  []uint16
	Lines  []Line
}

// Returns the code size in bytes
func (a *Assembled) Size() int {
	return 4*len(a.Arm) + 2*len(a.Thumb)
}

// Bytes returns the code in memory order: little-endian units, with Thumb-2
// wide instructions high half-word first
func (a *Assembled) Bytes() []byte {
	result := make([]byte, 0, a.Size())

	for _, word := range a.Arm {
		result = binary.LittleEndian.AppendUint32(result, word)
	}

	for _, halfword := range a.Thumb {
		result = binary.LittleEndian.AppendUint16(result, halfword)
	}

	return result
}

// Units returns the code units of a line formatted as hex
func (a *Assembled) Units(line Line) string {
	if a.ISA == insn.ISA_Arm {
		return utils.FormatUnits(a.Arm[line.Offset : line.Offset+line.Count])
	}

	return utils.FormatUnits(a.Thumb[line.Offset : line.Offset+line.Count])
}

// Assemble assembles a program
func Assemble(program *Program, options Options) (*Assembled, error) {
	isa, err := ParseISA(program.ISA)
	if err != nil {
		return nil, err
	}

	return AssembleLines(isa, program.Origin, program.Instructions, options)
}

// AssembleLines assembles source lines for the given instruction set, placing
// the first instruction at origin
func AssembleLines(isa insn.ISA, origin uint32, source []string, options Options) (*Assembled, error) {
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	result := &Assembled{
		ISA:    isa,
		Origin: origin,
	}

	var err error

	switch isa {
	case insn.ISA_Arm:
		if origin%4 != 0 {
			return nil, utils.MakeError(ErrMisaligned, "ARM origin %#x is not word aligned", origin)
		}

		result.Arm, result.Lines, err = assemble(armEncoders, isa, origin, source, options)
	case insn.ISA_Thumb:
		if origin%2 != 0 {
			return nil, utils.MakeError(ErrMisaligned, "Thumb origin %#x is not half-word aligned", origin)
		}

		result.Thumb, result.Lines, err = assemble(thumbEncoders, isa, origin, source, options)
	default:
		return nil, utils.MakeError(ErrUnknownISA, "%v", isa)
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

func lineError(s *statement, err error) error {
	return fmt.Errorf("line %d '%s': %w", s.line, s.source, err)
}

func assemble[T insn.Unit](table encoderTable[T], isa insn.ISA, origin uint32, source []string, options Options) ([]T, []Line, error) {
	unitBytes := uint32(utils.Sizeof[T]())
	labels := make(map[string]uint32)
	statements := make([]*statement, 0, len(source))
	address := origin
	total := 0

	// Addresses and labels
	for i, text := range source {
		s, err := parseStatement(table, i+1, text)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d '%s': %w", i+1, strings.TrimSpace(text), err)
		}

		if s == nil {
			continue
		}

		s.address = address

		if s.label != "" {
			if previous, found := labels[s.label]; found {
				return nil, nil, lineError(s, utils.MakeError(ErrDuplicateLabel, "'%v' already at %#x", s.label, previous))
			}

			labels[s.label] = address
		}

		if s.mnemonic != "" {
			if s.size, err = table[s.mnemonic].size(s); err != nil {
				return nil, nil, lineError(s, err)
			}
		}

		statements = append(statements, s)
		address += uint32(s.size) * unitBytes
		total += s.size
	}

	units := make([]T, total)
	lines := make([]Line, 0, len(statements))
	offset := 0

	// Encoding
	for _, s := range statements {
		lines = append(lines, Line{
			Number:  s.line,
			Address: s.address,
			Label:   s.label,
			Source:  s.source,
			Offset:  offset,
			Count:   s.size,
		})

		if s.mnemonic == "" {
			continue
		}

		c := &context{
			isa:     isa,
			options: options,
			labels:  labels,
			address: s.address,
			line:    s.line,
		}

		n, err := table[s.mnemonic].emit(c, s, units[offset:offset+s.size])
		if err != nil {
			return nil, nil, lineError(s, err)
		}

		if n != s.size {
			return nil, nil, lineError(s, utils.MakeError(ErrEncoding, "emitted %v code units, expected %v", n, s.size))
		}

		options.Logger.Debug("emitted instruction",
			"line", s.line,
			"address", utils.FormatUintHex(uint64(s.address), 8),
			"units", utils.FormatUnits(units[offset:offset+n]),
			"source", s.source)

		offset += n
	}

	return units, lines, nil
}

// State shared by the encoders of a statement
type context struct {
	isa     insn.ISA
	options Options
	labels  map[string]uint32
	// Address of the statement
	address uint32
	line    int
}

// Lifts the zero unit count encoders return on error
func encoded(n int) (int, error) {
	if n == 0 {
		return 0, ErrEncoding
	}

	return n, nil
}

// Resolves a branch target: a label or an absolute address
func (c *context) target(text string) (uint32, error) {
	name := strings.TrimSpace(text)

	if address, found := c.labels[name]; found {
		return address, nil
	}

	if isIdentifier(name) {
		return 0, utils.MakeError(ErrUnknownLabel, "'%v'", name)
	}

	return parseNumber(name)
}

// Checks that value fits in an unsigned field. In strict mode wider values are
// an error, otherwise they are truncated by the encoder.
func (c *context) fit(value uint32, width int, operand string) (uint32, error) {
	if value <= utils.AllOnes[uint32](width) {
		return value, nil
	}

	if c.options.Strict {
		return 0, utils.MakeError(ErrOutOfRange, "'%v' does not fit in %v bits", operand, width)
	}

	c.options.Logger.Warn("immediate truncated",
		"line", c.line,
		"operand", operand,
		"bits", width,
		"encoded", value&utils.AllOnes[uint32](width))

	return value, nil
}

// Checks a byte offset that the instruction stores divided by scale
func (c *context) scaled(value uint32, scale uint32, width int, operand string) (uint32, error) {
	if value%scale != 0 {
		return 0, utils.MakeError(ErrOperand, "'%v' is not a multiple of %v", operand, scale)
	}

	return c.fit(value/scale, width, operand)
}

func (c *context) immediate(text string, width int) (uint32, error) {
	value, err := parseImmediate(text)
	if err != nil {
		return 0, err
	}

	return c.fit(value, width, text)
}

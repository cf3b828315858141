package insn

import (
	"fmt"
	"strings"

	"github.com/Manu343726/armemit/pkg/utils"
)

// Instruction set of an encoding
type ISA uint

const (
	ISA_Arm ISA = iota
	ISA_Thumb
	ISA_ThumbWide
)

func (i ISA) String() string {
	switch i {
	case ISA_Arm:
		return "arm"
	case ISA_Thumb:
		return "thumb"
	case ISA_ThumbWide:
		return "thumb2"
	}

	panic("unreachable")
}

// Returns the instruction width in bits
func (i ISA) Bits() int {
	if i == ISA_Thumb {
		return 16
	}
	return 32
}

// Operand field of an instruction encoding
type Field struct {
	Name string
	// First bit of the field within the instruction
	Position int
	// Total bits of the field. Wider values are truncated during encoding
	Width int
}

// Returns the field bits set within an instruction word
func (f Field) Mask() uint32 {
	return encode(utils.AllOnes[uint32](f.Width), f.Width, f.Position)
}

// Layout documents the encoding of one instruction form
type Layout struct {
	Mnemonic    string
	ISA         ISA
	Description string
	// Every fixed bit of the instruction
	Opcode uint32
	// Operand fields, sorted by position
	Fields []Field
}

// Returns all the operand bits of the instruction
func (l *Layout) Mask() uint32 {
	var mask uint32

	for _, field := range l.Fields {
		mask |= field.Mask()
	}

	return mask
}

// Frame fields covering the whole instruction, with the fixed bits between
// operand fields named after their binary value
func (l *Layout) frameFields() []utils.AsciiFrameField {
	frame := make([]utils.AsciiFrameField, 0, 2*len(l.Fields)+1)
	fixed := func(from int, to int) {
		if to > from {
			frame = append(frame, utils.AsciiFrameField{
				Name:  utils.FormatUintBinary(uint64(bits(l.Opcode, from, to-1)), to-from),
				Begin: from,
				Width: to - from,
			})
		}
	}

	current := 0

	for _, field := range l.Fields {
		fixed(current, field.Position)
		frame = append(frame, utils.AsciiFrameField{
			Name:  field.Name,
			Begin: field.Position,
			Width: field.Width,
		})
		current = field.Position + field.Width
	}

	fixed(current, l.ISA.Bits())

	return frame
}

// Returns full documentation for the instruction encoding
func (l *Layout) Documentation(leftpad int) (string, error) {
	var builder strings.Builder
	leftpad_str := strings.Repeat(" ", leftpad)

	builder.WriteString(fmt.Sprintf("%v%v (%v, opcode %v)\n\n", leftpad_str, l.Mnemonic, l.ISA, utils.FormatUintHex(uint64(l.Opcode), l.ISA.Bits()/4)))
	builder.WriteString(fmt.Sprintf("%v  %v\n\n", leftpad_str, l.Description))

	frame, err := utils.AsciiFrame(l.frameFields(), l.ISA.Bits(), "bits", utils.AsciiFrameUnitLayout_RightToLeft, leftpad+2)
	if err != nil {
		return "", utils.MakeError(err, "instruction %v", l.Mnemonic)
	}

	builder.WriteString(frame)

	return builder.String(), nil
}

// Returns the layouts of an instruction set
func LayoutsOf(isa ISA) []*Layout {
	var result []*Layout

	for i := range Layouts {
		if Layouts[i].ISA == isa {
			result = append(result, &Layouts[i])
		}
	}

	return result
}

var (
	fieldCond     = Field{Name: "cond", Position: 28, Width: 4}
	fieldArmImm12 = Field{Name: "imm12", Position: 0, Width: 12}
	fieldArmRd    = Field{Name: "Rd", Position: 12, Width: 4}
	fieldArmRt    = Field{Name: "Rt", Position: 12, Width: 4}
	fieldArmRn    = Field{Name: "Rn", Position: 16, Width: 4}
	fieldArmRm    = Field{Name: "Rm", Position: 0, Width: 4}
	fieldImm8     = Field{Name: "imm8", Position: 0, Width: 8}
	fieldVd       = Field{Name: "Vd", Position: 12, Width: 4}
	fieldD        = Field{Name: "D", Position: 22, Width: 1}
	fieldOption   = Field{Name: "option", Position: 0, Width: 4}
	fieldS        = Field{Name: "S", Position: 26, Width: 1}
	fieldJ1       = Field{Name: "J1", Position: 13, Width: 1}
	fieldJ2       = Field{Name: "J2", Position: 11, Width: 1}
	fieldImm11    = Field{Name: "imm11", Position: 0, Width: 11}
	fieldImm10    = Field{Name: "imm10", Position: 16, Width: 10}
	fieldI        = Field{Name: "i", Position: 26, Width: 1}
	fieldImm3     = Field{Name: "imm3", Position: 12, Width: 3}
	fieldImm4     = Field{Name: "imm4", Position: 16, Width: 4}
	fieldWideRd   = Field{Name: "Rd", Position: 8, Width: 4}
	fieldWideRt   = Field{Name: "Rt", Position: 12, Width: 4}
	fieldWideRn   = Field{Name: "Rn", Position: 16, Width: 4}
)

// Encoding layouts of every instruction form emitted by this package
var Layouts = []Layout{
	// ARM
	{Mnemonic: "B", ISA: ISA_Arm, Opcode: ARM_B, Description: "Branch to PC + imm24 * 4",
		Fields: []Field{{Name: "imm24", Position: 0, Width: 24}, fieldCond}},
	{Mnemonic: "BL", ISA: ISA_Arm, Opcode: ARM_B | 1<<24, Description: "Branch with link to PC + imm24 * 4",
		Fields: []Field{{Name: "imm24", Position: 0, Width: 24}, fieldCond}},
	{Mnemonic: "BLX (immediate)", ISA: ISA_Arm, Opcode: ARM_B | 0xF<<28, Description: "Call Thumb code at PC + imm24 * 4 + H * 2",
		Fields: []Field{{Name: "imm24", Position: 0, Width: 24}, {Name: "H", Position: 24, Width: 1}}},
	{Mnemonic: "BLX (register)", ISA: ISA_Arm, Opcode: ARM_BLX, Description: "Call the address in Rm, switching to Thumb if its bit 0 is set",
		Fields: []Field{fieldArmRm, fieldCond}},
	{Mnemonic: "MOV (immediate)", ISA: ISA_Arm, Opcode: ARM_MOV | 1<<25, Description: "Rd = imm12",
		Fields: []Field{fieldArmImm12, fieldArmRd, fieldCond}},
	{Mnemonic: "MOV (register)", ISA: ISA_Arm, Opcode: ARM_MOV, Description: "Rd = Rm",
		Fields: []Field{fieldArmRm, fieldArmRd, fieldCond}},
	{Mnemonic: "MOVW", ISA: ISA_Arm, Opcode: ARM_MOVW, Description: "Rd = imm4:imm12",
		Fields: []Field{fieldArmImm12, fieldArmRd, fieldImm4, fieldCond}},
	{Mnemonic: "MOVT", ISA: ISA_Arm, Opcode: ARM_MOVT, Description: "Rd[31:16] = imm4:imm12",
		Fields: []Field{fieldArmImm12, fieldArmRd, fieldImm4, fieldCond}},
	{Mnemonic: "CMP (immediate)", ISA: ISA_Arm, Opcode: ARM_CMP, Description: "Update the flags with Rn - imm12",
		Fields: []Field{fieldArmImm12, fieldArmRn, fieldCond}},
	{Mnemonic: "BIC (immediate)", ISA: ISA_Arm, Opcode: ARM_BIC, Description: "Rd = Rn AND NOT imm12",
		Fields: []Field{fieldArmImm12, fieldArmRd, fieldArmRn, fieldCond}},
	{Mnemonic: "ADD (immediate)", ISA: ISA_Arm, Opcode: ARM_ADD | 1<<25, Description: "Rd = Rn + imm8, flags not updated",
		Fields: []Field{fieldImm8, fieldArmRd, fieldArmRn, fieldCond}},
	{Mnemonic: "PUSH (list)", ISA: ISA_Arm, Opcode: ARM_PUSH_A1, Description: "Store the listed registers below sp and decrement sp",
		Fields: []Field{{Name: "register_list", Position: 0, Width: 16}, fieldCond}},
	{Mnemonic: "PUSH (single)", ISA: ISA_Arm, Opcode: ARM_PUSH_A2, Description: "Store Rt at sp - 4 and decrement sp",
		Fields: []Field{fieldArmRt, fieldCond}},
	{Mnemonic: "POP (list)", ISA: ISA_Arm, Opcode: ARM_POP_A1, Description: "Load the listed registers from sp and increment sp",
		Fields: []Field{{Name: "register_list", Position: 0, Width: 16}, fieldCond}},
	{Mnemonic: "POP (single)", ISA: ISA_Arm, Opcode: ARM_POP_A2, Description: "Load Rt from sp and increment sp by 4",
		Fields: []Field{fieldArmRt, fieldCond}},
	{Mnemonic: "VPUSH", ISA: ISA_Arm, Opcode: ARM_VPUSH, Description: "Push imm8 / 2 double-word registers starting at D:Vd",
		Fields: []Field{fieldImm8, fieldVd, fieldD, fieldCond}},
	{Mnemonic: "VPOP", ISA: ISA_Arm, Opcode: ARM_VPOP, Description: "Pop imm8 / 2 double-word registers starting at D:Vd",
		Fields: []Field{fieldImm8, fieldVd, fieldD, fieldCond}},
	{Mnemonic: "LDREX", ISA: ISA_Arm, Opcode: ARM_LDREX, Description: "Exclusive load of Rt from [Rn]",
		Fields: []Field{fieldArmRt, fieldArmRn, fieldCond}},
	{Mnemonic: "STREX", ISA: ISA_Arm, Opcode: ARM_STREX, Description: "Exclusive store of Rt to [Rn], Rd = 0 on success",
		Fields: []Field{{Name: "Rt", Position: 0, Width: 4}, fieldArmRd, fieldArmRn, fieldCond}},
	{Mnemonic: "DMB", ISA: ISA_Arm, Opcode: ARM_DMB, Description: "Data memory barrier",
		Fields: []Field{fieldOption}},
	{Mnemonic: "MRS", ISA: ISA_Arm, Opcode: ARM_MRS, Description: "Rd = APSR",
		Fields: []Field{fieldArmRd, fieldCond}},
	{Mnemonic: "MSR", ISA: ISA_Arm, Opcode: ARM_MSR, Description: "APSR fields selected by mask = Rn",
		Fields: []Field{fieldArmRm, {Name: "mask", Position: 18, Width: 2}, fieldCond}},
	{Mnemonic: "STR (immediate)", ISA: ISA_Arm, Opcode: ARM_STR | 1<<24, Description: "Store Rt at Rn +/- imm12, U selects addition",
		Fields: []Field{fieldArmImm12, fieldArmRt, fieldArmRn, {Name: "U", Position: 23, Width: 1}, fieldCond}},

	// Thumb
	{Mnemonic: "B<cond>", ISA: ISA_Thumb, Opcode: uint32(THUMB_B), Description: "Conditional branch to PC + imm8 * 2",
		Fields: []Field{{Name: "imm8", Position: 0, Width: 8}, {Name: "cond", Position: 8, Width: 4}}},
	{Mnemonic: "BLX (register)", ISA: ISA_Thumb, Opcode: uint32(THUMB_BLX), Description: "Call the address in Rm, switching to ARM if its bit 0 is clear",
		Fields: []Field{{Name: "Rm", Position: 3, Width: 4}}},
	{Mnemonic: "MOV (register)", ISA: ISA_Thumb, Opcode: uint32(THUMB_MOV), Description: "D:Rd = Rm",
		Fields: []Field{{Name: "Rd", Position: 0, Width: 3}, {Name: "Rm", Position: 3, Width: 4}, {Name: "D", Position: 7, Width: 1}}},
	{Mnemonic: "CMP (immediate)", ISA: ISA_Thumb, Opcode: uint32(THUMB_CMP), Description: "Update the flags with Rn - imm8",
		Fields: []Field{{Name: "imm8", Position: 0, Width: 8}, {Name: "Rn", Position: 8, Width: 3}}},
	{Mnemonic: "PUSH", ISA: ISA_Thumb, Opcode: uint32(THUMB_PUSH_T1), Description: "Push r0-r7 as selected by the list, plus lr if M",
		Fields: []Field{{Name: "register_list", Position: 0, Width: 8}, {Name: "M", Position: 8, Width: 1}}},
	{Mnemonic: "POP", ISA: ISA_Thumb, Opcode: uint32(THUMB_POP), Description: "Pop r0-r7 as selected by the list, plus pc if P",
		Fields: []Field{{Name: "register_list", Position: 0, Width: 8}, {Name: "P", Position: 8, Width: 1}}},
	{Mnemonic: "STR (immediate)", ISA: ISA_Thumb, Opcode: uint32(THUMB_STR), Description: "Store Rt at Rn + imm5 * 4",
		Fields: []Field{{Name: "Rt", Position: 0, Width: 3}, {Name: "Rn", Position: 3, Width: 3}, {Name: "imm5", Position: 6, Width: 5}}},
	{Mnemonic: "ADD (sp plus immediate)", ISA: ISA_Thumb, Opcode: uint32(THUMB_ADD_SP), Description: "sp = sp + imm7 * 4",
		Fields: []Field{{Name: "imm7", Position: 0, Width: 7}}},

	// Thumb-2 wide
	{Mnemonic: "B.W", ISA: ISA_ThumbWide, Opcode: THUMB_BW | 1<<12, Description: "Branch to PC + S:I1:I2:imm10:imm11:'0'",
		Fields: []Field{fieldImm11, fieldJ2, fieldJ1, fieldImm10, fieldS}},
	{Mnemonic: "B<cond>.W", ISA: ISA_ThumbWide, Opcode: THUMB_BW, Description: "Conditional branch to PC + S:J2:J1:imm6:imm11:'0'",
		Fields: []Field{fieldImm11, fieldJ2, fieldJ1, {Name: "imm6", Position: 16, Width: 6}, {Name: "cond", Position: 22, Width: 4}, fieldS}},
	{Mnemonic: "BL", ISA: ISA_ThumbWide, Opcode: THUMB_BW | 1<<14 | 1<<12, Description: "Call PC + S:I1:I2:imm10:imm11:'0'",
		Fields: []Field{fieldImm11, fieldJ2, fieldJ1, fieldImm10, fieldS}},
	{Mnemonic: "BLX (immediate)", ISA: ISA_ThumbWide, Opcode: THUMB_BW | 1<<14, Description: "Call ARM code at Align(PC, 4) + S:I1:I2:imm10H:imm10L:'00'",
		Fields: []Field{{Name: "imm10L", Position: 1, Width: 10}, fieldJ2, fieldJ1, {Name: "imm10H", Position: 16, Width: 10}, fieldS}},
	{Mnemonic: "MOVW", ISA: ISA_ThumbWide, Opcode: THUMB_MOVW, Description: "Rd = imm4:i:imm3:imm8",
		Fields: []Field{fieldImm8, fieldWideRd, fieldImm3, fieldImm4, fieldI}},
	{Mnemonic: "MOVT", ISA: ISA_ThumbWide, Opcode: THUMB_MOVT, Description: "Rd[31:16] = imm4:i:imm3:imm8",
		Fields: []Field{fieldImm8, fieldWideRd, fieldImm3, fieldImm4, fieldI}},
	{Mnemonic: "CMP.W (immediate)", ISA: ISA_ThumbWide, Opcode: THUMB_CMPW, Description: "Update the flags with Rn - i:imm3:imm8",
		Fields: []Field{fieldImm8, fieldImm3, fieldWideRn, fieldI}},
	{Mnemonic: "BIC (immediate)", ISA: ISA_ThumbWide, Opcode: THUMB_BIC, Description: "Rd = Rn AND NOT i:imm3:imm8",
		Fields: []Field{fieldImm8, fieldWideRd, fieldImm3, fieldWideRn, fieldI}},
	{Mnemonic: "PUSH.W", ISA: ISA_ThumbWide, Opcode: THUMB_PUSH_T2, Description: "Push r0-r12 as selected by the list, plus lr if M",
		Fields: []Field{{Name: "register_list", Position: 0, Width: 13}, {Name: "M", Position: 14, Width: 1}}},
	{Mnemonic: "POP.W", ISA: ISA_ThumbWide, Opcode: THUMB_POPW, Description: "Pop r0-r12 as selected by the list, plus lr if M and pc if P",
		Fields: []Field{{Name: "register_list", Position: 0, Width: 13}, {Name: "M", Position: 14, Width: 1}, {Name: "P", Position: 15, Width: 1}}},
	{Mnemonic: "VPUSH", ISA: ISA_ThumbWide, Opcode: THUMB_VPUSH, Description: "Push imm8 / 2 double-word registers starting at D:Vd",
		Fields: []Field{fieldImm8, fieldVd, fieldD}},
	{Mnemonic: "VPOP", ISA: ISA_ThumbWide, Opcode: THUMB_VPOP, Description: "Pop imm8 / 2 double-word registers starting at D:Vd",
		Fields: []Field{fieldImm8, fieldVd, fieldD}},
	{Mnemonic: "LDREX", ISA: ISA_ThumbWide, Opcode: THUMB_LDREX, Description: "Exclusive load of Rt from [Rn + imm8 * 4]",
		Fields: []Field{fieldImm8, fieldWideRt, fieldWideRn}},
	{Mnemonic: "STREX", ISA: ISA_ThumbWide, Opcode: THUMB_STREX, Description: "Exclusive store of Rt to [Rn + imm8 * 4], Rd = 0 on success",
		Fields: []Field{fieldImm8, fieldWideRd, fieldWideRt, fieldWideRn}},
	{Mnemonic: "DMB", ISA: ISA_ThumbWide, Opcode: THUMB_DMB, Description: "Data memory barrier",
		Fields: []Field{fieldOption}},
	{Mnemonic: "MRS", ISA: ISA_ThumbWide, Opcode: THUMB_MRS, Description: "Rd = APSR",
		Fields: []Field{fieldWideRd}},
	{Mnemonic: "MSR", ISA: ISA_ThumbWide, Opcode: THUMB_MSR, Description: "APSR fields selected by mask = Rn",
		Fields: []Field{{Name: "mask", Position: 10, Width: 2}, fieldWideRn}},
}

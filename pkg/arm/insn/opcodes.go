package insn

// Opcode skeletons. Each value has every fixed bit of the instruction set and
// every operand field cleared; encoders OR the fields in.

// ARM (A32) instructions
const (
	ARM_B       uint32 = 0x0A000000 // B/BL A1, BLX (immediate) A2 with cond 0xF
	ARM_BLX     uint32 = 0x012FFF30 // BLX (register) A1
	ARM_MOV     uint32 = 0x01A00000 // MOV (register) A1, bit 25 selects MOV (immediate)
	ARM_MOVW    uint32 = 0x03000000
	ARM_MOVT    uint32 = 0x03400000
	ARM_CMP     uint32 = 0x03500000 // CMP (immediate) A1
	ARM_BIC     uint32 = 0x03C00000 // BIC (immediate) A1
	ARM_ADD     uint32 = 0x00800000 // ADD A1, bit 25 selects the immediate form
	ARM_PUSH_A1 uint32 = 0x092D0000 // STMDB sp!, {list}
	ARM_PUSH_A2 uint32 = 0x052D0004 // STR rt, [sp, #-4]!
	ARM_POP_A1  uint32 = 0x08BD0000 // LDMIA sp!, {list}
	ARM_POP_A2  uint32 = 0x049D0004 // LDR rt, [sp], #4
	ARM_VPUSH   uint32 = 0x0D2D0B00
	ARM_VPOP    uint32 = 0x0CBD0B00
	ARM_LDREX   uint32 = 0x01900F9F
	ARM_STREX   uint32 = 0x01800F90
	ARM_DMB     uint32 = 0xF57FF050
	ARM_MRS     uint32 = 0x010F0000
	ARM_MSR     uint32 = 0x0120F000 // MSR (register) A1
	ARM_STR     uint32 = 0x04000000 // STR (immediate) A1
)

// Thumb (T16) instructions
const (
	THUMB_B       uint16 = 0xD000 // B T1 (conditional)
	THUMB_BLX     uint16 = 0x4780 // BLX (register) T1
	THUMB_MOV     uint16 = 0x4600 // MOV (register) T1
	THUMB_CMP     uint16 = 0x2800 // CMP (immediate) T1
	THUMB_PUSH_T1 uint16 = 0xB400
	THUMB_POP     uint16 = 0xBC00 // POP T1
	THUMB_STR     uint16 = 0x6000 // STR (immediate) T1
	THUMB_ADD_SP  uint16 = 0xB000 // ADD sp, sp, #imm T2
)

// Thumb-2 wide (T32) instructions, first half-word in the upper 16 bits
const (
	THUMB_BW      uint32 = 0xF0008000 // B.W T3/T4, BL T1, BLX (immediate) T2 before bits 14 and 12
	THUMB_MOVW    uint32 = 0xF2400000
	THUMB_MOVT    uint32 = 0xF2C00000
	THUMB_CMPW    uint32 = 0xF1B00F00 // CMP (immediate) T2
	THUMB_BIC     uint32 = 0xF0200000 // BIC (immediate) T1
	THUMB_PUSH_T2 uint32 = 0xE92D0000 // STMDB sp!, {list}
	THUMB_POPW    uint32 = 0xE8BD0000 // LDMIA sp!, {list}
	THUMB_VPUSH   uint32 = 0xED2D0B00
	THUMB_VPOP    uint32 = 0xECBD0B00
	THUMB_LDREX   uint32 = 0xE8500F00
	THUMB_STREX   uint32 = 0xE8400000
	THUMB_DMB     uint32 = 0xF3BF8F50
	THUMB_MRS     uint32 = 0xF3EF8000
	THUMB_MSR     uint32 = 0xF3808000
)

// DMB option selecting all accesses, full system
const barrierFullSystem = 0xF

// MSR mask writing the nzcvq and g fields
const msrMaskFlags = 0b11

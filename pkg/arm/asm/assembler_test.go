package asm

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manu343726/armemit/pkg/arm/insn"
)

func TestAssembleLines_ThumbTrampoline(t *testing.T) {
	assembled, err := AssembleLines(insn.ISA_Thumb, 0x8000, []string{
		"push.w {r0-r12, lr}",
		"mrs r0, apsr",
		"mov32 r1, #0x12345678",
		"blx 0x9000             ; collector, ARM code",
		"msr apsr_nzcvqg, r0",
		"pop.w {r0-r12, lr}",
		"b.w 0x10000            // back to the original code",
	}, Options{})
	require.NoError(t, err)

	expected := []uint16{
		0xE92D, 0x5FFF,
		0xF3EF, 0x8000,
		0xF245, 0x6178, 0xF2C1, 0x2134,
		0xF000, 0xEFF6,
		0xF380, 0x8C00,
		0xE8BD, 0x5FFF,
		0xF007, 0xBFF0,
	}

	if diff := cmp.Diff(expected, assembled.Thumb); diff != "" {
		t.Errorf("code mismatch (-expected +got):\n%s", diff)
	}

	assert.Empty(t, assembled.Arm)
	assert.Equal(t, 2*len(expected), assembled.Size())
}

func TestAssembleLines_ThumbSpinLock(t *testing.T) {
	assembled, err := AssembleLines(insn.ISA_Thumb, 0x8000, []string{
		"lock:",
		"  ldrex r1, [r0]",
		"  cmp r1, #0",
		"  bne lock",
		"  strex r1, r2, [r0]",
		"  cmp r1, #0",
		"  bne lock",
		"",
		"  dmb sy",
	}, Options{})
	require.NoError(t, err)

	expected := []uint16{
		0xE850, 0x1F00,
		0x2900,
		0xD1FB,
		0xE840, 0x2100,
		0x2900,
		0xD1F7,
		0xF3BF, 0x8F5F,
	}

	if diff := cmp.Diff(expected, assembled.Thumb); diff != "" {
		t.Errorf("code mismatch (-expected +got):\n%s", diff)
	}

	expectedLines := []Line{
		{Number: 1, Address: 0x8000, Label: "lock", Source: "lock:", Offset: 0, Count: 0},
		{Number: 2, Address: 0x8000, Source: "ldrex r1, [r0]", Offset: 0, Count: 2},
		{Number: 3, Address: 0x8004, Source: "cmp r1, #0", Offset: 2, Count: 1},
		{Number: 4, Address: 0x8006, Source: "bne lock", Offset: 3, Count: 1},
		{Number: 5, Address: 0x8008, Source: "strex r1, r2, [r0]", Offset: 4, Count: 2},
		{Number: 6, Address: 0x800C, Source: "cmp r1, #0", Offset: 6, Count: 1},
		{Number: 7, Address: 0x800E, Source: "bne lock", Offset: 7, Count: 1},
		{Number: 9, Address: 0x8010, Source: "dmb sy", Offset: 8, Count: 2},
	}

	if diff := cmp.Diff(expectedLines, assembled.Lines); diff != "" {
		t.Errorf("lines mismatch (-expected +got):\n%s", diff)
	}

	assert.Equal(t, "e840 2100", assembled.Units(assembled.Lines[4]))
}

func TestAssembleLines_Arm(t *testing.T) {
	assembled, err := AssembleLines(insn.ISA_Arm, 0x10000, []string{
		"push {r0-r12, lr}",
		"mov r0, #0x10000",
		"blx r3",
		"pop {r0-r12, lr}",
		"str r0, [sp, #-4]",
		"push {lr}",
		"b 0x20000",
		"blx 0x20003",
		"movne r1, r2",
	}, Options{})
	require.NoError(t, err)

	expected := []uint32{
		0xE92D5FFF,
		0xE3A00801,
		0xE12FFF33,
		0xE8BD5FFF,
		0xE50D0004,
		0xE52DE004,
		0xEA003FF8,
		0xFB003FF7,
		0x11A01002,
	}

	if diff := cmp.Diff(expected, assembled.Arm); diff != "" {
		t.Errorf("code mismatch (-expected +got):\n%s", diff)
	}

	assert.Equal(t, "e92d5fff", assembled.Units(assembled.Lines[0]))
}

func TestAssembled_Bytes(t *testing.T) {
	thumb := &Assembled{ISA: insn.ISA_Thumb, Thumb: []uint16{0xE92D, 0x5FFF}}
	assert.Equal(t, []byte{0x2D, 0xE9, 0xFF, 0x5F}, thumb.Bytes())

	arm := &Assembled{ISA: insn.ISA_Arm, Arm: []uint32{0xE12FFF33}}
	assert.Equal(t, []byte{0x33, 0xFF, 0x2F, 0xE1}, arm.Bytes())
}

func TestAssembleLines_ThumbStackSizes(t *testing.T) {
	tests := []struct {
		source   string
		expected []uint16
	}{
		{source: "push {r4, lr}", expected: []uint16{0xB510}},
		{source: "push {r8, r9}", expected: []uint16{0xE92D, 0x0300}},
		{source: "push.w {r4, lr}", expected: []uint16{0xE92D, 0x4010}},
		{source: "pop {r4, pc}", expected: []uint16{0xBD10}},
		{source: "pop {r4, lr}", expected: []uint16{0xE8BD, 0x4010}},
		{source: "pop {r8-r12, pc}", expected: []uint16{0xE8BD, 0x9F00}},
		{source: "vpush {d8-d15}", expected: []uint16{0xED2D, 0x8B10}},
		{source: "vpop {d16-d31}", expected: []uint16{0xECFD, 0x0B20}},
		{source: "add sp, sp, #16", expected: []uint16{0xB004}},
		{source: "str r0, [r1, #4]", expected: []uint16{0x6048}},
		{source: "blx r3", expected: []uint16{0x4798}},
		{source: "mov r8, r0", expected: []uint16{0x4680}},
		{source: "bic r0, r0, #1", expected: []uint16{0xF020, 0x0001}},
		{source: "cmp.w r0, #0xab00ab00", expected: []uint16{0xF1B0, 0x2FAB}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assembled, err := AssembleLines(insn.ISA_Thumb, 0, []string{tt.source}, Options{Strict: true})
			require.NoError(t, err)

			if diff := cmp.Diff(tt.expected, assembled.Thumb); diff != "" {
				t.Errorf("code mismatch (-expected +got):\n%s", diff)
			}
		})
	}
}

func TestAssembleLines_Errors(t *testing.T) {
	tests := []struct {
		name     string
		isa      insn.ISA
		origin   uint32
		source   []string
		strict   bool
		expected error
	}{
		{name: "unknown mnemonic", isa: insn.ISA_Thumb, source: []string{"frob r0"}, expected: ErrUnknownMnemonic},
		{name: "unknown label", isa: insn.ISA_Thumb, source: []string{"b.w nowhere"}, expected: ErrUnknownLabel},
		{name: "duplicate label", isa: insn.ISA_Arm, source: []string{"a:", "a: dmb"}, expected: ErrDuplicateLabel},
		{name: "arm unreachable", isa: insn.ISA_Arm, source: []string{"b 0x4000000"}, expected: ErrUnreachable},
		{name: "thumb short branch unreachable", isa: insn.ISA_Thumb, origin: 0x8000, source: []string{"beq 0x9000"}, expected: ErrUnreachable},
		{name: "thumb wide conditional unreachable", isa: insn.ISA_Thumb, source: []string{"beq.w 0x200000"}, expected: ErrUnreachable},
		{name: "thumb blx unreachable", isa: insn.ISA_Thumb, source: []string{"blx 0x2000000"}, expected: ErrUnreachable},
		{name: "thumb blx misaligned", isa: insn.ISA_Thumb, source: []string{"blx 0x1002"}, expected: ErrMisaligned},
		{name: "arm misaligned target", isa: insn.ISA_Arm, source: []string{"b 0x1002"}, expected: ErrMisaligned},
		{name: "misaligned arm origin", isa: insn.ISA_Arm, origin: 2, source: []string{"dmb"}, expected: ErrMisaligned},
		{name: "misaligned thumb origin", isa: insn.ISA_Thumb, origin: 1, source: []string{"dmb"}, expected: ErrMisaligned},
		{name: "conditional thumb mov", isa: insn.ISA_Thumb, source: []string{"moveq r0, r1"}, expected: ErrSyntax},
		{name: "unconditional short branch", isa: insn.ISA_Thumb, source: []string{"b 0x100"}, expected: ErrSyntax},
		{name: "missing operand", isa: insn.ISA_Arm, source: []string{"mov r0"}, expected: ErrSyntax},
		{name: "unbalanced list", isa: insn.ISA_Arm, source: []string{"push {r0, r1"}, expected: ErrSyntax},
		{name: "arm immediate not rotatable", isa: insn.ISA_Arm, source: []string{"mov r0, #0x101"}, expected: ErrOutOfRange},
		{name: "thumb immediate not encodable", isa: insn.ISA_Thumb, source: []string{"cmp.w r0, #0x12345678"}, expected: ErrOutOfRange},
		{name: "strict movw", isa: insn.ISA_Thumb, source: []string{"movw r0, #0x10000"}, strict: true, expected: ErrOutOfRange},
		{name: "strict add", isa: insn.ISA_Arm, source: []string{"add r0, r0, #256"}, strict: true, expected: ErrOutOfRange},
		{name: "thumb str misaligned offset", isa: insn.ISA_Thumb, source: []string{"str r0, [r1, #3]"}, expected: ErrOperand},
		{name: "thumb str high register", isa: insn.ISA_Thumb, source: []string{"str r8, [r1]"}, expected: ErrOperand},
		{name: "thumb pop lr and pc", isa: insn.ISA_Thumb, source: []string{"pop {lr, pc}"}, expected: ErrOperand},
		{name: "arm branch never", isa: insn.ISA_Arm, origin: 0x8000, source: []string{"bnv 0x9000"}, expected: ErrSyntax},
		{name: "arm mov never", isa: insn.ISA_Arm, source: []string{"movnv r0, r1"}, expected: ErrSyntax},
		{name: "thumb wide branch never", isa: insn.ISA_Thumb, source: []string{"bnv.w 0x100"}, expected: ErrSyntax},
		{name: "thumb push single high register", isa: insn.ISA_Thumb, origin: 0x8000, source: []string{"push {r8}"}, expected: ErrOperand},
		{name: "thumb pop single high register", isa: insn.ISA_Thumb, origin: 0x8000, source: []string{"pop {r9}"}, expected: ErrOperand},
		{name: "thumb push.w single register", isa: insn.ISA_Thumb, source: []string{"push.w {r0}"}, expected: ErrOperand},
		{name: "thumb pop.w lr only", isa: insn.ISA_Thumb, source: []string{"pop.w {lr}"}, expected: ErrOperand},
		{name: "thumb push sp", isa: insn.ISA_Thumb, source: []string{"push {sp}"}, expected: ErrOperand},
		{name: "thumb mov immediate", isa: insn.ISA_Thumb, source: []string{"mov r0, #1"}, expected: ErrOperand},
		{name: "arm conditional blx immediate", isa: insn.ISA_Arm, source: []string{"blxeq 0x1000"}, expected: ErrOperand},
		{name: "arm ldrex offset", isa: insn.ISA_Arm, source: []string{"ldrex r0, [r1, #4]"}, expected: ErrOperand},
		{name: "dmb option", isa: insn.ISA_Arm, source: []string{"dmb ish"}, expected: ErrOperand},
		{name: "bad register", isa: insn.ISA_Arm, source: []string{"mov r16, r0"}, expected: ErrOperand},
		{name: "bad vector list", isa: insn.ISA_Arm, source: []string{"vpush {d15-d8}"}, expected: ErrOperand},
		{name: "unknown isa", isa: insn.ISA_ThumbWide, source: []string{"dmb"}, expected: ErrUnknownISA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AssembleLines(tt.isa, tt.origin, tt.source, Options{Strict: tt.strict})
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestAssembleLines_TruncatesWhenNotStrict(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	assembled, err := AssembleLines(insn.ISA_Thumb, 0, []string{"movw r0, #0x10001"}, Options{Logger: logger})
	require.NoError(t, err)

	assert.Equal(t, []uint16{0xF240, 0x0001}, assembled.Thumb)
	assert.Contains(t, logs.String(), "immediate truncated")
	assert.Contains(t, logs.String(), "emitted instruction")
}

func TestAssembleLines_ErrorsReportTheLine(t *testing.T) {
	_, err := AssembleLines(insn.ISA_Arm, 0, []string{"dmb", "; comment", "frob"}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3 'frob'")
}

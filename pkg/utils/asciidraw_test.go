package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsciiFrame_NoFields(t *testing.T) {
	fields := []AsciiFrameField{}

	actual, err := AsciiFrame(fields, 16, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`15            0
+-------------+
|  (unused)   |
+-------------+
 <- 16 bits -> 
`,
		actual)
}

func TestAsciiFrame_SingleField(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "first field",
			Begin: 0,
			Width: 16,
		},
	}

	actual, err := AsciiFrame(fields, 16, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`15            0
+-------------+
| first field |
+-------------+
 <- 16 bits -> 
`,
		actual)
}

func TestAsciiFrame_SingleField_NotFittingFullFrame(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "first field",
			Begin: 0,
			Width: 16,
		},
	}

	actual, err := AsciiFrame(fields, 32, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`31            15            0
+-------------+-------------+
|  (unused)   | first field |
+-------------+-------------+
 <- 16 bits -> <- 16 bits -> 
`,
		actual)
}

func TestAsciiFrame_SingleField_WithTextPadding(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "first field",
			Begin: 0,
			Width: 16,
		},
	}

	actual, err := AsciiFrame(fields, 16, "bits", AsciiFrameUnitLayout_RightToLeft, 4)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`    15            0
    +-------------+
    | first field |
    +-------------+
     <- 16 bits -> 
`,
		actual)
}

func TestAsciiFrame_AVeryLooooooongField(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "a very loooooooooong field",
			Begin: 0,
			Width: 16,
		},
	}

	actual, err := AsciiFrame(fields, 16, "bits", AsciiFrameUnitLayout_RightToLeft, 0)

	assert.NoError(t, err)

	assert.Equal(t, ""+
		`15                           0
+----------------------------+
| a very loooooooooong field |
+----------------------------+
 <-------- 16 bits ---------> 
`,
		actual)
}

func TestAsciiFrame_TwoConsecutiveFields(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "first field",
			Begin: 0,
			Width: 16,
		},
		{
			Name:  "second field",
			Begin: 16,
			Width: 16,
		},
	}

	actual, err := AsciiFrame(fields, 32, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`31             15            0
+--------------+-------------+
| second field | first field |
+--------------+-------------+
 <- 16 bits --> <- 16 bits -> 
`,
		actual)
}

func TestAsciiFrame_TwoConsecutiveFields_LeftToRight(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "first field",
			Begin: 0,
			Width: 16,
		},
		{
			Name:  "second field",
			Begin: 16,
			Width: 16,
		},
	}

	actual, err := AsciiFrame(fields, 32, "bits", AsciiFrameUnitLayout_LeftToRight, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`0             16             31
+-------------+--------------+
| first field | second field |
+-------------+--------------+
 <- 16 bits -> <- 16 bits --> 
`,
		actual)
}

func TestAsciiFrame_TwoFieldsWithAGap(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "first field",
			Begin: 0,
			Width: 16,
		},
		{
			Name:  "second field",
			Begin: 20,
			Width: 16,
		},
	}

	actual, err := AsciiFrame(fields, 36, "bits", AsciiFrameUnitLayout_LeftToRight, 0)
	assert.NoError(t, err)

	assert.Equal(t, ""+
		`0             16           20             35
+-------------+------------+--------------+
| first field |  (unused)  | second field |
+-------------+------------+--------------+
 <- 16 bits -> <- 4 bits -> <- 16 bits --> 
`,
		actual)
}

func TestAsciiFrame_OverlappingFields(t *testing.T) {
	fields := []AsciiFrameField{
		{
			Name:  "first field",
			Begin: 0,
			Width: 16,
		},
		{
			Name:  "second field",
			Begin: 8,
			Width: 16,
		},
	}

	_, err := AsciiFrame(fields, 32, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.ErrorIs(t, err, ErrAsciiFrame)
}

func TestAsciiFrame_ThumbConditionalBranch(t *testing.T) {
	// B<cond> T1: 1101 | cond | imm8
	fields := []AsciiFrameField{
		{Name: "imm8", Begin: 0, Width: 8},
		{Name: "cond", Begin: 8, Width: 4},
		{Name: "1101", Begin: 12, Width: 4},
	}

	actual, err := AsciiFrame(fields, 16, "bits", AsciiFrameUnitLayout_RightToLeft, 2)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(actual, "\n"), "\n")
	assert.Len(t, lines, 5)

	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "  "), line)
	}

	indices := lines[0]
	assert.True(t, strings.HasPrefix(strings.TrimSpace(indices), "15"), indices)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(indices), "0"), indices)

	body := strings.TrimSpace(lines[2])
	assert.True(t, strings.HasPrefix(body, "|"), body)
	assert.True(t, strings.HasSuffix(body, "|"), body)

	// Most significant field first
	opcode := strings.Index(body, "1101")
	cond := strings.Index(body, "cond")
	imm8 := strings.Index(body, "imm8")
	assert.True(t, opcode >= 0 && opcode < cond && cond < imm8, body)

	assert.Contains(t, lines[4], "<- 4 bits ->")
	assert.Contains(t, lines[4], "<- 8 bits ->")
}

func TestAsciiFrame_OverlappingInstructionFields(t *testing.T) {
	fields := []AsciiFrameField{
		{Name: "imm12", Begin: 0, Width: 12},
		{Name: "Rd", Begin: 8, Width: 4},
	}

	_, err := AsciiFrame(fields, 32, "bits", AsciiFrameUnitLayout_RightToLeft, 0)
	assert.ErrorIs(t, err, ErrAsciiFrame)
}

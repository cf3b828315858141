package asm

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Manu343726/armemit/pkg/arm/insn"
	"github.com/Manu343726/armemit/pkg/utils"
)

// Program is an instruction sequence file. Lines with immediates must be
// quoted, YAML reads " #" as the start of a comment.
//
//	isa: thumb
//	origin: 0x8000
//	instructions:
//	  - push.w {r0-r12, lr}
//	  - "mov32 r0, #0xdeadbeef"
//	  - blx 0x9000
//	  - pop.w {r0-r12, lr}
//	  - b.w 0x10040
type Program struct {
	ISA          string   `yaml:"isa"`
	Origin       uint32   `yaml:"origin"`
	Instructions []string `yaml:"instructions"`
}

// ParseISA parses the instruction set name of a program. Thumb programs mix
// 16 bit and Thumb-2 wide instructions.
func ParseISA(name string) (insn.ISA, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "arm", "a32":
		return insn.ISA_Arm, nil
	case "thumb", "thumb2", "t32":
		return insn.ISA_Thumb, nil
	}

	return 0, utils.MakeError(ErrUnknownISA, "'%v', expected arm or thumb", name)
}

// ParseProgram decodes a YAML program
func ParseProgram(data []byte) (*Program, error) {
	var program Program

	if err := yaml.Unmarshal(data, &program); err != nil {
		return nil, utils.MakeError(ErrSyntax, "%w", err)
	}

	if _, err := ParseISA(program.ISA); err != nil {
		return nil, err
	}

	return &program, nil
}

// LoadProgram reads and decodes a YAML program file
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	program, err := ParseProgram(data)
	if err != nil {
		return nil, utils.MakeError(err, "%v", path)
	}

	return program, nil
}

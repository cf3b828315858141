package emit

import (
	"fmt"
	"io"
	"os"

	"github.com/Manu343726/armemit/pkg/arm/asm"
	"github.com/Manu343726/armemit/pkg/arm/insn"
	"github.com/Manu343726/armemit/pkg/utils"
	"github.com/spf13/cobra"
)

var mov32Value uint32

var mov32Cmd = &cobra.Command{
	Use:   "mov32",
	Short: "Encode the MOVW/MOVT pair loading a 32 bit constant",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		isaName, _ := cmd.Flags().GetString("isa")
		regName, _ := cmd.Flags().GetString("reg")

		isa, err := asm.ParseISA(isaName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		rd, err := insn.ParseRegister(regName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := writeMov32(os.Stdout, isa, rd, mov32Value); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	},
}

func writeMov32(w io.Writer, isa insn.ISA, rd insn.Register, value uint32) error {
	low, high := insn.SplitConstant(value)
	var movw, movt string

	switch isa {
	case insn.ISA_Arm:
		var buf [2]uint32
		if insn.EmitArmMov32(buf[:], rd, value) == 0 {
			return fmt.Errorf("cannot encode mov32 %v, %#x", rd, value)
		}

		movw, movt = utils.FormatUnits(buf[:1]), utils.FormatUnits(buf[1:])
	default:
		var buf [2 * insn.ThumbWideUnits]uint16
		if insn.EmitThumbMov32(buf[:], rd, value) == 0 {
			return fmt.Errorf("cannot encode mov32 %v, %#x", rd, value)
		}

		movw, movt = utils.FormatUnits(buf[:2]), utils.FormatUnits(buf[2:])
	}

	fmt.Fprintf(w, "%-9s  movw %v, #%#x\n", movw, rd, low)
	fmt.Fprintf(w, "%-9s  movt %v, #%#x\n", movt, rd, high)
	return nil
}

func init() {
	mov32Cmd.Flags().String("isa", "arm", "Instruction set: arm or thumb")
	mov32Cmd.Flags().String("reg", "r0", "Destination register")
	mov32Cmd.Flags().Uint32Var(&mov32Value, "value", 0, "Constant to load")
	mov32Cmd.MarkFlagRequired("value")
}

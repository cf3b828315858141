package emit

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Manu343726/armemit/pkg/arm/asm"
	"github.com/Manu343726/armemit/pkg/arm/insn"
	"github.com/Manu343726/armemit/pkg/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const (
	Format_Hex     = "hex"
	Format_Binary  = "bin"
	Format_Listing = "listing"
)

var (
	colorAddr   = color.New(color.FgCyan)
	colorUnits  = color.New(color.FgMagenta)
	colorLabel  = color.New(color.FgGreen, color.Bold)
	colorSource = color.New(color.FgYellow)
)

var assembleCmd = &cobra.Command{
	Use:   "assemble file.yaml",
	Short: "Assemble an instruction sequence",
	Long: `Assembles the instruction sequence described by a YAML file:

  isa: thumb
  origin: 0x10000
  instructions:
    - "push.w {r0-r12, lr}"
    - "movw r1, #0x5678"
    - "blx 0x20000"

Output formats:
  hex      code units in hex, one line per instruction
  bin      raw little-endian bytes, as they would be laid out in memory
  listing  addresses, code units and source lines`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outputFile, _ := cmd.Flags().GetString("output")

		if code := runAssemble(args[0], outputFile); code != 0 {
			os.Exit(code)
		}
	},
}

// Returns the exit code of the command. The log and output files are closed
// before returning.
func runAssemble(path string, outputFile string) int {
	program, err := asm.LoadProgram(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		return 1
	}

	logger := newLogger()
	defer logger.Close()

	assembled, err := asm.Assemble(program, asm.Options{
		Strict: viper.GetBool("strict"),
		Logger: logger.Logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error assembling %v: %v\n", path, err)
		return 2
	}

	if !viper.GetBool("color") {
		color.NoColor = true
	}

	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
			return 1
		}
		defer output.Close()
	}

	format := viper.GetString("format")
	if format == Format_Binary && term.IsTerminal(int(output.Fd())) {
		logger.Warn("refusing to write binary output to a terminal, writing hex instead")
		format = Format_Hex
	}

	if err := write(output, assembled, format); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return 3
	}

	return 0
}

func write(w io.Writer, assembled *asm.Assembled, format string) error {
	switch format {
	case Format_Hex:
		return writeHex(w, assembled)
	case Format_Binary:
		_, err := w.Write(assembled.Bytes())
		return err
	case Format_Listing:
		return writeListing(w, assembled)
	default:
		return fmt.Errorf("unknown output format '%v'", format)
	}
}

func writeHex(w io.Writer, assembled *asm.Assembled) error {
	for _, line := range assembled.Lines {
		if line.Count == 0 {
			continue
		}

		if _, err := fmt.Fprintln(w, assembled.Units(line)); err != nil {
			return err
		}
	}

	return nil
}

func writeListing(w io.Writer, assembled *asm.Assembled) error {
	unitsWidth := 8
	if assembled.ISA != insn.ISA_Arm {
		unitsWidth = 9
	}

	for _, line := range assembled.Lines {
		label := ""
		if line.Label != "" {
			label = line.Label + ":"
		}

		source := line.Source
		if _, after, found := strings.Cut(source, ":"); found && line.Label != "" {
			source = strings.TrimSpace(after)
		}

		_, err := fmt.Fprintf(w, "%s  %s  %s %s\n",
			colorAddr.Sprint(utils.FormatUintHex(uint64(line.Address), 8)),
			colorUnits.Sprintf("%-*s", unitsWidth, assembled.Units(line)),
			colorLabel.Sprintf("%-12s", label),
			colorSource.Sprint(source))
		if err != nil {
			return err
		}
	}

	return nil
}

func init() {
	assembleCmd.Flags().StringP("format", "f", Format_Listing, "Output format: hex, bin or listing")
	assembleCmd.Flags().Bool("strict", false, "Reject immediates that do not fit their encoding field instead of truncating them")
	assembleCmd.Flags().Bool("color", true, "Colorize the listing")
	assembleCmd.Flags().StringP("output", "o", "", "Output file. If not specified, the code is dumped to stdout.")

	cobra.CheckErr(viper.BindPFlag("format", assembleCmd.Flags().Lookup("format")))
	cobra.CheckErr(viper.BindPFlag("strict", assembleCmd.Flags().Lookup("strict")))
	cobra.CheckErr(viper.BindPFlag("color", assembleCmd.Flags().Lookup("color")))
}

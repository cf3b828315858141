package tools

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Manu343726/armemit/pkg/arm/insn"
	"github.com/Manu343726/armemit/pkg/utils"
	"github.com/spf13/cobra"
)

var supportedModules = map[string]insn.ISA{
	"arm":    insn.ISA_Arm,
	"thumb":  insn.ISA_Thumb,
	"thumb2": insn.ISA_ThumbWide,
}

var docsCmd = &cobra.Command{
	Use:   "docs isa",
	Short: "Show instruction encoding documentation",
	Long: `Dumps the bit layout of every instruction encoding of an instruction set.
By default the tool dumps the documentation to stdout, but it can be redirected to a file using the --output flag.

Supported instruction sets:
` + strings.Join(utils.Map(utils.SortedKeys(supportedModules), func(module string) string { return "  " + module }), "\n"),
	Args:      cobra.MatchAll(cobra.OnlyValidArgs, cobra.ExactArgs(1)),
	ValidArgs: utils.SortedKeys(supportedModules),
	Run: func(cmd *cobra.Command, args []string) {
		outputFile, _ := cmd.Flags().GetString("output")

		if code := runDocs(supportedModules[args[0]], outputFile); code != 0 {
			os.Exit(code)
		}
	},
}

func runDocs(isa insn.ISA, outputFile string) int {
	output := io.Writer(os.Stdout)

	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
			return 1
		}
		defer file.Close()
		output = file
	}

	if err := writeDocs(output, isa); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating documentation: %v\n", err)
		return 2
	}

	return 0
}

func writeDocs(w io.Writer, isa insn.ISA) error {
	for _, layout := range insn.LayoutsOf(isa) {
		doc, err := layout.Documentation(0)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintln(w, doc); err != nil {
			return err
		}
	}

	return nil
}

func init() {
	ToolsCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringP("output", "o", "", "Output file. If not specified, the documentation is dumped to stdout.")
}

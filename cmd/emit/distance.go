package emit

import (
	"fmt"
	"io"
	"os"

	"github.com/Manu343726/armemit/pkg/arm/branch"
	"github.com/Manu343726/armemit/pkg/utils"
	"github.com/spf13/cobra"
)

type distanceMode struct {
	relative  func(from, to uint32) uint32
	reachable func(from, to uint32) bool
}

var distanceModes = map[string]distanceMode{
	"arm":          {branch.ArmBranchRelativeDistance, branch.ArmIsReachable},
	"thumb":        {branch.ThumbBranchRelativeDistance, branch.ThumbIsReachable},
	"thumb-to-arm": {branch.ThumbToArmBranchRelativeDistance, branch.ThumbToArmIsReachable},
}

var distanceFrom, distanceTo uint32

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Compute the immediate of a branch between two addresses",
	Long: `Prints the relative offset a branch at --from needs to reach --to, with the
pipeline bias already removed, and whether the branch can reach its target.

Modes:
  arm           ARM B, BL and BLX
  thumb         Thumb-2 B.W and BL
  thumb-to-arm  Thumb-2 BLX to ARM code`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("isa")

		mode, found := distanceModes[name]
		if !found {
			fmt.Fprintf(os.Stderr, "Error: unknown branch mode '%v', expected one of %v\n", name, utils.SortedKeys(distanceModes))
			os.Exit(1)
		}

		writeDistance(os.Stdout, mode, distanceFrom, distanceTo)
	},
}

func writeDistance(w io.Writer, mode distanceMode, from uint32, to uint32) {
	rel := mode.relative(from, to)

	fmt.Fprintf(w, "offset:    %v (%d)\n", utils.FormatUintHex(uint64(rel), 8), int32(rel))
	fmt.Fprintf(w, "reachable: %v\n", mode.reachable(from, to))
}

func init() {
	distanceCmd.Flags().String("isa", "arm", "Branch mode: arm, thumb or thumb-to-arm")
	distanceCmd.Flags().Uint32Var(&distanceFrom, "from", 0, "Address of the branch")
	distanceCmd.Flags().Uint32Var(&distanceTo, "to", 0, "Address of the target")
	distanceCmd.MarkFlagRequired("from")
	distanceCmd.MarkFlagRequired("to")
}

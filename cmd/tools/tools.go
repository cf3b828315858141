package tools

import (
	"github.com/spf13/cobra"
)

// ToolsCmd groups the armemit miscellaneous tools
var ToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "armemit miscellaneous tools",
}

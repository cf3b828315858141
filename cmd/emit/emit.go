package emit

import (
	"fmt"
	"os"

	"github.com/Manu343726/armemit/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EmitCmd groups the encoding commands
var EmitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Encode ARM and Thumb instructions",
}

func newLogger() *logging.Logger {
	logger, err := logging.New(logging.Settings{
		Level: viper.GetString("log.level"),
		File:  viper.GetString("log.file"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	return logger
}

func init() {
	EmitCmd.AddCommand(assembleCmd, distanceCmd, mov32Cmd)
}

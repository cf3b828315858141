package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Manu343726/armemit/cmd/emit"
	"github.com/Manu343726/armemit/cmd/tools"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "armemit",
	Short: "ARM and Thumb instruction encoder",
	Long: `armemit encodes the ARM (A32), Thumb (T16) and Thumb-2 (T32) instructions
needed to build tracepoint trampolines: branches, constant synthesis, stack
transfers, exclusive accesses, barriers and status register moves.

This CLI assembles short instruction sequences, computes branch offsets and
dumps the bit layout of every supported encoding.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(tools.ToolsCmd, emit.EmitCmd)
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.armemit.yaml)")
	RootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	RootCmd.PersistentFlags().String("log-file", "", "Also write JSON log records to this file")

	cobra.CheckErr(viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("log.file", RootCmd.PersistentFlags().Lookup("log-file")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".armemit" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".armemit")
	}

	// ARMEMIT_STRICT, ARMEMIT_LOG_LEVEL, ...
	viper.SetEnvPrefix("ARMEMIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

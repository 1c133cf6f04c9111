package pngtool

import (
	"fmt"
	"os"

	"git.handmade.network/hmn/pngscope/src/config"
	"git.handmade.network/hmn/pngscope/src/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

var RootCommand = &cobra.Command{
	Use:   "pngscope",
	Short: "Decode, inspect, store and view PNG files",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(config.Config.LogLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Usage()
	},
}

func init() {
	RootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output, including per-file timings")
}

// exitIfFailed ends the process with status 1 when any file failed.
func exitIfFailed(failed, total int) {
	if failed > 0 {
		logging.Warn().Int("failed", failed).Int("total", total).Msg("Some files could not be processed")
		os.Exit(1)
	}
}

func usageError(cmd *cobra.Command, msg string) {
	fmt.Fprintf(os.Stderr, "%s\n\n", msg)
	cmd.Usage()
	os.Exit(1)
}

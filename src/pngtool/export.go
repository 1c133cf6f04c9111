package pngtool

import (
	"os"

	"git.handmade.network/hmn/pngscope/src/logging"
	"git.handmade.network/hmn/pngscope/src/png"
	"git.handmade.network/hmn/pngscope/src/render"
	"github.com/spf13/cobra"
)

func init() {
	exportCommand := &cobra.Command{
		Use:   "export [png file] [qoi file]",
		Short: "Decode a PNG and save its 8-bit pixels as QOI",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				usageError(cmd, "You must provide an input PNG and an output path.")
			}
			if err := Export(args[0], args[1]); err != nil {
				logging.Error().Str("file", args[0]).Str("kind", png.Kind(err).String()).Err(err).Msg("Failed to export")
				os.Exit(1)
			}
			logging.Info().Str("file", args[0]).Str("out", args[1]).Msg("Exported")
		},
	}

	RootCommand.AddCommand(exportCommand)
}

func Export(in, out string) error {
	img, err := png.DecodeFile(in)
	if err != nil {
		return err
	}
	return render.ExportQOIFile(out, img)
}

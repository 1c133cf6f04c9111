package pngtool

import (
	"errors"
	"net/http"
	"os"

	"git.handmade.network/hmn/pngscope/src/logging"
	"git.handmade.network/hmn/pngscope/src/s3dev"
	"github.com/spf13/cobra"
)

func init() {
	var addr string

	s3devCommand := &cobra.Command{
		Use:   "s3dev [folder]",
		Short: "Serve a local S3 stand-in for archiving during development",
		Run: func(cmd *cobra.Command, args []string) {
			folder := "./tmp/s3"
			if len(args) > 0 {
				folder = args[0]
			}
			if err := os.MkdirAll(folder, 0755); err != nil {
				logging.Fatal().Err(err).Msg("failed to create s3 folder")
			}

			logging.Info().Str("addr", addr).Str("folder", folder).Msg("Serving local s3")
			err := http.ListenAndServe(addr, s3dev.NewHandler(folder))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Fatal().Err(err).Msg("local s3 server stopped")
			}
		},
	}
	s3devCommand.Flags().StringVar(&addr, "addr", ":80", "Address to listen on")

	RootCommand.AddCommand(s3devCommand)
}

package pngtool

import (
	"context"
	"io"
	"os"

	"git.handmade.network/hmn/pngscope/src/config"
	"git.handmade.network/hmn/pngscope/src/db"
	"git.handmade.network/hmn/pngscope/src/logging"
	"git.handmade.network/hmn/pngscope/src/png"
	"git.handmade.network/hmn/pngscope/src/pngstore"
	"git.handmade.network/hmn/pngscope/src/templates"
	"github.com/spf13/cobra"
)

func init() {
	var showChunks bool
	var fromDB int

	infoCommand := &cobra.Command{
		Use:   "info [files...]",
		Short: "Print IHDR and chunk information for PNG files",
		Long: `Print IHDR and chunk information for PNG files.

With --db N, list the first N stored images instead, narrowed down by the filter flags.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if fromDB > 0 {
				filter, err := filterFromFlags(cmd)
				if err != nil {
					usageError(cmd, err.Error())
				}
				filter.Limit = fromDB

				conn, err := db.NewConn(ctx)
				if err != nil {
					logging.Fatal().Err(err).Msg("failed to connect to the database")
				}
				defer conn.Close(ctx)

				if err := InfoStored(ctx, os.Stdout, conn, filter); err != nil {
					logging.Error().Err(err).Msg("failed to list stored PNGs")
					os.Exit(1)
				}
				return
			}

			if len(args) == 0 {
				usageError(cmd, "You must provide at least one file, or --db.")
			}
			failed := InfoFiles(ctx, os.Stdout, args, showChunks, config.Config.Decode.Workers)
			exitIfFailed(failed, len(args))
		},
	}
	infoCommand.Flags().BoolVarP(&showChunks, "chunks", "c", false, "Also list every chunk with its length, CRC and property bits")
	infoCommand.Flags().IntVarP(&fromDB, "db", "d", 0, "List the first N stored images instead of reading files")
	addFilterFlags(infoCommand)

	RootCommand.AddCommand(infoCommand)
}

// InfoFiles prints a description of every file, in the order given, and
// returns how many could not be read.
func InfoFiles(ctx context.Context, w io.Writer, paths []string, showChunks bool, workers int) int {
	results := RunBatch(ctx, paths, workers, func(ctx context.Context, path string) (templates.Info, error) {
		h, chunks, err := png.InspectFile(path)
		if err != nil {
			return templates.Info{}, err
		}
		return templates.FileInfoToTemplate(path, h, chunks, showChunks), nil
	})

	for _, r := range results {
		if r.Err != nil {
			logging.Error().
				Str("file", r.Path).
				Str("kind", png.Kind(r.Err).String()).
				Err(r.Err).
				Msg("Failed to read PNG")
			renderOrLog(w, "failure.txt", templates.FailureToTemplate(r.Path, r.Err))
			continue
		}
		logging.Debug().
			Str("file", r.Path).
			Uint32("width", r.Value.Width).
			Uint32("height", r.Value.Height).
			Msg("Read PNG")
		renderOrLog(w, "info.txt", r.Value)
	}

	return CountFailures(results)
}

// InfoStored prints the stored images matching filter along with their
// chunk lists.
func InfoStored(ctx context.Context, w io.Writer, conn db.ConnOrTx, filter pngstore.Filter) error {
	stored, err := pngstore.Find(ctx, conn, filter)
	if err != nil {
		return err
	}
	for _, s := range stored {
		info := templates.HeaderToTemplate(s.Info.FilePath, s.Info.Header())
		info.ChunkTypes = s.ChunkTypes()
		renderOrLog(w, "stored.txt", info)
	}
	logging.Debug().Int("count", len(stored)).Msg("Listed stored PNGs")
	return nil
}

func renderOrLog(w io.Writer, name string, data any) {
	if err := templates.Render(w, name, data); err != nil {
		logging.Error().Err(err).Str("template", name).Msg("failed to render output")
	}
}

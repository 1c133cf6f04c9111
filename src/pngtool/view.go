package pngtool

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.handmade.network/hmn/pngscope/src/config"
	"git.handmade.network/hmn/pngscope/src/db"
	"git.handmade.network/hmn/pngscope/src/logging"
	"git.handmade.network/hmn/pngscope/src/oops"
	"git.handmade.network/hmn/pngscope/src/png"
	"git.handmade.network/hmn/pngscope/src/pngstore"
	"git.handmade.network/hmn/pngscope/src/render"
	"git.handmade.network/hmn/pngscope/src/utils"
	"github.com/spf13/cobra"
)

type ViewOptions struct {
	Console    bool
	Fit        bool
	Background string
	MaxWidth   int

	// Where the QOI preview goes when not printing to the console.
	Out string
}

func init() {
	var opts ViewOptions

	viewCommand := &cobra.Command{
		Use:   "view [file|random]",
		Short: "Print a PNG to the terminal, or write a QOI preview of it",
		Long: `Print a PNG to the terminal with --console, or write a QOI preview of it.

"random" picks a stored image that can be shown and decodes it from the database.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				usageError(cmd, "You must provide a file, or \"random\".")
			}
			opts.MaxWidth = config.Config.Console.MaxWidth
			opts.Background = utils.OrDefault(opts.Background, config.Config.Console.Background)

			ctx := context.Background()
			img, name, err := loadForView(ctx, args[0], opts)
			if err != nil {
				logging.Error().Str("file", args[0]).Str("kind", png.Kind(err).String()).Err(err).Msg("Failed to load PNG")
				os.Exit(1)
			}
			if opts.Out == "" {
				opts.Out = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)) + ".qoi"
			}

			if err := View(os.Stdout, img, opts); err != nil {
				logging.Error().Str("file", name).Err(err).Msg("Failed to show PNG")
				os.Exit(1)
			}
			logging.Debug().Str("file", name).Int("width", img.Width()).Int("height", img.Height()).Msg("Viewed PNG")
		},
	}
	viewCommand.Flags().BoolVar(&opts.Console, "console", false, "Print the image to the terminal in truecolor")
	viewCommand.Flags().BoolVar(&opts.Fit, "fit", false, "Scale wide images down to fit the terminal")
	viewCommand.Flags().StringVar(&opts.Background, "background", "", "Hex color drawn behind transparent pixels, like #202020")
	viewCommand.Flags().StringVarP(&opts.Out, "out", "o", "", "Path of the QOI preview (default: the image's name with .qoi)")

	RootCommand.AddCommand(viewCommand)
}

func loadForView(ctx context.Context, target string, opts ViewOptions) (*png.Image, string, error) {
	if target != "random" {
		img, err := png.DecodeFile(target)
		return img, target, err
	}

	conn, err := db.NewConn(ctx)
	if err != nil {
		return nil, "", err
	}
	defer conn.Close(ctx)

	maxWidth := opts.MaxWidth
	if opts.Fit {
		maxWidth = 0
	}
	stored, err := pngstore.Random(ctx, conn, opts.Console, maxWidth)
	if err != nil {
		return nil, "", oops.New(err, "no stored image can be shown")
	}
	chunks, err := pngstore.LoadChunks(ctx, conn, stored.Info.ID)
	if err != nil {
		return nil, "", err
	}
	img, err := png.NewDecoder().DecodeChunks(chunks)
	return img, stored.Info.FilePath, err
}

// View prints img to w when opts.Console is set, and otherwise writes it to
// opts.Out as QOI.
func View(w io.Writer, img *png.Image, opts ViewOptions) error {
	if opts.Console {
		c := render.Console{
			MaxWidth:   opts.MaxWidth,
			Fit:        opts.Fit,
			Background: opts.Background,
		}
		return c.Render(w, img)
	}

	if err := render.ExportQOIFile(opts.Out, img); err != nil {
		return err
	}
	logging.Info().Str("file", opts.Out).Msg("Wrote QOI preview")
	return nil
}

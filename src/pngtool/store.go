package pngtool

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"time"

	"git.handmade.network/hmn/pngscope/src/archive"
	"git.handmade.network/hmn/pngscope/src/config"
	"git.handmade.network/hmn/pngscope/src/db"
	"git.handmade.network/hmn/pngscope/src/jobs"
	"git.handmade.network/hmn/pngscope/src/logging"
	"git.handmade.network/hmn/pngscope/src/perf"
	"git.handmade.network/hmn/pngscope/src/png"
	"git.handmade.network/hmn/pngscope/src/pngstore"
	"git.handmade.network/hmn/pngscope/src/utils"
	"github.com/spf13/cobra"
)

// How long in-flight files get to finish after Ctrl-C.
const storeShutdownTimeout = 30 * time.Second

func init() {
	var workers int

	storeCommand := &cobra.Command{
		Use:   "store [files...]",
		Short: "Decode PNG files and save their headers and chunks to the database",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				usageError(cmd, "You must provide at least one file.")
			}

			ctx := context.Background()
			conn, err := db.NewConnPool(ctx)
			if err != nil {
				logging.Fatal().Err(err).Msg("failed to connect to the database")
			}
			defer conn.Close()

			var archiver *archive.Archiver
			if config.Config.Archive.Enabled() {
				archiver, err = archive.New(ctx, config.Config.Archive)
				if err != nil {
					logging.Fatal().Err(err).Msg("failed to set up the archive")
				}
			}
			storer := NewStorer(conn, archiver)

			var results []FileResult[int]
			job := jobs.Run("store", func(job *jobs.Job) {
				results = storer.StoreFiles(job.Ctx, args, workers)
			})

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt)
			jobs.Jobs{job}.CancelOnInterrupt(signals, storeShutdownTimeout, func() { os.Exit(1) })

			exitIfFailed(CountFailures(results), len(args))
		},
	}
	storeCommand.Flags().IntVarP(&workers, "jobs", "j", config.Config.Decode.Workers, "Number of files to process at once")

	RootCommand.AddCommand(storeCommand)
}

type InsertFunc func(ctx context.Context, path string, h png.Header, chunks []png.Chunk, archiveKey string) (int, error)

// Storer checks, archives and inserts files one at a time. It is safe to use
// from several goroutines as long as Insert is.
type Storer struct {
	Decoder  *png.Decoder
	Archiver *archive.Archiver // nil disables archiving
	Insert   InsertFunc
}

func NewStorer(conn db.ConnOrTx, archiver *archive.Archiver) *Storer {
	return &Storer{
		Decoder:  png.NewDecoder(),
		Archiver: archiver,
		Insert: func(ctx context.Context, path string, h png.Header, chunks []png.Chunk, archiveKey string) (int, error) {
			return pngstore.Insert(ctx, conn, path, h, chunks, archiveKey)
		},
	}
}

/*
StoreFile reads one file, makes sure it decodes, archives the original bytes
if archiving is on, and inserts it. Interlaced files can't be decoded, so for
those only the chunk structure and header are checked. Returns the new
png_info id.
*/
func (s *Storer) StoreFile(ctx context.Context, path string) (int, error) {
	fp := perf.NewFilePerf(path)
	ctx = perf.AttachPerf(ctx, fp)
	defer func() {
		fp.Finish()
		fp.Log(logging.ExtractLogger(ctx))
	}()

	block := fp.StartBlock("IO", "Read file")
	content, err := os.ReadFile(path)
	block.End()
	if err != nil {
		return 0, &png.DecodeError{Stage: png.StageUnopened, Err: &png.IOError{Path: path, Err: err}}
	}

	block = fp.StartBlock("DECODE", "Decode")
	h, chunks, err := png.Inspect(bytes.NewReader(content))
	if err == nil && h.InterlaceMethod == 0 {
		_, err = s.Decoder.DecodeChunks(chunks)
	}
	block.End()
	if err != nil {
		return 0, err
	}

	var key string
	if s.Archiver != nil {
		block = fp.StartBlock("S3", "Archive original")
		key, err = s.Archiver.Store(ctx, path, content)
		block.End()
		if err != nil {
			return 0, err
		}
	}

	return s.Insert(ctx, utils.AbsPath(path), h, chunks, key)
}

// StoreFiles stores every path using up to workers goroutines and logs one
// line per file.
func (s *Storer) StoreFiles(ctx context.Context, paths []string, workers int) []FileResult[int] {
	results := RunBatch(ctx, paths, workers, s.StoreFile)
	for _, r := range results {
		if r.Err != nil {
			logging.Error().
				Str("file", r.Path).
				Str("kind", png.Kind(r.Err).String()).
				Err(r.Err).
				Msg("Failed to store PNG")
			continue
		}
		logging.Info().Str("file", r.Path).Int("id", r.Value).Msg("Stored PNG")
	}
	return results
}

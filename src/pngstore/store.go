package pngstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"git.handmade.network/hmn/pngscope/src/db"
	"git.handmade.network/hmn/pngscope/src/models"
	"git.handmade.network/hmn/pngscope/src/oops"
	"git.handmade.network/hmn/pngscope/src/perf"
	"git.handmade.network/hmn/pngscope/src/png"
	"github.com/jackc/pgx/v5/pgconn"
)

// Returned (wrapped) by Insert when the path has already been stored.
var ErrAlreadyStored = errors.New("file is already stored")

const uniqueViolation = "23505"

type StoredPNG struct {
	Info      models.PNGInfo `db:"png"`
	ChunkList *string        `db:"chunk_types"`
}

// ChunkTypes lists the stored chunk types in file order.
func (s *StoredPNG) ChunkTypes() []string {
	if s.ChunkList == nil || *s.ChunkList == "" {
		return nil
	}
	return strings.Split(*s.ChunkList, " ")
}

/*
Insert stores one file's header and every chunk in a single transaction.
IDAT data goes to idat_chunk_data and everything else to other_chunk_data.
Path should be absolute; it is the unique key for stored files. An empty
archiveKey leaves archive_key NULL.
*/
func Insert(
	ctx context.Context,
	conn db.ConnOrTx,
	path string,
	h png.Header,
	chunks []png.Chunk,
	archiveKey string,
) (int, error) {
	defer perf.ExtractPerf(ctx).StartBlock("DB", "Insert PNG").End()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	var key *string
	if archiveKey != "" {
		key = &archiveKey
	}

	pngID, err := db.QueryOneScalar[int](ctx, tx,
		`
		---- Insert png_info
		INSERT INTO png_info (
			file_path, width, height, bit_depth, color_type,
			compression_method, filter_method, interlace_method, archive_key
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
		`,
		path,
		int64(h.Width),
		int64(h.Height),
		int(h.BitDepth),
		int(h.ColorType),
		int(h.CompressionMethod),
		int(h.FilterMethod),
		int(h.InterlaceMethod),
		key,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%s: %w", path, ErrAlreadyStored)
		}
		return 0, oops.New(err, "failed to insert png_info")
	}

	for seq, c := range chunks {
		info := models.NewChunkInfo(seq, c)
		chunkID, err := db.QueryOneScalar[int](ctx, tx,
			`
			---- Insert chunk_info
			INSERT INTO chunk_info (
				png_id, seq, chunk_length, chunk_type,
				is_ancillary, is_private, is_reserved, is_safe_to_copy, chunk_crc
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
			`,
			pngID,
			info.Seq,
			info.Length,
			info.Type,
			info.IsAncillary,
			info.IsPrivate,
			info.IsReserved,
			info.IsSafeToCopy,
			info.CRC,
		)
		if err != nil {
			return 0, oops.New(err, "failed to insert chunk %d (%s)", seq, c.Type)
		}

		data := c.Data
		if data == nil {
			data = []byte{}
		}
		_, err = tx.Exec(ctx,
			fmt.Sprintf(
				`
				---- Insert chunk data
				INSERT INTO %s (chunk_id, png_id, chunk_data)
				VALUES ($1, $2, $3)
				`,
				chunkDataTable(c.Type),
			),
			chunkID,
			pngID,
			data,
		)
		if err != nil {
			return 0, oops.New(err, "failed to insert data for chunk %d (%s)", seq, c.Type)
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return 0, oops.New(err, "failed to commit png %s", path)
	}
	return pngID, nil
}

func chunkDataTable(chunkType string) string {
	if chunkType == png.TypeIDAT {
		return "idat_chunk_data"
	}
	return "other_chunk_data"
}

const findQuery = `
	---- Find PNGs
	SELECT $columns
	FROM
		png_info AS png,
		LATERAL (
			SELECT string_agg(chunk_type, ' ' ORDER BY seq) AS chunk_types
			FROM chunk_info
			WHERE chunk_info.png_id = png.id
		) AS agg
`

// Find lists stored images matching the filter, oldest first.
func Find(ctx context.Context, conn db.ConnOrTx, f Filter) ([]*StoredPNG, error) {
	defer perf.ExtractPerf(ctx).StartBlock("DB", "Find PNGs").End()

	var qb db.QueryBuilder
	qb.Add(findQuery)
	qb.AddConditions(f.Conditions())
	qb.Add(`ORDER BY png.id ASC`)
	if f.Limit > 0 {
		qb.Add(`LIMIT $?`, f.Limit)
	}

	results, err := db.Query[StoredPNG](ctx, conn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to find stored PNGs")
	}
	return results, nil
}

/*
Random picks one stored image the viewer can show: never interlaced, and for
the console also narrower than maxWidth and not 16-bit. Returns db.NotFound
when nothing qualifies.
*/
func Random(ctx context.Context, conn db.ConnOrTx, console bool, maxWidth int) (*StoredPNG, error) {
	f := RandomFilter(console, maxWidth)

	var qb db.QueryBuilder
	qb.Add(findQuery)
	conds := f.Conditions()
	if console {
		conds = append(conds, db.Condition{SQL: "png.bit_depth <> 16"})
	}
	qb.AddConditions(conds)
	qb.Add(`ORDER BY random()`)
	qb.Add(`LIMIT $?`, f.Limit)

	result, err := db.QueryOne[StoredPNG](ctx, conn, qb.String(), qb.Args()...)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to pick a random PNG")
	}
	return result, nil
}

type storedChunk struct {
	Info models.ChunkInfo `db:"chunk"`
	Data []byte           `db:"stored_data"`
}

// LoadChunks rebuilds a stored image's chunks in file order, ready for
// png.Decoder.DecodeChunks.
func LoadChunks(ctx context.Context, conn db.ConnOrTx, pngID int) ([]png.Chunk, error) {
	defer perf.ExtractPerf(ctx).StartBlock("DB", "Load chunks").End()

	rows, err := db.Query[storedChunk](ctx, conn,
		`
		---- Load chunks
		SELECT $columns
		FROM
			chunk_info AS chunk,
			LATERAL (
				SELECT chunk_data AS stored_data FROM idat_chunk_data WHERE chunk_id = chunk.id
				UNION ALL
				SELECT chunk_data AS stored_data FROM other_chunk_data WHERE chunk_id = chunk.id
			) AS data
		WHERE chunk.png_id = $1
		ORDER BY chunk.seq ASC
		`,
		pngID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to load chunks for png %d", pngID)
	}

	chunks := make([]png.Chunk, len(rows))
	for i, row := range rows {
		chunks[i] = row.Info.Chunk(row.Data)
	}
	return chunks, nil
}

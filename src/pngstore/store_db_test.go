package pngstore

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"sort"
	"strings"
	"testing"
	"time"

	"git.handmade.network/hmn/pngscope/src/db"
	"git.handmade.network/hmn/pngscope/src/migration/migrations"
	"git.handmade.network/hmn/pngscope/src/migration/types"
	"git.handmade.network/hmn/pngscope/src/png"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Opens a transaction on a throwaway schema with every migration applied.
// Everything is rolled back when the test ends. Skips when the configured
// database cannot be reached.
func testTx(t *testing.T) (context.Context, pgx.Tx) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	connectCtx, cancelConnect := context.WithTimeout(ctx, 3*time.Second)
	defer cancelConnect()
	conn, err := db.NewConn(connectCtx)
	if err != nil {
		t.Skipf("no database available: %v", err)
	}
	t.Cleanup(func() { conn.Close(context.Background()) })

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { tx.Rollback(context.Background()) })

	schema := "pngstore_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	_, err = tx.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "SET LOCAL search_path TO "+schema)
	require.NoError(t, err)

	var versions []types.MigrationVersion
	for v := range migrations.All {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Before(versions[j])
	})
	for _, v := range versions {
		require.NoError(t, migrations.All[v].Up(ctx, tx), "migration %s", v)
	}

	return ctx, tx
}

func encodeTestPNG(t *testing.T, img image.Image) (png.Header, []png.Chunk, *png.Image) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, img))

	h, chunks, err := png.Inspect(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return h, chunks, decoded
}

func TestStoreRoundTrip(t *testing.T) {
	ctx, tx := testTx(t)

	rgba := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range rgba.Pix {
		rgba.Pix[i] = uint8(i * 10)
	}
	gray := image.NewGray16(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			gray.SetGray16(x, y, color.Gray16{Y: uint16(x*0x1000 + y)})
		}
	}

	rgbaHeader, rgbaChunks, rgbaDecoded := encodeTestPNG(t, rgba)
	grayHeader, grayChunks, _ := encodeTestPNG(t, gray)
	require.Equal(t, png.TruecolorAlpha, rgbaHeader.ColorType)
	require.EqualValues(t, 16, grayHeader.BitDepth)

	rgbaID, err := Insert(ctx, tx, "/images/rgba.png", rgbaHeader, rgbaChunks, "originals/rgba.png")
	require.NoError(t, err)
	grayID, err := Insert(ctx, tx, "/images/gray16.png", grayHeader, grayChunks, "")
	require.NoError(t, err)

	t.Run("duplicate path", func(t *testing.T) {
		_, err := Insert(ctx, tx, "/images/rgba.png", rgbaHeader, rgbaChunks, "")
		assert.True(t, errors.Is(err, ErrAlreadyStored), "got %v", err)
	})

	t.Run("find everything", func(t *testing.T) {
		found, err := Find(ctx, tx, Filter{})
		require.NoError(t, err)
		require.Len(t, found, 2)

		assert.Equal(t, rgbaID, found[0].Info.ID)
		assert.Equal(t, "/images/rgba.png", found[0].Info.FilePath)
		assert.Equal(t, rgbaHeader, found[0].Info.Header())
		require.NotNil(t, found[0].Info.ArchiveKey)
		assert.Equal(t, "originals/rgba.png", *found[0].Info.ArchiveKey)

		var chunkTypes []string
		for _, c := range rgbaChunks {
			chunkTypes = append(chunkTypes, c.Type)
		}
		assert.Equal(t, chunkTypes, found[0].ChunkTypes())

		assert.Equal(t, grayID, found[1].Info.ID)
		assert.Nil(t, found[1].Info.ArchiveKey)
	})

	t.Run("find with filter", func(t *testing.T) {
		colorType := int(png.TruecolorAlpha)
		found, err := Find(ctx, tx, Filter{ColorType: &colorType})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, rgbaID, found[0].Info.ID)

		found, err = Find(ctx, tx, Filter{Chunk: "IDAT", WidthUnder: 4})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, rgbaID, found[0].Info.ID)

		found, err = Find(ctx, tx, Filter{Chunk: "tEXt"})
		require.NoError(t, err)
		assert.Empty(t, found)

		found, err = Find(ctx, tx, Filter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("random skips 16-bit for the console", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			picked, err := Random(ctx, tx, true, 80)
			require.NoError(t, err)
			assert.Equal(t, rgbaID, picked.Info.ID)
		}

		_, err := Random(ctx, tx, true, 2)
		assert.True(t, errors.Is(err, db.NotFound), "got %v", err)
	})

	t.Run("load chunks and decode", func(t *testing.T) {
		chunks, err := LoadChunks(ctx, tx, rgbaID)
		require.NoError(t, err)
		require.Len(t, chunks, len(rgbaChunks))
		for i, c := range chunks {
			assert.Equal(t, rgbaChunks[i].Type, c.Type)
			assert.Equal(t, rgbaChunks[i].Length, c.Length)
			assert.Equal(t, rgbaChunks[i].CRC, c.CRC)
			assert.True(t, bytes.Equal(rgbaChunks[i].Data, c.Data), "data of chunk %d", i)
			assert.True(t, c.ChecksumOK())
		}

		img, err := png.NewDecoder().DecodeChunks(chunks)
		require.NoError(t, err)
		assert.Equal(t, rgbaDecoded.Pix, img.Pix)
		assert.Equal(t, rgba.Pix, img.Pix)
	})
}

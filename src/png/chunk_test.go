package png

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadChunks(t *testing.T) {
	file := simplePNG(t, ihdrData(1, 1, 8, Grayscale, 0), []byte{0, 0x7f},
		rawChunk("tEXt", []byte("Comment\x00hi")),
	)

	t.Run("valid", func(t *testing.T) {
		chunks, err := ReadChunks(bytes.NewReader(file))
		require.Nil(t, err)
		assert.Equal(t, []string{"IHDR", "tEXt", "IDAT", "IEND"}, ChunkTypes(chunks))
		assert.Equal(t, uint32(13), chunks[0].Length)
		assert.Equal(t, "Comment\x00hi", string(chunks[1].Data))
		for _, c := range chunks {
			assert.True(t, c.ChecksumOK(), c.Type)
		}
	})
	t.Run("trailing bytes ignored", func(t *testing.T) {
		chunks, err := ReadChunks(bytes.NewReader(append(append([]byte{}, file...), "garbage"...)))
		require.Nil(t, err)
		assert.Len(t, chunks, 4)
	})
	t.Run("bad signature", func(t *testing.T) {
		bad := append([]byte{}, file...)
		bad[1] = 'Q'
		_, err := ReadChunks(bytes.NewReader(bad))
		assert.Equal(t, KindSignature, Kind(err))
	})
	t.Run("empty input", func(t *testing.T) {
		_, err := ReadChunks(bytes.NewReader(nil))
		assert.Equal(t, KindSignature, Kind(err))
	})
	t.Run("flipped data byte", func(t *testing.T) {
		bad := append([]byte{}, file...)
		bad[8+8+2] ^= 0x01 // inside IHDR data
		_, err := ReadChunks(bytes.NewReader(bad))
		assert.Equal(t, KindFormat, Kind(err))
		assert.Contains(t, err.Error(), "checksum")
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := ReadChunks(bytes.NewReader(file[:len(file)-20]))
		assert.Equal(t, KindFormat, Kind(err))
	})
	t.Run("missing IEND", func(t *testing.T) {
		noEnd := pngFile(rawChunk(TypeIHDR, ihdrData(1, 1, 8, Grayscale, 0)))
		_, err := ReadChunks(bytes.NewReader(noEnd))
		assert.Equal(t, KindFormat, Kind(err))
	})
	t.Run("bad type", func(t *testing.T) {
		_, err := ReadChunks(bytes.NewReader(pngFile(rawChunk("IH1R", nil))))
		assert.Equal(t, KindFormat, Kind(err))
	})
}

func TestChunkProperties(t *testing.T) {
	idat := Chunk{Type: "IDAT"}
	assert.False(t, idat.Ancillary())
	assert.True(t, idat.Critical())
	assert.False(t, idat.Private())
	assert.False(t, idat.Reserved())
	assert.False(t, idat.SafeToCopy())

	vpag := Chunk{Type: "vpAg"}
	assert.True(t, vpag.Ancillary())
	assert.True(t, vpag.Private())
	assert.False(t, vpag.Reserved())
	assert.True(t, vpag.SafeToCopy())
}

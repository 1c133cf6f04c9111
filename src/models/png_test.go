package models

import (
	"testing"

	"git.handmade.network/hmn/pngscope/src/png"
	"github.com/stretchr/testify/assert"
)

func TestChunkInfoRoundTrip(t *testing.T) {
	c := png.Chunk{Type: "tEXt", Length: 3, Data: []byte("abc"), CRC: 0xFFFFFFFE}
	info := NewChunkInfo(4, c)

	assert.Equal(t, 4, info.Seq)
	assert.Equal(t, int64(0xFFFFFFFE), info.CRC)
	assert.True(t, info.IsAncillary)
	assert.False(t, info.IsPrivate)
	assert.False(t, info.IsReserved)
	assert.True(t, info.IsSafeToCopy)
	assert.Equal(t, c, info.Chunk([]byte("abc")))
}

func TestPNGInfoHeader(t *testing.T) {
	info := PNGInfo{Width: 3, Height: 2, BitDepth: 16, ColorType: 6, InterlaceMethod: 1}
	h := info.Header()
	assert.Equal(t, uint32(3), h.Width)
	assert.Equal(t, uint32(2), h.Height)
	assert.Equal(t, uint8(16), h.BitDepth)
	assert.Equal(t, png.TruecolorAlpha, h.ColorType)
	assert.Equal(t, uint8(1), h.InterlaceMethod)
}

package models

import (
	"time"

	"git.handmade.network/hmn/pngscope/src/png"
)

// A row of png_info: the header of one stored file.
type PNGInfo struct {
	ID        int       `db:"id"`
	FilePath  string    `db:"file_path"`
	DateAdded time.Time `db:"date_added"`

	Width             int64 `db:"width"`
	Height            int64 `db:"height"`
	BitDepth          int   `db:"bit_depth"`
	ColorType         int   `db:"color_type"`
	CompressionMethod int   `db:"compression_method"`
	FilterMethod      int   `db:"filter_method"`
	InterlaceMethod   int   `db:"interlace_method"`

	ArchiveKey *string `db:"archive_key"`
}

func (i *PNGInfo) Header() png.Header {
	return png.Header{
		Width:             uint32(i.Width),
		Height:            uint32(i.Height),
		BitDepth:          uint8(i.BitDepth),
		ColorType:         png.ColorType(i.ColorType),
		CompressionMethod: uint8(i.CompressionMethod),
		FilterMethod:      uint8(i.FilterMethod),
		InterlaceMethod:   uint8(i.InterlaceMethod),
	}
}

// A row of chunk_info.
type ChunkInfo struct {
	ID     int    `db:"id"`
	PNGID  int    `db:"png_id"`
	Seq    int    `db:"seq"`
	Length int64  `db:"chunk_length"`
	Type   string `db:"chunk_type"`

	IsAncillary  bool  `db:"is_ancillary"`
	IsPrivate    bool  `db:"is_private"`
	IsReserved   bool  `db:"is_reserved"`
	IsSafeToCopy bool  `db:"is_safe_to_copy"`
	CRC          int64 `db:"chunk_crc"`
}

func NewChunkInfo(seq int, c png.Chunk) ChunkInfo {
	return ChunkInfo{
		Seq:          seq,
		Length:       int64(c.Length),
		Type:         c.Type,
		IsAncillary:  c.Ancillary(),
		IsPrivate:    c.Private(),
		IsReserved:   c.Reserved(),
		IsSafeToCopy: c.SafeToCopy(),
		CRC:          int64(c.CRC),
	}
}

// Chunk rebuilds the chunk from its stored metadata and data.
func (c *ChunkInfo) Chunk(data []byte) png.Chunk {
	return png.Chunk{
		Type:   c.Type,
		Length: uint32(c.Length),
		Data:   data,
		CRC:    uint32(c.CRC),
	}
}

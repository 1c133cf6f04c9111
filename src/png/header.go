package png

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ColorType is the IHDR color type. Each legal value knows its channel count
// and the bit depths it may be paired with.
type ColorType uint8

const (
	Grayscale      ColorType = 0
	Truecolor      ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	TruecolorAlpha ColorType = 6
)

type colorTypeInfo struct {
	name     string
	channels int
	depths   []uint8
}

var colorTypes = map[ColorType]colorTypeInfo{
	Grayscale:      {"grayscale", 1, []uint8{1, 2, 4, 8, 16}},
	Truecolor:      {"rgb", 3, []uint8{8, 16}},
	Indexed:        {"indexed color", 1, []uint8{1, 2, 4, 8}},
	GrayscaleAlpha: {"grayscale alpha", 2, []uint8{8, 16}},
	TruecolorAlpha: {"rgb alpha", 4, []uint8{8, 16}},
}

func (ct ColorType) Valid() bool {
	_, ok := colorTypes[ct]
	return ok
}

// Channels is the number of samples per pixel. Indexed images have one (the
// palette index).
func (ct ColorType) Channels() int {
	return colorTypes[ct].channels
}

func (ct ColorType) HasAlpha() bool {
	return ct == GrayscaleAlpha || ct == TruecolorAlpha
}

func (ct ColorType) AllowsDepth(depth uint8) bool {
	for _, d := range colorTypes[ct].depths {
		if d == depth {
			return true
		}
	}
	return false
}

func (ct ColorType) String() string {
	if info, ok := colorTypes[ct]; ok {
		return info.name
	}
	return fmt.Sprintf("color type %d", uint8(ct))
}

type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         ColorType
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

const ihdrLength = 13

const maxDimension = 1<<31 - 1

/*
ParseHeader reads the 13 IHDR bytes and checks every field, including that
the color type and bit depth form a legal pair. c must be the first chunk of
the stream.
*/
func ParseHeader(c Chunk) (Header, error) {
	if c.Type != TypeIHDR {
		return Header{}, FormatError(fmt.Sprintf("first chunk is %s, not IHDR", c.Type))
	}
	if len(c.Data) != ihdrLength {
		return Header{}, FormatError("bad IHDR length")
	}
	d := c.Data
	h := Header{
		Width:             binary.BigEndian.Uint32(d[0:4]),
		Height:            binary.BigEndian.Uint32(d[4:8]),
		BitDepth:          d[8],
		ColorType:         ColorType(d[9]),
		CompressionMethod: d[10],
		FilterMethod:      d[11],
		InterlaceMethod:   d[12],
	}
	return h, h.Validate()
}

// ReadHeader is ParseHeader for callers that only describe images: Adam7
// interlacing is accepted.
func ReadHeader(c Chunk) (Header, error) {
	h, err := ParseHeader(c)
	if err != nil && h.InterlaceMethod == 1 && Kind(err) == KindUnsupported {
		return h, nil
	}
	return h, err
}

func (h Header) Validate() error {
	if h.Width == 0 || h.Height == 0 {
		return FormatError("non-positive dimension")
	}
	if h.Width > maxDimension || h.Height > maxDimension {
		return FormatError("dimension larger than 2^31-1")
	}
	if !h.ColorType.Valid() {
		return FormatError(fmt.Sprintf("unknown color type %d", uint8(h.ColorType)))
	}
	if !h.ColorType.AllowsDepth(h.BitDepth) {
		return FormatError(fmt.Sprintf("bit depth %d not allowed for color type %d", h.BitDepth, uint8(h.ColorType)))
	}
	if h.CompressionMethod != 0 {
		return FormatError(fmt.Sprintf("compression method %d", h.CompressionMethod))
	}
	if h.FilterMethod != 0 {
		return FormatError(fmt.Sprintf("filter method %d", h.FilterMethod))
	}
	if h.InterlaceMethod != 0 {
		return UnsupportedError(fmt.Sprintf("interlace method %d", h.InterlaceMethod))
	}
	return nil
}

func (h Header) Channels() int {
	return h.ColorType.Channels()
}

// BitsPerPixel is bitDepth × channels.
func (h Header) BitsPerPixel() int {
	return int(h.BitDepth) * h.Channels()
}

// BytesPerPixel is the filter lookback distance: at least one byte, even for
// sub-byte pixels.
func (h Header) BytesPerPixel() int {
	return (h.BitsPerPixel() + 7) / 8
}

// Stride is the byte width of one scanline, excluding the filter byte.
func (h Header) Stride() int {
	return int((int64(h.BitsPerPixel())*int64(h.Width) + 7) / 8)
}

// DecompressedSize is the exact number of bytes inflating IDAT must produce:
// one filter byte plus Stride bytes for every row. Sizes that don't fit in
// an int are an UnsupportedError.
func (h Header) DecompressedSize() (int64, error) {
	rowBytes := 1 + (int64(h.BitsPerPixel())*int64(h.Width)+7)/8
	if int64(h.Height) > math.MaxInt64/rowBytes {
		return 0, UnsupportedError("dimension overflow")
	}
	size := int64(h.Height) * rowBytes
	if size > math.MaxInt {
		return 0, UnsupportedError("dimension overflow")
	}
	return size, nil
}

var compressionMethodNames = map[uint8]string{0: "DEFLATE"}

var interlaceMethodNames = map[uint8]string{0: "no interlace", 1: "Adam7 interlace"}

func (h Header) CompressionMethodName() string {
	return nameOr(compressionMethodNames, h.CompressionMethod)
}

func (h Header) InterlaceMethodName() string {
	return nameOr(interlaceMethodNames, h.InterlaceMethod)
}

func nameOr(names map[uint8]string, v uint8) string {
	if name, ok := names[v]; ok {
		return name
	}
	return "unknown"
}

package png

import (
	"image"
	"image/color"
)

// Image is a fully decoded PNG. Pix holds 8-bit non-premultiplied RGBA, row
// major; Samples holds the original samples at the header's bit depth.
type Image struct {
	Header  Header
	Chunks  []Chunk
	Palette Palette

	Samples []uint16
	Pix     []uint8
}

func (img *Image) Width() int  { return int(img.Header.Width) }
func (img *Image) Height() int { return int(img.Header.Height) }

func (img *Image) Channels() int { return img.Header.Channels() }

// Sample returns channel c of the pixel at (x, y) at the original bit depth.
// For indexed images channel 0 is the palette index.
func (img *Image) Sample(x, y, c int) uint16 {
	ch := img.Channels()
	return img.Samples[(y*img.Width()+x)*ch+c]
}

func (img *Image) At(x, y int) color.NRGBA {
	i := (y*img.Width() + x) * 4
	return color.NRGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}
}

// NRGBA wraps Pix without copying.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width() * 4,
		Rect:   image.Rect(0, 0, img.Width(), img.Height()),
	}
}

// HasAlpha reports whether any pixel is not fully opaque.
func (img *Image) HasAlpha() bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return true
		}
	}
	return false
}

// ChunkTypes lists chunk types in file order, consecutive repeats collapsed.
func (img *Image) ChunkTypes() []string {
	return ChunkTypes(img.Chunks)
}

func ChunkTypes(chunks []Chunk) []string {
	var types []string
	for _, c := range chunks {
		if len(types) > 0 && types[len(types)-1] == c.Type {
			continue
		}
		types = append(types, c.Type)
	}
	return types
}

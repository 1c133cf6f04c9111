package render

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"git.handmade.network/hmn/pngscope/src/oops"
	"git.handmade.network/hmn/pngscope/src/png"
)

const (
	qoiMagic     = "qoif"
	qoiMaxPixels = 400_000_000
	qoiMaxRun    = 62
)

var qoiEndMarker = []byte{0, 0, 0, 0, 0, 0, 0, 1}

const (
	qoiOpIndex uint8 = 0b00000000
	qoiOpDiff  uint8 = 0b01000000
	qoiOpLuma  uint8 = 0b10000000
	qoiOpRun   uint8 = 0b11000000
	qoiOpRGB   uint8 = 0b11111110
	qoiOpRGBA  uint8 = 0b11111111
)

type qoiPixel [4]uint8

func (p qoiPixel) hash() uint8 {
	return (p[0]*3 + p[1]*5 + p[2]*7 + p[3]*11) % 64
}

/*
ExportQOI writes the 8-bit raster of img in QOI format, four channels,
sRGB with linear alpha. Pixels are written exactly as stored: QOI is
non-premultiplied, like png.Image.Pix.
*/
func ExportQOI(w io.Writer, img *png.Image) error {
	width, height := img.Width(), img.Height()
	if width*height == 0 || width*height >= qoiMaxPixels {
		return oops.New(nil, "cannot encode a %dx%d image as QOI", width, height)
	}

	out := bufio.NewWriter(w)
	var header [14]byte
	copy(header[:4], qoiMagic)
	binary.BigEndian.PutUint32(header[4:8], uint32(width))
	binary.BigEndian.PutUint32(header[8:12], uint32(height))
	header[12] = 4
	header[13] = 0
	out.Write(header[:])

	var index [64]qoiPixel
	prev := qoiPixel{0, 0, 0, 255}
	run := 0
	n := width * height
	for i := 0; i < n; i++ {
		var px qoiPixel
		copy(px[:], img.Pix[i*4:i*4+4])

		if px == prev {
			run++
			if run == qoiMaxRun || i == n-1 {
				out.WriteByte(qoiOpRun | uint8(run-1))
				run = 0
			}
			continue
		}
		if run > 0 {
			out.WriteByte(qoiOpRun | uint8(run-1))
			run = 0
		}

		idx := px.hash()
		if index[idx] == px {
			out.WriteByte(qoiOpIndex | idx)
			prev = px
			continue
		}
		index[idx] = px

		if px[3] != prev[3] {
			out.Write([]byte{qoiOpRGBA, px[0], px[1], px[2], px[3]})
			prev = px
			continue
		}

		vr := int8(px[0] - prev[0])
		vg := int8(px[1] - prev[1])
		vb := int8(px[2] - prev[2])
		vgr := vr - vg
		vgb := vb - vg
		switch {
		case vr >= -2 && vr <= 1 && vg >= -2 && vg <= 1 && vb >= -2 && vb <= 1:
			out.WriteByte(qoiOpDiff | uint8(vr+2)<<4 | uint8(vg+2)<<2 | uint8(vb+2))
		case vg >= -32 && vg <= 31 && vgr >= -8 && vgr <= 7 && vgb >= -8 && vgb <= 7:
			out.Write([]byte{qoiOpLuma | uint8(vg+32), uint8(vgr+8)<<4 | uint8(vgb+8)})
		default:
			out.Write([]byte{qoiOpRGB, px[0], px[1], px[2]})
		}
		prev = px
	}
	out.Write(qoiEndMarker)

	if err := out.Flush(); err != nil {
		return oops.New(err, "failed to write QOI data")
	}
	return nil
}

func ExportQOIFile(path string, img *png.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return oops.New(err, "failed to create %s", path)
	}
	if err := ExportQOI(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return oops.New(err, "failed to write %s", path)
	}
	return nil
}

package png

import (
	"encoding/binary"
	"fmt"
	"image/color"
)

// Palette is the PLTE table. Alpha comes from tRNS and defaults to opaque.
type Palette []color.NRGBA

// Transparency is a decoded tRNS chunk. For grayscale and truecolor images it
// names one color key that is fully transparent; for indexed images the
// alphas are already folded into the Palette.
type Transparency struct {
	Gray    uint16
	R, G, B uint16
}

// Matches reports whether the raw (unnormalized) samples equal the color key.
func (t *Transparency) Matches(ct ColorType, s []uint16) bool {
	if t == nil {
		return false
	}
	switch ct {
	case Grayscale:
		return s[0] == t.Gray
	case Truecolor:
		return s[0] == t.R && s[1] == t.G && s[2] == t.B
	}
	return false
}

/*
ParsePalette interprets the PLTE and tRNS chunks for an image with header h.
Either chunk may be nil. The result follows the color type:

  - Indexed: PLTE is required and at most 2^bitDepth entries. tRNS, if
    present, gives alphas for the first entries.
  - Truecolor: PLTE is an optional suggestion and is kept. tRNS is a color key.
  - Grayscale: PLTE is ignored. tRNS is a gray key.
  - Alpha color types: PLTE is ignored for GrayscaleAlpha and kept for
    TruecolorAlpha. tRNS is ignored.
*/
func ParsePalette(h Header, plte, trns *Chunk) (Palette, *Transparency, error) {
	var pal Palette
	if plte != nil {
		switch h.ColorType {
		case Grayscale, GrayscaleAlpha:
			// ignored
		default:
			var err error
			pal, err = parsePLTE(h, plte.Data)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	if h.ColorType == Indexed && pal == nil {
		return nil, nil, FormatError("missing PLTE chunk for indexed image")
	}

	if trns == nil || h.ColorType.HasAlpha() {
		return pal, nil, nil
	}

	d := trns.Data
	switch h.ColorType {
	case Grayscale:
		if len(d) != 2 {
			return nil, nil, FormatError("bad tRNS length")
		}
		return pal, &Transparency{Gray: binary.BigEndian.Uint16(d)}, nil
	case Truecolor:
		if len(d) != 6 {
			return nil, nil, FormatError("bad tRNS length")
		}
		return pal, &Transparency{
			R: binary.BigEndian.Uint16(d[0:2]),
			G: binary.BigEndian.Uint16(d[2:4]),
			B: binary.BigEndian.Uint16(d[4:6]),
		}, nil
	case Indexed:
		if len(d) > len(pal) {
			return nil, nil, FormatError(fmt.Sprintf("tRNS has %d entries for a %d color palette", len(d), len(pal)))
		}
		for i, a := range d {
			pal[i].A = a
		}
	}
	return pal, nil, nil
}

func parsePLTE(h Header, d []byte) (Palette, error) {
	if len(d) == 0 || len(d)%3 != 0 {
		return nil, FormatError("bad PLTE length")
	}
	n := len(d) / 3
	if n > 256 {
		return nil, FormatError("PLTE has more than 256 entries")
	}
	if h.ColorType == Indexed && n > 1<<h.BitDepth {
		return nil, FormatError(fmt.Sprintf("PLTE has %d entries, more than bit depth %d allows", n, h.BitDepth))
	}
	pal := make(Palette, n)
	for i := range pal {
		pal[i] = color.NRGBA{R: d[3*i], G: d[3*i+1], B: d[3*i+2], A: 0xff}
	}
	return pal, nil
}

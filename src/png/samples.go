package png

import (
	"encoding/binary"
	"fmt"
)

// unpackRow splits a reconstructed row into n samples of the given depth.
// Sub-byte samples are read most significant bits first and the padding bits
// at the end of the row are dropped.
func unpackRow(row []byte, depth uint8, out []uint16) {
	switch depth {
	case 8:
		for i := range out {
			out[i] = uint16(row[i])
		}
	case 16:
		for i := range out {
			out[i] = binary.BigEndian.Uint16(row[2*i:])
		}
	default:
		perByte := 8 / int(depth)
		mask := byte(1)<<depth - 1
		for i := range out {
			b := row[i/perByte]
			shift := 8 - int(depth)*(i%perByte+1)
			out[i] = uint16(b>>shift) & uint16(mask)
		}
	}
}

// normalizer maps a sample of the given depth onto 0..255.
func normalizer(depth uint8) func(uint16) uint8 {
	switch depth {
	case 16:
		return func(v uint16) uint8 { return uint8(v >> 8) }
	case 8:
		return func(v uint16) uint8 { return uint8(v) }
	}
	top := uint16(1)<<depth - 1
	return func(v uint16) uint8 { return uint8(uint32(v) * 255 / uint32(top)) }
}

// A pixelResolver turns the raw samples of one pixel into 8-bit RGBA.
type pixelResolver func(s []uint16, dst []uint8) error

// resolverFor picks the interpretation rule for the whole image.
func resolverFor(h Header, pal Palette, trns *Transparency) pixelResolver {
	n := normalizer(h.BitDepth)
	alpha := func(s []uint16) uint8 {
		if trns.Matches(h.ColorType, s) {
			return 0
		}
		return 0xff
	}

	switch h.ColorType {
	case Grayscale:
		return func(s []uint16, dst []uint8) error {
			g := n(s[0])
			dst[0], dst[1], dst[2], dst[3] = g, g, g, alpha(s)
			return nil
		}
	case Truecolor:
		return func(s []uint16, dst []uint8) error {
			dst[0], dst[1], dst[2], dst[3] = n(s[0]), n(s[1]), n(s[2]), alpha(s)
			return nil
		}
	case Indexed:
		return func(s []uint16, dst []uint8) error {
			idx := int(s[0])
			if idx >= len(pal) {
				return FormatError(fmt.Sprintf("palette index %d out of range for %d entries", idx, len(pal)))
			}
			c := pal[idx]
			dst[0], dst[1], dst[2], dst[3] = c.R, c.G, c.B, c.A
			return nil
		}
	case GrayscaleAlpha:
		return func(s []uint16, dst []uint8) error {
			g := n(s[0])
			dst[0], dst[1], dst[2], dst[3] = g, g, g, n(s[1])
			return nil
		}
	case TruecolorAlpha:
		return func(s []uint16, dst []uint8) error {
			dst[0], dst[1], dst[2], dst[3] = n(s[0]), n(s[1]), n(s[2]), n(s[3])
			return nil
		}
	}
	panic(fmt.Sprintf("no resolver for %v", h.ColorType))
}

/*
decodeSamples reads every reconstructed row into the original samples and the
8-bit RGBA raster. rows are consumed one at a time through next so the whole
filtered image never needs a second copy.
*/
func decodeSamples(h Header, pal Palette, trns *Transparency, next func() ([]byte, error)) ([]uint16, []uint8, error) {
	w, ht := int(h.Width), int(h.Height)
	ch := h.Channels()
	samples := make([]uint16, w*ht*ch)
	pix := make([]uint8, w*ht*4)
	resolve := resolverFor(h, pal, trns)

	for y := 0; y < ht; y++ {
		row, err := next()
		if err != nil {
			return nil, nil, err
		}
		rowSamples := samples[y*w*ch : (y+1)*w*ch]
		unpackRow(row, h.BitDepth, rowSamples)
		rowPix := pix[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			if err := resolve(rowSamples[x*ch:(x+1)*ch], rowPix[x*4:(x+1)*4]); err != nil {
				return nil, nil, err
			}
		}
	}
	return samples, pix, nil
}

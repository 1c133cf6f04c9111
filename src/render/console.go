package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"git.handmade.network/hmn/pngscope/src/ansicolor"
	"git.handmade.network/hmn/pngscope/src/oops"
	"git.handmade.network/hmn/pngscope/src/png"
	"github.com/teacat/noire"
	"golang.org/x/image/draw"
)

const fullBlock = '█'

// Shade glyphs from fully transparent to opaque.
var alphaGlyphs = [...]rune{'⠀', '░', '▒', '▓', '█'}

// alphaGlyph maps alpha onto the five shades: (10*a)/512 is 0 for a < 52
// and 4 for a >= 205.
func alphaGlyph(a uint8) rune {
	return alphaGlyphs[(10*int(a))/512]
}

// A ConsoleError explains why an image can't be printed to the console.
type ConsoleError string

func (e ConsoleError) Error() string { return "cannot print to console: " + string(e) }

type Console struct {
	// Images at least this wide are rejected unless Fit is set.
	MaxWidth int

	// Scale wide images down to MaxWidth-1 columns instead of rejecting them.
	Fit bool

	// Optional hex color painted behind every cell.
	Background string
}

// Check reports whether an image with header h can be printed.
func (c Console) Check(h png.Header) error {
	if h.InterlaceMethod != 0 {
		return ConsoleError("interlaced images are not supported")
	}
	if h.BitDepth == 16 {
		return ConsoleError("16-bit images are not supported")
	}
	if !c.Fit && int(h.Width) >= c.MaxWidth {
		return ConsoleError(fmt.Sprintf("image is %d pixels wide; the limit is %d (try --fit)", h.Width, c.MaxWidth-1))
	}
	return nil
}

/*
Render prints img as one colored block per pixel, one line per row. Images
with any transparency use shade glyphs by alpha instead of the full block.
*/
func (c Console) Render(w io.Writer, img *png.Image) error {
	if err := c.Check(img.Header); err != nil {
		return err
	}

	var bg string
	if c.Background != "" {
		rgb, err := ParseHexColor(c.Background)
		if err != nil {
			return err
		}
		bg = ansicolor.Bg(rgb.R, rgb.G, rgb.B)
	}

	pix := img.NRGBA()
	if c.Fit && img.Width() >= c.MaxWidth {
		pix = Fit(pix, c.MaxWidth-1)
	}
	useAlpha := img.HasAlpha()

	out := bufio.NewWriter(w)
	b := pix.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := pix.NRGBAAt(x, y)
			glyph := fullBlock
			if useAlpha {
				glyph = alphaGlyph(p.A)
			}
			fmt.Fprintf(out, "%s%s%c%s", bg, ansicolor.Fg(p.R, p.G, p.B), glyph, ansicolor.Reset)
		}
		out.WriteByte('\n')
	}
	if err := out.Flush(); err != nil {
		return oops.New(err, "failed to write image to console")
	}
	return nil
}

// Fit scales src down so it is at most width pixels wide, keeping its
// aspect ratio. Images that already fit are returned unchanged.
func Fit(src *image.NRGBA, width int) *image.NRGBA {
	b := src.Bounds()
	if b.Dx() <= width || width < 1 {
		return src
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// ParseHexColor reads colors like "ff8800" or "#ff8800".
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 || strings.Trim(hex, "0123456789abcdefABCDEF") != "" {
		return color.NRGBA{}, oops.New(nil, "hex color was invalid: %v", hex)
	}
	r, g, b := noire.NewHex(hex).RGB()
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, nil
}

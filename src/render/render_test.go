package render

import (
	"bytes"
	"image"
	"image/color"
	"runtime"
	"strings"
	"testing"

	"git.handmade.network/hmn/pngscope/src/png"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xfmoulet/qoi"
)

func testImage(w, h int, ct png.ColorType, fill func(x, y int) color.NRGBA) *png.Image {
	img := &png.Image{
		Header: png.Header{Width: uint32(w), Height: uint32(h), BitDepth: 8, ColorType: ct},
		Pix:    make([]uint8, w*h*4),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := fill(x, y)
			i := (y*w + x) * 4
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

func TestAlphaGlyph(t *testing.T) {
	assert.Equal(t, '⠀', alphaGlyph(0))
	assert.Equal(t, '⠀', alphaGlyph(51))
	assert.Equal(t, '░', alphaGlyph(52))
	assert.Equal(t, '▒', alphaGlyph(128))
	assert.Equal(t, '▓', alphaGlyph(180))
	assert.Equal(t, '█', alphaGlyph(205))
	assert.Equal(t, '█', alphaGlyph(255))
}

func TestConsoleCheck(t *testing.T) {
	c := Console{MaxWidth: 80}
	assert.Nil(t, c.Check(png.Header{Width: 79, Height: 1, BitDepth: 8}))
	assert.IsType(t, ConsoleError(""), c.Check(png.Header{Width: 80, Height: 1, BitDepth: 8}))
	assert.IsType(t, ConsoleError(""), c.Check(png.Header{Width: 10, Height: 1, BitDepth: 16}))
	assert.IsType(t, ConsoleError(""), c.Check(png.Header{Width: 10, Height: 1, BitDepth: 8, InterlaceMethod: 1}))

	c.Fit = true
	assert.Nil(t, c.Check(png.Header{Width: 500, Height: 1, BitDepth: 8}))
}

func TestConsoleRender(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("escape codes are stripped on windows")
	}

	t.Run("opaque", func(t *testing.T) {
		img := testImage(2, 1, png.Truecolor, func(x, y int) color.NRGBA {
			return color.NRGBA{uint8(255 * x), 0, 0, 255}
		})
		var buf bytes.Buffer
		require.Nil(t, Console{MaxWidth: 80}.Render(&buf, img))
		assert.Equal(t, "\033[38;2;0;0;0m█\033[0m\033[38;2;255;0;0m█\033[0m\n", buf.String())
	})
	t.Run("alpha", func(t *testing.T) {
		img := testImage(2, 2, png.TruecolorAlpha, func(x, y int) color.NRGBA {
			return color.NRGBA{1, 2, 3, uint8(255 * x)}
		})
		var buf bytes.Buffer
		require.Nil(t, Console{MaxWidth: 80}.Render(&buf, img))
		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "\033[38;2;1;2;3m⠀\033[0m\033[38;2;1;2;3m█\033[0m", lines[0])
	})
	t.Run("background", func(t *testing.T) {
		img := testImage(1, 1, png.Grayscale, func(x, y int) color.NRGBA { return color.NRGBA{9, 9, 9, 255} })
		var buf bytes.Buffer
		require.Nil(t, Console{MaxWidth: 80, Background: "102030"}.Render(&buf, img))
		assert.True(t, strings.HasPrefix(buf.String(), "\033[48;2;16;32;48m"))
	})
	t.Run("too wide", func(t *testing.T) {
		img := testImage(100, 1, png.Grayscale, func(x, y int) color.NRGBA { return color.NRGBA{A: 255} })
		var buf bytes.Buffer
		assert.NotNil(t, Console{MaxWidth: 80}.Render(&buf, img))
		assert.Equal(t, 0, buf.Len())
	})
	t.Run("fit", func(t *testing.T) {
		img := testImage(160, 20, png.Grayscale, func(x, y int) color.NRGBA { return color.NRGBA{A: 255} })
		var buf bytes.Buffer
		require.Nil(t, Console{MaxWidth: 81, Fit: true}.Render(&buf, img))
		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		assert.Len(t, lines, 10)
		assert.Equal(t, 80, strings.Count(lines[0], "█"))
	})
}

func TestFit(t *testing.T) {
	img := testImage(40, 30, png.Truecolor, func(x, y int) color.NRGBA { return color.NRGBA{200, 100, 50, 255} })
	fitted := Fit(img.NRGBA(), 20)
	assert.Equal(t, 20, fitted.Bounds().Dx())
	assert.Equal(t, 15, fitted.Bounds().Dy())
	assert.Equal(t, color.NRGBA{200, 100, 50, 255}, fitted.NRGBAAt(10, 7))

	small := img.NRGBA()
	assert.Same(t, small, Fit(small, 100))
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("ff8800")
	require.Nil(t, err)
	assert.Equal(t, color.NRGBA{255, 136, 0, 255}, c)

	c, err = ParseHexColor("#102030")
	require.Nil(t, err)
	assert.Equal(t, color.NRGBA{16, 32, 48, 255}, c)

	c, err = ParseHexColor("#AbCdEf")
	require.Nil(t, err)
	assert.Equal(t, color.NRGBA{171, 205, 239, 255}, c)

	for _, bad := range []string{"fff", "zzzzzz", "#12345g", "12 456", "#", ""} {
		_, err = ParseHexColor(bad)
		assert.NotNil(t, err, bad)
	}
}

func TestExportQOI(t *testing.T) {
	img := testImage(5, 4, png.TruecolorAlpha, func(x, y int) color.NRGBA {
		return color.NRGBA{uint8(x * 50), uint8(y * 60), 7, uint8(255 - x*10)}
	})
	var buf bytes.Buffer
	require.Nil(t, ExportQOI(&buf, img))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("qoif")))

	decoded, err := qoi.Decode(&buf)
	require.Nil(t, err)
	assert.Equal(t, 5, decoded.Bounds().Dx())
	assert.Equal(t, 4, decoded.Bounds().Dy())
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			got := color.NRGBAModel.Convert(decoded.At(x, y)).(color.NRGBA)
			assert.Equal(t, img.At(x, y), got, "pixel %d,%d", x, y)
		}
	}
}

func TestExportQOIKeepsStraightAlpha(t *testing.T) {
	// Long runs, repeated colors, small and medium steps, alpha changes, and
	// color hidden under zero alpha all take different encoder paths.
	const w, h = 100, 4
	img := testImage(w, h, png.TruecolorAlpha, func(x, y int) color.NRGBA {
		switch y {
		case 0:
			return color.NRGBA{10, 20, 30, 255}
		case 1:
			if x%2 == 0 {
				return color.NRGBA{200, 100, 50, 128}
			}
			return color.NRGBA{1, 2, 3, 128}
		case 2:
			return color.NRGBA{uint8(x), uint8(x * 3), uint8(250 - x), 255}
		}
		return color.NRGBA{uint8(x * 37), uint8(x * 11), uint8(x * 5), uint8(x * 13)}
	})

	var buf bytes.Buffer
	require.Nil(t, ExportQOI(&buf, img))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte{0, 0, 0, 0, 0, 0, 0, 1}))

	decoded, err := qoi.Decode(&buf)
	require.Nil(t, err)
	require.Equal(t, image.Rect(0, 0, w, h), decoded.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := color.NRGBAModel.Convert(decoded.At(x, y)).(color.NRGBA)
			if !assert.Equal(t, img.At(x, y), got, "pixel %d,%d", x, y) {
				return
			}
		}
	}
}

func TestExportQOIEmpty(t *testing.T) {
	img := &png.Image{Header: png.Header{Width: 0, Height: 3}}
	assert.NotNil(t, ExportQOI(&bytes.Buffer{}, img))
}

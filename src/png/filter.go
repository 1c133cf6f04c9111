package png

import "fmt"

// Scanline filter types.
const (
	FilterNone    = 0
	FilterSub     = 1
	FilterUp      = 2
	FilterAverage = 3
	FilterPaeth   = 4
)

var filterNames = [...]string{"None", "Sub", "Up", "Average", "Paeth"}

/*
A Reconstructor reverses scanline filtering one row at a time. It keeps the
previous reconstructed row, zeroed before the first row, and swaps it with
the working row after every call. The slice returned by Next is only valid
until the next call.
*/
type Reconstructor struct {
	stride int
	bpp    int
	cr, pr []byte
}

func NewReconstructor(stride, bpp int) *Reconstructor {
	if bpp < 1 {
		bpp = 1
	}
	return &Reconstructor{
		stride: stride,
		bpp:    bpp,
		cr:     make([]byte, stride),
		pr:     make([]byte, stride),
	}
}

// Next takes one filtered scanline, filter byte first, and returns the
// reconstructed row.
func (r *Reconstructor) Next(scanline []byte) ([]byte, error) {
	if len(scanline) != r.stride+1 {
		return nil, FormatError(fmt.Sprintf("scanline is %d bytes, want %d", len(scanline), r.stride+1))
	}
	ft := scanline[0]
	cdat := r.cr
	copy(cdat, scanline[1:])
	pdat := r.pr
	bpp := r.bpp

	switch ft {
	case FilterNone:
	case FilterSub:
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case FilterUp:
		for i, p := range pdat {
			cdat[i] += p
		}
	case FilterAverage:
		for i := 0; i < bpp && i < len(cdat); i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += uint8((int(cdat[i-bpp]) + int(pdat[i])) / 2)
		}
	case FilterPaeth:
		for i := 0; i < bpp && i < len(cdat); i++ {
			cdat[i] += paeth(0, pdat[i], 0)
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += paeth(cdat[i-bpp], pdat[i], pdat[i-bpp])
		}
	default:
		return nil, UnsupportedError(fmt.Sprintf("filter type %d", ft))
	}

	r.pr, r.cr = r.cr, r.pr
	return cdat, nil
}

// paeth picks whichever of left (a), above (b) or upper-left (c) is closest
// to a+b-c, preferring a, then b, on ties.
func paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Unfilter reconstructs height scanlines from data, which must hold exactly
// height × (1 + stride) bytes. The returned rows are independent slices.
func Unfilter(data []byte, stride, height, bpp int) ([][]byte, error) {
	if len(data) != height*(1+stride) {
		return nil, FormatError(fmt.Sprintf("filtered data is %d bytes, want %d", len(data), height*(1+stride)))
	}
	r := NewReconstructor(stride, bpp)
	rows := make([][]byte, height)
	for y := 0; y < height; y++ {
		line := data[y*(1+stride) : (y+1)*(1+stride)]
		row, err := r.Next(line)
		if err != nil {
			return nil, err
		}
		rows[y] = append([]byte(nil), row...)
	}
	return rows, nil
}

// FilterName returns the display name of a filter type byte.
func FilterName(ft byte) string {
	if int(ft) < len(filterNames) {
		return filterNames[ft]
	}
	return fmt.Sprintf("unknown(%d)", ft)
}

package png

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filterRow applies filter ft to cur, given the previous raw row.
func filterRow(ft byte, cur, prev []byte, bpp int) []byte {
	out := make([]byte, len(cur)+1)
	out[0] = ft
	left := func(i int) byte {
		if i < bpp {
			return 0
		}
		return cur[i-bpp]
	}
	upLeft := func(i int) byte {
		if i < bpp {
			return 0
		}
		return prev[i-bpp]
	}
	for i := range cur {
		var pred byte
		switch ft {
		case FilterSub:
			pred = left(i)
		case FilterUp:
			pred = prev[i]
		case FilterAverage:
			pred = byte((int(left(i)) + int(prev[i])) / 2)
		case FilterPaeth:
			pred = paeth(left(i), prev[i], upLeft(i))
		}
		out[i+1] = cur[i] - pred
	}
	return out
}

func TestReconstructorRoundTrip(t *testing.T) {
	const stride, height = 12, 5
	for _, bpp := range []int{1, 3, 4, 8} {
		raw := make([][]byte, height)
		for y := range raw {
			raw[y] = make([]byte, stride)
			for x := range raw[y] {
				raw[y][x] = byte(x*37 + y*91 + x*y*13)
			}
		}
		for ft := byte(0); ft <= 4; ft++ {
			t.Run(FilterName(ft), func(t *testing.T) {
				var data []byte
				prev := make([]byte, stride)
				for y := range raw {
					data = append(data, filterRow(ft, raw[y], prev, bpp)...)
					prev = raw[y]
				}
				rows, err := Unfilter(data, stride, height, bpp)
				require.Nil(t, err)
				assert.Equal(t, raw, rows)
			})
		}
	}
}

func TestReconstructorMixedFilters(t *testing.T) {
	raw := [][]byte{
		{10, 200, 30, 40},
		{250, 5, 60, 255},
		{0, 0, 128, 129},
		{1, 2, 3, 4},
	}
	r := NewReconstructor(4, 2)
	prev := make([]byte, 4)
	for y, ft := range []byte{FilterPaeth, FilterAverage, FilterSub, FilterUp} {
		row, err := r.Next(filterRow(ft, raw[y], prev, 2))
		require.Nil(t, err)
		assert.Equal(t, raw[y], row)
		prev = raw[y]
	}
}

func TestAverageFloors(t *testing.T) {
	r := NewReconstructor(1, 1)
	_, err := r.Next([]byte{FilterNone, 255})
	require.Nil(t, err)
	row, err := r.Next([]byte{FilterAverage, 0})
	require.Nil(t, err)
	assert.Equal(t, []byte{127}, row)
}

func TestPaethTieBreaks(t *testing.T) {
	assert.Equal(t, uint8(6), paeth(6, 0, 2), "a wins a tie with c")
	assert.Equal(t, uint8(6), paeth(0, 6, 2), "b wins a tie with c")
	assert.Equal(t, uint8(4), paeth(2, 6, 4))
	assert.Equal(t, uint8(20), paeth(20, 10, 10))
	assert.Equal(t, uint8(20), paeth(10, 20, 10))
}

func TestUnknownFilter(t *testing.T) {
	r := NewReconstructor(2, 1)
	_, err := r.Next([]byte{5, 1, 2})
	assert.Equal(t, KindUnsupported, Kind(err))
}

func TestUnfilterLength(t *testing.T) {
	_, err := Unfilter([]byte{0, 1, 2}, 2, 2, 1)
	assert.Equal(t, KindFormat, Kind(err))
}

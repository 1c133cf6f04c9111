package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

func rawChunk(typ string, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func ihdrData(w, h uint32, depth uint8, ct ColorType, interlace uint8) []byte {
	d := make([]byte, 13)
	binary.BigEndian.PutUint32(d[0:], w)
	binary.BigEndian.PutUint32(d[4:], h)
	d[8] = depth
	d[9] = byte(ct)
	d[12] = interlace
	return d
}

func compress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.Nil(t, err)
	require.Nil(t, zw.Close())
	return buf.Bytes()
}

func pngFile(chunks ...[]byte) []byte {
	out := []byte(pngHeader)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// simplePNG builds a PNG from already-filtered scanlines (filter byte first)
// with optional chunks between IHDR and IDAT.
func simplePNG(t *testing.T, ihdr []byte, scanlines []byte, between ...[]byte) []byte {
	t.Helper()
	chunks := [][]byte{rawChunk(TypeIHDR, ihdr)}
	chunks = append(chunks, between...)
	chunks = append(chunks,
		rawChunk(TypeIDAT, compress(t, scanlines)),
		rawChunk(TypeIEND, nil),
	)
	return pngFile(chunks...)
}

package png

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// An Inflator turns the concatenated IDAT payload into the filtered scanline
// stream. Errors from the returned reader are reported as DecompressionError.
type Inflator interface {
	Inflate(compressed []byte) (io.ReadCloser, error)
}

// ZlibInflator is the default Inflator.
type ZlibInflator struct{}

func (ZlibInflator) Inflate(compressed []byte) (io.ReadCloser, error) {
	return zlib.NewReader(bytes.NewReader(compressed))
}

// AssembleIDAT concatenates the data of every IDAT chunk in file order.
func AssembleIDAT(chunks []Chunk) ([]byte, error) {
	var buf bytes.Buffer
	found := false
	for _, c := range chunks {
		if c.Type == TypeIDAT {
			found = true
			buf.Write(c.Data)
		}
	}
	if !found {
		return nil, FormatError("no IDAT chunk")
	}
	return buf.Bytes(), nil
}

/*
inflateExact decompresses compressed and checks that the result is exactly
size bytes long. A stream that ends early or carries trailing data is a
FormatError; a stream the inflator can't read is a DecompressionError.
Memory grows with the data actually inflated, not with size.
*/
func inflateExact(inf Inflator, compressed []byte, size int64) ([]byte, error) {
	rc, err := inf.Inflate(compressed)
	if err != nil {
		return nil, &DecompressionError{Err: err}
	}
	defer rc.Close()

	// One byte past size is enough to tell that there is too much. Reading to
	// EOF otherwise also verifies the adler32 trailer.
	out, err := io.ReadAll(io.LimitReader(rc, size+1))
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, FormatError(fmt.Sprintf("not enough pixel data: got %d bytes, want %d", len(out), size))
		}
		return nil, &DecompressionError{Err: err}
	}
	if int64(len(out)) < size {
		return nil, FormatError(fmt.Sprintf("not enough pixel data: got %d bytes, want %d", len(out), size))
	}
	if int64(len(out)) > size {
		return nil, FormatError(fmt.Sprintf("too much pixel data: more than %d bytes", size))
	}
	return out, nil
}

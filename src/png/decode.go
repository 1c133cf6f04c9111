package png

import (
	"bufio"
	"io"
	"os"

	"git.handmade.network/hmn/pngscope/src/logging"
)

// Decoder runs the full pipeline. The zero value is not usable; call
// NewDecoder, or set Inflator yourself.
type Decoder struct {
	Inflator Inflator
}

func NewDecoder() *Decoder {
	return &Decoder{Inflator: ZlibInflator{}}
}

// Decode decodes a single PNG stream with the default inflator.
func Decode(r io.Reader) (*Image, error) {
	return NewDecoder().Decode(r)
}

// DecodeFile decodes the PNG at path with the default inflator.
func DecodeFile(path string) (*Image, error) {
	return NewDecoder().DecodeFile(path)
}

func (d *Decoder) Decode(r io.Reader) (*Image, error) {
	chunks, err := readChunks(r, "")
	if err != nil {
		return nil, err
	}
	return d.DecodeChunks(chunks)
}

func (d *Decoder) DecodeFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Stage: StageUnopened, Err: &IOError{Path: path, Err: err}}
	}
	defer f.Close()

	chunks, err := readChunks(bufio.NewReader(f), path)
	if err != nil {
		return nil, err
	}
	return d.DecodeChunks(chunks)
}

// readChunks wraps ReadChunks errors with the stage they happened at. Errors
// outside the taxonomy come from the underlying reader.
func readChunks(r io.Reader, path string) ([]Chunk, error) {
	chunks, err := ReadChunks(r)
	if err != nil {
		stage := StageSignatureChecked
		switch Kind(err) {
		case KindSignature:
			stage = StageUnopened
		case KindOther:
			err = &IOError{Path: path, Err: err}
		}
		return nil, &DecodeError{Stage: stage, Err: err}
	}
	return chunks, nil
}

/*
Inspect reads the chunk list and header without decompressing anything.
Interlaced images are accepted even though Decode refuses them.
*/
func Inspect(r io.Reader) (Header, []Chunk, error) {
	return inspect(r, "")
}

func InspectFile(path string) (Header, []Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, &DecodeError{Stage: StageUnopened, Err: &IOError{Path: path, Err: err}}
	}
	defer f.Close()
	return inspect(bufio.NewReader(f), path)
}

func inspect(r io.Reader, path string) (Header, []Chunk, error) {
	chunks, err := readChunks(r, path)
	if err != nil {
		return Header{}, nil, err
	}
	h, err := ReadHeader(chunks[0])
	if err != nil {
		return Header{}, chunks, &DecodeError{Stage: StageSignatureChecked, Err: err}
	}
	return h, chunks, nil
}

// DecodeChunks decodes an already-read chunk list, for example one loaded
// back from storage. The list must start with IHDR and end with IEND.
func (d *Decoder) DecodeChunks(chunks []Chunk) (*Image, error) {
	fail := func(stage Stage, err error) (*Image, error) {
		return nil, &DecodeError{Stage: stage, Err: err}
	}

	if len(chunks) == 0 {
		return fail(StageSignatureChecked, FormatError("no chunks"))
	}
	h, err := ParseHeader(chunks[0])
	if err != nil {
		return fail(StageSignatureChecked, err)
	}

	plte, trns, err := collectAncillary(chunks)
	if err != nil {
		return fail(StageHeaderParsed, err)
	}
	if trns != nil && h.ColorType.HasAlpha() {
		logging.Debug().Str("colorType", h.ColorType.String()).Msg("ignoring tRNS chunk in image with an alpha channel")
	}
	pal, key, err := ParsePalette(h, plte, trns)
	if err != nil {
		return fail(StageHeaderParsed, err)
	}

	compressed, err := AssembleIDAT(chunks)
	if err != nil {
		return fail(StageAncillaryChunksCollected, err)
	}

	size, err := h.DecompressedSize()
	if err != nil {
		return fail(StageAncillaryChunksCollected, err)
	}
	data, err := inflateExact(d.Inflator, compressed, size)
	if err != nil {
		return fail(StageCompressedDataAssembled, err)
	}

	stride := h.Stride()
	rec := NewReconstructor(stride, h.BytesPerPixel())
	var filterErr error
	y := 0
	next := func() ([]byte, error) {
		line := data[y*(1+stride) : (y+1)*(1+stride)]
		y++
		row, err := rec.Next(line)
		filterErr = err
		return row, err
	}
	samples, pix, err := decodeSamples(h, pal, key, next)
	if err != nil {
		if filterErr != nil {
			return fail(StageDecompressed, err)
		}
		return fail(StageUnfiltered, err)
	}

	return &Image{
		Header:  h,
		Chunks:  chunks,
		Palette: pal,
		Samples: samples,
		Pix:     pix,
	}, nil
}

// collectAncillary checks chunk ordering and picks out PLTE and tRNS.
func collectAncillary(chunks []Chunk) (plte, trns *Chunk, err error) {
	seenIDAT := false
	for i := 1; i < len(chunks); i++ {
		c := &chunks[i]
		switch c.Type {
		case TypeIHDR:
			return nil, nil, FormatError("second IHDR chunk")
		case TypePLTE:
			if plte != nil {
				return nil, nil, FormatError("more than one PLTE chunk")
			}
			if seenIDAT || trns != nil {
				return nil, nil, chunkOrderError
			}
			plte = c
		case TypeTRNS:
			if trns != nil {
				return nil, nil, FormatError("more than one tRNS chunk")
			}
			if seenIDAT {
				return nil, nil, chunkOrderError
			}
			trns = c
		case TypeIDAT:
			seenIDAT = true
		case TypeIEND:
			if i != len(chunks)-1 {
				return nil, nil, FormatError("chunks after IEND")
			}
			return plte, trns, nil
		}
		// Anything else stays in the chunk list for listing but is not
		// interpreted.
	}
	return nil, nil, FormatError("missing IEND chunk")
}

package png

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

// Chunk types this package interprets. Everything else is kept as opaque
// metadata.
const (
	TypeIHDR = "IHDR"
	TypePLTE = "PLTE"
	TypeIDAT = "IDAT"
	TypeIEND = "IEND"
	TypeTRNS = "tRNS"
)

const maxChunkLength = 0x7fffffff

// A Chunk is one length-prefixed, CRC-protected record of a PNG stream,
// exactly as it appeared in the file.
type Chunk struct {
	Type   string
	Length uint32
	Data   []byte
	CRC    uint32
}

// The four property bits live in bit 5 (the ASCII lowercase bit) of each
// type byte.
func (c Chunk) propertyBit(i int) bool {
	return len(c.Type) == 4 && c.Type[i]&0x20 != 0
}

func (c Chunk) Ancillary() bool  { return c.propertyBit(0) }
func (c Chunk) Private() bool    { return c.propertyBit(1) }
func (c Chunk) Reserved() bool   { return c.propertyBit(2) }
func (c Chunk) SafeToCopy() bool { return c.propertyBit(3) }

func (c Chunk) Critical() bool { return !c.Ancillary() }

// ChecksumOK reports whether CRC matches the CRC-32 of the type and data.
func (c Chunk) ChecksumOK() bool {
	return c.CRC == chunkCRC(c.Type, c.Data)
}

func chunkCRC(typ string, data []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	return crc.Sum32()
}

func checkSignature(r io.Reader) error {
	var sig [len(pngHeader)]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return SignatureError("file shorter than the signature")
		}
		return err
	}
	if string(sig[:]) != pngHeader {
		return SignatureError(fmt.Sprintf("got % x", sig[:]))
	}
	return nil
}

// readChunk reads the next chunk and verifies its checksum.
func readChunk(r io.Reader) (Chunk, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:8]); err != nil {
		return Chunk{}, truncated(err, "chunk header")
	}
	length := binary.BigEndian.Uint32(tmp[:4])
	if length > maxChunkLength {
		return Chunk{}, FormatError(fmt.Sprintf("bad chunk length: %d", length))
	}
	typ := string(tmp[4:8])
	if !validChunkType(typ) {
		return Chunk{}, FormatError(fmt.Sprintf("bad chunk type %q", typ))
	}

	// Read through a LimitReader so a lying length can't make us allocate
	// gigabytes up front.
	data, err := io.ReadAll(io.LimitReader(r, int64(length)))
	if err != nil {
		return Chunk{}, err
	}
	if uint32(len(data)) != length {
		return Chunk{}, FormatError(fmt.Sprintf("%s chunk truncated", typ))
	}

	if _, err := io.ReadFull(r, tmp[:4]); err != nil {
		return Chunk{}, truncated(err, typ+" checksum")
	}
	c := Chunk{
		Type:   typ,
		Length: length,
		Data:   data,
		CRC:    binary.BigEndian.Uint32(tmp[:4]),
	}
	if !c.ChecksumOK() {
		return Chunk{}, FormatError(fmt.Sprintf("invalid checksum in %s chunk", typ))
	}
	return c, nil
}

func validChunkType(typ string) bool {
	for i := 0; i < len(typ); i++ {
		b := typ[i] &^ 0x20
		if b < 'A' || b > 'Z' {
			return false
		}
	}
	return true
}

func truncated(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return FormatError("unexpected end of stream reading " + what)
	}
	return err
}

/*
ReadChunks checks the signature and reads every chunk up to and including
IEND, in file order. Anything after IEND is ignored. The stream must contain
an IEND; running out of data first is a FormatError.
*/
func ReadChunks(r io.Reader) ([]Chunk, error) {
	if err := checkSignature(r); err != nil {
		return nil, err
	}

	var chunks []Chunk
	for {
		c, err := readChunk(r)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
		if c.Type == TypeIEND {
			return chunks, nil
		}
	}
}

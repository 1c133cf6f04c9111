package templates

type Info struct {
	Path              string
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	ColorTypeName     string
	CompressionMethod uint8
	CompressionName   string
	FilterMethod      uint8
	InterlaceMethod   uint8
	InterlaceName     string

	// Every chunk type in file order, repeats included.
	ChunkTypes []string

	// Full chunk metadata. Empty for records loaded from the database with
	// only their chunk type list.
	Chunks []Chunk

	ShowChunks bool
}

type Chunk struct {
	Index      int
	Type       string
	Length     uint32
	CRC        uint32
	Ancillary  bool
	Private    bool
	Reserved   bool
	SafeToCopy bool
}

type Failure struct {
	Path  string
	Kind  string
	Error string
}

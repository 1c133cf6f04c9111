package templates

import (
	"git.handmade.network/hmn/pngscope/src/png"
)

func HeaderToTemplate(path string, h png.Header) Info {
	return Info{
		Path:              path,
		Width:             h.Width,
		Height:            h.Height,
		BitDepth:          h.BitDepth,
		ColorType:         uint8(h.ColorType),
		ColorTypeName:     h.ColorType.String(),
		CompressionMethod: h.CompressionMethod,
		CompressionName:   h.CompressionMethodName(),
		FilterMethod:      h.FilterMethod,
		InterlaceMethod:   h.InterlaceMethod,
		InterlaceName:     h.InterlaceMethodName(),
	}
}

func ChunksToTemplate(chunks []png.Chunk) []Chunk {
	result := make([]Chunk, len(chunks))
	for i, c := range chunks {
		result[i] = Chunk{
			Index:      i,
			Type:       c.Type,
			Length:     c.Length,
			CRC:        c.CRC,
			Ancillary:  c.Ancillary(),
			Private:    c.Private(),
			Reserved:   c.Reserved(),
			SafeToCopy: c.SafeToCopy(),
		}
	}
	return result
}

// FileInfoToTemplate builds the info view for a file read from disk.
func FileInfoToTemplate(path string, h png.Header, chunks []png.Chunk, showChunks bool) Info {
	info := HeaderToTemplate(path, h)
	info.Chunks = ChunksToTemplate(chunks)
	for _, c := range chunks {
		info.ChunkTypes = append(info.ChunkTypes, c.Type)
	}
	info.ShowChunks = showChunks
	return info
}

func FailureToTemplate(path string, err error) Failure {
	return Failure{
		Path:  path,
		Kind:  png.Kind(err).String(),
		Error: err.Error(),
	}
}

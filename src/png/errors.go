package png

import (
	"errors"
	"fmt"
)

// A SignatureError reports that the input does not start with the PNG signature.
type SignatureError string

func (e SignatureError) Error() string { return "png: bad signature: " + string(e) }

// A FormatError reports that the input is not a valid PNG.
type FormatError string

func (e FormatError) Error() string { return "png: invalid format: " + string(e) }

// An UnsupportedError reports that the input uses a valid but unimplemented
// PNG feature (interlacing), or a filter type this decoder does not know.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "png: unsupported feature: " + string(e) }

// A DecompressionError reports a corrupt zlib/DEFLATE stream.
type DecompressionError struct {
	Err error
}

func (e *DecompressionError) Error() string { return "png: decompression failed: " + e.Err.Error() }
func (e *DecompressionError) Unwrap() error { return e.Err }

// An IOError reports that the file could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("png: could not read %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

var chunkOrderError = FormatError("chunk out of order")

// Stage is a step of the decoding pipeline. A decode that fails stops at the
// stage that failed; there is no partial result.
type Stage int

const (
	StageUnopened Stage = iota
	StageSignatureChecked
	StageHeaderParsed
	StageAncillaryChunksCollected
	StageCompressedDataAssembled
	StageDecompressed
	StageUnfiltered
	StageSampleDecoded
	StageBuilt
)

var stageNames = [...]string{
	"unopened",
	"signature checked",
	"header parsed",
	"ancillary chunks collected",
	"compressed data assembled",
	"decompressed",
	"unfiltered",
	"sample decoded",
	"built",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// DecodeError is returned by every failed decode. Stage is the last stage
// that completed successfully.
type DecodeError struct {
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindSignature
	KindFormat
	KindUnsupported
	KindDecompression
	KindIO
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSignature:
		return "SignatureError"
	case KindFormat:
		return "FormatError"
	case KindUnsupported:
		return "UnsupportedFeatureError"
	case KindDecompression:
		return "DecompressionError"
	case KindIO:
		return "IOError"
	}
	return "error"
}

// Kind classifies err into the decoder's error taxonomy.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		sigErr    SignatureError
		formatErr FormatError
		unsupErr  UnsupportedError
		decompErr *DecompressionError
		ioErr     *IOError
	)
	switch {
	case errors.As(err, &sigErr):
		return KindSignature
	case errors.As(err, &formatErr):
		return KindFormat
	case errors.As(err, &unsupErr):
		return KindUnsupported
	case errors.As(err, &decompErr):
		return KindDecompression
	case errors.As(err, &ioErr):
		return KindIO
	}
	return KindOther
}

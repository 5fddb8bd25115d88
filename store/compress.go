package store

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor encodes chunk payloads before they hit the backend. The
// compressor name is recorded in the element attrs so payloads stay
// readable regardless of the store's configured default.
type Compressor interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// Zstd compresses payloads with zstandard. This is the default.
type Zstd struct{}

func (Zstd) Name() string { return "zstd" }

func (Zstd) Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	out := enc.EncodeAll(src, nil)
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (Zstd) Decompress(src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, nil)
}

// LZ4 compresses payloads with the lz4 frame format.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (LZ4) Decompress(src []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
}

// None stores payloads uncompressed.
type None struct{}

func (None) Name() string { return "none" }

func (None) Compress(src []byte) ([]byte, error) { return src, nil }

func (None) Decompress(src []byte) ([]byte, error) { return src, nil }

// DefaultCompressor is used when none is configured.
var DefaultCompressor Compressor = Zstd{}

// CompressorByName returns a built-in compressor by its stable name.
func CompressorByName(name string) (Compressor, bool) {
	switch name {
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	case "none", "":
		return None{}, true
	default:
		return nil, false
	}
}

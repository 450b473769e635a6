package storage

import (
	"bytes"
	"fmt"

	"github.com/valyala/gozstd"
)

// ============================================================================
// ZSTD COMPRESSION ABSTRACTION LAYER
// ============================================================================
// Swap implementations by changing the functions in this file.

const (
	// CompressionLevel is the level used when packing model artifacts
	CompressionLevel = 19
)

// zstdMagic prefixes every zstd frame
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// IsCompressed reports whether data starts with a zstd frame header
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// CompressFrame compresses data into a single zstd frame
func CompressFrame(data []byte) []byte {
	return gozstd.CompressLevel(nil, data, CompressionLevel)
}

// DecompressAll decompresses all frames in the compressed data
func DecompressAll(compressed []byte) ([]byte, error) {
	decompressed, err := gozstd.Decompress(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompression failed: %w", err)
	}
	return decompressed, nil
}

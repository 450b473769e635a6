package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Artifacts handles low-level model artifact file operations
type Artifacts struct {
	logger Logger
}

// Logger interface
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// ArtifactFile is an artifact read from disk, decompressed if needed
type ArtifactFile struct {
	Path        string
	Data        []byte // decompressed content
	Compressed  bool
	FileSize    int64
	ContentSize int64
	FileHash    string // sha256 of bytes on disk
	ContentHash string // sha256 of decompressed content
}

func NewArtifacts(logger Logger) *Artifacts {
	return &Artifacts{logger: logger}
}

// ========================================
// FILE OPERATIONS
// ========================================

// Read loads an artifact, transparently decompressing zstd content
func (a *Artifacts) Read(path string) (*ArtifactFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	file := &ArtifactFile{
		Path:     path,
		FileSize: int64(len(raw)),
		FileHash: Hash(raw),
	}

	data := raw
	if IsCompressed(raw) {
		data, err = DecompressAll(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
		}
		file.Compressed = true
		file.ContentHash = Hash(data)
	} else {
		file.ContentHash = file.FileHash
	}

	file.Data = data
	file.ContentSize = int64(len(data))

	if a.logger != nil {
		a.logger.Printf("read artifact %s (%d bytes, compressed=%v)", path, file.FileSize, file.Compressed)
	}

	return file, nil
}

// Write saves artifact content to disk, optionally zstd-compressed.
// Returns: contentHash, fileHash, fileSize, error
func (a *Artifacts) Write(path string, data []byte, compress bool) (string, string, int64, error) {
	contentHash := Hash(data)

	out := data
	if compress {
		out = CompressFrame(data)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return "", "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return contentHash, Hash(out), int64(len(out)), nil
}

// ========================================
// UTILITY FUNCTIONS
// ========================================

// Hash returns the hex sha256 of data
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package storage

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Magic bytes to identify our blob format
	MagicBytes = "GODB"
	// Current version
	FormatVersion = 2
	// File extension for blobs written by FileKV
	FileExtension = ".godb"
)

// Header flags
const (
	FlagCompressed uint8 = 1 << iota
)

// FileHeader represents the header of a persisted blob
type FileHeader struct {
	Magic    [4]byte // "GODB"
	Version  uint8   // Format version
	Flags    uint8   // FlagCompressed when the payload is an lz4 block
	Reserved [2]byte // Reserved for future use
}

// WriteHeader writes a blob header with the given flags
func WriteHeader(w io.Writer, flags uint8) error {
	header := FileHeader{
		Magic:    [4]byte{'G', 'O', 'D', 'B'},
		Version:  FormatVersion,
		Flags:    flags,
		Reserved: [2]byte{0, 0},
	}

	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the blob header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Validate magic bytes
	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}

	// Validate version
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}

// CollectionBlob is the structure serialized under a collection key
type CollectionBlob struct {
	Records []map[string]interface{} `msgpack:"records"`
}

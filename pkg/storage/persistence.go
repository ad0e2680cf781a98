package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// maxBlobSize bounds the declared raw length of a blob so a corrupt header
// cannot trigger a huge allocation.
const maxBlobSize = 256 << 20

// EncodeCollection serializes records into a blob: header, raw length, payload.
// The payload is lz4 compressed when that makes it smaller.
func EncodeCollection(records []domain.Record) ([]byte, error) {
	blob := CollectionBlob{Records: make([]map[string]interface{}, len(records))}
	for i, rec := range records {
		blob.Records[i] = map[string]interface{}(rec)
	}

	msgpackData, err := msgpack.Marshal(&blob)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	flags := uint8(0)
	payload := msgpackData
	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}
	// n == 0 means the data was incompressible
	if n > 0 && n < len(msgpackData) {
		flags |= FlagCompressed
		payload = compressedData[:n]
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, flags); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(msgpackData))); err != nil {
		return nil, fmt.Errorf("failed to write length: %w", err)
	}
	buf.Write(payload)
	return buf.Bytes(), nil
}

// DecodeCollection parses a blob produced by EncodeCollection.
// Any failure wraps domain.ErrSerialization.
func DecodeCollection(data []byte) ([]domain.Record, error) {
	if len(data) == 0 {
		return []domain.Record{}, nil
	}

	reader := bytes.NewReader(data)
	header, err := ReadHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSerialization, err)
	}

	var rawLen uint32
	if err := binary.Read(reader, binary.LittleEndian, &rawLen); err != nil {
		return nil, fmt.Errorf("%w: failed to read length: %v", domain.ErrSerialization, err)
	}
	if rawLen > maxBlobSize {
		return nil, fmt.Errorf("%w: declared length %d too large", domain.ErrSerialization, rawLen)
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read payload: %v", domain.ErrSerialization, err)
	}

	if header.Flags&FlagCompressed != 0 {
		decompressedData := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, decompressedData)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decompress data: %v", domain.ErrSerialization, err)
		}
		payload = decompressedData[:n]
	}
	if len(payload) != int(rawLen) {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", domain.ErrSerialization, len(payload), rawLen)
	}

	var blob CollectionBlob
	if err := msgpack.Unmarshal(payload, &blob); err != nil {
		return nil, fmt.Errorf("%w: failed to decode MessagePack: %v", domain.ErrSerialization, err)
	}

	records := make([]domain.Record, 0, len(blob.Records))
	for _, rec := range blob.Records {
		records = append(records, domain.Record(rec))
	}
	return records, nil
}

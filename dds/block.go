package dds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

const (
	// BlockMagicCOPY marks an uncompressed block.
	BlockMagicCOPY = "COPY"
	// BlockMagicLZ4 marks an LZ4-compressed block.
	BlockMagicLZ4 = "LZ4 "

	// ChunkSize is the Enfusion chunk size for LZ4 streams.
	ChunkSize = 64 * 1024

	dictCap       = 64 * 1024
	chunkLastFlag = 0x80
	maxLZ4Ratio   = 255
)

// blockEntry is one block table record.
type blockEntry struct {
	Magic string
	Size  int32
}

// isBlockMagic reports whether b starts with a known block magic.
func isBlockMagic(b []byte) bool {
	if len(b) < 4 {
		return false
	}
	m := string(b[:4])
	return m == BlockMagicCOPY || m == BlockMagicLZ4
}

// readBlockTable reads count entries; the table lists the smallest level first.
func readBlockTable(r io.Reader, count int) ([]blockEntry, error) {
	table := make([]blockEntry, 0, min(count, 16))
	var raw [8]byte
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrBlockTableRead, i, err)
		}
		if !isBlockMagic(raw[:4]) {
			return nil, fmt.Errorf("%w: entry %d: %q", ErrUnknownBlockMagic, i, raw[:4])
		}

		size := int32(binary.LittleEndian.Uint32(raw[4:])) //nolint:gosec // signed on disk
		if size < 0 {
			return nil, fmt.Errorf("%w: entry %d: %d", ErrBlockTableInvalidSize, i, size)
		}

		table = append(table, blockEntry{Magic: string(raw[:4]), Size: size})
	}

	return table, nil
}

// blockLayoutMatches reports whether data holds a block table of count
// entries followed by exactly the bodies it declares.
func blockLayoutMatches(data []byte, count int) bool {
	if count <= 0 || len(data) < 8*count {
		return false
	}

	total := int64(0)
	for i := 0; i < count; i++ {
		entry := data[i*8 : i*8+8]
		if !isBlockMagic(entry) {
			return false
		}
		size := int32(binary.LittleEndian.Uint32(entry[4:])) //nolint:gosec // signed on disk
		if size < 0 {
			return false
		}
		total += int64(size)
	}

	return total == int64(len(data)-8*count)
}

// inflateBlock turns a block body into exactly expected raw bytes.
func inflateBlock(magic string, body []byte, expected int) ([]byte, error) {
	switch magic {
	case BlockMagicCOPY:
		if len(body) != expected {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrCopySizeMismatch, expected, len(body))
		}
		return body, nil
	case BlockMagicLZ4:
		return inflateChunkStream(body, expected)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockMagic, magic)
	}
}

// inflateChunkStream decodes an Enfusion LZ4 chunk stream. The body may start
// with a 4-byte uncompressed size; each chunk is a 3-byte compressed size, a
// flags byte (0x80 marks the last chunk) and the LZ4 block, decoded against
// the previous 64KB of output.
func inflateChunkStream(body []byte, expected int) ([]byte, error) {
	if expected <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTargetSize, expected)
	}
	// LZ4 expands at most 255x, so a short body cannot fill expected.
	if int64(expected) > int64(len(body))*maxLZ4Ratio {
		return nil, fmt.Errorf("%w: %d bytes cannot inflate to %d", ErrChunkStreamTruncated, len(body), expected)
	}
	if len(body) >= 8 {
		declared := int(binary.LittleEndian.Uint32(body[:4]))
		first := int(body[4]) | int(body[5])<<8 | int(body[6])<<16
		if declared == expected && first > 0 && first < 1<<20 {
			body = body[4:]
		}
	}

	dict := make([]byte, 0, dictCap)
	out := make([]byte, expected)
	written := 0
	r := bytes.NewReader(body)

	for {
		if r.Len() < 4 {
			return nil, fmt.Errorf("%w: need 4 bytes header, have %d", ErrChunkStreamTruncated, r.Len())
		}

		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkHeaderRead, err)
		}
		size := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		flags := hdr[3]
		if flags&^chunkLastFlag != 0 {
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownLZ4Flags, flags)
		}
		if size <= 0 || size > r.Len() {
			return nil, fmt.Errorf("%w: %d (remaining %d)", ErrInvalidChunkSize, size, r.Len())
		}

		src := make([]byte, size)
		if _, err := io.ReadFull(r, src); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChunkDataRead, err)
		}

		remaining := expected - written
		if remaining <= 0 {
			return nil, ErrDecodeOverrun
		}
		want := min(ChunkSize, remaining)

		n, err := lz4.UncompressBlockWithDict(src, out[written:written+want], dict)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
		}
		dict = slideDict(dict, out[written:written+n])
		written += n

		if flags&chunkLastFlag != 0 {
			break
		}
	}

	if written != expected {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSizeMismatch, expected, written)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes left after decode", ErrBlockLengthMismatch, r.Len())
	}

	return out, nil
}

// slideDict appends decoded to dict, keeping at most the last dictCap bytes.
func slideDict(dict, decoded []byte) []byte {
	if len(decoded) >= dictCap {
		return append(dict[:0], decoded[len(decoded)-dictCap:]...)
	}
	if over := len(dict) + len(decoded) - dictCap; over > 0 {
		dict = append(dict[:0], dict[over:]...)
	}
	return append(dict, decoded...)
}

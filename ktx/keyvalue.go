package ktx

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// KeyValue is one metadata pair. Value keeps any trailing NUL.
type KeyValue struct {
	Key   string
	Value []byte
}

// ParseKeyValues splits a raw key/value block into pairs, in file order.
func ParseKeyValues(order binary.ByteOrder, meta []byte) ([]KeyValue, error) {
	var pairs []KeyValue
	for off := 0; off < len(meta); {
		if len(meta)-off < 4 {
			return nil, fmt.Errorf("%w: %d trailing bytes at offset %d", ErrInvalidKeyValue, len(meta)-off, off)
		}
		size := int(order.Uint32(meta[off:]))
		off += 4
		if size > len(meta)-off {
			return nil, fmt.Errorf("%w: size %d exceeds remaining %d", ErrInvalidKeyValue, size, len(meta)-off)
		}

		kv := meta[off : off+size]
		nul := bytes.IndexByte(kv, 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: key without NUL terminator at offset %d", ErrInvalidKeyValue, off)
		}
		pairs = append(pairs, KeyValue{
			Key:   string(kv[:nul]),
			Value: append([]byte(nil), kv[nul+1:]...),
		})

		off += size + valuePadding(size)
		if off > len(meta) {
			off = len(meta)
		}
	}

	return pairs, nil
}

// EncodeKeyValues builds a key/value block in the given byte order.
func EncodeKeyValues(order binary.ByteOrder, pairs []KeyValue) []byte {
	var buf bytes.Buffer
	for _, kv := range pairs {
		size := len(kv.Key) + 1 + len(kv.Value)

		var sz [4]byte
		order.PutUint32(sz[:], uint32(size)) //nolint:gosec // metadata sizes fit in uint32
		buf.Write(sz[:])
		buf.WriteString(kv.Key)
		buf.WriteByte(0)
		buf.Write(kv.Value)
		buf.Write(make([]byte, valuePadding(size)))
	}

	return buf.Bytes()
}

func valuePadding(size int) int {
	return 3 - (size+3)%4
}
